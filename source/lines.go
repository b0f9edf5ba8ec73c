package source

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/logger"
)

// opener opens a path and returns the reader to consume and the closer that
// releases everything behind it.
type opener func(path string) (io.Reader, io.Closer, error)

func openPlain(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.ResourceAcquisition(path, err)
	}
	return f, f, nil
}

func openGzip(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.ResourceAcquisition(path, err)
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, errors.ResourceAcquisition(path, err)
	}
	return zr, closerFunc(func() error {
		zerr := zr.Close()
		if ferr := f.Close(); ferr != nil {
			return ferr
		}
		return zerr
	}), nil
}

type closerFunc func() error

func (fn closerFunc) Close() error { return fn() }

// lineIter yields the lines of r, terminators included. The final line is
// yielded even when it has no terminator.
type lineIter struct {
	name   string
	r      *bufio.Reader
	closer io.Closer
	done   bool
	eof    bool
}

func newLineIter(name string, r io.Reader, closer io.Closer) *lineIter {
	return &lineIter{name: name, r: bufio.NewReader(r), closer: closer}
}

func (it *lineIter) Next(ctx context.Context) (string, bool, error) {
	if it.done {
		return "", false, nil
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	line, err := it.r.ReadString('\n')
	switch {
	case err == nil:
		return line, true, nil
	case err == io.EOF:
		it.done, it.eof = true, true
		if line == "" {
			return "", false, nil
		}
		return line, true, nil
	default:
		it.done = true
		return "", false, errors.ReadFailed(it.name, err)
	}
}

func (it *lineIter) Close() error {
	it.done = true
	if it.closer == nil {
		return nil
	}
	c := it.closer
	it.closer = nil
	if err := c.Close(); err != nil {
		logger.WithStage("source").Warn("close failed", logger.Fields(logger.FieldOrigin, it.name, logger.FieldError, err.Error()))
		return err
	}
	return nil
}
