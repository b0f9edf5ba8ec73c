package sink

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/logger"
	"github.com/kbukum/sawmill/pipeline"
)

// Write truncates filename and writes each item's fmt.Sprint form followed
// by a newline. The file is closed however the run ends.
func Write[T any](ctx context.Context, p *pipeline.Pipeline[T], filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return errors.ResourceAcquisition(filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.WriteFailed(filename, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	n := 0
	err = pipeline.ForEach(ctx, p, func(_ context.Context, item T) error {
		if _, werr := fmt.Fprintln(w, fmt.Sprint(item)); werr != nil {
			return errors.WriteFailed(filename, werr)
		}
		n++
		return nil
	})
	if err != nil {
		return err
	}
	if ferr := w.Flush(); ferr != nil {
		return errors.WriteFailed(filename, ferr)
	}
	logger.WithStage("write").Debug("written", logger.Fields(logger.FieldPath, filename, logger.FieldCount, n))
	return nil
}

// Count drains p and returns how many items it yielded.
func Count[T any](ctx context.Context, p *pipeline.Pipeline[T]) (int, error) {
	n := 0
	err := pipeline.ForEach(ctx, p, func(context.Context, T) error {
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
