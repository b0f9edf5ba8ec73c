package source

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/logger"
	"github.com/kbukum/sawmill/pipeline"
)

// readDirBatch is how many directory entries are read per syscall batch.
const readDirBatch = 128

// ListDir yields the direct children of dir, joined onto dir, in the order
// the operating system lists them. "." and ".." are never included. The
// directory is opened on the first pull.
func ListDir(dir string) *pipeline.Pipeline[string] {
	return pipeline.FromFunc(func(_ context.Context) pipeline.Iterator[string] {
		return &dirIter{dir: dir}
	})
}

// ListDirs yields the listings of every directory in order.
func ListDirs(dirs *pipeline.Pipeline[string]) *pipeline.Pipeline[string] {
	return pipeline.FlatMap(dirs, func(ctx context.Context, dir string) (pipeline.Iterator[string], error) {
		return ListDir(dir).Iter(ctx), nil
	})
}

type dirIter struct {
	dir     string
	f       *os.File
	pending []os.DirEntry
	done    bool
}

func (it *dirIter) Next(ctx context.Context) (string, bool, error) {
	for len(it.pending) == 0 {
		if it.done {
			return "", false, nil
		}
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		if it.f == nil {
			f, err := os.Open(it.dir)
			if err != nil {
				it.done = true
				return "", false, errors.ResourceAcquisition(it.dir, err)
			}
			it.f = f
			logger.WithStage("listdir").Debug("opened", logger.Fields(logger.FieldPath, it.dir))
		}
		entries, err := it.f.ReadDir(readDirBatch)
		if err == io.EOF {
			it.done = true
			it.closeDir()
			continue
		}
		if err != nil {
			it.done = true
			return "", false, errors.ResourceAcquisition(it.dir, err)
		}
		it.pending = entries
	}
	entry := it.pending[0]
	it.pending = it.pending[1:]
	return filepath.Join(it.dir, entry.Name()), true, nil
}

func (it *dirIter) closeDir() error {
	if it.f == nil {
		return nil
	}
	f := it.f
	it.f = nil
	return f.Close()
}

func (it *dirIter) Close() error {
	it.done = true
	it.pending = nil
	return it.closeDir()
}
