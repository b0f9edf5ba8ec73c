package stage

import (
	"context"

	"github.com/kbukum/sawmill/pipeline"
)

// Once tries callbacks in order on each item and yields the result of the
// first one that reports ok. Later callbacks are not called for that item.
// An item no callback accepts is dropped, not passed through.
func Once[I, O any](p *pipeline.Pipeline[I], callbacks ...func(I) (O, bool)) *pipeline.Pipeline[O] {
	return pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[O] {
		return &onceIter[I, O]{source: p.Iter(ctx), callbacks: callbacks}
	})
}

type onceIter[I, O any] struct {
	source    pipeline.Iterator[I]
	callbacks []func(I) (O, bool)
}

func (it *onceIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	for {
		item, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			var zero O
			return zero, false, err
		}
		for _, cb := range it.callbacks {
			if out, ok := cb(item); ok {
				return out, true, nil
			}
		}
	}
}

func (it *onceIter[I, O]) Close() error { return it.source.Close() }
