package pipeline

import (
	"context"
)

// derive builds a stage whose iterator wraps a fresh upstream iterator.
func derive[I, O any](p *Pipeline[I], wrap func(Iterator[I]) Iterator[O]) *Pipeline[O] {
	return FromFunc(func(ctx context.Context) Iterator[O] {
		return wrap(p.create(ctx))
	})
}

// Map converts every value with fn. An fn error ends the run.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return derive(p, func(src Iterator[I]) Iterator[O] {
		return &mapIter[I, O]{source: src, fn: fn}
	})
}

// FlatMap expands every value into an inner iterator and yields its values
// in order. An inner iterator is closed once drained, so only one is open.
func FlatMap[I, O any](p *Pipeline[I], fn func(context.Context, I) (Iterator[O], error)) *Pipeline[O] {
	return derive(p, func(src Iterator[I]) Iterator[O] {
		return &flatMapIter[I, O]{source: src, fn: fn}
	})
}

// Filter drops values for which keep is false.
func Filter[T any](p *Pipeline[T], keep func(T) bool) *Pipeline[T] {
	return TryFilter(p, func(v T) (bool, error) { return keep(v), nil })
}

// TryFilter is Filter with a fallible predicate; its error ends the run.
func TryFilter[T any](p *Pipeline[T], keep func(T) (bool, error)) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return &filterIter[T]{source: src, fn: keep}
	})
}

// Tap hands each value to fn before passing it downstream untouched.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return &tapIter[T]{source: src, fn: fn}
	})
}

// Reduce folds the whole stream into one value and yields it once, even
// for an empty stream. init is called per run.
func Reduce[T, R any](p *Pipeline[T], init func() R, fn func(R, T) R) *Pipeline[R] {
	return derive(p, func(src Iterator[T]) Iterator[R] {
		return &reduceIter[T, R]{source: src, acc: init(), fn: fn}
	})
}

// Concat yields the values of each pipeline in turn.
func Concat[T any](pipelines ...*Pipeline[T]) *Pipeline[T] {
	return FromFunc(func(ctx context.Context) Iterator[T] {
		parts := make([]Iterator[T], 0, len(pipelines))
		for _, p := range pipelines {
			parts = append(parts, p.create(ctx))
		}
		return &concatIter[T]{iters: parts}
	})
}

// Take stops after n values without pulling further upstream.
func Take[T any](p *Pipeline[T], n int) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return &takeIter[T]{source: src, remaining: n}
	})
}

type mapIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (O, error)
}

func (it *mapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		var zero O
		return zero, false, err
	}
	out, err := it.fn(ctx, val)
	if err != nil {
		var zero O
		return zero, false, err
	}
	return out, true, nil
}

func (it *mapIter[I, O]) Close() error { return it.source.Close() }

type flatMapIter[I, O any] struct {
	source  Iterator[I]
	fn      func(context.Context, I) (Iterator[O], error)
	current Iterator[O]
}

func (it *flatMapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	for {
		if it.current != nil {
			val, ok, err := it.current.Next(ctx)
			if err != nil {
				var zero O
				return zero, false, err
			}
			if ok {
				return val, true, nil
			}
			inner := it.current
			it.current = nil
			if err := inner.Close(); err != nil {
				var zero O
				return zero, false, err
			}
		}
		in, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			var zero O
			return zero, false, err
		}
		inner, err := it.fn(ctx, in)
		if err != nil {
			var zero O
			return zero, false, err
		}
		it.current = inner
	}
}

func (it *flatMapIter[I, O]) Close() error {
	var firstErr error
	if it.current != nil {
		firstErr = it.current.Close()
		it.current = nil
	}
	if err := it.source.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

type filterIter[T any] struct {
	source Iterator[T]
	fn     func(T) (bool, error)
}

func (it *filterIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		keep, err := it.fn(val)
		if err != nil {
			var zero T
			return zero, false, err
		}
		if keep {
			return val, true, nil
		}
	}
}

func (it *filterIter[T]) Close() error { return it.source.Close() }

type tapIter[T any] struct {
	source Iterator[T]
	fn     func(context.Context, T) error
}

func (it *tapIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return val, ok, err
	}
	if err := it.fn(ctx, val); err != nil {
		var zero T
		return zero, false, err
	}
	return val, true, nil
}

func (it *tapIter[T]) Close() error { return it.source.Close() }

type reduceIter[T, R any] struct {
	source Iterator[T]
	acc    R
	fn     func(R, T) R
	done   bool
}

func (it *reduceIter[T, R]) Next(ctx context.Context) (result R, ok bool, err error) {
	if it.done {
		var zero R
		return zero, false, nil
	}
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil {
			var zero R
			return zero, false, err
		}
		if !ok {
			it.done = true
			return it.acc, true, nil
		}
		it.acc = it.fn(it.acc, val)
	}
}

func (it *reduceIter[T, R]) Close() error { return it.source.Close() }

type concatIter[T any] struct {
	iters []Iterator[T]
	index int
}

func (it *concatIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for it.index < len(it.iters) {
		val, ok, err := it.iters[it.index].Next(ctx)
		if err != nil {
			return val, false, err
		}
		if ok {
			return val, true, nil
		}
		it.index++
	}
	var zero T
	return zero, false, nil
}

func (it *concatIter[T]) Close() error {
	var firstErr error
	for _, iter := range it.iters {
		if err := iter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type takeIter[T any] struct {
	source    Iterator[T]
	remaining int
}

func (it *takeIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if it.remaining <= 0 {
		var zero T
		return zero, false, nil
	}
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return val, false, err
	}
	it.remaining--
	return val, true, nil
}

func (it *takeIter[T]) Close() error { return it.source.Close() }
