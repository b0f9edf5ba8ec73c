package pipeline

import (
	"context"
	"iter"
)

// Iterator is pulled one value at a time by the stage downstream of it.
type Iterator[T any] interface {
	// Next yields the following value, or ok == false once the stream ends.
	Next(ctx context.Context) (T, bool, error)
	// Close releases open files, processes or inner iterators.
	// It must be safe to call whether or not the iterator was exhausted.
	Close() error
}

// Pipeline is a lazy recipe for an iterator chain.
// No work happens until values are pulled via Collect, Drain, ForEach or All.
// Every pull builds a fresh iterator chain, so one Pipeline can be run many
// times without runs observing each other.
type Pipeline[T any] struct {
	create func(ctx context.Context) Iterator[T]
}

// Runnable is a pipeline bound to its sink.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run pulls until the stream ends or a stage or the sink fails.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// From adopts an iterator built elsewhere.
// The iterator is single-use: only the first run of the pipeline sees values.
func From[T any](iter Iterator[T]) *Pipeline[T] {
	return FromFunc(func(context.Context) Iterator[T] { return iter })
}

// FromSlice streams items in order. Each run starts from the first item.
func FromSlice[T any](items []T) *Pipeline[T] {
	return FromFunc(func(context.Context) Iterator[T] { return SliceIterator(items) })
}

// Of is FromSlice over its arguments.
func Of[T any](items ...T) *Pipeline[T] {
	return FromSlice(items)
}

// FromFunc calls fn once per run to build the source iterator.
func FromFunc[T any](fn func(ctx context.Context) Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{create: fn}
}

// Drain binds p to sink. Nothing is pulled until Run.
func Drain[T any](p *Pipeline[T], sink func(context.Context, T) error) *Runnable {
	return &Runnable{
		run: func(ctx context.Context) error {
			iter := p.create(ctx)
			defer iter.Close()
			for {
				val, ok, err := iter.Next(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if err := sink(ctx, val); err != nil {
					return err
				}
			}
		},
	}
}

// Collect runs p and gathers every value.
// On error it returns the values pulled before the failure.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	iter := p.create(ctx)
	defer iter.Close()
	var result []T
	for {
		val, ok, err := iter.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}

// ForEach runs p, handing each value to fn.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return Drain(p, fn).Run(ctx)
}

// All adapts the pipeline to a range-over-func sequence. An error ends the
// sequence as the final pair. Breaking out of the loop closes the chain.
//
//	for line, err := range pipeline.All(ctx, lines) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(line)
//	}
func All[T any](ctx context.Context, p *Pipeline[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		it := p.create(ctx)
		defer it.Close()
		for {
			val, ok, err := it.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok || !yield(val, nil) {
				return
			}
		}
	}
}

// Iter builds a fresh chain for manual pulling. The caller closes it.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	return p.create(ctx)
}

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

// SliceIterator returns an Iterator over items. Useful inside FlatMap.
func SliceIterator[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}
