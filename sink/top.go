package sink

import (
	"cmp"
	"context"
	"slices"

	"github.com/kbukum/sawmill/pipeline"
)

// Entry is one ranked item of a frequency table.
type Entry[T any] struct {
	Value T
	Count int
}

type topOptions struct {
	limit     int
	ascending bool
}

// TopOption configures Top, TopFrequency and Report.
type TopOption func(*topOptions)

// Limit keeps at most n entries. A negative n keeps them all.
func Limit(n int) TopOption {
	return func(o *topOptions) { o.limit = n }
}

// Ascending ranks the least frequent items first.
func Ascending() TopOption {
	return func(o *topOptions) { o.ascending = true }
}

func buildTopOptions(opts []TopOption) topOptions {
	o := topOptions{limit: -1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Top ranks the entries of table by count, most frequent first unless
// Ascending is given. Items with equal counts stay in first-seen order.
func Top[T comparable](table *Table[T], opts ...TopOption) []Entry[T] {
	o := buildTopOptions(opts)
	entries := make([]Entry[T], 0, table.Len())
	for _, v := range table.order {
		entries = append(entries, Entry[T]{Value: v, Count: table.counts[v]})
	}
	slices.SortStableFunc(entries, func(a, b Entry[T]) int {
		if o.ascending {
			return cmp.Compare(a.Count, b.Count)
		}
		return cmp.Compare(b.Count, a.Count)
	})
	if o.limit >= 0 && o.limit < len(entries) {
		entries = entries[:o.limit]
	}
	return entries
}

// TopFrequency drains p and ranks its items.
func TopFrequency[T comparable](ctx context.Context, p *pipeline.Pipeline[T], opts ...TopOption) ([]Entry[T], error) {
	table, err := Frequency(ctx, p)
	if err != nil {
		return nil, err
	}
	return Top(table, opts...), nil
}
