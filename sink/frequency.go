package sink

import (
	"context"
	"maps"
	"reflect"
	"slices"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/pipeline"
)

// Table counts occurrences of equal items and remembers the order in which
// distinct items were first seen.
type Table[T comparable] struct {
	counts map[T]int
	order  []T
	total  int
}

// NewTable returns an empty table.
func NewTable[T comparable]() *Table[T] {
	return &Table[T]{counts: make(map[T]int)}
}

// Add counts one more occurrence of v.
func (t *Table[T]) Add(v T) {
	if _, seen := t.counts[v]; !seen {
		t.order = append(t.order, v)
	}
	t.counts[v]++
	t.total++
}

// Count returns the number of occurrences of v.
func (t *Table[T]) Count(v T) int { return t.counts[v] }

// Len returns the number of distinct items.
func (t *Table[T]) Len() int { return len(t.order) }

// Total returns the number of items added.
func (t *Table[T]) Total() int { return t.total }

// Keys returns the distinct items in first-seen order.
func (t *Table[T]) Keys() []T { return slices.Clone(t.order) }

// Map returns a copy of the counts.
func (t *Table[T]) Map() map[T]int { return maps.Clone(t.counts) }

// Frequency drains p into a table of item counts.
func Frequency[T comparable](ctx context.Context, p *pipeline.Pipeline[T]) (*Table[T], error) {
	table := NewTable[T]()
	err := pipeline.ForEach(ctx, p, func(_ context.Context, v T) error {
		table.Add(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// FrequencyAny is Frequency for items whose static type is not comparable.
// An item whose dynamic value cannot be a map key, such as a slice, fails
// with UNHASHABLE_ITEM.
func FrequencyAny(ctx context.Context, p *pipeline.Pipeline[any]) (*Table[any], error) {
	table := NewTable[any]()
	err := pipeline.ForEach(ctx, p, func(_ context.Context, v any) error {
		if v != nil && !reflect.ValueOf(v).Comparable() {
			return errors.UnhashableItem(v)
		}
		table.Add(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}
