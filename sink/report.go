package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/sawmill/pipeline"
)

const minCountWidth = len("count")

// Report ranks the items of p and yields a printable table:
//
//	count value
//	===========
//	    3 "GET /"
//
// The count column is as wide as the largest count, and never narrower than
// the header. The input is drained on the first pull, not before.
func Report[T comparable](p *pipeline.Pipeline[T], opts ...TopOption) *pipeline.Pipeline[string] {
	return pipeline.FromFunc(func(_ context.Context) pipeline.Iterator[string] {
		return &reportIter[T]{source: p, opts: opts}
	})
}

// ReportLines formats already ranked entries the way Report does.
func ReportLines[T any](entries []Entry[T]) []string {
	width := minCountWidth
	for _, e := range entries {
		width = max(width, len(strconv.Itoa(e.Count)))
	}
	lines := make([]string, 0, len(entries)+2)
	lines = append(lines,
		fmt.Sprintf("%-*s value", width, "count"),
		strings.Repeat("=", width+len(" value")),
	)
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%*d %s", width, e.Count, Repr(e.Value)))
	}
	return lines
}

// Repr renders a value for a report row: strings and Stringers quoted,
// anything else in Go syntax.
func Repr(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case fmt.Stringer:
		return strconv.Quote(x.String())
	default:
		return fmt.Sprintf("%#v", v)
	}
}

type reportIter[T comparable] struct {
	source *pipeline.Pipeline[T]
	opts   []TopOption
	lines  []string
	built  bool
}

func (it *reportIter[T]) Next(ctx context.Context) (string, bool, error) {
	if !it.built {
		it.built = true
		entries, err := TopFrequency(ctx, it.source, it.opts...)
		if err != nil {
			return "", false, err
		}
		it.lines = ReportLines(entries)
	}
	if len(it.lines) == 0 {
		return "", false, nil
	}
	line := it.lines[0]
	it.lines = it.lines[1:]
	return line, true, nil
}

func (it *reportIter[T]) Close() error {
	it.lines = nil
	return nil
}
