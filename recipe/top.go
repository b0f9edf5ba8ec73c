package recipe

import (
	"context"

	"github.com/kbukum/sawmill/observability"
	"github.com/kbukum/sawmill/pipeline"
	"github.com/kbukum/sawmill/sink"
	"github.com/kbukum/sawmill/stage"
)

// TopRequests ranks the request lines of records by frequency and returns
// at most limit entries. A negative limit returns them all.
func TopRequests(ctx context.Context, records *pipeline.Pipeline[stage.Record], limit int) ([]sink.Entry[string], error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTopRequests)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrLimit, limit)

	records = observability.CountRecords(observability.MetricsFromContext(ctx), records)
	top, err := sink.TopFrequency(ctx, stage.Dig(records, "request"), sink.Limit(limit))
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrCount, len(top))
	return top, nil
}

// RequestReport is TopRequests rendered as report lines.
func RequestReport(records *pipeline.Pipeline[stage.Record], limit int) *pipeline.Pipeline[string] {
	return sink.Report(stage.Dig(records, "request"), sink.Limit(limit))
}
