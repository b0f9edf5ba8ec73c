package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/sawmill/errors"
)

// RunContext holds observability context for one CLI run.
type RunContext struct {
	Command   string
	RunID     string
	StartTime time.Time
	Metrics   *Metrics
}

// NewRunContext creates a run context starting now.
// If metrics is nil, metric recording is silently skipped.
func NewRunContext(command, runID string, metrics *Metrics) *RunContext {
	return &RunContext{
		Command:   command,
		RunID:     runID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

// runContextKey is the context key for RunContext.
type runContextKey struct{}

// WithRunContext stores a RunContext in the context.
func WithRunContext(ctx context.Context, rc *RunContext) context.Context {
	return context.WithValue(ctx, runContextKey{}, rc)
}

// RunContextFromContext retrieves the RunContext from context, or nil.
func RunContextFromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runContextKey{}).(*RunContext); ok {
		return rc
	}
	return nil
}

// MetricsFromContext returns the Metrics of the run in ctx, or nil.
func MetricsFromContext(ctx context.Context) *Metrics {
	if rc := RunContextFromContext(ctx); rc != nil {
		return rc.Metrics
	}
	return nil
}

// StartSpan starts the run's root span.
func (rc *RunContext) StartSpan(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanRun)
	span.SetAttributes(
		attribute.String(AttrCommand, rc.Command),
		attribute.String(AttrRunID, rc.RunID),
	)
	return ctx, span
}

// End ends the span and records the run's duration and outcome.
func (rc *RunContext) End(ctx context.Context, span trace.Span, err error) {
	duration := time.Since(rc.StartTime)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if rc.Metrics == nil {
		return
	}
	rc.Metrics.RecordRun(ctx, rc.Command, status, duration)
	if err != nil {
		code := "UNKNOWN"
		if appErr, ok := errors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		rc.Metrics.RecordError(ctx, code, rc.Command)
	}
}

// Duration returns the elapsed time since the run started.
func (rc *RunContext) Duration() time.Duration {
	return time.Since(rc.StartTime)
}
