// Package observability provides OpenTelemetry tracing and metrics for
// pipeline runs.
//
// Nothing is exported unless an OTLP endpoint is configured:
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, "sawmill", version.GetVersion())
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("sawmill"))
//	rc := observability.NewRunContext("top", runID, metrics)
//	ctx, span := rc.StartSpan(ctx)
//	err = run(ctx)
//	rc.End(ctx, span, err)
//
// Metrics.CountLines and CountRecords tap a pipeline to count what flows
// through it without changing it.
package observability
