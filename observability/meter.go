package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/logger"
	"github.com/kbukum/sawmill/pipeline"
)

// MeterConfig describes where run metrics are exported and how often.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint is the OTLP/HTTP collector as host:port.
	Endpoint string
	Insecure bool
	// Interval between exports. Zero keeps the SDK default.
	Interval time.Duration
}

// DefaultMeterConfig targets a collector on the local machine.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter builds a periodically exporting meter provider and makes it the
// global one. Shutting it down pushes the last readings.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	exportOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		exportOpts = append(exportOpts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, exportOpts...)
	if err != nil {
		return nil, errors.Misconfiguration("metric exporter", err.Error()).WithCause(err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion)
	if err != nil {
		return nil, errors.Misconfiguration("resource", err.Error()).WithCause(err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}
	reader := sdkmetric.NewPeriodicReader(exporter, readerOpts...)
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res))
	otel.SetMeterProvider(mp)

	logger.Debug("metrics enabled", logger.Fields(
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns a meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded while pipelines run.
type Metrics struct {
	linesRead     metric.Int64Counter
	recordsParsed metric.Int64Counter
	errorTotal    metric.Int64Counter
	runDuration   metric.Float64Histogram
}

// NewMetrics registers sawmill's instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	linesRead, err := meter.Int64Counter("sawmill.lines.read",
		metric.WithDescription("Lines pulled from sources"),
	)
	if err != nil {
		return nil, errors.Misconfiguration("sawmill.lines.read", err.Error()).WithCause(err)
	}

	recordsParsed, err := meter.Int64Counter("sawmill.records.parsed",
		metric.WithDescription("Records produced by the column parser"),
	)
	if err != nil {
		return nil, errors.Misconfiguration("sawmill.records.parsed", err.Error()).WithCause(err)
	}

	errorTotal, err := meter.Int64Counter("sawmill.errors",
		metric.WithDescription("Failed runs by error code and command"),
	)
	if err != nil {
		return nil, errors.Misconfiguration("sawmill.errors", err.Error()).WithCause(err)
	}

	runDuration, err := meter.Float64Histogram("sawmill.run.duration",
		metric.WithDescription("Duration of pipeline runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, errors.Misconfiguration("sawmill.run.duration", err.Error()).WithCause(err)
	}

	return &Metrics{
		linesRead:     linesRead,
		recordsParsed: recordsParsed,
		errorTotal:    errorTotal,
		runDuration:   runDuration,
	}, nil
}

// RecordLine counts one line read by the named source.
func (m *Metrics) RecordLine(ctx context.Context, source string) {
	m.linesRead.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordRecord counts one parsed record.
func (m *Metrics) RecordRecord(ctx context.Context) {
	m.recordsParsed.Add(ctx, 1)
}

// RecordRun records a finished run of command.
func (m *Metrics) RecordRun(ctx context.Context, command, status string, duration time.Duration) {
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", status),
	))
}

// RecordError counts a failed run by error code.
func (m *Metrics) RecordError(ctx context.Context, code, command string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("command", command),
	))
}

// CountLines passes lines through unchanged, counting each one. A nil
// Metrics returns p as is.
func (m *Metrics) CountLines(p *pipeline.Pipeline[string], source string) *pipeline.Pipeline[string] {
	if m == nil {
		return p
	}
	return pipeline.Tap(p, func(ctx context.Context, _ string) error {
		m.RecordLine(ctx, source)
		return nil
	})
}

// CountRecords passes items through unchanged, counting each as a parsed
// record. A nil Metrics returns p as is.
func CountRecords[T any](m *Metrics, p *pipeline.Pipeline[T]) *pipeline.Pipeline[T] {
	if m == nil {
		return p
	}
	return pipeline.Tap(p, func(ctx context.Context, _ T) error {
		m.RecordRecord(ctx)
		return nil
	})
}
