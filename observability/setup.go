package observability

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/sawmill/config"
)

// Setup installs OTLP trace and metric providers when cfg names an
// endpoint. The returned function flushes and shuts them down. With no
// endpoint the global no-op providers stay in place and shutdown does
// nothing.
func Setup(ctx context.Context, cfg config.ObservabilityConfig, serviceName, serviceVersion string) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := InitTracer(ctx, &TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Endpoint:       cfg.Endpoint,
		Insecure:       cfg.Insecure,
		SampleRate:     cfg.SampleRate,
	})
	if err != nil {
		return nil, err
	}

	mc := DefaultMeterConfig(serviceName)
	mc.ServiceVersion = serviceVersion
	mc.Endpoint = cfg.Endpoint
	mc.Insecure = cfg.Insecure
	mp, err := InitMeter(ctx, &mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		return stderrors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
	}, nil
}
