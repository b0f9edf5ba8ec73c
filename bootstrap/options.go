package bootstrap

import (
	"time"

	"github.com/kbukum/sawmill/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	name            string
	version         string
	logger          *logger.Logger
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithName sets the application name used for logs and telemetry.
func WithName(name string) Option {
	return func(o *appOptions) {
		o.name = name
	}
}

// WithVersion sets the application version reported in logs and telemetry.
func WithVersion(version string) Option {
	return func(o *appOptions) {
		o.version = version
	}
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration of the OnStop hooks.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}
