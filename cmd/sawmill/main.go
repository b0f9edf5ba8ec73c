// Command sawmill runs log-analysis pipelines from the command line.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/kbukum/sawmill/bootstrap"
	"github.com/kbukum/sawmill/config"
	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/logger"
	"github.com/kbukum/sawmill/observability"
	"github.com/kbukum/sawmill/version"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: sawmill [global flags] <command> [flags] [args]

commands:
  top      most frequent requests in the web server access logs
  freq     frequency report of lines from files or stdin
  count    number of lines from files or stdin
  cols     re-emit selected columns of each line
  run      stdout lines of shell commands
  version  print version information

global flags:
`

func main() {
	// A closed stdout then fails writes with EPIPE instead of killing us.
	// Notify rather than Ignore, so spawned commands keep the default.
	signal.Notify(make(chan os.Signal, 1), syscall.SIGPIPE)
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "sawmill: panic: %v\n%s", r, debug.Stack())
			os.Exit(exitError)
		}
	}()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// env is what a subcommand needs from the invocation.
type env struct {
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	color  bool
}

// usageError marks bad command-line input.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("sawmill", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	configFile := fs.String("config", "", "config file (default: ./sawmill.yml, then the user and system config dirs)")
	envFile := fs.String("env-file", "", "dotenv file with SAWMILL_* overrides (default: ./.env)")
	logLevel := fs.String("log-level", "", "log level: trace, debug, info, warn, error")
	logFormat := fs.String("log-format", "", "log format: console or json")
	endpoint := fs.String("otlp-endpoint", "", "OTLP/HTTP collector host:port; empty disables export")
	colorMode := fs.String("color", "", "colour report headers: auto, always, never")

	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}
	name, cmdArgs := rest[0], rest[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "sawmill: unknown command %q\n", name)
		fs.Usage()
		return exitUsage
	}

	cfg := config.Default()
	if err := config.Load(&cfg, config.WithConfigFile(*configFile), config.WithEnvFile(*envFile)); err != nil {
		return fail(stderr, err)
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = *logLevel
	}
	if fs.Changed("log-format") {
		cfg.Logging.Format = *logFormat
	}
	if fs.Changed("otlp-endpoint") {
		cfg.Observability.Endpoint = *endpoint
	}
	if fs.Changed("color") {
		cfg.Report.Color = *colorMode
	}

	cfg.ApplyDefaults()
	log := logger.NewWithWriter(&cfg.Logging, stderr)
	app, err := bootstrap.NewApp(&cfg,
		bootstrap.WithLogger(log),
		bootstrap.WithVersion(version.GetVersion()),
	)
	if err != nil {
		return fail(stderr, err)
	}
	app.OnStart(func(ctx context.Context) error {
		shutdown, err := observability.Setup(ctx, cfg.Observability, app.Name, app.Version)
		if err != nil {
			return err
		}
		app.OnStop(shutdown)
		return nil
	})

	out, color := colorOutput(cfg.Report.Color, stdout)
	e := &env{cfg: &cfg, stdin: stdin, stdout: out, stderr: stderr, color: color}

	err = app.RunTask(ctx, func(ctx context.Context) error {
		metrics, err := observability.NewMetrics(observability.Meter(app.Name))
		if err != nil {
			return err
		}
		runID := uuid.NewString()
		ctx = logger.ContextWithRunID(ctx, runID)
		rc := observability.NewRunContext(name, runID, metrics)
		ctx = observability.WithRunContext(ctx, rc)
		ctx, span := rc.StartSpan(ctx)

		runLog := logger.WithContext(ctx)
		runLog.Debug("run started", logger.Fields(logger.FieldOperation, name))
		err = cmd(ctx, e, cmdArgs)
		rc.End(ctx, span, err)
		if err != nil {
			runLog.Debug("run failed", logger.ErrorFields(name, err))
			return err
		}
		runLog.Info("run finished", logger.DurationFields(name, rc.Duration()))
		return nil
	})
	return fail(stderr, err)
}

// fail reports err and maps it to an exit code. A reader that went away
// is not an error.
func fail(stderr io.Writer, err error) int {
	var ue usageError
	switch {
	case err == nil, stderrors.Is(err, syscall.EPIPE), stderrors.Is(err, pflag.ErrHelp):
		return exitOK
	case stderrors.As(err, &ue):
		fmt.Fprintf(stderr, "sawmill: %v\n", err)
		return exitUsage
	case errors.HasCode(err, errors.ErrCodeMisconfiguration):
		fmt.Fprintf(stderr, "sawmill: %v\n", err)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "sawmill: %v\n", err)
		return exitError
	}
}
