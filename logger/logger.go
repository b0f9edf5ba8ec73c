package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatPretty  = "pretty"
)

// Logger is a zerolog logger carrying sawmill's field conventions.
type Logger struct {
	logger zerolog.Logger
}

// Init installs a logger built from cfg as the package logger.
func Init(cfg *Config) {
	cfg.ApplyDefaults()
	globalLogger = New(cfg)
}

// New writes to cfg.Output: stdout, or stderr for anything else.
func New(cfg *Config) *Logger {
	w := io.Writer(os.Stderr)
	if strings.EqualFold(cfg.Output, "stdout") {
		w = os.Stdout
	}
	return NewWithWriter(cfg, w)
}

// NewWithWriter ignores cfg.Output and writes to w. An unknown level falls
// back to info.
func NewWithWriter(cfg *Config, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	base := zerolog.New(w)
	if f := strings.ToLower(cfg.Format); f == FormatConsole || f == FormatPretty {
		base = zerolog.New(consoleWriter(cfg, w))
	}
	zc := base.Level(level).With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.Caller()
	}
	return &Logger{logger: zc.Logger()}
}

func NewDefault() *Logger {
	var cfg Config
	cfg.ApplyDefaults()
	return New(&cfg)
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

type contextKey struct{}

// ContextWithRunID tags ctx with the id of the pipeline run it belongs to.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, contextKey{}, runID)
}

func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok
}

// WithContext adds the run id of ctx, if there is one.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	id, ok := RunIDFromContext(ctx)
	if !ok {
		return l
	}
	return l.with(func(zc zerolog.Context) zerolog.Context { return zc.Str(FieldRunID, id) })
}

func (l *Logger) WithStage(name string) *Logger {
	return l.with(func(zc zerolog.Context) zerolog.Context { return zc.Str(FieldStage, name) })
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	return l.with(func(zc zerolog.Context) zerolog.Context { return zc.Fields(fields) })
}

func (l *Logger) WithError(err error) *Logger {
	return l.with(func(zc zerolog.Context) zerolog.Context { return zc.Err(err) })
}

func (l *Logger) with(add func(zerolog.Context) zerolog.Context) *Logger {
	return &Logger{logger: add(l.logger.With()).Logger()}
}

func (l *Logger) Debug(msg string, fields ...map[string]any) { emit(l.logger.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]any)  { emit(l.logger.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]any)  { emit(l.logger.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]any) { emit(l.logger.Error(), msg, fields) }

// emit is a no-op for a disabled level, where zerolog hands back nil.
func emit(event *zerolog.Event, msg string, fields []map[string]any) {
	if event == nil {
		return
	}
	for _, fm := range fields {
		event.Fields(fm)
	}
	event.Msg(msg)
}

var globalLogger *Logger

func SetGlobalLogger(l *Logger) { globalLogger = l }

// GetGlobalLogger returns the package logger, building a default one on
// first use.
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewDefault()
	}
	return globalLogger
}

func Debug(msg string, fields ...map[string]any) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]any)  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]any)  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]any) { GetGlobalLogger().Error(msg, fields...) }

func WithContext(ctx context.Context) *Logger { return GetGlobalLogger().WithContext(ctx) }
func WithStage(name string) *Logger           { return GetGlobalLogger().WithStage(name) }

// consoleWriter prints "15:04:05 [INF] message key:value".
func consoleWriter(cfg *Config, w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i any) string {
			tag, color := levelTag(strings.ToUpper(fmt.Sprint(i)))
			if cfg.NoColor || color == "" {
				return tag
			}
			return color + tag + "\033[0m"
		},
		FormatFieldName: func(i any) string { return fmt.Sprint(i) + ":" },
		FormatFieldValue: func(i any) string {
			if i == nil {
				return ""
			}
			return fmt.Sprint(i)
		},
	}
}

var levelTags = map[string][2]string{
	"TRACE": {"[TRC]", "\033[90m"},
	"DEBUG": {"[DBG]", "\033[36m"},
	"INFO":  {"[INF]", "\033[32m"},
	"WARN":  {"[WRN]", "\033[33m"},
	"ERROR": {"[ERR]", "\033[31m"},
	"FATAL": {"[FTL]", "\033[35m"},
}

func levelTag(lvl string) (tag, color string) {
	if t, ok := levelTags[lvl]; ok {
		return t[0], t[1]
	}
	return "[" + lvl + "]", ""
}
