package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kbukum/sawmill/observability"
	"github.com/kbukum/sawmill/pipeline"
	"github.com/kbukum/sawmill/recipe"
	"github.com/kbukum/sawmill/sink"
	"github.com/kbukum/sawmill/source"
	"github.com/kbukum/sawmill/stage"
	"github.com/kbukum/sawmill/validation"
	"github.com/kbukum/sawmill/version"
)

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"top":     runTop,
	"freq":    runFreq,
	"count":   runCount,
	"cols":    runCols,
	"run":     runSystem,
	"version": runVersion,
}

func newFlagSet(name, synopsis string, e *env) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "usage: sawmill %s %s\n\nflags:\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	return nil
}

// lineFlags are the filters shared by the line-oriented commands.
type lineFlags struct {
	grep   string
	find   string
	invert bool
	chomp  bool
}

func addLineFlags(fs *pflag.FlagSet, chomp bool) *lineFlags {
	f := &lineFlags{}
	fs.StringVar(&f.grep, "grep", "", "keep lines matching this regular expression")
	fs.StringVar(&f.find, "find", "", "keep lines containing this substring")
	fs.BoolVarP(&f.invert, "invert", "v", false, "keep the lines --grep/--find would drop")
	fs.BoolVar(&f.chomp, "chomp", chomp, "strip line terminators before matching")
	return f
}

func (f *lineFlags) apply(lines *pipeline.Pipeline[string]) (*pipeline.Pipeline[string], error) {
	if f.chomp {
		lines = stage.Chomp(lines)
	}
	if f.grep != "" {
		var err error
		if lines, err = stage.Grep(lines, f.grep, stage.Invert(f.invert)); err != nil {
			return nil, err
		}
	}
	if f.find != "" {
		lines = stage.Find(lines, f.find, stage.Invert(f.invert))
	}
	return lines, nil
}

// inputLines reads the named files, gunzipping .gz ones, or stdin when no
// file is named.
func inputLines(ctx context.Context, e *env, files []string) *pipeline.Pipeline[string] {
	metrics := observability.MetricsFromContext(ctx)
	if len(files) == 0 {
		lines := source.Cat(source.Origins(source.NamedStream("stdin", e.stdin)))
		return metrics.CountLines(lines, "stdin")
	}
	return metrics.CountLines(source.AutoCat(pipeline.FromSlice(files)), "file")
}

// reportLimit maps the "zero means everything" convention of the config to
// the sink's.
func reportLimit(n int) int {
	if n == 0 {
		return -1
	}
	return n
}

func runTop(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("top", "[flags]", e)
	preset := fs.String("preset", e.cfg.Logs.Preset, "log directory preset: apache or nginx")
	dir := fs.String("dir", e.cfg.Logs.Dir, "log directory, overrides --preset")
	filter := fs.String("filter", e.cfg.Logs.Filter, "substring a log file path must contain")
	limit := fs.IntP("limit", "n", e.cfg.Report.Limit, "show the top N requests, 0 for all")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usageError{fmt.Errorf("top takes no arguments, got %q", fs.Args())}
	}
	v := validation.New().Min("limit", *limit, 0)
	if *dir == "" {
		v.Required("preset", *preset).OneOf("preset", *preset, recipe.Presets())
	}
	if err := v.Validate(); err != nil {
		return err
	}

	records, err := accessLogs(*preset, *dir, *filter)
	if err != nil {
		return err
	}
	entries, err := recipe.TopRequests(ctx, records, reportLimit(*limit))
	if err != nil {
		return err
	}
	return printReport(ctx, e, pipeline.FromSlice(sink.ReportLines(entries)))
}

func accessLogs(preset, dir, filter string) (*pipeline.Pipeline[stage.Record], error) {
	if dir != "" {
		return recipe.AccessLogs(recipe.WithDir(dir), recipe.WithFilter(filter))
	}
	build, err := recipe.Preset(preset)
	if err != nil {
		return nil, err
	}
	return build(recipe.WithFilter(filter))
}

func runFreq(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("freq", "[flags] [file...]", e)
	lf := addLineFlags(fs, true)
	limit := fs.IntP("limit", "n", e.cfg.Report.Limit, "show the top N lines, 0 for all")
	ascending := fs.Bool("asc", false, "rank the least frequent lines first")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := validation.New().Min("limit", *limit, 0).Validate(); err != nil {
		return err
	}

	lines, err := lf.apply(inputLines(ctx, e, fs.Args()))
	if err != nil {
		return err
	}
	opts := []sink.TopOption{sink.Limit(reportLimit(*limit))}
	if *ascending {
		opts = append(opts, sink.Ascending())
	}
	return printReport(ctx, e, sink.Report(lines, opts...))
}

func runCount(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("count", "[flags] [file...]", e)
	lf := addLineFlags(fs, false)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	lines, err := lf.apply(inputLines(ctx, e, fs.Args()))
	if err != nil {
		return err
	}
	n, err := sink.Count(ctx, lines)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.stdout, n)
	return err
}

func runCols(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("cols", "--template a,b,c [flags] [file...]", e)
	sep := fs.String("sep", " ", "input column separator")
	shell := fs.Bool("shell", false, "split lines into shell words instead of on --sep")
	template := fs.String("template", "", "comma-separated column names; leave a name empty to drop that column")
	fields := fs.String("fields", "", "comma-separated columns to emit (default: every named column)")
	ofs := fs.String("ofs", "\t", "output column separator")
	out := fs.StringP("out", "o", "", "write to this file instead of stdout")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	names := strings.Split(*template, ",")
	emit := namedColumns(names)
	if *fields != "" {
		emit = strings.Split(*fields, ",")
	}
	v := validation.New().
		Required("template", *template).
		Required("ofs", *ofs).
		Custom(*shell || *sep != "", "sep", "is required unless --shell is set")
	if *template != "" {
		v.Custom(len(emit) > 0, "fields", "the template names no column")
		for _, f := range emit {
			v.OneOf("fields", f, namedColumns(names))
		}
	}
	if err := v.Validate(); err != nil {
		return err
	}
	split := stage.SplitSeparator
	if *shell {
		split = stage.SplitShell
	}

	records, err := stage.Columns(stage.Chomp(inputLines(ctx, e, fs.Args())), *sep, names, split)
	if err != nil {
		return err
	}
	records = observability.CountRecords(observability.MetricsFromContext(ctx), records)
	lines, err := stage.Uncolumns(records, *ofs, emit)
	if err != nil {
		return err
	}
	if *out != "" {
		return sink.Write(ctx, lines, *out)
	}
	return printLines(ctx, e, lines)
}

func namedColumns(template []string) []string {
	var names []string
	for _, name := range template {
		if name != stage.Discard {
			names = append(names, name)
		}
	}
	return names
}

func runSystem(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("run", "[flags] 'command' ['command'...]", e)
	lf := addLineFlags(fs, false)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError{fmt.Errorf("run: at least one command is required")}
	}

	origins := make([]source.Origin, fs.NArg())
	for i, shell := range fs.Args() {
		origins[i] = source.Command(shell)
	}
	lines := observability.MetricsFromContext(ctx).CountLines(source.SystemStdout(source.Origins(origins...)), "command")
	lines, err := lf.apply(lines)
	if err != nil {
		return err
	}

	return copyLines(ctx, e.stdout, lines, lf.chomp)
}

func runVersion(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("version", "", e)
	short := fs.Bool("short", false, "print only the version string")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *short {
		_, err := fmt.Fprintln(e.stdout, version.GetVersion())
		return err
	}
	_, err := fmt.Fprintln(e.stdout, version.GetVersionInfo())
	return err
}
