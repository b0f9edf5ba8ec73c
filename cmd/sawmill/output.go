package main

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/kbukum/sawmill/pipeline"
)

const (
	headerStart = "\x1b[1;36m"
	headerEnd   = "\x1b[0m"

	// reportHeaderLines is the column title plus its underline.
	reportHeaderLines = 2
)

// colorOutput decides whether report headers are coloured and returns the
// writer to print them through. "auto" colours only a terminal.
func colorOutput(mode string, w io.Writer) (io.Writer, bool) {
	f, isFile := w.(*os.File)
	switch mode {
	case "never":
		return w, false
	case "always":
		if isFile {
			return colorable.NewColorable(f), true
		}
		return w, true
	default:
		if isFile && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			return colorable.NewColorable(f), true
		}
		return w, false
	}
}

// printReport prints report lines, colouring the header when enabled.
func printReport(ctx context.Context, e *env, report *pipeline.Pipeline[string]) error {
	w := bufio.NewWriter(e.stdout)
	n := 0
	for line, err := range pipeline.All(ctx, report) {
		if err != nil {
			return err
		}
		if e.color && n < reportHeaderLines {
			line = headerStart + line + headerEnd
		}
		if err := writeLine(w, line, true); err != nil {
			return err
		}
		n++
	}
	return w.Flush()
}

// printLines prints each line followed by a newline.
func printLines(ctx context.Context, e *env, lines *pipeline.Pipeline[string]) error {
	return copyLines(ctx, e.stdout, lines, true)
}

// copyLines writes lines to out. A failed write ends the loop, which closes
// the upstream chain, so a reader that went away stops the pipeline.
func copyLines(ctx context.Context, out io.Writer, lines *pipeline.Pipeline[string], newline bool) error {
	w := bufio.NewWriter(out)
	for line, err := range pipeline.All(ctx, lines) {
		if err != nil {
			return err
		}
		if err := writeLine(w, line, newline); err != nil {
			return err
		}
	}
	return w.Flush()
}

// writeLine reports a failed write of out as soon as w flushes into it.
func writeLine(w *bufio.Writer, line string, newline bool) error {
	if _, err := w.WriteString(line); err != nil {
		return err
	}
	if newline {
		return w.WriteByte('\n')
	}
	return nil
}
