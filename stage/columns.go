package stage

import (
	"context"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/pipeline"
)

// Record maps field names to the values parsed out of one line.
type Record map[string]string

// Discard in a column template drops the segment at that position.
const Discard = ""

// Split selects how Columns breaks a line into segments.
type Split int

const (
	// SplitSeparator splits on a fixed separator, at most len(template)
	// times, so the last field keeps any remaining separators.
	SplitSeparator Split = iota
	// SplitShell splits with POSIX shell-word rules and ignores the
	// separator. Quoted segments keep their spaces.
	SplitShell
)

func (s Split) String() string {
	switch s {
	case SplitSeparator:
		return "split"
	case SplitShell:
		return "shlex"
	default:
		return "unknown"
	}
}

// ParseSplit resolves a split strategy by name: "split" or "shlex".
func ParseSplit(name string) (Split, error) {
	switch name {
	case "split":
		return SplitSeparator, nil
	case "shlex":
		return SplitShell, nil
	default:
		return 0, errors.Misconfiguration("split", "unknown strategy "+name+`, want "split" or "shlex"`)
	}
}

// Columns parses each line into a Record by assigning its segments to the
// names in template, position by position. Positions named Discard are
// dropped. A line with fewer segments than the template fails the pull
// with FIELD_COUNT_MISMATCH; extra shell words are ignored.
func Columns(p *pipeline.Pipeline[string], sep string, template []string, split Split) (*pipeline.Pipeline[Record], error) {
	if len(template) == 0 {
		return nil, errors.Misconfiguration("template", "at least one column is required")
	}
	var segment func(string) ([]string, error)
	switch split {
	case SplitSeparator:
		if sep == "" {
			return nil, errors.Misconfiguration("sep", "separator must not be empty")
		}
		n := len(template)
		segment = func(line string) ([]string, error) {
			return strings.SplitN(line, sep, n), nil
		}
	case SplitShell:
		segment = shellSegments
	default:
		return nil, errors.Misconfiguration("split", "unknown strategy "+split.String())
	}

	template = append([]string(nil), template...)
	return pipeline.Map(p, func(_ context.Context, line string) (Record, error) {
		segments, err := segment(line)
		if err != nil {
			return nil, err
		}
		if len(segments) < len(template) {
			return nil, errors.FieldCountMismatch(len(template), len(segments), line)
		}
		record := make(Record, len(template))
		for i, name := range template {
			if name == Discard {
				continue
			}
			record[name] = segments[i]
		}
		return record, nil
	}), nil
}

// shellSegments splits a line into POSIX shell words. Operators such as
// & and ; are ordinary characters, and inside double quotes a backslash is
// kept unless it escapes $, `, ", \ or a newline.
func shellSegments(line string) ([]string, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return nil, errors.MalformedLine(line, err)
	}
	return words, nil
}

// Uncolumns joins the named fields of each record with sep. For records
// produced by Columns with SplitSeparator and no Discard slots this gives
// back the original line.
func Uncolumns(p *pipeline.Pipeline[Record], sep string, fields []string) (*pipeline.Pipeline[string], error) {
	if len(fields) == 0 {
		return nil, errors.Misconfiguration("fields", "at least one field is required")
	}
	fields = append([]string(nil), fields...)
	return pipeline.Map(p, func(_ context.Context, r Record) (string, error) {
		values := make([]string, len(fields))
		for i, name := range fields {
			v, ok := r[name]
			if !ok {
				return "", errors.UnknownField(name)
			}
			values[i] = v
		}
		return strings.Join(values, sep), nil
	}), nil
}

// Chomp strips one trailing line terminator ("\n" or "\r\n") from each line.
func Chomp(p *pipeline.Pipeline[string]) *pipeline.Pipeline[string] {
	return pipeline.Map(p, func(_ context.Context, line string) (string, error) {
		if trimmed, ok := strings.CutSuffix(line, "\r\n"); ok {
			return trimmed, nil
		}
		return strings.TrimSuffix(line, "\n"), nil
	})
}
