package stage

import (
	"regexp"
	"strings"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/pipeline"
)

type matchOptions struct {
	invert bool
}

// MatchOption configures Grep and Find.
type MatchOption func(*matchOptions)

// Invert keeps the items that do not match when invert is true.
func Invert(invert bool) MatchOption {
	return func(o *matchOptions) { o.invert = invert }
}

// Inverted keeps the items that do not match.
func Inverted() MatchOption { return Invert(true) }

func buildMatchOptions(opts []MatchOption) matchOptions {
	var o matchOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Grep keeps the lines in which pattern matches anywhere. The pattern is
// compiled once; an invalid pattern is reported here rather than on pull.
func Grep(p *pipeline.Pipeline[string], pattern string, opts ...MatchOption) (*pipeline.Pipeline[string], error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	o := buildMatchOptions(opts)
	return pipeline.Filter(p, func(line string) bool {
		return re.MatchString(line) != o.invert
	}), nil
}

// GrepField is Grep applied to one field of each record. A record without
// the field stops the pipeline with UNKNOWN_FIELD.
func GrepField(p *pipeline.Pipeline[Record], field, pattern string, opts ...MatchOption) (*pipeline.Pipeline[Record], error) {
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	o := buildMatchOptions(opts)
	return pipeline.TryFilter(p, func(r Record) (bool, error) {
		v, ok := r[field]
		if !ok {
			return false, errors.UnknownField(field)
		}
		return re.MatchString(v) != o.invert, nil
	}), nil
}

// Find keeps the lines containing substr. It is cheaper than Grep when no
// regular expression features are needed.
func Find(p *pipeline.Pipeline[string], substr string, opts ...MatchOption) *pipeline.Pipeline[string] {
	o := buildMatchOptions(opts)
	return pipeline.Filter(p, func(line string) bool {
		return strings.Contains(line, substr) != o.invert
	})
}

// FindField is Find applied to one field of each record.
func FindField(p *pipeline.Pipeline[Record], field, substr string, opts ...MatchOption) *pipeline.Pipeline[Record] {
	o := buildMatchOptions(opts)
	return pipeline.TryFilter(p, func(r Record) (bool, error) {
		v, ok := r[field]
		if !ok {
			return false, errors.UnknownField(field)
		}
		return strings.Contains(v, substr) != o.invert, nil
	})
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Misconfiguration("pattern", err.Error()).WithCause(err)
	}
	return re, nil
}
