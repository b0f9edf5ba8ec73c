package recipe

import (
	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/pipeline"
	"github.com/kbukum/sawmill/source"
	"github.com/kbukum/sawmill/stage"
)

// WebLogTemplate names the fields of an access-log line, in order.
var WebLogTemplate = []string{"ip", "ident", "authuser", "date", "request", "status", "bytes"}

// Default log directories of the presets.
const (
	ApacheDir = "/var/log/apache2"
	NginxDir  = "/var/log/nginx"
)

// DefaultFilter is the substring a log file name must contain by default.
const DefaultFilter = "access"

type accessOptions struct {
	dir    string
	filter string
}

// Option configures AccessLogs and the presets.
type Option func(*accessOptions)

// WithDir reads logs from dir.
func WithDir(dir string) Option {
	return func(o *accessOptions) {
		if dir != "" {
			o.dir = dir
		}
	}
}

// WithFilter keeps only files whose path contains filter, replacing
// DefaultFilter. An empty filter keeps every regular file.
func WithFilter(filter string) Option {
	return func(o *accessOptions) { o.filter = filter }
}

// AccessLogs parses every access log in a directory into records. The
// directory's regular files whose path contains the filter are read in
// listing order, gzip-compressed ones included.
func AccessLogs(opts ...Option) (*pipeline.Pipeline[stage.Record], error) {
	o := accessOptions{filter: DefaultFilter}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dir == "" {
		return nil, errors.Misconfiguration("dir", "a log directory is required")
	}
	return Parse(LogFiles(o.dir, o.filter))
}

// LogFiles lists the regular files in dir whose path contains filter.
func LogFiles(dir, filter string) *pipeline.Pipeline[string] {
	return stage.Find(stage.Files(source.ListDir(dir)), filter)
}

// Parse reads the given log files and parses each line with WebLogTemplate.
func Parse(paths *pipeline.Pipeline[string]) (*pipeline.Pipeline[stage.Record], error) {
	return ParseLines(source.AutoCat(paths))
}

// ParseLines parses access-log lines with WebLogTemplate.
func ParseLines(lines *pipeline.Pipeline[string]) (*pipeline.Pipeline[stage.Record], error) {
	return stage.Columns(lines, " ", WebLogTemplate, stage.SplitShell)
}

// ApacheLogs is AccessLogs defaulting to the Apache log directory.
func ApacheLogs(opts ...Option) (*pipeline.Pipeline[stage.Record], error) {
	return AccessLogs(append([]Option{WithDir(ApacheDir)}, opts...)...)
}

// NginxLogs is AccessLogs defaulting to the nginx log directory.
func NginxLogs(opts ...Option) (*pipeline.Pipeline[stage.Record], error) {
	return AccessLogs(append([]Option{WithDir(NginxDir)}, opts...)...)
}

// Presets lists the names Preset accepts.
func Presets() []string {
	return []string{"apache", "nginx"}
}

// Preset returns the recipe registered under name: "apache" or "nginx".
func Preset(name string) (func(...Option) (*pipeline.Pipeline[stage.Record], error), error) {
	switch name {
	case "apache":
		return ApacheLogs, nil
	case "nginx":
		return NginxLogs, nil
	default:
		return nil, errors.Misconfiguration("preset", "unknown preset "+name+`, want "apache" or "nginx"`)
	}
}
