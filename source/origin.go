package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kbukum/sawmill/pipeline"
	"github.com/kbukum/sawmill/process"
)

// Kind tells which variant an Origin holds.
type Kind int

const (
	// KindPath is a filesystem path opened by the source.
	KindPath Kind = iota
	// KindStream is an already-open reader owned by the caller.
	KindStream
	// KindCommand is an external command spawned by the source.
	KindCommand
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindStream:
		return "stream"
	case KindCommand:
		return "command"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Origin describes where lines come from.
type Origin struct {
	kind   Kind
	path   string
	stream io.Reader
	name   string
	shell  string
	argv   []string
}

// Path returns an Origin for the file at path.
func Path(path string) Origin {
	return Origin{kind: KindPath, path: path}
}

// Stream returns an Origin reading from r. The source never closes r.
func Stream(r io.Reader) Origin {
	return NamedStream("<stream>", r)
}

// NamedStream is Stream with a name used in logs and errors.
func NamedStream(name string, r io.Reader) Origin {
	return Origin{kind: KindStream, stream: r, name: name}
}

// Command returns an Origin for a shell command line. The line is split
// with POSIX shell-word rules when the process is spawned.
func Command(shell string) Origin {
	return Origin{kind: KindCommand, shell: shell}
}

// Argv returns an Origin for a command given as an argument vector.
func Argv(args ...string) Origin {
	return Origin{kind: KindCommand, argv: append([]string(nil), args...)}
}

// Kind returns the variant held by o.
func (o Origin) Kind() Kind { return o.kind }

// String describes the origin for logs and error messages.
func (o Origin) String() string {
	switch o.kind {
	case KindPath:
		return o.path
	case KindStream:
		return o.name
	default:
		if o.argv != nil {
			return strings.Join(o.argv, " ")
		}
		return o.shell
	}
}

// command resolves a KindCommand origin into a process.Command.
func (o Origin) command() (process.Command, error) {
	if o.argv != nil {
		return process.FromArgv(o.argv)
	}
	return process.ParseCommand(o.shell)
}

// Paths lifts a sequence of paths into a sequence of Path origins.
func Paths(paths *pipeline.Pipeline[string]) *pipeline.Pipeline[Origin] {
	return pipeline.Map(paths, func(_ context.Context, p string) (Origin, error) {
		return Path(p), nil
	})
}

// Origins is a convenience for a fixed list of origins.
func Origins(origins ...Origin) *pipeline.Pipeline[Origin] {
	return pipeline.Of(origins...)
}
