package process

import (
	"io"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/kbukum/sawmill/errors"
)

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Stdin, when set, feeds the process and no stdin pipe is created.
	Stdin io.Reader
	// Stderr, when set, receives the process' standard error and no stderr
	// pipe is created.
	Stderr io.Writer
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Defaults to 5 seconds if zero.
	GracePeriod time.Duration
}

// Argv returns the full argument vector, binary first.
func (c Command) Argv() []string {
	return append([]string{c.Binary}, c.Args...)
}

// ParseCommand tokenizes a shell command line with POSIX shell-word rules.
// Quotes and backslash escapes are honoured; variables, backticks and shell
// operators are not interpreted, and an unquoted operator is rejected.
func ParseCommand(shell string) (Command, error) {
	parser := shellwords.NewParser()
	argv, err := parser.Parse(shell)
	if err != nil {
		return Command{}, errors.Misconfiguration("command", err.Error()).WithCause(err)
	}
	if parser.Position >= 0 {
		return Command{}, errors.Misconfiguration("command", "shell operators are not supported: "+shell)
	}
	return FromArgv(argv)
}

// FromArgv builds a Command from an argument vector.
func FromArgv(argv []string) (Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return Command{}, errors.Misconfiguration("command", "binary is required")
	}
	return Command{Binary: argv[0], Args: append([]string(nil), argv[1:]...)}, nil
}
