package source

import (
	"context"
	"os"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/logger"
	"github.com/kbukum/sawmill/pipeline"
	"github.com/kbukum/sawmill/process"
)

// System spawns each command origin with pipes to its standard streams and
// yields the running handle. Handles belong to the caller, who must Close
// them. A command that cannot be started fails the pull that reached it.
func System(origins *pipeline.Pipeline[Origin]) *pipeline.Pipeline[*process.Handle] {
	return pipeline.Map(origins, func(ctx context.Context, o Origin) (*process.Handle, error) {
		cmd, err := commandOf("system", o)
		if err != nil {
			return nil, err
		}
		return process.Start(ctx, cmd)
	})
}

// SystemStdout yields the standard-output lines of each command origin in
// turn. The child's stderr passes through to ours and its stdin is closed
// at once. Each child is reaped before the next one starts; a child whose
// output is abandoned early is sent SIGTERM first.
func SystemStdout(origins *pipeline.Pipeline[Origin]) *pipeline.Pipeline[string] {
	return pipeline.FlatMap(origins, func(ctx context.Context, o Origin) (pipeline.Iterator[string], error) {
		cmd, err := commandOf("system_stdout", o)
		if err != nil {
			return nil, err
		}
		cmd.Stderr = os.Stderr
		h, err := process.Start(ctx, cmd)
		if err != nil {
			return nil, err
		}
		h.Stdin.Close()
		return &processLines{lineIter: newLineIter(o.String(), h.Stdout, nil), handle: h}, nil
	})
}

func commandOf(stage string, o Origin) (process.Command, error) {
	if o.kind != KindCommand {
		return process.Command{}, errors.Misconfiguration("origin", stage+" cannot run a "+o.kind.String()+" origin")
	}
	return o.command()
}

// processLines reads a child's stdout and reaps the child on Close.
type processLines struct {
	*lineIter
	handle *process.Handle
}

func (it *processLines) Close() error {
	it.done = true
	if it.eof {
		return it.handle.Close()
	}
	if err := it.handle.Stop(); err != nil {
		logger.WithStage("system_stdout").Warn("stop failed", logger.Fields(
			logger.FieldPID, it.handle.Pid(), logger.FieldError, err.Error(),
		))
		return it.handle.Close()
	}
	return nil
}
