package process

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/kbukum/sawmill/errors"
	"github.com/kbukum/sawmill/logger"
)

const defaultGracePeriod = 5 * time.Second

// Handle is a running child process with its pipes. The caller owns it and
// must call Close (or Wait) to reap the child.
type Handle struct {
	// Stdin writes to the child's standard input. Nil when Command.Stdin was set.
	Stdin io.WriteCloser
	// Stdout reads the child's standard output.
	Stdout io.ReadCloser
	// Stderr reads the child's standard error. Nil when Command.Stderr was set.
	Stderr io.ReadCloser

	argv    []string
	cmd     *exec.Cmd
	started time.Time
	grace   time.Duration

	waitOnce sync.Once
	result   *Result
	waitErr  error
}

// Start spawns cmd with pipes to its standard streams. The child runs in its
// own process group so Terminate reaches anything it forks. Cancelling ctx
// sends SIGTERM, then SIGKILL after the grace period.
func Start(ctx context.Context, cmd Command) (*Handle, error) {
	argv := cmd.Argv()
	if cmd.Binary == "" {
		return nil, errors.Misconfiguration("command", "binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = defaultGracePeriod
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // running caller-supplied commands is the purpose of this package
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)

	h := &Handle{argv: argv, cmd: c, grace: gracePeriod}
	var err error
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	} else if h.Stdin, err = c.StdinPipe(); err != nil {
		return nil, errors.ProcessSpawn(argv, err)
	}
	if h.Stdout, err = c.StdoutPipe(); err != nil {
		return nil, errors.ProcessSpawn(argv, err)
	}
	if cmd.Stderr != nil {
		c.Stderr = cmd.Stderr
	} else if h.Stderr, err = c.StderrPipe(); err != nil {
		return nil, errors.ProcessSpawn(argv, err)
	}

	// Use process group so we can kill the entire tree
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// Don't let exec.CommandContext kill with SIGKILL immediately
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	if err := c.Start(); err != nil {
		return nil, errors.ProcessSpawn(argv, err)
	}
	h.started = time.Now()
	logger.WithStage("process").Debug("spawned", logger.Fields(logger.FieldArgv, argv, logger.FieldPID, c.Process.Pid))
	return h, nil
}

// Argv returns the argument vector the process was started with.
func (h *Handle) Argv() []string { return h.argv }

// Pid returns the operating-system process id.
func (h *Handle) Pid() int { return h.cmd.Process.Pid }

// Terminate sends SIGTERM to the child's process group. A process that has
// already exited is not an error.
func (h *Handle) Terminate() error {
	err := syscall.Kill(-h.cmd.Process.Pid, syscall.SIGTERM)
	if err != nil && !stderrors.Is(err, syscall.ESRCH) {
		return err
	}
	return nil
}

// Wait blocks until the child exits and returns its status. Output pipes
// are closed once the child exits, so read them to the end first. Wait may
// be called more than once; later calls return the first outcome.
func (h *Handle) Wait() (*Result, error) {
	h.waitOnce.Do(func() {
		err := h.cmd.Wait()
		h.result = &Result{
			ExitCode: h.cmd.ProcessState.ExitCode(),
			Duration: time.Since(h.started),
		}
		var exitErr *exec.ExitError
		if err != nil && !stderrors.As(err, &exitErr) && !stderrors.Is(err, exec.ErrWaitDelay) {
			h.waitErr = errors.ReadFailed(h.cmd.Path, err)
		}
		logger.WithStage("process").Debug("exited", logger.Fields(
			logger.FieldArgv, h.argv,
			logger.FieldPID, h.cmd.Process.Pid,
			"exit_code", h.result.ExitCode,
			logger.FieldDuration, h.result.Duration.Milliseconds(),
		))
	})
	return h.result, h.waitErr
}

// Stop closes the child's stdin and sends SIGTERM to its process group.
// A group still running after the grace period gets SIGKILL. Stop returns
// once the child has been reaped.
func (h *Handle) Stop() error {
	if h.Stdin != nil {
		_ = h.Stdin.Close()
	}
	if err := h.Terminate(); err != nil {
		return err
	}
	exited := make(chan struct{})
	go func() {
		_, _ = h.Wait()
		close(exited)
	}()
	timer := time.NewTimer(h.grace)
	defer timer.Stop()
	select {
	case <-exited:
	case <-timer.C:
		logger.WithStage("process").Warn("grace period expired, killing", logger.Fields(
			logger.FieldArgv, h.argv, logger.FieldPID, h.cmd.Process.Pid,
		))
		if err := syscall.Kill(-h.cmd.Process.Pid, syscall.SIGKILL); err != nil && !stderrors.Is(err, syscall.ESRCH) {
			return err
		}
		<-exited
	}
	_, err := h.Wait()
	return err
}

// Close closes the child's stdin and waits for it to exit. A non-zero exit
// status is reported by Wait, not by Close.
func (h *Handle) Close() error {
	if h.Stdin != nil {
		_ = h.Stdin.Close()
	}
	_, err := h.Wait()
	return err
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}
