package process

import "time"

// Result holds the status of a finished subprocess.
type Result struct {
	// ExitCode is the process exit code. -1 if the process was killed.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}

// Success reports whether the process exited with status zero.
func (r *Result) Success() bool { return r != nil && r.ExitCode == 0 }
