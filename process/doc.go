// Package process spawns child processes with pipes to their standard
// streams.
//
// ParseCommand turns a shell command line into a Command using POSIX
// shell-word splitting; no shell is involved. Start returns a Handle whose
// Stdout can be read incrementally, which is what the line sources build on.
package process
