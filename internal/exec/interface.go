// Package exec provides an interface for running juror commands.
package exec

import (
	"context"
	"fmt"
)

// Command describes one invocation of an external juror process.
type Command struct {
	// Name is the executable to run.
	Name string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. Empty means inherit.
	Dir string
	// Stdin is delivered to the process on its standard input.
	Stdin []byte
	// Env is appended to the inherited environment.
	Env []string
}

// Result captures the observable outcome of a finished process.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit status. Zero on success.
	ExitCode int
}

// StartError indicates the process could not be launched at all,
// as opposed to running and exiting non-zero.
type StartError struct {
	Name string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Name, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking process execution in tests.
//
// Run blocks until the process exits or ctx is done; cancelling ctx kills
// the process. A non-zero exit is reported through Result.ExitCode, not
// through the error. The error is non-nil only for launch failures
// (StartError) or context cancellation.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}
