// Package juror provides supervised juror handles: spawn, output capture,
// timeout enforcement, and forced termination of the external judging
// processes that make up a panel.
package juror

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned by Await when a juror exceeds its individual
// deadline. The handle is forcibly terminated before this is returned.
var ErrTimeout = errors.New("juror timed out")

// SpawnFailureError indicates the juror process could not start.
// Local to one handle; it never fails the panel.
type SpawnFailureError struct {
	Juror string
	Err   error
}

func (e *SpawnFailureError) Error() string {
	return fmt.Sprintf("juror %s failed to spawn: %v", e.Juror, e.Err)
}

func (e *SpawnFailureError) Unwrap() error { return e.Err }

// AgentFailureError indicates the juror ran but exited abnormally.
type AgentFailureError struct {
	Juror    string
	ExitCode int
	Detail   string
}

func (e *AgentFailureError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("juror %s failed (exit %d): %s", e.Juror, e.ExitCode, e.Detail)
	}
	return fmt.Sprintf("juror %s failed (exit %d)", e.Juror, e.ExitCode)
}
