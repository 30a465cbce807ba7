package juror

import (
	"context"
	"errors"
	"strings"

	"github.com/sanhedrin/sanhedrin/internal/exec"
)

// maxStderrDetail bounds the stderr excerpt carried in failure details.
const maxStderrDetail = 512

// CommandInvoker invokes KindCommand jurors as supervised child processes.
type CommandInvoker struct {
	runner exec.CommandRunner
}

// NewCommandInvoker creates a CommandInvoker on the given runner.
func NewCommandInvoker(runner exec.CommandRunner) *CommandInvoker {
	return &CommandInvoker{runner: runner}
}

// Invoke runs the juror command, writing the payload to its stdin and
// returning its stdout. Launch failures surface as SpawnFailureError and
// abnormal exits as AgentFailureError; context cancellation is passed
// through unchanged.
func (i *CommandInvoker) Invoke(ctx context.Context, def Definition, payload []byte) ([]byte, error) {
	res, err := i.runner.Run(ctx, exec.Command{
		Name:  def.Command,
		Args:  def.Args,
		Stdin: payload,
		Env:   def.Env,
	})

	var startErr *exec.StartError
	if errors.As(err, &startErr) {
		return nil, &SpawnFailureError{Juror: def.Name, Err: err}
	}
	if err != nil {
		// Context cancellation or an I/O failure after launch.
		if ctx.Err() != nil {
			return res.Stdout, ctx.Err()
		}
		return res.Stdout, &AgentFailureError{Juror: def.Name, ExitCode: res.ExitCode, Detail: err.Error()}
	}
	if res.ExitCode != 0 {
		return res.Stdout, &AgentFailureError{
			Juror:    def.Name,
			ExitCode: res.ExitCode,
			Detail:   truncateDetail(string(res.Stderr)),
		}
	}
	return res.Stdout, nil
}

func truncateDetail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderrDetail {
		return s[:maxStderrDetail]
	}
	return s
}

var _ Invoker = (*CommandInvoker)(nil)
