package juror

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sanhedrin/sanhedrin/internal/exec"
	"github.com/sanhedrin/sanhedrin/pkg/models"
)

// fakeRunner returns a canned exec result.
type fakeRunner struct {
	res exec.Result
	err error

	gotCmd exec.Command
}

func (f *fakeRunner) Run(ctx context.Context, cmd exec.Command) (exec.Result, error) {
	f.gotCmd = cmd
	return f.res, f.err
}

func TestCommandInvoker_Success(t *testing.T) {
	runner := &fakeRunner{res: exec.Result{Stdout: []byte("verdict here"), ExitCode: 0}}
	inv := NewCommandInvoker(runner)

	def := Definition{Name: "a", Command: "judge", Args: []string{"--json"}}
	raw, err := inv.Invoke(context.Background(), def, []byte("the task"))
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if string(raw) != "verdict here" {
		t.Errorf("unexpected output: %s", raw)
	}
	if runner.gotCmd.Name != "judge" || string(runner.gotCmd.Stdin) != "the task" {
		t.Errorf("payload not delivered: %+v", runner.gotCmd)
	}
}

func TestCommandInvoker_SpawnFailure(t *testing.T) {
	runner := &fakeRunner{err: &exec.StartError{Name: "judge", Err: errors.New("not found")}}
	inv := NewCommandInvoker(runner)

	_, err := inv.Invoke(context.Background(), Definition{Name: "a", Command: "judge"}, nil)
	var sfe *SpawnFailureError
	if !errors.As(err, &sfe) {
		t.Fatalf("expected SpawnFailureError, got %v", err)
	}
}

func TestCommandInvoker_NonZeroExit(t *testing.T) {
	runner := &fakeRunner{res: exec.Result{Stderr: []byte("boom\n"), ExitCode: 3}}
	inv := NewCommandInvoker(runner)

	_, err := inv.Invoke(context.Background(), Definition{Name: "a", Command: "judge"}, nil)
	var afe *AgentFailureError
	if !errors.As(err, &afe) {
		t.Fatalf("expected AgentFailureError, got %v", err)
	}
	if afe.ExitCode != 3 {
		t.Errorf("exit code should be 3, got %d", afe.ExitCode)
	}
	if afe.Detail != "boom" {
		t.Errorf("stderr should be carried as detail, got %q", afe.Detail)
	}
}

func TestInvokerSet_RoutesByKind(t *testing.T) {
	cmdRunner := &fakeRunner{res: exec.Result{Stdout: []byte("from-command")}}
	set := NewInvokerSet(NewCommandInvoker(cmdRunner), nil)

	raw, err := set.Invoke(context.Background(), Definition{Name: "a", Kind: KindCommand, Command: "judge"}, nil)
	if err != nil {
		t.Fatalf("command invoke failed: %v", err)
	}
	if string(raw) != "from-command" {
		t.Errorf("unexpected output: %s", raw)
	}

	// Anthropic juror without API access fails to spawn, never panics.
	_, err = set.Invoke(context.Background(), Definition{Name: "b", Kind: KindAnthropic}, nil)
	var sfe *SpawnFailureError
	if !errors.As(err, &sfe) {
		t.Fatalf("expected SpawnFailureError, got %v", err)
	}
}

func TestBuildPayload(t *testing.T) {
	task := models.Task{
		Prompt:  "judge this change",
		Context: map[string]string{"repo": "sanhedrin"},
	}
	payload := string(BuildPayload(task))

	for _, want := range []string{"approve", "reject", "abstain", "judge this change", "repo: sanhedrin"} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q:\n%s", want, payload)
		}
	}
}
