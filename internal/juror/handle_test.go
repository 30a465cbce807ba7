package juror

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeInvoker simulates juror invocations for handle tests.
type fakeInvoker struct {
	raw   []byte
	err   error
	delay time.Duration
}

func (f *fakeInvoker) Invoke(ctx context.Context, def Definition, payload []byte) ([]byte, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.raw, f.err
}

func testDef() Definition {
	return Definition{Name: "tester", Kind: KindCommand, Command: "true"}
}

func TestHandle_Completes(t *testing.T) {
	h := NewHandle(testDef(), &fakeInvoker{raw: []byte(`{"decision":"approve"}`)})

	if h.State() != StateIdle {
		t.Errorf("new handle should be idle, got %s", h.State())
	}
	if err := h.Spawn(context.Background(), []byte("payload")); err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	raw, err := h.Await(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("await failed: %v", err)
	}
	if string(raw) != `{"decision":"approve"}` {
		t.Errorf("unexpected output: %s", raw)
	}
	if h.State() != StateCompleted {
		t.Errorf("state should be completed, got %s", h.State())
	}
}

func TestHandle_SpawnTwiceRejected(t *testing.T) {
	h := NewHandle(testDef(), &fakeInvoker{})

	if err := h.Spawn(context.Background(), nil); err != nil {
		t.Fatalf("first spawn failed: %v", err)
	}
	if err := h.Spawn(context.Background(), nil); err == nil {
		t.Error("second spawn should be rejected")
	}
}

func TestHandle_Timeout(t *testing.T) {
	h := NewHandle(testDef(), &fakeInvoker{delay: 5 * time.Second})

	if err := h.Spawn(context.Background(), nil); err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	start := time.Now()
	_, err := h.Await(context.Background(), 50*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("await should return promptly at timeout, took %s", elapsed)
	}
	if h.State() != StateTimedOut {
		t.Errorf("state should be timed_out, got %s", h.State())
	}
}

func TestHandle_AgentFailure(t *testing.T) {
	failure := &AgentFailureError{Juror: "tester", ExitCode: 2}
	h := NewHandle(testDef(), &fakeInvoker{err: failure})

	if err := h.Spawn(context.Background(), nil); err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	_, err := h.Await(context.Background(), time.Second)
	var afe *AgentFailureError
	if !errors.As(err, &afe) {
		t.Fatalf("expected AgentFailureError, got %v", err)
	}
	if h.State() != StateFailed {
		t.Errorf("state should be failed, got %s", h.State())
	}
}

func TestHandle_SpawnFailure(t *testing.T) {
	failure := &SpawnFailureError{Juror: "tester", Err: errors.New("no such file")}
	h := NewHandle(testDef(), &fakeInvoker{err: failure})

	if err := h.Spawn(context.Background(), nil); err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	_, err := h.Await(context.Background(), time.Second)
	var sfe *SpawnFailureError
	if !errors.As(err, &sfe) {
		t.Fatalf("expected SpawnFailureError, got %v", err)
	}
	if h.State() != StateFailed {
		t.Errorf("state should be failed, got %s", h.State())
	}
}

func TestHandle_TerminateIdempotent(t *testing.T) {
	h := NewHandle(testDef(), &fakeInvoker{delay: 5 * time.Second})

	// Safe before spawn, and repeatable.
	h.Terminate()
	h.Terminate()

	if h.State() != StateTerminated {
		t.Errorf("handle should be terminated, got %s", h.State())
	}
	if err := h.Spawn(context.Background(), nil); err == nil {
		t.Error("spawn after terminate should be rejected")
	}
}

func TestHandle_ContextCancelTerminates(t *testing.T) {
	h := NewHandle(testDef(), &fakeInvoker{delay: 5 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	if err := h.Spawn(ctx, nil); err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := h.Await(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if h.State() != StateTerminated {
		t.Errorf("state should be terminated, got %s", h.State())
	}
}
