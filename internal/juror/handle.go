package juror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State represents the lifecycle state of a juror handle.
type State string

const (
	// StateIdle means the handle exists but has not spawned.
	StateIdle State = "idle"
	// StateStarting means spawn has been requested.
	StateStarting State = "starting"
	// StateRunning means the juror is executing.
	StateRunning State = "running"
	// StateCompleted means the juror produced output and exited cleanly.
	StateCompleted State = "completed"
	// StateFailed means the juror failed to start or exited abnormally.
	StateFailed State = "failed"
	// StateTimedOut means the juror exceeded its deadline and was killed.
	StateTimedOut State = "timed_out"
	// StateTerminated means the juror was forcibly ended from outside.
	StateTerminated State = "terminated"
)

// Terminal returns true for states that admit no further work.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut, StateTerminated:
		return true
	default:
		return false
	}
}

// Invoker executes one juror invocation to completion. Implementations
// must honor ctx cancellation by ending the invocation promptly.
type Invoker interface {
	Invoke(ctx context.Context, def Definition, payload []byte) (raw []byte, err error)
}

// invokeResult carries the outcome from the invocation goroutine.
type invokeResult struct {
	raw []byte
	err error
}

// Handle supervises one juror for one deliberation. A handle belongs to
// exactly one panel and is never reused.
type Handle struct {
	id  string
	def Definition

	invoker Invoker

	mu        sync.Mutex
	state     State
	startedAt time.Time
	cancel    context.CancelFunc

	resultCh chan invokeResult
}

// NewHandle creates an idle handle for the given juror definition.
func NewHandle(def Definition, invoker Invoker) *Handle {
	return &Handle{
		id:       uuid.New().String(),
		def:      def,
		invoker:  invoker,
		state:    StateIdle,
		resultCh: make(chan invokeResult, 1),
	}
}

// ID returns the handle's unique identity.
func (h *Handle) ID() string { return h.id }

// Name returns the juror's roster name.
func (h *Handle) Name() string { return h.def.Name }

// Definition returns the juror definition backing this handle.
func (h *Handle) Definition() Definition { return h.def }

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Spawn launches the juror and delivers the task payload. It returns
// immediately; the outcome is observed through Await. Spawning a handle
// twice is an error.
func (h *Handle) Spawn(ctx context.Context, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateIdle {
		return fmt.Errorf("handle %s already spawned (state %s)", h.id, h.state)
	}

	cctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.state = StateStarting
	h.startedAt = time.Now()

	go func() {
		h.setState(StateRunning)
		raw, err := h.invoker.Invoke(cctx, h.def, payload)
		h.resultCh <- invokeResult{raw: raw, err: err}
	}()

	return nil
}

// Await blocks until the juror finishes, the per-juror timeout elapses, or
// ctx is done. On timeout the juror is forcibly terminated — never left
// running — and ErrTimeout is returned. On ctx cancellation the juror is
// terminated and the context error is returned.
func (h *Handle) Await(ctx context.Context, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-h.resultCh:
		return h.finish(res)
	case <-timer.C:
		h.kill(StateTimedOut)
		return nil, ErrTimeout
	case <-ctx.Done():
		h.kill(StateTerminated)
		return nil, ctx.Err()
	}
}

// finish classifies a completed invocation.
func (h *Handle) finish(res invokeResult) ([]byte, error) {
	if res.err != nil {
		h.setState(StateFailed)
		return res.raw, res.err
	}
	h.setState(StateCompleted)
	return res.raw, nil
}

// Terminate forcibly ends the juror and frees its resources. It is safe
// to call from any state and is idempotent.
func (h *Handle) Terminate() {
	h.kill(StateTerminated)
}

// kill cancels the invocation and records the terminal state, unless the
// handle already reached one.
func (h *Handle) kill(to State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
	}
	if !h.state.Terminal() {
		h.state = to
	}
}

func (h *Handle) setState(s State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.Terminal() {
		return
	}
	h.state = s
}

// Elapsed returns how long the juror has been running since spawn.
func (h *Handle) Elapsed() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.startedAt.IsZero() {
		return 0
	}
	return time.Since(h.startedAt)
}
