package models

import (
	"fmt"
	"time"
)

// DeliberationState represents the lifecycle state of a deliberation.
type DeliberationState string

const (
	// StatePending means the task is accepted but not yet dispatched.
	StatePending DeliberationState = "pending"
	// StateInProgress means panel dispatch is underway.
	StateInProgress DeliberationState = "in_progress"
	// StateCompleted means a ruling was computed.
	StateCompleted DeliberationState = "completed"
	// StateFailed means the deliberation could not produce a ruling,
	// e.g. no juror of a minimum viable panel started.
	StateFailed DeliberationState = "failed"
	// StateCancelled means the caller aborted before completion.
	StateCancelled DeliberationState = "cancelled"
)

// Valid returns true if the state is a known value.
func (s DeliberationState) Valid() bool {
	switch s {
	case StatePending, StateInProgress, StateCompleted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true for states that admit no further transitions.
func (s DeliberationState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// validTransitions maps each state to the states it may move to.
var validTransitions = map[DeliberationState][]DeliberationState{
	StatePending:    {StateInProgress, StateCancelled, StateFailed},
	StateInProgress: {StateCompleted, StateFailed, StateCancelled},
	StateCompleted:  {},
	StateFailed:     {},
	StateCancelled:  {},
}

// CanTransition reports whether moving from one state to another is legal.
func CanTransition(from, to DeliberationState) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError is returned when a state transition is rejected.
type InvalidTransitionError struct {
	From DeliberationState
	To   DeliberationState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q (valid: %v)", e.From, e.To, validTransitions[e.From])
}

// StateTransition records one state change with its reason.
type StateTransition struct {
	From   DeliberationState `json:"from,omitempty"`
	To     DeliberationState `json:"to"`
	Reason string            `json:"reason,omitempty"`
	At     time.Time         `json:"at"`
}

// Deliberation is the aggregate root: one task, one panel, the collected
// verdicts and, once complete, one ruling. It carries no locking of its
// own; the registry synchronizes access and only the owning orchestrator
// writes its terminal state.
type Deliberation struct {
	// ID uniquely identifies the deliberation.
	ID string `json:"id"`
	// Task is the submitted task, immutable.
	Task Task `json:"task"`
	// State is the current lifecycle state.
	State DeliberationState `json:"state"`
	// Transitions is the state history, oldest first.
	Transitions []StateTransition `json:"transitions"`
	// Ruling is set once the deliberation completes. At most one.
	Ruling *Ruling `json:"ruling,omitempty"`
	// Err describes the failure when State is StateFailed.
	Err string `json:"error,omitempty"`
	// SubmittedAt is when the task entered the registry.
	SubmittedAt time.Time `json:"submitted_at"`
	// CompletedAt is when the deliberation reached a terminal state.
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// NewDeliberation creates a pending deliberation for the given task.
func NewDeliberation(id string, task Task) *Deliberation {
	now := time.Now()
	return &Deliberation{
		ID:          id,
		Task:        task,
		State:       StatePending,
		Transitions: []StateTransition{{To: StatePending, Reason: "submitted", At: now}},
		SubmittedAt: now,
	}
}

// Transition moves the deliberation to a new state, recording history.
// Returns InvalidTransitionError when the move is not legal.
func (d *Deliberation) Transition(to DeliberationState, reason string) error {
	if !CanTransition(d.State, to) {
		return &InvalidTransitionError{From: d.State, To: to}
	}
	now := time.Now()
	d.Transitions = append(d.Transitions, StateTransition{From: d.State, To: to, Reason: reason, At: now})
	d.State = to
	if to.Terminal() {
		d.CompletedAt = now
	}
	return nil
}

// Clone returns a deep copy suitable for handing outside the registry lock.
func (d *Deliberation) Clone() *Deliberation {
	cp := *d
	cp.Transitions = append([]StateTransition(nil), d.Transitions...)
	if d.Ruling != nil {
		r := *d.Ruling
		r.Verdicts = append([]Verdict(nil), d.Ruling.Verdicts...)
		r.NonResponses = append([]NonResponse(nil), d.Ruling.NonResponses...)
		if d.Ruling.Tally != nil {
			r.Tally = make(map[string]int, len(d.Ruling.Tally))
			for k, v := range d.Ruling.Tally {
				r.Tally[k] = v
			}
		}
		cp.Ruling = &r
	}
	if d.Task.Context != nil {
		cp.Task.Context = make(map[string]string, len(d.Task.Context))
		for k, v := range d.Task.Context {
			cp.Task.Context[k] = v
		}
	}
	cp.Task.DecisionSet = append([]string(nil), d.Task.DecisionSet...)
	return &cp
}
