package models

import (
	"errors"
	"testing"
)

func TestNewDeliberation_InitialState(t *testing.T) {
	d := NewDeliberation("d1", Task{Prompt: "judge this"})

	if d.State != StatePending {
		t.Errorf("initial state should be pending, got %s", d.State)
	}
	if len(d.Transitions) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(d.Transitions))
	}
	if d.Transitions[0].To != StatePending {
		t.Errorf("history should record pending, got %s", d.Transitions[0].To)
	}
	if d.Transitions[0].Reason != "submitted" {
		t.Errorf("initial reason should be %q, got %q", "submitted", d.Transitions[0].Reason)
	}
}

func TestDeliberation_Transition(t *testing.T) {
	d := NewDeliberation("d1", Task{Prompt: "judge this"})

	if err := d.Transition(StateInProgress, "dispatching panel"); err != nil {
		t.Fatalf("pending -> in_progress should be legal: %v", err)
	}
	if d.State != StateInProgress {
		t.Errorf("state should be in_progress, got %s", d.State)
	}
	if len(d.Transitions) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(d.Transitions))
	}
	if d.Transitions[1].Reason != "dispatching panel" {
		t.Errorf("reason not recorded: %q", d.Transitions[1].Reason)
	}

	if err := d.Transition(StateCompleted, "ruling computed"); err != nil {
		t.Fatalf("in_progress -> completed should be legal: %v", err)
	}
	if !d.State.Terminal() {
		t.Error("completed should be terminal")
	}
	if d.CompletedAt.IsZero() {
		t.Error("CompletedAt should be set on terminal transition")
	}
}

func TestDeliberation_InvalidTransition(t *testing.T) {
	d := NewDeliberation("d1", Task{Prompt: "judge this"})

	err := d.Transition(StateCompleted, "skip ahead")
	if err == nil {
		t.Fatal("pending -> completed should be rejected")
	}
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected InvalidTransitionError, got %T", err)
	}
	if ite.From != StatePending || ite.To != StateCompleted {
		t.Errorf("error should carry states, got %s -> %s", ite.From, ite.To)
	}
	if d.State != StatePending {
		t.Errorf("state should be unchanged after rejected transition, got %s", d.State)
	}
}

func TestDeliberation_TerminalStatesAdmitNoTransitions(t *testing.T) {
	for _, terminal := range []DeliberationState{StateCompleted, StateFailed, StateCancelled} {
		for _, to := range []DeliberationState{StatePending, StateInProgress, StateCompleted, StateFailed, StateCancelled} {
			if CanTransition(terminal, to) {
				t.Errorf("terminal state %s should not transition to %s", terminal, to)
			}
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to DeliberationState
		want     bool
	}{
		{StatePending, StateInProgress, true},
		{StatePending, StateCancelled, true},
		{StatePending, StateFailed, true},
		{StatePending, StateCompleted, false},
		{StateInProgress, StateCompleted, true},
		{StateInProgress, StateCancelled, true},
		{StateInProgress, StateFailed, true},
		{StateInProgress, StatePending, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestDeliberationState_Valid(t *testing.T) {
	for _, s := range []DeliberationState{StatePending, StateInProgress, StateCompleted, StateFailed, StateCancelled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if DeliberationState("adjourned").Valid() {
		t.Error("unknown state should not be valid")
	}
}

func TestDeliberation_Clone_Isolated(t *testing.T) {
	score := 0.8
	d := NewDeliberation("d1", Task{
		Prompt:      "judge this",
		Context:     map[string]string{"k": "v"},
		DecisionSet: []string{"approve", "reject"},
	})
	d.Ruling = &Ruling{
		Decision: DecisionApprove,
		Tally:    map[string]int{DecisionApprove: 2},
		Verdicts: []Verdict{{JurorID: "j1", Decision: DecisionApprove, Score: &score}},
	}

	cp := d.Clone()
	cp.Task.Context["k"] = "mutated"
	cp.Ruling.Tally[DecisionApprove] = 99
	cp.Transitions[0].Reason = "mutated"

	if d.Task.Context["k"] != "v" {
		t.Error("clone should not share task context")
	}
	if d.Ruling.Tally[DecisionApprove] != 2 {
		t.Error("clone should not share ruling tally")
	}
	if d.Transitions[0].Reason != "submitted" {
		t.Error("clone should not share transition history")
	}
}
