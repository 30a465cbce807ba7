package models

import (
	"errors"
	"testing"
	"time"
)

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"valid minimal", Task{Prompt: "judge this"}, false},
		{"valid full", Task{Prompt: "judge", PanelSize: 3, Deadline: time.Minute, DecisionSet: []string{"yes", "no"}}, false},
		{"empty prompt", Task{}, true},
		{"whitespace prompt", Task{Prompt: "   "}, true},
		{"negative panel size", Task{Prompt: "judge", PanelSize: -1}, true},
		{"negative deadline", Task{Prompt: "judge", Deadline: -time.Second}, true},
		{"empty decision value", Task{Prompt: "judge", DecisionSet: []string{"yes", ""}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTask_Validate_EmptyPromptSentinel(t *testing.T) {
	err := (&Task{}).Validate()
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("expected ErrEmptyPrompt, got %v", err)
	}
}

func TestTask_Decisions_Default(t *testing.T) {
	task := Task{Prompt: "judge"}
	got := task.Decisions()
	want := DefaultDecisionSet()
	if len(got) != len(want) {
		t.Fatalf("expected default decision set of %d, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("decision %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTask_Decisions_Custom(t *testing.T) {
	task := Task{Prompt: "judge", DecisionSet: []string{"ship", "hold"}}
	got := task.Decisions()
	if len(got) != 2 || got[0] != "ship" || got[1] != "hold" {
		t.Errorf("custom decision set not honored: %v", got)
	}
}
