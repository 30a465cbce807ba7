// Package models defines the core domain types for Sanhedrin deliberations.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Well-known decision values. Tasks may define their own enumerated set;
// these are the defaults used when a task does not.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
	DecisionAbstain = "abstain"
)

// DefaultDecisionSet returns the decision values used when a task does not
// supply its own set.
func DefaultDecisionSet() []string {
	return []string{DecisionApprove, DecisionReject, DecisionAbstain}
}

// Task is the unit of work submitted for deliberation. It is immutable once
// submitted; the registry copies it into the deliberation it creates.
type Task struct {
	// Prompt is the question or material put before the panel.
	Prompt string `json:"prompt"`
	// Context carries optional structured context delivered alongside the prompt.
	Context map[string]string `json:"context,omitempty"`
	// DecisionSet is the enumerated set of decision values jurors may return.
	// Empty means DefaultDecisionSet.
	DecisionSet []string `json:"decision_set,omitempty"`
	// PanelSize is the number of jurors to empanel. Zero means the server default.
	PanelSize int `json:"panel_size,omitempty"`
	// Deadline bounds the whole deliberation. Zero means the server default.
	Deadline time.Duration `json:"deadline,omitempty"`
	// Policy names the consensus policy to apply. Empty means the server default.
	Policy string `json:"policy,omitempty"`
}

// ErrEmptyPrompt is returned when a task is submitted without a prompt.
var ErrEmptyPrompt = errors.New("task prompt is empty")

// Validate checks that the task is well-formed enough to deliberate on.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if t.PanelSize < 0 {
		return fmt.Errorf("panel size must be non-negative, got %d", t.PanelSize)
	}
	if t.Deadline < 0 {
		return fmt.Errorf("deadline must be non-negative, got %s", t.Deadline)
	}
	for _, d := range t.DecisionSet {
		if strings.TrimSpace(d) == "" {
			return errors.New("decision set contains an empty value")
		}
	}
	return nil
}

// Decisions returns the task's decision set, falling back to the default.
func (t *Task) Decisions() []string {
	if len(t.DecisionSet) > 0 {
		return t.DecisionSet
	}
	return DefaultDecisionSet()
}
