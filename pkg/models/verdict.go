package models

import "time"

// Confidence indicates how much weight a verdict's decision carries.
type Confidence string

const (
	// ConfidenceHigh marks a verdict with both a decision and a rationale.
	ConfidenceHigh Confidence = "high"
	// ConfidenceLow marks a verdict whose decision arrived without rationale.
	ConfidenceLow Confidence = "low"
)

// Verdict is one juror's structured decision output. It is produced exactly
// once per juror handle that completes and parses cleanly.
type Verdict struct {
	// JurorID is the handle identity that produced this verdict.
	JurorID string `json:"juror_id"`
	// Juror is the roster name of the juror.
	Juror string `json:"juror"`
	// Decision is one value from the task's enumerated decision set.
	Decision string `json:"decision"`
	// Score is an optional scalar score for weighted-score policies.
	Score *float64 `json:"score,omitempty"`
	// Rationale is the juror's free-text reasoning, if any.
	Rationale string `json:"rationale,omitempty"`
	// Confidence is low when the decision arrived without rationale.
	Confidence Confidence `json:"confidence"`
	// Weight is the roster-assigned vote weight (default 1.0).
	Weight float64 `json:"weight"`
	// ReceivedAt is when the verdict was collected.
	ReceivedAt time.Time `json:"received_at"`
}

// NonResponseReason classifies why a juror produced no verdict.
type NonResponseReason string

const (
	// ReasonSpawnFailure means the juror process could not start.
	ReasonSpawnFailure NonResponseReason = "spawn_failure"
	// ReasonAgentFailure means the juror exited abnormally.
	ReasonAgentFailure NonResponseReason = "agent_failure"
	// ReasonAgentTimeout means the juror exceeded its individual deadline.
	ReasonAgentTimeout NonResponseReason = "agent_timeout"
	// ReasonParseFailure means the juror's output carried no usable decision.
	ReasonParseFailure NonResponseReason = "parse_failure"
	// ReasonDeliberationTimeout means the juror was still running when
	// the overall deliberation deadline expired.
	ReasonDeliberationTimeout NonResponseReason = "deliberation_timeout"
	// ReasonTerminated means the juror was cut off by deliberation
	// cancellation.
	ReasonTerminated NonResponseReason = "terminated"
)

// NonResponse records a juror that did not contribute a verdict.
type NonResponse struct {
	// JurorID is the handle identity of the non-participating juror.
	JurorID string `json:"juror_id"`
	// Juror is the roster name of the juror.
	Juror string `json:"juror"`
	// Reason classifies the non-response.
	Reason NonResponseReason `json:"reason"`
	// Detail carries optional diagnostic text (exit status, parse error).
	Detail string `json:"detail,omitempty"`
}
