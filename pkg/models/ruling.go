package models

import "time"

// DecisionNoConsensus is the ruling decision when quorum is unmet or the
// policy found no agreement. It is a valid outcome, not an error.
const DecisionNoConsensus = "no-consensus"

// Ruling is the consensus engine's output for one deliberation.
// Immutable once computed.
type Ruling struct {
	// Decision is the final decision value, or DecisionNoConsensus.
	Decision string `json:"decision"`
	// Tally maps each decision value to its count of valid verdicts.
	Tally map[string]int `json:"tally"`
	// Score is the aggregated score under the weighted-score policy.
	Score float64 `json:"score,omitempty"`
	// Verdicts are the contributing verdicts, unordered.
	Verdicts []Verdict `json:"verdicts"`
	// NonResponses lists jurors that did not contribute, with reasons.
	NonResponses []NonResponse `json:"non_responses"`
	// QuorumMet reports whether enough valid verdicts arrived.
	QuorumMet bool `json:"quorum_met"`
	// Policy names the policy that produced this ruling.
	Policy string `json:"policy"`
	// PanelSize is the configured panel size the ruling was computed against.
	PanelSize int `json:"panel_size"`
	// ComputedAt is when the ruling was computed.
	ComputedAt time.Time `json:"computed_at"`
}

// Participation returns the number of valid verdicts and non-responses.
// Their sum always equals PanelSize for a terminal deliberation.
func (r *Ruling) Participation() (verdicts, nonResponses int) {
	return len(r.Verdicts), len(r.NonResponses)
}
