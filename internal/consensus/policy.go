// Package consensus reduces a collected verdict set into one ruling.
// Policies are data-selected variants, not a type hierarchy: new policies
// are added here without touching the orchestrator.
package consensus

import (
	"fmt"

	"github.com/sanhedrin/sanhedrin/pkg/models"
)

// PolicyName selects a reduction strategy.
type PolicyName string

const (
	// PolicyMajority rules by strict majority, falling back to plurality
	// with a deterministic tie priority.
	PolicyMajority PolicyName = "majority"
	// PolicyUnanimous requires all valid verdicts to agree.
	PolicyUnanimous PolicyName = "unanimous"
	// PolicyWeightedScore averages scalar scores, weighting low-confidence
	// verdicts down.
	PolicyWeightedScore PolicyName = "weighted-score"
)

// Valid returns true if the name is a known policy.
func (n PolicyName) Valid() bool {
	switch n {
	case PolicyMajority, PolicyUnanimous, PolicyWeightedScore:
		return true
	default:
		return false
	}
}

// Policy contains the configurable parameters of a reduction strategy.
type Policy struct {
	// Name selects the strategy.
	Name PolicyName
	// Quorum is the minimum fraction of the panel that must produce a
	// valid verdict. Zero means the default: a strict majority of the
	// panel size.
	Quorum float64
	// TiePriority resolves ties deterministically: the first decision in
	// this list among the tied ones wins. Never random.
	TiePriority []string
	// LowConfidenceWeight scales down low-confidence verdicts under
	// weighted-score. Zero means the default of 0.5.
	LowConfidenceWeight float64
}

// Default returns the default policy configuration.
func Default() Policy {
	return Policy{
		Name:                PolicyMajority,
		TiePriority:         []string{models.DecisionReject, models.DecisionApprove, models.DecisionAbstain},
		LowConfidenceWeight: 0.5,
	}
}

// Validate checks that policy values are within acceptable ranges.
func (p *Policy) Validate() error {
	if !p.Name.Valid() {
		return fmt.Errorf("unknown consensus policy %q", p.Name)
	}
	if p.Quorum < 0 || p.Quorum > 1 {
		return fmt.Errorf("quorum must be within [0, 1], got %v", p.Quorum)
	}
	if p.LowConfidenceWeight < 0 || p.LowConfidenceWeight > 1 {
		return fmt.Errorf("low-confidence weight must be within [0, 1], got %v", p.LowConfidenceWeight)
	}
	return nil
}

// WithName returns a copy of the policy with the strategy replaced, used
// when a task requests a specific policy but inherits the server's
// quorum and tie-break parameters.
func (p Policy) WithName(name PolicyName) Policy {
	p.Name = name
	return p
}

// tiePriority returns the configured priority order, defaulting when unset.
func (p *Policy) tiePriority() []string {
	if len(p.TiePriority) > 0 {
		return p.TiePriority
	}
	return Default().TiePriority
}

// lowConfidenceWeight returns the configured factor, defaulting when unset.
func (p *Policy) lowConfidenceWeight() float64 {
	if p.LowConfidenceWeight > 0 {
		return p.LowConfidenceWeight
	}
	return 0.5
}
