package consensus

import (
	"sort"
	"time"

	"github.com/sanhedrin/sanhedrin/pkg/models"
)

// Reduce folds the collected verdicts and non-responses into a single
// ruling under the given policy. It is pure: no I/O, no blocking, and the
// same inputs always produce the same ruling.
func Reduce(verdicts []models.Verdict, nonResponses []models.NonResponse, panelSize int, p Policy) models.Ruling {
	ruling := models.Ruling{
		Decision:     models.DecisionNoConsensus,
		Tally:        tally(verdicts),
		Verdicts:     append([]models.Verdict(nil), verdicts...),
		NonResponses: append([]models.NonResponse(nil), nonResponses...),
		Policy:       string(p.Name),
		PanelSize:    panelSize,
		ComputedAt:   time.Now().UTC(),
	}
	ruling.QuorumMet = quorumMet(len(verdicts), panelSize, p.Quorum)
	if !ruling.QuorumMet || len(verdicts) == 0 {
		return ruling
	}

	switch p.Name {
	case PolicyUnanimous:
		ruling.Decision = unanimous(verdicts)
	case PolicyWeightedScore:
		ruling.Decision, ruling.Score = weightedScore(verdicts, &p)
	default:
		ruling.Decision = majority(verdicts, &p)
	}
	return ruling
}

// quorumMet reports whether enough of the panel responded. A configured
// fraction q means valid/panel >= q; when q is unset the valid count must
// be a strict majority of the panel size.
func quorumMet(valid, panelSize int, q float64) bool {
	if panelSize <= 0 {
		return false
	}
	if q > 0 {
		return float64(valid)/float64(panelSize) >= q
	}
	return valid*2 > panelSize
}

func tally(verdicts []models.Verdict) map[string]int {
	t := make(map[string]int, 3)
	for _, v := range verdicts {
		t[v.Decision]++
	}
	return t
}

func unanimous(verdicts []models.Verdict) string {
	first := verdicts[0].Decision
	for _, v := range verdicts[1:] {
		if v.Decision != first {
			return models.DecisionNoConsensus
		}
	}
	return first
}

func majority(verdicts []models.Verdict, p *Policy) string {
	counts := tally(verdicts)
	top, tied := topDecisions(counts)
	if top*2 > len(verdicts) {
		return tied[0]
	}
	return breakTie(tied, p.tiePriority())
}

// weightedScore averages the scalar scores of scored verdicts, then picks
// the decision holding the largest weight mass across all valid verdicts.
func weightedScore(verdicts []models.Verdict, p *Policy) (string, float64) {
	var scoreSum, scoreWeight float64
	mass := make(map[string]float64, 3)
	for _, v := range verdicts {
		w := v.Weight
		if w <= 0 {
			w = 1
		}
		if v.Confidence == models.ConfidenceLow {
			w *= p.lowConfidenceWeight()
		}
		mass[v.Decision] += w
		if v.Score != nil {
			scoreSum += *v.Score * w
			scoreWeight += w
		}
	}
	var score float64
	if scoreWeight > 0 {
		score = scoreSum / scoreWeight
	}

	var top float64
	var tied []string
	for d, m := range mass {
		if m > top {
			top, tied = m, []string{d}
		} else if m == top {
			tied = append(tied, d)
		}
	}
	if len(tied) == 1 {
		return tied[0], score
	}
	return breakTie(tied, p.tiePriority()), score
}

// topDecisions returns the highest count and the decisions holding it,
// sorted for determinism.
func topDecisions(counts map[string]int) (int, []string) {
	var top int
	var tied []string
	for d, c := range counts {
		if c > top {
			top, tied = c, []string{d}
		} else if c == top {
			tied = append(tied, d)
		}
	}
	sort.Strings(tied)
	return top, tied
}

// breakTie picks the first decision from the priority list that is among
// the tied set. Decisions absent from the list lose to listed ones; a tie
// entirely outside the list resolves lexicographically.
func breakTie(tied []string, priority []string) string {
	if len(tied) == 1 {
		return tied[0]
	}
	for _, want := range priority {
		for _, d := range tied {
			if d == want {
				return d
			}
		}
	}
	sort.Strings(tied)
	return tied[0]
}
