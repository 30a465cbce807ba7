// Package verdict converts raw juror output into structured verdicts.
package verdict

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sanhedrin/sanhedrin/pkg/models"
)

// ParseFailureError indicates juror output carried no usable decision.
// The consensus engine treats it identically to a non-response.
type ParseFailureError struct {
	Reason string
}

func (e *ParseFailureError) Error() string {
	return fmt.Sprintf("parse failure: %s", e.Reason)
}

// wireVerdict is the JSON shape jurors are asked to emit. Alternate key
// spellings observed from real agents are accepted.
type wireVerdict struct {
	Decision  string   `json:"decision"`
	Verdict   string   `json:"verdict"`
	Rationale string   `json:"rationale"`
	Reasoning string   `json:"reasoning"`
	Score     *float64 `json:"score"`
}

func (w *wireVerdict) decision() string {
	if w.Decision != "" {
		return w.Decision
	}
	return w.Verdict
}

func (w *wireVerdict) rationale() string {
	if w.Rationale != "" {
		return w.Rationale
	}
	return w.Reasoning
}

// Parse extracts the first well-formed verdict from raw juror output.
// Agents wrap their answer in logs, banners and prose; Parse scans for
// JSON objects anywhere in the output and takes the first one whose
// decision value belongs to the task's enumerated set (case-insensitive).
//
// The returned verdict carries decision, score, rationale and confidence;
// the caller fills in juror identity and weight. Confidence is low when
// the decision arrived without rationale.
func Parse(raw []byte, decisions []string) (models.Verdict, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return models.Verdict{}, &ParseFailureError{Reason: "empty output"}
	}

	var sawDecision string
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		var w wireVerdict
		dec := json.NewDecoder(bytes.NewReader(raw[i:]))
		if err := dec.Decode(&w); err != nil {
			continue
		}
		d := strings.ToLower(strings.TrimSpace(w.decision()))
		if d == "" {
			continue
		}
		canonical, ok := matchDecision(d, decisions)
		if !ok {
			if sawDecision == "" {
				sawDecision = d
			}
			continue
		}
		v := models.Verdict{
			Decision:   canonical,
			Score:      w.Score,
			Rationale:  strings.TrimSpace(w.rationale()),
			Confidence: models.ConfidenceHigh,
		}
		if v.Rationale == "" {
			v.Confidence = models.ConfidenceLow
		}
		return v, nil
	}

	if sawDecision != "" {
		return models.Verdict{}, &ParseFailureError{
			Reason: fmt.Sprintf("decision %q not in allowed set %v", sawDecision, decisions),
		}
	}
	return models.Verdict{}, &ParseFailureError{Reason: "no decision object found in output"}
}

// matchDecision resolves a juror-supplied decision against the allowed
// set, returning the canonical spelling.
func matchDecision(d string, decisions []string) (string, bool) {
	for _, allowed := range decisions {
		if strings.EqualFold(d, allowed) {
			return allowed, true
		}
	}
	return "", false
}
