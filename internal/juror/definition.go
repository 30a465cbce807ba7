package juror

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind selects how a juror is invoked.
type Kind string

const (
	// KindCommand spawns an external process and delivers the task on stdin.
	KindCommand Kind = "command"
	// KindAnthropic calls the Anthropic API instead of spawning a process.
	KindAnthropic Kind = "anthropic"
)

// Definition describes one juror in the roster.
type Definition struct {
	// Name identifies the juror in rulings and logs.
	Name string `yaml:"name"`
	// Kind selects the invocation mechanism. Defaults to KindCommand.
	Kind Kind `yaml:"kind"`
	// Command is the executable for KindCommand jurors.
	Command string `yaml:"command"`
	// Args are the command-line arguments for KindCommand jurors.
	Args []string `yaml:"args"`
	// Env is appended to the process environment for KindCommand jurors.
	Env []string `yaml:"env"`
	// Model is the model name for KindAnthropic jurors.
	Model string `yaml:"model"`
	// Weight is the juror's vote weight. Zero means 1.0.
	Weight float64 `yaml:"weight"`
}

// EffectiveWeight returns the vote weight, defaulting to 1.0.
func (d Definition) EffectiveWeight() float64 {
	if d.Weight <= 0 {
		return 1.0
	}
	return d.Weight
}

// Validate checks that a definition is usable.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("juror has no name")
	}
	switch d.Kind {
	case KindCommand, "":
		if d.Command == "" {
			return fmt.Errorf("juror %s: command is required", d.Name)
		}
	case KindAnthropic:
		// Model is optional; the invoker falls back to its default.
	default:
		return fmt.Errorf("juror %s: unknown kind %q", d.Name, d.Kind)
	}
	if d.Weight < 0 {
		return fmt.Errorf("juror %s: weight must be non-negative", d.Name)
	}
	return nil
}

// Roster is the configured set of jurors available for empanelment.
type Roster struct {
	Jurors []Definition `yaml:"jurors"`
}

// Validate checks every definition and rejects duplicate names.
func (r *Roster) Validate() error {
	if len(r.Jurors) == 0 {
		return fmt.Errorf("roster has no jurors")
	}
	seen := make(map[string]bool, len(r.Jurors))
	for i := range r.Jurors {
		d := &r.Jurors[i]
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate juror name %q", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// Select returns n definitions for a panel, cycling through the roster
// when n exceeds its length. Each selection gets its own handle, so a
// repeated juror still deliberates independently.
func (r *Roster) Select(n int) []Definition {
	if n <= 0 || len(r.Jurors) == 0 {
		return nil
	}
	out := make([]Definition, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.Jurors[i%len(r.Jurors)])
	}
	return out
}

// LoadRoster reads a roster from a YAML file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid roster: %w", err)
	}
	return &r, nil
}

// DefaultRoster returns the built-in roster used when no roster file is
// configured: a single claude-code juror invoked in non-interactive mode.
func DefaultRoster() *Roster {
	return &Roster{
		Jurors: []Definition{
			{
				Name:    "claude",
				Kind:    KindCommand,
				Command: "claude",
				Args:    []string{"-p", "--output-format", "text"},
			},
		},
	}
}
