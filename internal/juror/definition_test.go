package juror

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr bool
	}{
		{"command juror", Definition{Name: "a", Kind: KindCommand, Command: "judge"}, false},
		{"kind defaults to command", Definition{Name: "a", Command: "judge"}, false},
		{"anthropic juror", Definition{Name: "b", Kind: KindAnthropic}, false},
		{"missing name", Definition{Kind: KindCommand, Command: "judge"}, true},
		{"command missing", Definition{Name: "a", Kind: KindCommand}, true},
		{"unknown kind", Definition{Name: "a", Kind: "ssh"}, true},
		{"negative weight", Definition{Name: "a", Command: "judge", Weight: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefinition_EffectiveWeight(t *testing.T) {
	d := Definition{Name: "a", Command: "judge"}
	if w := d.EffectiveWeight(); w != 1.0 {
		t.Errorf("default weight should be 1.0, got %v", w)
	}
	d.Weight = 2.5
	if w := d.EffectiveWeight(); w != 2.5 {
		t.Errorf("explicit weight should be honored, got %v", w)
	}
}

func TestRoster_Validate_DuplicateNames(t *testing.T) {
	r := Roster{Jurors: []Definition{
		{Name: "a", Command: "judge"},
		{Name: "a", Command: "judge2"},
	}}
	if err := r.Validate(); err == nil {
		t.Error("duplicate names should be rejected")
	}
}

func TestRoster_Validate_Empty(t *testing.T) {
	r := Roster{}
	if err := r.Validate(); err == nil {
		t.Error("empty roster should be rejected")
	}
}

func TestRoster_Select_Cycles(t *testing.T) {
	r := Roster{Jurors: []Definition{
		{Name: "a", Command: "judge-a"},
		{Name: "b", Command: "judge-b"},
	}}

	got := r.Select(5)
	if len(got) != 5 {
		t.Fatalf("expected 5 selections, got %d", len(got))
	}
	wantNames := []string{"a", "b", "a", "b", "a"}
	for i, w := range wantNames {
		if got[i].Name != w {
			t.Errorf("selection %d should be %s, got %s", i, w, got[i].Name)
		}
	}

	if r.Select(0) != nil {
		t.Error("selecting zero jurors should return nil")
	}
}

func TestLoadRoster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jurors.yaml")
	data := `jurors:
  - name: fast
    kind: command
    command: judge
    args: ["--fast"]
    weight: 2
  - name: model
    kind: anthropic
    model: claude-sonnet-4-20250514
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster failed: %v", err)
	}
	if len(r.Jurors) != 2 {
		t.Fatalf("expected 2 jurors, got %d", len(r.Jurors))
	}
	if r.Jurors[0].Weight != 2 {
		t.Errorf("weight not parsed: %v", r.Jurors[0].Weight)
	}
	if r.Jurors[1].Kind != KindAnthropic {
		t.Errorf("kind not parsed: %v", r.Jurors[1].Kind)
	}
}

func TestLoadRoster_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jurors.yaml")
	if err := os.WriteFile(path, []byte("jurors:\n  - kind: command\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRoster(path); err == nil {
		t.Error("roster with unnamed juror should be rejected")
	}
}

func TestDefaultRoster_Valid(t *testing.T) {
	if err := DefaultRoster().Validate(); err != nil {
		t.Errorf("default roster should validate: %v", err)
	}
}
