package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("default host = %s, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Panel.JurorTimeout != 120*time.Second {
		t.Errorf("default juror timeout = %s, want 120s", cfg.Panel.JurorTimeout)
	}
	if cfg.Panel.Size != 3 {
		t.Errorf("default panel size = %d, want 3", cfg.Panel.Size)
	}
	if cfg.Registry.MaxConcurrent != 100 {
		t.Errorf("default max concurrent = %d, want 100", cfg.Registry.MaxConcurrent)
	}
	if cfg.Registry.MaxAge != time.Hour {
		t.Errorf("default max age = %s, want 1h", cfg.Registry.MaxAge)
	}
	if cfg.RateLimit.RequestsPerMin != 60 || cfg.RateLimit.Burst != 10 {
		t.Errorf("default rate limit = %+v", cfg.RateLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sanhedrin.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 9100
panel:
  size: 5
  policy: unanimous
  juror_timeout: 30s
registry:
  max_active: 10
  queue_submissions: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr() != "0.0.0.0:9100" {
		t.Errorf("Addr() = %s, want 0.0.0.0:9100", cfg.Addr())
	}
	if cfg.Panel.Size != 5 || cfg.Panel.Policy != "unanimous" {
		t.Errorf("panel config = %+v", cfg.Panel)
	}
	if cfg.Panel.JurorTimeout != 30*time.Second {
		t.Errorf("juror timeout = %s, want 30s", cfg.Panel.JurorTimeout)
	}
	if !cfg.Registry.QueueSubmissions || cfg.Registry.MaxActive != 10 {
		t.Errorf("registry config = %+v", cfg.Registry)
	}
	// Values absent from the file keep their defaults.
	if cfg.Registry.MaxConcurrent != 100 {
		t.Errorf("max concurrent = %d, want default 100", cfg.Registry.MaxConcurrent)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SANHEDRIN_SERVER_PORT", "9999")
	t.Setenv("SANHEDRIN_PANEL_SIZE", "7")
	t.Setenv("SANHEDRIN_API_KEYS", "key-one, key-two")

	dir := t.TempDir()
	path := filepath.Join(dir, "sanhedrin.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want env override 9999", cfg.Server.Port)
	}
	if cfg.Panel.Size != 7 {
		t.Errorf("panel size = %d, want env override 7", cfg.Panel.Size)
	}
	want := []string{"key-one", "key-two"}
	if len(cfg.Auth.APIKeys) != len(want) {
		t.Fatalf("api keys = %v, want %v", cfg.Auth.APIKeys, want)
	}
	for i, k := range want {
		if cfg.Auth.APIKeys[i] != k {
			t.Errorf("api key %d = %q, want %q", i, cfg.Auth.APIKeys[i], k)
		}
	}
}

func TestNormalizeKeys(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"already split with spaces", []string{"key-one", " key-two"}, []string{"key-one", "key-two"}},
		{"single comma-joined string", []string{"key-one,key-two"}, []string{"key-one", "key-two"}},
		{"trailing comma and blanks", []string{"key-one, ,", ""}, []string{"key-one"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeKeys(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("normalizeKeys(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("key %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with a missing explicit path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 0 }},
		{"zero panel size", func(c *Config) { c.Panel.Size = 0 }},
		{"zero juror timeout", func(c *Config) { c.Panel.JurorTimeout = 0 }},
		{"zero deadline", func(c *Config) { c.Panel.Deadline = 0 }},
		{"quorum above one", func(c *Config) { c.Panel.Quorum = 1.5 }},
		{"zero max concurrent", func(c *Config) { c.Registry.MaxConcurrent = 0 }},
		{"zero max active", func(c *Config) { c.Registry.MaxActive = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}
