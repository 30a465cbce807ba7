// Package config handles configuration loading for Sanhedrin. Values come
// from built-in defaults, an optional YAML config file, and SANHEDRIN_
// environment variables, in ascending precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Panel     PanelConfig     `mapstructure:"panel"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// ShutdownGrace bounds how long graceful shutdown waits for in-flight
	// requests before forcing the listener closed.
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

// PanelConfig holds juror and consensus defaults applied when a task does
// not specify its own.
type PanelConfig struct {
	// RosterPath points at the juror roster YAML. Empty means the built-in
	// single-juror roster.
	RosterPath string `mapstructure:"roster_path"`
	// Size is the default panel size.
	Size int `mapstructure:"size"`
	// JurorTimeout bounds each individual juror invocation.
	JurorTimeout time.Duration `mapstructure:"juror_timeout"`
	// Deadline bounds a whole deliberation.
	Deadline time.Duration `mapstructure:"deadline"`
	// Policy is the default consensus policy name.
	Policy string `mapstructure:"policy"`
	// Quorum is the minimum fraction of valid verdicts. Zero means a
	// strict majority of the panel.
	Quorum float64 `mapstructure:"quorum"`
}

// RegistryConfig holds admission and retention settings.
type RegistryConfig struct {
	// MaxConcurrent caps juror processes running at once across all
	// deliberations.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// MaxActive caps deliberations admitted but not yet finished.
	MaxActive int `mapstructure:"max_active"`
	// QueueSubmissions selects queueing over rejection when MaxActive is
	// reached.
	QueueSubmissions bool `mapstructure:"queue_submissions"`
	// CleanupInterval is how often the retention reaper runs.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	// MaxAge is how long finished deliberations stay queryable.
	MaxAge time.Duration `mapstructure:"max_age"`
}

// AuthConfig holds API key authentication settings.
type AuthConfig struct {
	// APIKeys lists accepted keys. Empty disables authentication.
	APIKeys []string `mapstructure:"api_keys"`
}

// RateLimitConfig holds per-client request rate limits.
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requests_per_min"`
	RequestsPerHr  int  `mapstructure:"requests_per_hr"`
	Burst          int  `mapstructure:"burst"`
}

// AnthropicConfig holds Anthropic API settings for API-backed jurors.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks cross-field constraints the loader cannot express.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Panel.Size < 1 {
		return fmt.Errorf("panel size must be at least 1, got %d", c.Panel.Size)
	}
	if c.Panel.JurorTimeout <= 0 {
		return errors.New("juror timeout must be positive")
	}
	if c.Panel.Deadline <= 0 {
		return errors.New("deliberation deadline must be positive")
	}
	if c.Panel.Quorum < 0 || c.Panel.Quorum > 1 {
		return fmt.Errorf("quorum out of range: %v", c.Panel.Quorum)
	}
	if c.Registry.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent jurors must be at least 1, got %d", c.Registry.MaxConcurrent)
	}
	if c.Registry.MaxActive < 1 {
		return fmt.Errorf("max active deliberations must be at least 1, got %d", c.Registry.MaxActive)
	}
	return nil
}

// Load loads configuration from defaults, an optional config file, and
// SANHEDRIN_ environment variables. Precedence (highest to lowest):
// 1. Environment variables (SANHEDRIN_SERVER_PORT, ...)
// 2. Config file (explicit path, or sanhedrin.yaml in the working or XDG
//    config directory)
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	} else {
		v.SetConfigName("sanhedrin")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(userConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("SANHEDRIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "SANHEDRIN_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	v.BindEnv("auth.api_keys", "SANHEDRIN_API_KEYS")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// SANHEDRIN_API_KEYS arrives comma-separated and viper may or may not
	// have split it already, so normalize every entry.
	cfg.Auth.APIKeys = normalizeKeys(cfg.Auth.APIKeys)
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults always unmarshal cleanly.
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_grace", "5s")

	v.SetDefault("panel.roster_path", "")
	v.SetDefault("panel.size", 3)
	v.SetDefault("panel.juror_timeout", "120s")
	v.SetDefault("panel.deadline", "300s")
	v.SetDefault("panel.policy", "majority")
	v.SetDefault("panel.quorum", 0.0)

	v.SetDefault("registry.max_concurrent", 100)
	v.SetDefault("registry.max_active", 100)
	v.SetDefault("registry.queue_submissions", false)
	v.SetDefault("registry.cleanup_interval", "300s")
	v.SetDefault("registry.max_age", "3600s")

	v.SetDefault("auth.api_keys", []string{})

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_min", 60)
	v.SetDefault("rate_limit.requests_per_hr", 1000)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("anthropic.api_key", "")
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sanhedrin")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "sanhedrin")
	}
	return filepath.Join(home, ".config", "sanhedrin")
}

// normalizeKeys splits any comma-joined entries and trims whitespace,
// dropping empties.
func normalizeKeys(in []string) []string {
	keys := make([]string, 0, len(in))
	for _, entry := range in {
		for _, p := range strings.Split(entry, ",") {
			if k := strings.TrimSpace(p); k != "" {
				keys = append(keys, k)
			}
		}
	}
	return keys
}
