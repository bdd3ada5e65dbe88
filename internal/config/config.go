// Package config provides configuration types for the Haivler CLI.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level configuration for the Haivler CLI.
type Config struct {
	// API configures how the backend is reached.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// DataDir is where the session token file lives.
	// Default: $HOME/.haivler
	DataDir string `yaml:"data_dir" mapstructure:"data_dir" validate:"required"`

	// LogLevel controls stderr logging verbosity.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// Metrics enables OpenTelemetry client metrics, dumped to stderr when
	// the process exits.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// APIConfig configures the backend connection.
type APIConfig struct {
	// BaseURL is the backend base URL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// Timeout is the HTTP request timeout as a duration string ("30s").
	// The client relies on this for every request; no per-operation
	// timeouts exist.
	Timeout string `yaml:"timeout" mapstructure:"timeout" validate:"omitempty,duration"`
}

// MetricsConfig configures client metrics.
type MetricsConfig struct {
	// Enabled turns metric collection on. Default: false.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// SetDefaults applies default values for optional fields.
func (c *Config) SetDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8000"
	}
	if c.API.Timeout == "" {
		c.API.Timeout = "30s"
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.DataDir = filepath.Join(home, ".haivler")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// TimeoutDuration returns the parsed API timeout. Validation guarantees
// the string parses; a zero config falls back to 30 seconds.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// SessionFile returns the path of the persisted token cookie file.
func (c *Config) SessionFile() string {
	return filepath.Join(c.DataDir, "session.json")
}

// SlogLevel maps the configured level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
