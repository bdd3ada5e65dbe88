package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected default base URL: %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != "30s" {
		t.Errorf("unexpected default timeout: %s", cfg.API.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("unexpected default log level: %s", cfg.LogLevel)
	}
	if cfg.DataDir == "" {
		t.Error("data dir default should be set")
	}
	if !strings.HasSuffix(cfg.DataDir, ".haivler") {
		t.Errorf("data dir should end in .haivler, got %s", cfg.DataDir)
	}
}

func TestSetDefaultsPreservesExisting(t *testing.T) {
	cfg := Config{
		API:      APIConfig{BaseURL: "https://haivler.example.com", Timeout: "5s"},
		DataDir:  "/var/lib/haivler",
		LogLevel: "debug",
	}
	cfg.SetDefaults()

	if cfg.API.BaseURL != "https://haivler.example.com" {
		t.Errorf("explicit base URL overwritten: %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != "5s" {
		t.Errorf("explicit timeout overwritten: %s", cfg.API.Timeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("explicit log level overwritten: %s", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var cfg Config
		cfg.SetDefaults()
		return cfg
	}

	t.Run("defaults pass", func(t *testing.T) {
		cfg := valid()
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("bad base url", func(t *testing.T) {
		cfg := valid()
		cfg.API.BaseURL = "not a url"
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "must be a valid URL") {
			t.Errorf("unexpected message: %v", err)
		}
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := valid()
		cfg.LogLevel = "verbose"
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "must be one of") {
			t.Errorf("unexpected message: %v", err)
		}
	})

	t.Run("bad timeout", func(t *testing.T) {
		cfg := valid()
		cfg.API.Timeout = "thirty seconds"
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "positive duration") {
			t.Errorf("unexpected message: %v", err)
		}
	})

	t.Run("negative timeout", func(t *testing.T) {
		cfg := valid()
		cfg.API.Timeout = "-5s"
		if err := cfg.Validate(); err == nil {
			t.Fatal("negative duration should be rejected")
		}
	})
}

func TestTimeoutDuration(t *testing.T) {
	cfg := Config{API: APIConfig{Timeout: "7s"}}
	if got := cfg.TimeoutDuration(); got != 7*time.Second {
		t.Errorf("expected 7s, got %v", got)
	}

	// Unparseable or empty falls back rather than failing.
	cfg.API.Timeout = ""
	if got := cfg.TimeoutDuration(); got != 30*time.Second {
		t.Errorf("expected 30s fallback, got %v", got)
	}
}

func TestSessionFile(t *testing.T) {
	cfg := Config{DataDir: "/var/lib/haivler"}
	want := filepath.Join("/var/lib/haivler", "session.json")
	if got := cfg.SessionFile(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := Config{LogLevel: tt.level}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
