// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Tracker.MinDuration != 20*time.Second {
		t.Errorf("Expected min duration 20s, got %v", cfg.Tracker.MinDuration)
	}
	if cfg.Tracker.ResolverDelay != 10*time.Second {
		t.Errorf("Expected resolver delay 10s, got %v", cfg.Tracker.ResolverDelay)
	}
	if cfg.MediaServer.Enabled {
		t.Error("Expected media server disabled by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Database.BatchSize != 100 {
		t.Errorf("Expected batch size 100, got %d", cfg.Database.BatchSize)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHRONICUS_TRACKER_MIN_DURATION", "30s")
	t.Setenv("CHRONICUS_DATABASE_PATH", "/tmp/test.duckdb")
	t.Setenv("CHRONICUS_SERVER_PORT", "9000")
	t.Setenv("CHRONICUS_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Tracker.MinDuration != 30*time.Second {
		t.Errorf("Expected min duration 30s, got %v", cfg.Tracker.MinDuration)
	}
	if cfg.Database.Path != "/tmp/test.duckdb" {
		t.Errorf("Expected overridden path, got %q", cfg.Database.Path)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
tracker:
  min_duration: 45s
mediaserver:
  enabled: true
  url: http://media.local:8096
  api_key: test-key
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Tracker.MinDuration != 45*time.Second {
		t.Errorf("Expected min duration 45s, got %v", cfg.Tracker.MinDuration)
	}
	if !cfg.MediaServer.Enabled || cfg.MediaServer.URL != "http://media.local:8096" {
		t.Errorf("Unexpected media server config: %+v", cfg.MediaServer)
	}

	// Defaults survive under partial files.
	if cfg.Database.Path == "" {
		t.Error("Expected default database path to survive")
	}
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		if err := defaultConfig().Validate(); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})

	t.Run("media server enabled requires url", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.MediaServer.Enabled = true
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Logging.Level = "verbose"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Server.Port = 70000
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("bad media server url", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.MediaServer.Enabled = true
		cfg.MediaServer.URL = "not-a-url"
		cfg.MediaServer.APIKey = "key"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error")
		}
	})
}

func TestEnvTransformFunc(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"CHRONICUS_MEDIASERVER_API_KEY", "mediaserver.api_key"},
		{"CHRONICUS_DATABASE_MAX_MEMORY", "database.max_memory"},
		{"CHRONICUS_SERVER_PORT", "server.port"},
		{"CHRONICUS_LOGGING_LEVEL", "logging.level"},
		{"CHRONICUS_TRACKER_MIN_DURATION", "tracker.min_duration"},
	}
	for _, tc := range cases {
		if got := envTransformFunc(tc.in); got != tc.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
