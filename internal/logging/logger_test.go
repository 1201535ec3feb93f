// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: "debug", Format: "json", Output: &buf})
		defer Init(DefaultConfig())

		Info().Str("key", "value").Msg("test message")

		out := buf.String()
		if !strings.Contains(out, `"message":"test message"`) {
			t.Errorf("Expected JSON message field, got %s", out)
		}
		if !strings.Contains(out, `"key":"value"`) {
			t.Errorf("Expected structured field, got %s", out)
		}
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		Init(Config{Level: "warn", Format: "json", Output: &buf})
		defer Init(DefaultConfig())

		Info().Msg("should be dropped")
		Warn().Msg("should appear")

		out := buf.String()
		if strings.Contains(out, "should be dropped") {
			t.Errorf("Info message logged at warn level: %s", out)
		}
		if !strings.Contains(out, "should appear") {
			t.Errorf("Warn message missing: %s", out)
		}
	})
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"garbage", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.input); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf)))

	logger.Info("supervisor event", slog.String("service", "router"))

	out := buf.String()
	if !strings.Contains(out, "supervisor event") {
		t.Errorf("Expected message in output, got %s", out)
	}
	if !strings.Contains(out, `"service":"router"`) {
		t.Errorf("Expected attribute in output, got %s", out)
	}
}

func TestSlogHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf)))

	logger.WithGroup("suture").Warn("service failed", slog.Int("restarts", 3))

	out := buf.String()
	if !strings.Contains(out, `"suture.restarts":3`) {
		t.Errorf("Expected grouped key, got %s", out)
	}
}

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewWatermillAdapterWithLogger(NewTestLogger(&buf))

	adapter.Info("handler started", map[string]interface{}{"topic": "playback.start"})

	out := buf.String()
	if !strings.Contains(out, "handler started") {
		t.Errorf("Expected message, got %s", out)
	}
	if !strings.Contains(out, `"topic":"playback.start"`) {
		t.Errorf("Expected field, got %s", out)
	}
}
