// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package mediaserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/chronicus/internal/config"
	"github.com/tomtom215/chronicus/internal/tracker"
)

const sessionsPayload = `[
	{
		"Id": "sess-1",
		"Client": "Web Client",
		"DeviceId": "dev-1",
		"DeviceName": "Living Room",
		"UserId": "user-1",
		"NowPlayingItem": {
			"Id": "item-1",
			"Name": "Pilot",
			"Type": "Episode",
			"SeriesName": "Show",
			"ParentIndexNumber": 1,
			"IndexNumber": 3
		},
		"PlayState": {"PositionTicks": 120000000, "PlayMethod": "Transcode"},
		"TranscodingInfo": {"VideoCodec": "h264", "AudioCodec": "aac", "IsVideoDirect": false, "IsAudioDirect": true}
	},
	{
		"Id": "sess-2",
		"Client": "Android",
		"DeviceId": "dev-2",
		"DeviceName": "Phone",
		"UserId": "user-2",
		"PlayState": {"PlayMethod": "DirectPlay"}
	}
]`

func testClientConfig(url string) *config.MediaServerConfig {
	return &config.MediaServerConfig{
		Enabled:            true,
		URL:                url,
		APIKey:             "test-key",
		RequestTimeout:     5 * time.Second,
		RateLimitPerSecond: 100,
		RateLimitBurst:     100,
	}
}

func TestGetSessions(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Sessions" {
			http.NotFound(w, r)
			return
		}
		gotToken = r.Header.Get("X-Emby-Token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sessionsPayload))
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL))
	sessions, err := client.GetSessions(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	if gotToken != "test-key" {
		t.Errorf("Expected API token header, got %q", gotToken)
	}
	if sessions[0].NowPlayingItem.DisplayName() != "Show - s01e03 - Pilot" {
		t.Errorf("Unexpected display name: %q", sessions[0].NowPlayingItem.DisplayName())
	}
	if sessions[0].PlayMethodLabel() != "Transcode (v:h264 a:direct)" {
		t.Errorf("Unexpected play method: %q", sessions[0].PlayMethodLabel())
	}
}

func TestGetSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sessionsPayload))
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL))

	t.Run("match by device and client", func(t *testing.T) {
		s, err := client.GetSession(context.Background(), "dev-1", "Web Client")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if s.ID != "sess-1" {
			t.Errorf("Expected sess-1, got %s", s.ID)
		}
	})

	t.Run("device match with empty client", func(t *testing.T) {
		s, err := client.GetSession(context.Background(), "dev-2", "")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if s.ID != "sess-2" {
			t.Errorf("Expected sess-2, got %s", s.ID)
		}
	})

	t.Run("client mismatch", func(t *testing.T) {
		_, err := client.GetSession(context.Background(), "dev-1", "Roku")
		if !errors.Is(err, tracker.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("unknown device", func(t *testing.T) {
		_, err := client.GetSession(context.Background(), "dev-9", "")
		if !errors.Is(err, tracker.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestGetSessionsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL))
	if _, err := client.GetSessions(context.Background()); err == nil {
		t.Error("Expected error for 401 response")
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/System/Info/Public" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL))
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestBreakerPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sessionsPayload))
	}))
	defer server.Close()

	breaker := NewBreakerClient(NewClient(testClientConfig(server.URL)))
	s, err := breaker.GetSession(context.Background(), "dev-1", "Web Client")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.ID != "sess-1" {
		t.Errorf("Expected sess-1, got %s", s.ID)
	}
}

func TestBreakerNotFoundIsNotFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	breaker := NewBreakerClient(NewClient(testClientConfig(server.URL)))
	for i := 0; i < 20; i++ {
		if _, err := breaker.GetSession(context.Background(), "dev-1", ""); !errors.Is(err, tracker.ErrSessionNotFound) {
			t.Fatalf("Expected ErrSessionNotFound, got %v", err)
		}
	}
	if got := breaker.State().String(); got != "closed" {
		t.Errorf("Expected breaker to stay closed on lookup misses, got %s", got)
	}
}

func TestBreakerOpensOnFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	breaker := NewBreakerClient(NewClient(testClientConfig(server.URL)))
	for i := 0; i < 10; i++ {
		_, _ = breaker.GetSession(context.Background(), "dev-1", "")
	}
	if got := breaker.State().String(); got != "open" {
		t.Errorf("Expected breaker open after repeated failures, got %s", got)
	}
}
