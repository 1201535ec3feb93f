// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package tracker

import (
	"testing"
	"time"

	"github.com/tomtom215/chronicus/internal/event"
)

func TestDeriveKey(t *testing.T) {
	t.Run("complete event", func(t *testing.T) {
		e := event.NewPlaybackEvent(event.KindStart)
		e.DeviceID = "dev-1"
		e.Users = []event.User{{ID: "user-1"}}
		e.Item = &event.Item{ID: "item-1"}

		key, ok := DeriveKey(e)
		if !ok {
			t.Fatal("Expected key derivation to succeed")
		}
		if key.String() != "dev-1-user-1-item-1" {
			t.Errorf("Expected 'dev-1-user-1-item-1', got %q", key.String())
		}
	})

	t.Run("only first user correlates", func(t *testing.T) {
		e := event.NewPlaybackEvent(event.KindStart)
		e.DeviceID = "dev-1"
		e.Users = []event.User{{ID: "user-1"}, {ID: "user-2"}}
		e.Item = &event.Item{ID: "item-1"}

		key, ok := DeriveKey(e)
		if !ok {
			t.Fatal("Expected key derivation to succeed")
		}
		if key.UserID != "user-1" {
			t.Errorf("Expected first user, got %q", key.UserID)
		}
	})

	t.Run("missing components", func(t *testing.T) {
		cases := []struct {
			name  string
			event *event.PlaybackEvent
		}{
			{"nil event", nil},
			{"no item", func() *event.PlaybackEvent {
				e := event.NewPlaybackEvent(event.KindStart)
				e.DeviceID = "dev-1"
				e.Users = []event.User{{ID: "user-1"}}
				return e
			}()},
			{"no users", func() *event.PlaybackEvent {
				e := event.NewPlaybackEvent(event.KindStart)
				e.DeviceID = "dev-1"
				e.Item = &event.Item{ID: "item-1"}
				return e
			}()},
			{"no device", func() *event.PlaybackEvent {
				e := event.NewPlaybackEvent(event.KindStart)
				e.Users = []event.User{{ID: "user-1"}}
				e.Item = &event.Item{ID: "item-1"}
				return e
			}()},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, ok := DeriveKey(tc.event); ok {
					t.Error("Expected key derivation to fail")
				}
			})
		}
	})
}

func TestTrackerDuration(t *testing.T) {
	key := Key{DeviceID: "d", UserID: "u", ItemID: "i"}
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("position wins when reported", func(t *testing.T) {
		tr := NewTracker(key, start)
		finished, ok := tr.ProcessStop(start.Add(40*time.Second), 25)
		if !ok {
			t.Fatal("Expected stop to finalize")
		}
		if finished.DurationSeconds != 25 {
			t.Errorf("Expected duration 25, got %d", finished.DurationSeconds)
		}
	})

	t.Run("wall clock fallback without position", func(t *testing.T) {
		tr := NewTracker(key, start)
		finished, ok := tr.ProcessStop(start.Add(30*time.Second), 0)
		if !ok {
			t.Fatal("Expected stop to finalize")
		}
		if finished.DurationSeconds != 30 {
			t.Errorf("Expected duration 30, got %d", finished.DurationSeconds)
		}
	})

	t.Run("negative elapsed clamps to zero", func(t *testing.T) {
		tr := NewTracker(key, start)
		finished, ok := tr.ProcessStop(start.Add(-5*time.Second), 0)
		if !ok {
			t.Fatal("Expected stop to finalize")
		}
		if finished.DurationSeconds != 0 {
			t.Errorf("Expected duration 0, got %d", finished.DurationSeconds)
		}
	})

	t.Run("second stop is rejected", func(t *testing.T) {
		tr := NewTracker(key, start)
		if _, ok := tr.ProcessStop(start.Add(time.Minute), 60); !ok {
			t.Fatal("Expected first stop to finalize")
		}
		if _, ok := tr.ProcessStop(start.Add(2*time.Minute), 120); ok {
			t.Error("Expected second stop to be rejected")
		}
	})
}

func TestTrackerMetadata(t *testing.T) {
	key := Key{DeviceID: "d", UserID: "u", ItemID: "i"}
	start := time.Now().UTC()

	t.Run("attach before stop", func(t *testing.T) {
		tr := NewTracker(key, start)
		meta := &Metadata{PlayMethod: "DirectPlay"}
		if !tr.AttachMetadata(meta) {
			t.Fatal("Expected attach to succeed")
		}
		finished, _ := tr.ProcessStop(start.Add(time.Minute), 60)
		if finished.Meta == nil || finished.Meta.PlayMethod != "DirectPlay" {
			t.Error("Expected metadata to ride the finished session")
		}
	})

	t.Run("attach after stop is discarded", func(t *testing.T) {
		tr := NewTracker(key, start)
		tr.ProcessStop(start.Add(time.Minute), 60)
		if tr.AttachMetadata(&Metadata{PlayMethod: "DirectPlay"}) {
			t.Error("Expected attach after stop to be rejected")
		}
	})
}

func TestTrackerProgress(t *testing.T) {
	key := Key{DeviceID: "d", UserID: "u", ItemID: "i"}
	start := time.Now().UTC()
	tr := NewTracker(key, start)

	tr.ProcessProgress(start.Add(10*time.Second), 10)
	tr.ProcessProgress(start.Add(20*time.Second), 20)
	if got := tr.LastPosition(); got != 20 {
		t.Errorf("Expected last position 20, got %d", got)
	}

	// Zero positions (paused heartbeats) keep the last real position.
	tr.ProcessProgress(start.Add(30*time.Second), 0)
	if got := tr.LastPosition(); got != 20 {
		t.Errorf("Expected last position 20 after zero report, got %d", got)
	}

	tr.ProcessStop(start.Add(40*time.Second), 40)
	tr.ProcessProgress(start.Add(50*time.Second), 50)
	if got := tr.LastPosition(); got != 20 {
		t.Errorf("Expected progress after stop to be ignored, got %d", got)
	}
}

func TestRegistry(t *testing.T) {
	key := Key{DeviceID: "d", UserID: "u", ItemID: "i"}
	other := Key{DeviceID: "d2", UserID: "u", ItemID: "i"}
	start := time.Now().UTC()

	t.Run("create and get", func(t *testing.T) {
		r := NewRegistry()
		created, replaced := r.Create(key, start)
		if replaced {
			t.Error("Expected no replacement on first create")
		}
		got, ok := r.Get(key)
		if !ok || got != created {
			t.Error("Expected Get to return the created tracker")
		}
		if _, ok := r.Get(other); ok {
			t.Error("Expected miss for other key")
		}
	})

	t.Run("duplicate start evicts stale tracker", func(t *testing.T) {
		r := NewRegistry()
		stale, _ := r.Create(key, start)
		fresh, replaced := r.Create(key, start.Add(time.Hour))
		if !replaced {
			t.Error("Expected replacement to be reported")
		}
		got, _ := r.Get(key)
		if got != fresh || got == stale {
			t.Error("Expected registry to hold the fresh tracker")
		}
		if r.Len() != 1 {
			t.Errorf("Expected 1 tracker, got %d", r.Len())
		}
	})

	t.Run("remove", func(t *testing.T) {
		r := NewRegistry()
		r.Create(key, start)
		if !r.Remove(key) {
			t.Error("Expected remove to report presence")
		}
		if r.Remove(key) {
			t.Error("Expected second remove to report absence")
		}
		if r.Len() != 0 {
			t.Errorf("Expected empty registry, got %d", r.Len())
		}
	})
}
