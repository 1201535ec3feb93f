// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package tracker

import (
	"sync"
	"time"
)

// Metadata holds the session details recovered by the deferred resolver.
// All fields come from the host's live session list, not from the lifecycle
// events themselves.
type Metadata struct {
	ClientName string
	DeviceName string
	PlayMethod string
	ItemID     string
	ItemName   string
	ItemType   string
	UserID     string
	ResolvedAt time.Time
}

// Finished is the immutable outcome of a completed playback session, handed
// to the event monitor when the tracker processes its stop event.
type Finished struct {
	Key             Key
	StartedAt       time.Time
	StoppedAt       time.Time
	DurationSeconds int64
	Meta            *Metadata
}

// Tracker accumulates the observed state of one in-flight playback session.
// All methods are safe for concurrent use; the resolver attaches metadata
// from its own goroutine while the monitor processes progress and stop
// events.
type Tracker struct {
	key Key

	mu             sync.Mutex
	startedAt      time.Time
	lastProgressAt time.Time
	lastPosition   int64
	meta           *Metadata
	finished       bool
}

// NewTracker creates a tracker for a session that started at startedAt.
func NewTracker(key Key, startedAt time.Time) *Tracker {
	return &Tracker{
		key:       key,
		startedAt: startedAt,
	}
}

// Key returns the tracker's correlation key.
func (t *Tracker) Key() Key {
	return t.key
}

// StartedAt returns when the session started.
func (t *Tracker) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

// ProcessProgress records a progress report. Reports arriving after the stop
// event are ignored.
func (t *Tracker) ProcessProgress(at time.Time, positionSeconds int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return
	}
	t.lastProgressAt = at
	if positionSeconds > 0 {
		t.lastPosition = positionSeconds
	}
}

// ProcessStop finalizes the session. The reported duration is the stop
// event's position when one was reported, falling back to wall-clock elapsed
// time since start. Returns false if the session was already finalized.
func (t *Tracker) ProcessStop(at time.Time, positionSeconds int64) (Finished, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return Finished{}, false
	}
	t.finished = true

	duration := positionSeconds
	if duration <= 0 {
		duration = int64(at.Sub(t.startedAt).Seconds())
	}
	if duration < 0 {
		duration = 0
	}

	return Finished{
		Key:             t.key,
		StartedAt:       t.startedAt,
		StoppedAt:       at,
		DurationSeconds: duration,
		Meta:            t.meta,
	}, true
}

// AttachMetadata installs resolver output on the tracker. Returns false when
// the session already finished, in which case the metadata is discarded.
func (t *Tracker) AttachMetadata(meta *Metadata) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return false
	}
	t.meta = meta
	return true
}

// Metadata returns the attached metadata, or nil while unresolved.
func (t *Tracker) Metadata() *Metadata {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.meta
}

// LastPosition returns the most recent playback position in seconds.
func (t *Tracker) LastPosition() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastPosition
}
