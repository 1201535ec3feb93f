// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package tracker

import (
	"sync"
	"time"

	"github.com/tomtom215/chronicus/internal/metrics"
)

// Registry is the concurrent map of in-flight playback trackers, keyed by
// correlation key. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	trackers map[Key]*Tracker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		trackers: make(map[Key]*Tracker),
	}
}

// Create installs a fresh tracker under key, started at startedAt. When a
// tracker already exists under the same key it is evicted unconditionally;
// replaced reports whether that happened. The evicted tracker's state is
// never persisted.
func (r *Registry) Create(key Key, startedAt time.Time) (t *Tracker, replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced = r.trackers[key]
	t = NewTracker(key, startedAt)
	r.trackers[key] = t

	metrics.SetActiveTrackers(len(r.trackers))
	if replaced {
		metrics.RecordTrackerReplaced()
	}
	return t, replaced
}

// Get returns the tracker under key, if one exists.
func (r *Registry) Get(key Key) (*Tracker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trackers[key]
	return t, ok
}

// Remove evicts the tracker under key. Removing an absent key is a no-op.
func (r *Registry) Remove(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.trackers[key]
	if ok {
		delete(r.trackers, key)
		metrics.SetActiveTrackers(len(r.trackers))
	}
	return ok
}

// Len returns the number of in-flight trackers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trackers)
}
