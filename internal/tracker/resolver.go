// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/chronicus/internal/logging"
	"github.com/tomtom215/chronicus/internal/metrics"
	"github.com/tomtom215/chronicus/internal/models"
)

// ErrSessionNotFound is returned by a SessionSource when no live session
// matches the requested device and client.
var ErrSessionNotFound = errors.New("session not found")

// SessionSource looks up a live session on the host by device and client.
// Implementations must be safe for concurrent use.
type SessionSource interface {
	GetSession(ctx context.Context, deviceID, clientName string) (*models.LiveSession, error)
}

// ResolverConfig holds configuration for the deferred metadata resolver.
type ResolverConfig struct {
	// Delay is how long after a start event to wait before querying the
	// host. The host needs time to settle transcoding decisions and play
	// method before the session list reflects them.
	Delay time.Duration

	// LookupTimeout bounds each session list query.
	LookupTimeout time.Duration
}

// DefaultResolverConfig returns production defaults for the resolver.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Delay:         10 * time.Second,
		LookupTimeout: 5 * time.Second,
	}
}

// Resolver recovers session metadata the lifecycle events don't carry. Each
// start event schedules one deferred lookup; after the delay the resolver
// queries the host's live session list and attaches what it finds to the
// session's tracker.
//
// Scheduled lookups are never cancelled. A session that ends before its
// lookup fires is handled by re-checking the registry after the lookup:
// when the tracker is gone, or already finalized, the metadata is discarded.
type Resolver struct {
	registry *Registry
	source   SessionSource
	config   ResolverConfig
	logger   zerolog.Logger
}

// NewResolver creates a resolver backed by the given session source.
func NewResolver(registry *Registry, source SessionSource, cfg ResolverConfig) *Resolver {
	return &Resolver{
		registry: registry,
		source:   source,
		config:   cfg,
		logger:   logging.With().Str("component", "resolver").Logger(),
	}
}

// Schedule queues a deferred metadata lookup for the session under key. The
// lookup runs on its own goroutine after the configured delay; failures are
// logged and the session simply proceeds without metadata.
func (r *Resolver) Schedule(key Key, deviceID, clientName string) {
	go r.run(key, deviceID, clientName)
}

func (r *Resolver) run(key Key, deviceID, clientName string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Interface("panic", rec).
				Str("key", key.String()).
				Msg("Metadata lookup panicked")
		}
	}()

	time.Sleep(r.config.Delay)

	ctx, cancel := context.WithTimeout(context.Background(), r.config.LookupTimeout)
	defer cancel()

	start := time.Now()
	session, err := r.source.GetSession(ctx, deviceID, clientName)
	elapsed := time.Since(start)

	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrSessionNotFound) {
			outcome = "not_found"
		}
		metrics.RecordResolverLookup(outcome, elapsed)
		r.logger.Warn().
			Err(err).
			Str("key", key.String()).
			Str("device_id", deviceID).
			Str("client_name", clientName).
			Msg("Metadata lookup failed, session will report without metadata")
		return
	}
	metrics.RecordResolverLookup("resolved", elapsed)

	meta := metadataFromSession(session)

	// The session may have ended during the delay. The stop path removes
	// the tracker from the registry, so a missing or finalized tracker
	// means this metadata has nowhere to go.
	t, ok := r.registry.Get(key)
	if !ok || !t.AttachMetadata(meta) {
		metrics.RecordResolverDiscard()
		r.logger.Debug().
			Str("key", key.String()).
			Msg("Session ended before metadata resolved, discarding")
		return
	}

	r.logger.Debug().
		Str("key", key.String()).
		Str("play_method", meta.PlayMethod).
		Msg("Metadata attached")
}

// metadataFromSession projects a live session into tracker metadata. Absent
// sub-structures leave their fields empty; the monitor fills gaps from the
// stop event at persistence time.
func metadataFromSession(s *models.LiveSession) *Metadata {
	meta := &Metadata{
		ClientName: s.Client,
		DeviceName: s.DeviceName,
		PlayMethod: s.PlayMethodLabel(),
		UserID:     s.UserID,
		ResolvedAt: time.Now().UTC(),
	}
	if s.NowPlayingItem != nil {
		meta.ItemID = s.NowPlayingItem.ID
		meta.ItemName = s.NowPlayingItem.DisplayName()
		meta.ItemType = s.NowPlayingItem.Type
	}
	return meta
}
