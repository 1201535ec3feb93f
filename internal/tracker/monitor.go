// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package tracker

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/chronicus/internal/event"
	"github.com/tomtom215/chronicus/internal/logging"
	"github.com/tomtom215/chronicus/internal/metrics"
	"github.com/tomtom215/chronicus/internal/models"
)

// RecordStore receives finished playback records for persistence.
// Implementations must be safe for concurrent use.
type RecordStore interface {
	AddPlaybackRecord(ctx context.Context, record *models.PlaybackRecord) error
}

// MonitorConfig holds configuration for the event monitor.
type MonitorConfig struct {
	// MinDuration is the persistence bar. Sessions must play strictly
	// longer than this to produce a record; accidental clicks and instant
	// stops never reach the database.
	MinDuration time.Duration
}

// DefaultMonitorConfig returns production defaults for the monitor.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		MinDuration: 20 * time.Second,
	}
}

// Monitor consumes playback lifecycle events from the bus and drives the
// tracker registry. Handler errors never propagate back to the bus: every
// event is acked, and failures degrade to logged skips so one bad event
// cannot stall delivery for unrelated sessions.
type Monitor struct {
	registry *Registry
	resolver *Resolver
	store    RecordStore
	config   MonitorConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewMonitor creates a monitor. The resolver may be nil, in which case
// sessions report without deferred metadata.
func NewMonitor(registry *Registry, resolver *Resolver, store RecordStore, cfg MonitorConfig) *Monitor {
	return &Monitor{
		registry: registry,
		resolver: resolver,
		store:    store,
		config:   cfg,
		logger:   logging.With().Str("component", "monitor").Logger(),
		now:      time.Now,
	}
}

// Register wires the monitor's handlers onto the router, one per lifecycle
// topic.
func (m *Monitor) Register(router *event.Router, subscriber message.Subscriber) {
	router.AddConsumerHandler("playback-start-monitor", event.TopicStart, subscriber, m.HandleStart)
	router.AddConsumerHandler("playback-progress-monitor", event.TopicProgress, subscriber, m.HandleProgress)
	router.AddConsumerHandler("playback-stop-monitor", event.TopicStop, subscriber, m.HandleStop)
}

// HandleStart begins tracking a new playback session.
func (m *Monitor) HandleStart(msg *message.Message) error {
	e, ok := m.decode(msg)
	if !ok {
		return nil
	}

	if e.MediaInfo == nil {
		metrics.RecordEventSkipped("no_media_info")
		m.logger.Debug().Str("device_id", e.DeviceID).Msg("Start without media info, skipping")
		return nil
	}
	if e.Item != nil && e.Item.IsThemeMedia {
		metrics.RecordEventSkipped("theme_media")
		m.logger.Debug().Str("item_id", e.Item.ID).Msg("Theme media playback, skipping")
		return nil
	}
	if len(e.Users) == 0 {
		metrics.RecordEventSkipped("no_users")
		m.logger.Debug().Str("device_id", e.DeviceID).Msg("Start without users, skipping")
		return nil
	}

	key, ok := DeriveKey(e)
	if !ok {
		metrics.RecordEventSkipped("no_key")
		m.logger.Debug().Str("device_id", e.DeviceID).Msg("Start without derivable key, skipping")
		return nil
	}

	_, replaced := m.registry.Create(key, m.eventTime(e))
	if replaced {
		m.logger.Info().
			Str("key", key.String()).
			Msg("Duplicate start, evicted stale tracker")
	}

	if m.resolver != nil {
		m.resolver.Schedule(key, e.DeviceID, e.ClientName)
	}

	m.logger.Debug().
		Str("key", key.String()).
		Str("item_name", e.Item.DisplayName()).
		Msg("Playback started")
	return nil
}

// HandleProgress folds a progress report into the session's tracker.
func (m *Monitor) HandleProgress(msg *message.Message) error {
	e, ok := m.decode(msg)
	if !ok {
		return nil
	}

	key, ok := DeriveKey(e)
	if !ok {
		metrics.RecordEventSkipped("no_key")
		return nil
	}
	t, ok := m.registry.Get(key)
	if !ok {
		// Progress for an untracked session, likely one that started
		// before this process did.
		metrics.RecordEventSkipped("no_tracker")
		return nil
	}

	t.ProcessProgress(m.eventTime(e), e.PositionSeconds)
	return nil
}

// HandleStop finalizes the session and persists it when it clears the
// minimum duration bar. The tracker is removed from the registry whether or
// not a record is written.
func (m *Monitor) HandleStop(msg *message.Message) error {
	e, ok := m.decode(msg)
	if !ok {
		return nil
	}

	key, ok := DeriveKey(e)
	if !ok {
		metrics.RecordEventSkipped("no_key")
		return nil
	}
	t, ok := m.registry.Get(key)
	if !ok {
		metrics.RecordEventSkipped("no_tracker")
		m.logger.Debug().Str("key", key.String()).Msg("Stop for untracked session, skipping")
		return nil
	}

	finished, ok := t.ProcessStop(m.eventTime(e), e.PositionSeconds)
	m.registry.Remove(key)
	if !ok {
		return nil
	}

	if time.Duration(finished.DurationSeconds)*time.Second <= m.config.MinDuration {
		metrics.RecordDiscarded("below_min_duration")
		m.logger.Debug().
			Str("key", key.String()).
			Int64("duration_seconds", finished.DurationSeconds).
			Msg("Session below minimum duration, not persisting")
		return nil
	}

	record := m.buildRecord(e, finished)
	if err := m.store.AddPlaybackRecord(context.Background(), record); err != nil {
		metrics.RecordPersistFailure()
		m.logger.Error().
			Err(err).
			Str("key", key.String()).
			Msg("Failed to persist playback record")
		return nil
	}
	metrics.RecordPersisted()

	m.logger.Info().
		Str("key", key.String()).
		Str("item_name", record.ItemName).
		Str("play_method", record.PlayMethod).
		Int64("duration_seconds", record.DurationSeconds).
		Msg("Playback session recorded")
	return nil
}

// decode parses the message payload, counting parse failures. The bool
// result is false when the handler should ack and move on.
func (m *Monitor) decode(msg *message.Message) (*event.PlaybackEvent, bool) {
	e, err := event.Unmarshal(msg.Payload)
	if err != nil {
		metrics.RecordEventSkipped("parse_failed")
		m.logger.Warn().
			Err(err).
			Str("message_id", msg.UUID).
			Msg("Undecodable playback event, skipping")
		return nil, false
	}
	metrics.RecordEventReceived(string(e.Kind))
	return e, true
}

// eventTime returns the event's timestamp, or the current time when the host
// omitted one.
func (m *Monitor) eventTime(e *event.PlaybackEvent) time.Time {
	if e.Timestamp.IsZero() {
		return m.now().UTC()
	}
	return e.Timestamp
}

// buildRecord projects a finished session into its durable record. Resolved
// metadata wins where present; gaps fall back to what the stop event itself
// carried, with the play method defaulting to "na" when the resolver never
// delivered.
func (m *Monitor) buildRecord(e *event.PlaybackEvent, finished Finished) *models.PlaybackRecord {
	record := &models.PlaybackRecord{
		ID:              uuid.New(),
		Timestamp:       finished.StartedAt,
		UserID:          finished.Key.UserID,
		ItemID:          finished.Key.ItemID,
		ItemName:        e.Item.DisplayName(),
		ItemType:        e.MediaType(),
		ClientName:      e.ClientName,
		DeviceName:      e.DeviceName,
		PlayMethod:      models.PlayMethodUnknown,
		DurationSeconds: finished.DurationSeconds,
		CreatedAt:       m.now().UTC(),
	}

	if meta := finished.Meta; meta != nil {
		if meta.ItemName != "" {
			record.ItemName = meta.ItemName
		}
		if meta.ItemType != "" {
			record.ItemType = meta.ItemType
		}
		if meta.ClientName != "" {
			record.ClientName = meta.ClientName
		}
		if meta.DeviceName != "" {
			record.DeviceName = meta.DeviceName
		}
		if meta.PlayMethod != "" {
			record.PlayMethod = meta.PlayMethod
		}
	}
	return record
}
