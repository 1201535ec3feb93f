// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the playback lifecycle stage an event reports.
type Kind string

// Playback lifecycle event kinds.
const (
	KindStart    Kind = "start"
	KindProgress Kind = "progress"
	KindStop     Kind = "stop"
)

// Topic prefix for playback events on the bus.
const topicPrefix = "playback."

// Topics for the three event kinds.
const (
	TopicStart    = topicPrefix + string(KindStart)
	TopicProgress = topicPrefix + string(KindProgress)
	TopicStop     = topicPrefix + string(KindStop)
)

// User is a user attached to a playback event. The host may attach several;
// only the first participates in session correlation.
type User struct {
	ID string `json:"id"`
}

// MediaInfo describes the media stream the session plays.
type MediaInfo struct {
	Type string `json:"type"` // "Video", "Audio"
}

// ItemKind tags the item variant, which selects the display-naming rule.
type ItemKind string

// Item variants.
const (
	ItemKindGeneric ItemKind = "generic"
	ItemKindEpisode ItemKind = "episode"
)

// NameNotKnown is the display name used when the item is absent or the
// fields needed for naming are missing.
const NameNotKnown = "Not Known"

// EpisodeDetails carries the fields the episodic naming rule needs.
type EpisodeDetails struct {
	SeriesName    string `json:"series_name"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
}

// Item identifies the content a playback event refers to. Kind selects the
// variant; Episode is set only for ItemKindEpisode.
type Item struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Kind         ItemKind        `json:"kind,omitempty"`
	IsThemeMedia bool            `json:"is_theme_media,omitempty"`
	Episode      *EpisodeDetails `json:"episode,omitempty"`
}

// DisplayName derives the human-readable item name for reporting.
// Episodic items render as "<series> - sNNeNN - <episode title>"; anything
// else uses the raw item name. A nil item or missing fields fall back to
// the NameNotKnown placeholder.
func (i *Item) DisplayName() string {
	if i == nil {
		return NameNotKnown
	}
	if i.Kind == ItemKindEpisode && i.Episode != nil && i.Episode.SeriesName != "" {
		return fmt.Sprintf("%s - s%02de%02d - %s",
			i.Episode.SeriesName,
			i.Episode.SeasonNumber,
			i.Episode.EpisodeNumber,
			i.Name)
	}
	if i.Name != "" {
		return i.Name
	}
	return NameNotKnown
}

// PlaybackEvent is the canonical playback lifecycle event delivered by the
// host. The same shape carries all three kinds; progress and stop events
// additionally report the playback position.
type PlaybackEvent struct {
	EventID   string    `json:"event_id"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	DeviceID   string `json:"device_id"`
	ClientName string `json:"client_name,omitempty"`
	DeviceName string `json:"device_name,omitempty"`

	Users     []User     `json:"users"`
	Item      *Item      `json:"item,omitempty"`
	MediaInfo *MediaInfo `json:"media_info,omitempty"`

	// PositionSeconds is the playback position for progress events and the
	// final accumulated position for stop events.
	PositionSeconds int64 `json:"position_seconds,omitempty"`
}

// NewPlaybackEvent creates an event with a unique ID and timestamp.
func NewPlaybackEvent(kind Kind) *PlaybackEvent {
	return &PlaybackEvent{
		EventID:   uuid.New().String(),
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	}
}

// Topic returns the bus topic for this event's kind.
func (e *PlaybackEvent) Topic() string {
	return topicPrefix + string(e.Kind)
}

// FirstUserID returns the correlating user's ID, or empty when no users
// are attached.
func (e *PlaybackEvent) FirstUserID() string {
	if len(e.Users) == 0 {
		return ""
	}
	return e.Users[0].ID
}

// MediaType returns the media info type, or empty when media info is absent.
func (e *PlaybackEvent) MediaType() string {
	if e.MediaInfo == nil {
		return ""
	}
	return e.MediaInfo.Type
}

// Validate checks required fields and returns an error if validation fails.
func (e *PlaybackEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	switch e.Kind {
	case KindStart, KindProgress, KindStop:
	default:
		return &ValidationError{Field: "kind", Message: "unknown kind"}
	}
	if e.DeviceID == "" {
		return &ValidationError{Field: "device_id", Message: "required"}
	}
	return nil
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
