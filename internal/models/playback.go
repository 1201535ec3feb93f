// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package models

import (
	"time"

	"github.com/google/uuid"
)

// PlaybackRecord is the durable artifact written once a playback session
// both ends and clears the minimum-duration bar. Written once, never
// mutated.
type PlaybackRecord struct {
	ID              uuid.UUID `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	UserID          string    `json:"user_id"`
	ItemID          string    `json:"item_id"`
	ItemName        string    `json:"item_name"`
	ItemType        string    `json:"item_type"`
	ClientName      string    `json:"client_name,omitempty"`
	DeviceName      string    `json:"device_name,omitempty"`
	PlayMethod      string    `json:"play_method"`
	DurationSeconds int64     `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}
