// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package tracker

import (
	"github.com/tomtom215/chronicus/internal/event"
)

// Key correlates lifecycle events belonging to one playback session. Events
// from the same device, user, and item fold into the same tracker; any
// component differing means a distinct session.
type Key struct {
	DeviceID string
	UserID   string
	ItemID   string
}

// DeriveKey extracts the correlation key from a playback event. Only the
// first attached user participates in correlation. Returns false when the
// event is missing any key component, in which case it cannot be tracked.
func DeriveKey(e *event.PlaybackEvent) (Key, bool) {
	if e == nil || e.Item == nil {
		return Key{}, false
	}
	k := Key{
		DeviceID: e.DeviceID,
		UserID:   e.FirstUserID(),
		ItemID:   e.Item.ID,
	}
	if k.DeviceID == "" || k.UserID == "" || k.ItemID == "" {
		return Key{}, false
	}
	return k, true
}

// String renders the key in its canonical "<device>-<user>-<item>" form,
// used for logging and diagnostics.
func (k Key) String() string {
	return k.DeviceID + "-" + k.UserID + "-" + k.ItemID
}
