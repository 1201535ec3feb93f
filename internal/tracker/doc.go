// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

/*
Package tracker implements the playback session tracking core.

A playback session is correlated by a composite key derived from the device,
the first attached user, and the item being played. Each live session owns a
Tracker holding its observed state; the concurrent Registry maps keys to
trackers for the lifetime of the session.

The Monitor subscribes to the host's playback lifecycle events. A start event
creates a tracker (evicting any stale tracker under the same key) and
schedules the deferred metadata Resolver, which waits for the host to settle
before querying the live session list for enrichment details. A stop event
finalizes the tracker, removes it from the registry, and hands the finished
session to the persistence gateway when it clears the minimum duration bar.

Sessions that never receive a stop event remain in the registry until a later
start event under the same key replaces them.
*/
package tracker
