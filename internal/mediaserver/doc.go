// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

// Package mediaserver implements the host media server API client used by
// the deferred metadata resolver. The client speaks the Emby/Jellyfin REST
// surface, is rate limited, and is normally wrapped in a circuit breaker so
// an unreachable host degrades to metadata-free reporting instead of piling
// up lookups.
package mediaserver
