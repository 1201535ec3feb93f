// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

// Package supervisor provides Suture-based process supervision.
//
// Long-running components (the batch appender, the event router, the ops
// HTTP listener) run as supervised services in a three-layer tree, so a
// panic or crash in one restarts only that service. Supervision events are
// logged through sutureslog into the application's structured logger.
package supervisor
