// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chronicus/internal/database"
	"github.com/tomtom215/chronicus/internal/logging"
	"github.com/tomtom215/chronicus/internal/models"
	"github.com/tomtom215/chronicus/internal/tracker"
)

// Handler implements the ops endpoints.
type Handler struct {
	db       *database.DB
	registry *tracker.Registry
	appender *database.Appender
}

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
}

// StatsResponse is the /api/v1/stats payload.
type StatsResponse struct {
	ActiveSessions  int   `json:"active_sessions"`
	RecordsTotal    int64 `json:"records_total"`
	RecordsBuffered int   `json:"records_buffered"`
	RecordsFlushed  int64 `json:"records_flushed"`
	RecordsDropped  int64 `json:"records_dropped"`
	FlushErrors     int64 `json:"flush_errors"`
}

// RecordsResponse is the /api/v1/records/recent payload.
type RecordsResponse struct {
	Records []*models.PlaybackRecord `json:"records"`
	Count   int                      `json:"count"`
}

// Health reports liveness and the number of in-flight sessions.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		ActiveSessions: h.registry.Len(),
	})
}

// Ready reports readiness; the process is ready once the database answers.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logging.Warn().Err(err).Msg("Readiness check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Stats reports pipeline statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.db.CountPlaybackRecords(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to count playback records")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	appenderStats := h.appender.Stats()
	writeJSON(w, http.StatusOK, StatsResponse{
		ActiveSessions:  h.registry.Len(),
		RecordsTotal:    total,
		RecordsBuffered: appenderStats.BufferSize,
		RecordsFlushed:  appenderStats.RecordsFlushed,
		RecordsDropped:  appenderStats.RecordsDropped,
		FlushErrors:     appenderStats.ErrorCount,
	})
}

// RecentRecords returns records from the trailing window. Query parameters:
// hours (default 24, max 720) and limit (default 100, max 1000).
func (h *Handler) RecentRecords(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24, 1, 720)
	limit := queryInt(r, "limit", 100, 1, 1000)

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	records, err := h.db.ListPlaybackRecordsSince(r.Context(), since, limit)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list playback records")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []*models.PlaybackRecord{}
	}
	writeJSON(w, http.StatusOK, RecordsResponse{
		Records: records,
		Count:   len(records),
	})
}

func queryInt(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Debug().Err(err).Msg("Failed to encode response")
	}
}
