// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEventReceived(t *testing.T) {
	before := testutil.ToFloat64(EventsReceived.WithLabelValues("start"))
	RecordEventReceived("start")
	after := testutil.ToFloat64(EventsReceived.WithLabelValues("start"))
	if after != before+1 {
		t.Errorf("Expected counter to increase by 1, got %f -> %f", before, after)
	}
}

func TestRecordEventSkipped(t *testing.T) {
	before := testutil.ToFloat64(EventsSkipped.WithLabelValues("theme_media"))
	RecordEventSkipped("theme_media")
	after := testutil.ToFloat64(EventsSkipped.WithLabelValues("theme_media"))
	if after != before+1 {
		t.Errorf("Expected counter to increase by 1, got %f -> %f", before, after)
	}
}

func TestSetActiveTrackers(t *testing.T) {
	SetActiveTrackers(7)
	if got := testutil.ToFloat64(TrackersActive); got != 7 {
		t.Errorf("Expected gauge 7, got %f", got)
	}
	SetActiveTrackers(0)
	if got := testutil.ToFloat64(TrackersActive); got != 0 {
		t.Errorf("Expected gauge 0, got %f", got)
	}
}

func TestRecordResolverLookup(t *testing.T) {
	before := testutil.ToFloat64(ResolverLookups.WithLabelValues("resolved"))
	RecordResolverLookup("resolved", 25*time.Millisecond)
	after := testutil.ToFloat64(ResolverLookups.WithLabelValues("resolved"))
	if after != before+1 {
		t.Errorf("Expected counter to increase by 1, got %f -> %f", before, after)
	}
}

func TestRecordDBQuery(t *testing.T) {
	errBefore := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "playback_records"))
	RecordDBQuery("insert", "playback_records", 5*time.Millisecond, nil)
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "playback_records")); got != errBefore {
		t.Errorf("Expected no error increment on success, got %f -> %f", errBefore, got)
	}

	RecordDBQuery("insert", "playback_records", 5*time.Millisecond, errors.New("constraint violation"))
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "playback_records")); got != errBefore+1 {
		t.Errorf("Expected error counter to increase by 1, got %f -> %f", errBefore, got)
	}
}

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("mediaserver", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("mediaserver")); got != 2 {
		t.Errorf("Expected state 2, got %f", got)
	}
}

func TestRecordPersistenceOutcomes(t *testing.T) {
	persisted := testutil.ToFloat64(RecordsPersisted)
	discarded := testutil.ToFloat64(RecordsDiscarded.WithLabelValues("below_min_duration"))
	failures := testutil.ToFloat64(PersistFailures)

	RecordPersisted()
	RecordDiscarded("below_min_duration")
	RecordPersistFailure()

	if got := testutil.ToFloat64(RecordsPersisted); got != persisted+1 {
		t.Errorf("Expected persisted counter +1, got %f -> %f", persisted, got)
	}
	if got := testutil.ToFloat64(RecordsDiscarded.WithLabelValues("below_min_duration")); got != discarded+1 {
		t.Errorf("Expected discarded counter +1, got %f -> %f", discarded, got)
	}
	if got := testutil.ToFloat64(PersistFailures); got != failures+1 {
		t.Errorf("Expected failure counter +1, got %f -> %f", failures, got)
	}
}
