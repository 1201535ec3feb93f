// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package database

import (
	"context"
	"fmt"
	"time"
)

// playback_records is append-only: one row per finished session that cleared
// the minimum duration bar. Rows are never updated.
const createPlaybackRecordsTable = `
CREATE TABLE IF NOT EXISTS playback_records (
	id UUID PRIMARY KEY,
	timestamp TIMESTAMP NOT NULL,
	user_id VARCHAR NOT NULL,
	item_id VARCHAR NOT NULL,
	item_name VARCHAR NOT NULL,
	item_type VARCHAR,
	client_name VARCHAR,
	device_name VARCHAR,
	play_method VARCHAR NOT NULL,
	duration_seconds BIGINT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`

var playbackRecordIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_playback_records_timestamp ON playback_records(timestamp)",
	"CREATE INDEX IF NOT EXISTS idx_playback_records_user_id ON playback_records(user_id)",
	"CREATE INDEX IF NOT EXISTS idx_playback_records_item_id ON playback_records(item_id)",
}

// createTables creates the schema if it doesn't exist.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, createPlaybackRecordsTable); err != nil {
		return fmt.Errorf("create playback_records table: %w", err)
	}
	return nil
}

// createIndexes creates the query indexes.
func (db *DB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range playbackRecordIndexes {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
