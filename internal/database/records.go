// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/chronicus/internal/metrics"
	"github.com/tomtom215/chronicus/internal/models"
)

const insertPlaybackRecordSQL = `
INSERT INTO playback_records (
	id, timestamp, user_id, item_id, item_name, item_type,
	client_name, device_name, play_method, duration_seconds, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`

// InsertPlaybackRecord writes a single playback record.
func (db *DB) InsertPlaybackRecord(ctx context.Context, record *models.PlaybackRecord) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, insertPlaybackRecordSQL,
		record.ID, record.Timestamp, record.UserID, record.ItemID,
		record.ItemName, record.ItemType, record.ClientName, record.DeviceName,
		record.PlayMethod, record.DurationSeconds, record.CreatedAt)
	metrics.RecordDBQuery("insert", "playback_records", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert playback record: %w", err)
	}
	return nil
}

// InsertPlaybackRecords writes a batch of playback records in one
// transaction. Either the whole batch lands or none of it does.
func (db *DB) InsertPlaybackRecords(ctx context.Context, records []*models.PlaybackRecord) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordDBQuery("insert_batch", "playback_records", time.Since(start), err)
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertPlaybackRecordSQL)
	if err != nil {
		_ = tx.Rollback()
		metrics.RecordDBQuery("insert_batch", "playback_records", time.Since(start), err)
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.ExecContext(ctx,
			record.ID, record.Timestamp, record.UserID, record.ItemID,
			record.ItemName, record.ItemType, record.ClientName, record.DeviceName,
			record.PlayMethod, record.DurationSeconds, record.CreatedAt); err != nil {
			_ = tx.Rollback()
			metrics.RecordDBQuery("insert_batch", "playback_records", time.Since(start), err)
			return fmt.Errorf("insert playback record %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordDBQuery("insert_batch", "playback_records", time.Since(start), err)
		return fmt.Errorf("commit batch: %w", err)
	}
	metrics.RecordDBQuery("insert_batch", "playback_records", time.Since(start), nil)
	return nil
}

// CountPlaybackRecords returns the total number of persisted records.
func (db *DB) CountPlaybackRecords(ctx context.Context) (int64, error) {
	start := time.Now()
	var count int64
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM playback_records").Scan(&count)
	metrics.RecordDBQuery("count", "playback_records", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count playback records: %w", err)
	}
	return count, nil
}

// ListPlaybackRecordsSince returns records whose session started at or after
// since, newest first, capped at limit.
func (db *DB) ListPlaybackRecordsSince(ctx context.Context, since time.Time, limit int) ([]*models.PlaybackRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, timestamp, user_id, item_id, item_name, item_type,
			client_name, device_name, play_method, duration_seconds, created_at
		FROM playback_records
		WHERE timestamp >= ?
		ORDER BY timestamp DESC
		LIMIT ?`, since, limit)
	metrics.RecordDBQuery("select", "playback_records", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("list playback records: %w", err)
	}
	defer rows.Close()

	var records []*models.PlaybackRecord
	for rows.Next() {
		record := &models.PlaybackRecord{}
		if err := rows.Scan(&record.ID, &record.Timestamp, &record.UserID,
			&record.ItemID, &record.ItemName, &record.ItemType,
			&record.ClientName, &record.DeviceName, &record.PlayMethod,
			&record.DurationSeconds, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan playback record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playback records: %w", err)
	}
	return records, nil
}
