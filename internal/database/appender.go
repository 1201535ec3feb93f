// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/chronicus/internal/logging"
	"github.com/tomtom215/chronicus/internal/metrics"
	"github.com/tomtom215/chronicus/internal/models"
)

// RecordInserter is the batch write surface the appender flushes through.
// *DB satisfies it; tests substitute fakes.
type RecordInserter interface {
	InsertPlaybackRecords(ctx context.Context, records []*models.PlaybackRecord) error
}

// AppenderConfig tunes the batch appender.
type AppenderConfig struct {
	BatchSize     int
	FlushInterval time.Duration
}

// AppenderStats holds runtime statistics for monitoring.
type AppenderStats struct {
	RecordsReceived int64
	RecordsFlushed  int64
	RecordsDropped  int64
	FlushCount      int64
	ErrorCount      int64
	LastFlushTime   time.Time
	LastError       string
	BufferSize      int
}

// Appender provides batch buffering and periodic flushing of playback
// records. Records buffer until the batch size is reached or the flush
// interval elapses. Persistence is fire-and-forget: a failed flush drops its
// records, logs the loss, and the pipeline moves on.
//
// Flush operations are serialized via flushMu so timer-based and
// batch-triggered flushes cannot interleave.
type Appender struct {
	store  RecordInserter
	config AppenderConfig

	mu     sync.Mutex
	buffer []*models.PlaybackRecord

	flushMu sync.Mutex

	closed   atomic.Bool
	started  atomic.Bool
	stopChan chan struct{}
	doneChan chan struct{}
	flushWg  sync.WaitGroup

	recordsReceived atomic.Int64
	recordsFlushed  atomic.Int64
	recordsDropped  atomic.Int64
	flushCount      atomic.Int64
	errorCount      atomic.Int64
	lastFlushTime   atomic.Value // time.Time
	lastError       atomic.Value // string
}

// NewAppender creates a new Appender over the given store.
func NewAppender(store RecordInserter, cfg AppenderConfig) (*Appender, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if cfg.FlushInterval <= 0 {
		return nil, fmt.Errorf("flush interval must be positive")
	}

	a := &Appender{
		store:    store,
		config:   cfg,
		buffer:   make([]*models.PlaybackRecord, 0, cfg.BatchSize),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	a.lastFlushTime.Store(time.Time{})
	a.lastError.Store("")
	return a, nil
}

// Start begins the periodic flush timer. Safe to call multiple times.
func (a *Appender) Start(ctx context.Context) error {
	if a.closed.Load() {
		return fmt.Errorf("appender is closed")
	}
	if a.started.Swap(true) {
		return nil
	}
	go a.flushLoop(ctx)
	return nil
}

// AddPlaybackRecord buffers a record for persistence. When the buffer
// reaches batch size an async flush is triggered.
func (a *Appender) AddPlaybackRecord(_ context.Context, record *models.PlaybackRecord) error {
	if a.closed.Load() {
		return fmt.Errorf("appender is closed")
	}

	a.mu.Lock()
	a.buffer = append(a.buffer, record)
	bufferSize := len(a.buffer)
	a.mu.Unlock()
	a.recordsReceived.Add(1)

	logging.Trace().
		Str("record_id", record.ID.String()).
		Int("buffer_size", bufferSize).
		Msg("Playback record buffered")

	if bufferSize >= a.config.BatchSize {
		a.flushWg.Add(1)
		go func() {
			defer a.flushWg.Done()
			// Detached context: the caller's context may be cancelled
			// as soon as its handler returns, but the flush must
			// still complete.
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			a.doFlush(flushCtx)
		}()
	}
	return nil
}

// Flush synchronously flushes all buffered records, waiting out any
// in-flight async flushes first.
func (a *Appender) Flush(ctx context.Context) error {
	a.flushWg.Wait()
	return a.doFlushSync(ctx)
}

// Close stops the appender and flushes pending records. Safe to call
// multiple times.
func (a *Appender) Close() error {
	if a.closed.Swap(true) {
		return nil
	}

	if a.started.Load() {
		close(a.stopChan)
		<-a.doneChan
	}
	a.flushWg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.doFlushSync(ctx)
}

// Stats returns current runtime statistics.
func (a *Appender) Stats() AppenderStats {
	a.mu.Lock()
	bufferSize := len(a.buffer)
	a.mu.Unlock()

	var lastFlushTime time.Time
	if t, ok := a.lastFlushTime.Load().(time.Time); ok {
		lastFlushTime = t
	}
	var lastError string
	if e, ok := a.lastError.Load().(string); ok {
		lastError = e
	}

	return AppenderStats{
		RecordsReceived: a.recordsReceived.Load(),
		RecordsFlushed:  a.recordsFlushed.Load(),
		RecordsDropped:  a.recordsDropped.Load(),
		FlushCount:      a.flushCount.Load(),
		ErrorCount:      a.errorCount.Load(),
		LastFlushTime:   lastFlushTime,
		LastError:       lastError,
		BufferSize:      bufferSize,
	}
}

// flushLoop runs the periodic flush timer. The parent context only controls
// shutdown; each flush gets its own fresh timeout.
func (a *Appender) flushLoop(ctx context.Context) {
	defer close(a.doneChan)

	ticker := time.NewTicker(a.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stopChan:
			return
		case <-ticker.C:
			flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			a.doFlush(flushCtx)
			cancel()
		}
	}
}

func (a *Appender) doFlush(ctx context.Context) {
	if err := a.doFlushSync(ctx); err != nil {
		logging.Debug().Err(err).Msg("Async flush error")
	}
}

// doFlushSync flushes the buffer in batch-sized chunks. A failed chunk drops
// that chunk and everything behind it: replaying is not possible once the
// session state is gone, so the loss is logged, counted, and accepted.
func (a *Appender) doFlushSync(ctx context.Context) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	if len(a.buffer) == 0 {
		a.mu.Unlock()
		return nil
	}
	records := a.buffer
	a.buffer = make([]*models.PlaybackRecord, 0, a.config.BatchSize)
	a.mu.Unlock()

	for start := 0; start < len(records); start += a.config.BatchSize {
		end := start + a.config.BatchSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		chunkStart := time.Now()
		err := a.store.InsertPlaybackRecords(ctx, chunk)
		elapsed := time.Since(chunkStart)

		if err != nil {
			dropped := len(records) - start
			a.errorCount.Add(1)
			a.recordsDropped.Add(int64(dropped))
			a.lastError.Store(err.Error())
			metrics.PersistFailures.Add(float64(dropped))
			logging.Error().
				Err(err).
				Int("dropped", dropped).
				Msg("Flush failed, dropping records")
			return fmt.Errorf("flush records (chunk %d-%d): %w", start, end, err)
		}

		a.recordsFlushed.Add(int64(len(chunk)))
		metrics.RecordBatchFlush(len(chunk), elapsed)
	}

	a.flushCount.Add(1)
	a.lastFlushTime.Store(time.Now())
	a.lastError.Store("")

	logging.Debug().
		Int("count", len(records)).
		Msg("Flushed playback records")
	return nil
}
