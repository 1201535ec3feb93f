// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package mediaserver

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/chronicus/internal/logging"
	"github.com/tomtom215/chronicus/internal/metrics"
	"github.com/tomtom215/chronicus/internal/models"
	"github.com/tomtom215/chronicus/internal/tracker"
)

// breakerName labels this breaker in logs and metrics.
const breakerName = "mediaserver-api"

// BreakerClient wraps Client with a circuit breaker so a dead or slow host
// cannot pile up resolver goroutines. While the circuit is open, lookups
// fail fast and sessions report without metadata.
//
// The breaker runs on real time (via sony/gobreaker); its timing governs
// recovery, not data integrity. A session lookup miss is a valid answer and
// never counts as a failure.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[*models.LiveSession]
}

// Ensure BreakerClient satisfies the resolver's lookup interface.
var _ tracker.SessionSource = (*BreakerClient)(nil)

// NewBreakerClient wraps client with circuit breaker protection.
// Configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 1 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 5 requests
func NewBreakerClient(client *Client) *BreakerClient {
	metrics.SetCircuitBreakerState(breakerName, stateToFloat(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[*models.LiveSession](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},

		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, tracker.ErrSessionNotFound)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.SetCircuitBreakerState(name, stateToFloat(to))
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})

	return &BreakerClient{client: client, cb: cb}
}

// GetSession looks up a live session through the breaker.
func (b *BreakerClient) GetSession(ctx context.Context, deviceID, clientName string) (*models.LiveSession, error) {
	session, err := b.cb.Execute(func() (*models.LiveSession, error) {
		return b.client.GetSession(ctx, deviceID, clientName)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Err(err).Msg("Session lookup rejected by circuit breaker")
		}
		return nil, err
	}
	return session, nil
}

// Ping checks host reachability. It bypasses the breaker so a startup
// probe cannot pre-open the circuit.
func (b *BreakerClient) Ping(ctx context.Context) error {
	return b.client.Ping(ctx)
}

// State returns the breaker's current state.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
