// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

/*
client.go - Media server REST API client

Implements the host session list API (Emby/Jellyfin-compatible). The client
is consulted only by the deferred metadata resolver, so the request surface
is small: the live session list, filtered by device and client.

API reference: https://dev.emby.media/doc/restapi/index.html
*/

package mediaserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/chronicus/internal/config"
	"github.com/tomtom215/chronicus/internal/metrics"
	"github.com/tomtom215/chronicus/internal/models"
	"github.com/tomtom215/chronicus/internal/tracker"
)

// Client provides access to the host media server REST API. Requests pass
// through a token-bucket rate limiter so resolver bursts cannot hammer the
// host.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Ensure Client satisfies the resolver's lookup interface.
var _ tracker.SessionSource = (*Client)(nil)

// NewClient creates a new media server API client.
func NewClient(cfg *config.MediaServerConfig) *Client {
	limit := rate.Limit(cfg.RateLimitPerSecond)
	if cfg.RateLimitPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
	}
}

// GetSessions retrieves all live sessions from the host.
func (c *Client) GetSessions(ctx context.Context) ([]models.LiveSession, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	resp, err := c.doRequest(ctx, "/Sessions")
	if err != nil {
		metrics.RecordSessionAPIRequest("error", time.Since(start))
		return nil, fmt.Errorf("sessions request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordSessionAPIRequest("error", time.Since(start))
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 512))
		if readErr != nil {
			return nil, fmt.Errorf("sessions returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("sessions returned status %d: %s", resp.StatusCode, string(body))
	}

	var sessions []models.LiveSession
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		metrics.RecordSessionAPIRequest("error", time.Since(start))
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	metrics.RecordSessionAPIRequest("ok", time.Since(start))
	return sessions, nil
}

// GetSession returns the live session matching deviceID, and clientName when
// one is given. Returns tracker.ErrSessionNotFound when no session matches.
func (c *Client) GetSession(ctx context.Context, deviceID, clientName string) (*models.LiveSession, error) {
	sessions, err := c.GetSessions(ctx)
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		s := &sessions[i]
		if s.DeviceID != deviceID {
			continue
		}
		if clientName != "" && s.Client != clientName {
			continue
		}
		return s, nil
	}
	return nil, tracker.ErrSessionNotFound
}

// Ping checks connectivity to the host.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.doRequest(ctx, "/System/Info/Public")
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}
