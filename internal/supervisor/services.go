// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/chronicus/internal/database"
	"github.com/tomtom215/chronicus/internal/event"
	"github.com/tomtom215/chronicus/internal/logging"
)

// AppenderService runs the batch appender under supervision. The appender's
// flush loop follows the service context; pending records flush on the way
// out.
type AppenderService struct {
	appender *database.Appender
}

// NewAppenderService wraps an appender as a suture service.
func NewAppenderService(appender *database.Appender) *AppenderService {
	return &AppenderService{appender: appender}
}

// Serve implements suture.Service.
func (s *AppenderService) Serve(ctx context.Context) error {
	if err := s.appender.Start(ctx); err != nil {
		return fmt.Errorf("start appender: %w", err)
	}

	<-ctx.Done()

	flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.appender.Flush(flushCtx); err != nil {
		logging.Warn().Err(err).Msg("Final appender flush failed")
	}
	return ctx.Err()
}

// RouterService runs the event router under supervision.
type RouterService struct {
	router *event.Router
}

// NewRouterService wraps a router as a suture service.
func NewRouterService(router *event.Router) *RouterService {
	return &RouterService{router: router}
}

// Serve implements suture.Service. The router blocks until the context is
// cancelled; a clean stop is reported as context error so suture does not
// restart a deliberately stopped router.
func (s *RouterService) Serve(ctx context.Context) error {
	if err := s.router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

// HTTPServer matches *http.Server's lifecycle surface.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTP server under supervision, translating the
// blocking ListenAndServe pattern into suture's context-aware Serve.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPServerService wraps an HTTP server as a suture service.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve implements suture.Service.
func (s *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("HTTP server shutdown incomplete")
		}
		return ctx.Err()
	}
}
