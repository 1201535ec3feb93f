// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

// Package main is the entry point for the Chronicus server.
//
// Chronicus tracks media playback sessions from start to stop, resolves
// session metadata against the host media server, and persists finished
// sessions that played long enough to count as real watch activity.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 loading (defaults, config file, env)
//  2. Database: DuckDB storage for playback records, plus the batch appender
//  3. Media server client: rate-limited /Sessions client behind a circuit
//     breaker (only when MEDIASERVER_ENABLED=true)
//  4. Tracking pipeline: registry, deferred metadata resolver, and the
//     playback event monitor wired to the Watermill router
//  5. Supervisor tree: appender, router, and ops HTTP listener run as
//     supervised services
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables with the CHRONICUS_ prefix
//   - Config file (config.yaml, /etc/chronicus/config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// Metadata enrichment requires the host media server connection:
//
//	export CHRONICUS_MEDIASERVER_ENABLED=true
//	export CHRONICUS_MEDIASERVER_URL=http://emby:8096
//	export CHRONICUS_MEDIASERVER_API_KEY=your-api-key
//
// Without it, sessions are still tracked and persisted with the metadata
// carried on the stop event.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections on the ops listener
//   - Drains the event router
//   - Flushes pending playback records before closing the database
package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/chronicus/internal/config"
	"github.com/tomtom215/chronicus/internal/database"
	"github.com/tomtom215/chronicus/internal/event"
	"github.com/tomtom215/chronicus/internal/logging"
	"github.com/tomtom215/chronicus/internal/mediaserver"
	"github.com/tomtom215/chronicus/internal/server"
	"github.com/tomtom215/chronicus/internal/supervisor"
	"github.com/tomtom215/chronicus/internal/tracker"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("mediaserver_enabled", cfg.MediaServer.Enabled).
		Dur("min_duration", cfg.Tracker.MinDuration).
		Msg("Starting Chronicus")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	appender, err := database.NewAppender(db, database.AppenderConfig{
		BatchSize:     cfg.Database.BatchSize,
		FlushInterval: cfg.Database.FlushInterval,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create batch appender")
	}

	registry := tracker.NewRegistry()

	// The deferred resolver only runs when the host media server connection
	// is configured. Without it, stops fall back to the metadata carried on
	// the stop event itself.
	var resolver *tracker.Resolver
	if cfg.MediaServer.Enabled {
		client := mediaserver.NewBreakerClient(mediaserver.NewClient(&cfg.MediaServer))
		if err := client.Ping(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("Media server unreachable at startup (will retry per lookup)")
		}
		resolver = tracker.NewResolver(registry, client, tracker.ResolverConfig{
			Delay:         cfg.Tracker.ResolverDelay,
			LookupTimeout: cfg.Tracker.LookupTimeout,
		})
	} else {
		logging.Info().Msg("Media server integration disabled, deferred metadata resolution is off")
	}

	wmLogger := logging.NewWatermillAdapter()
	bus := event.NewBus(event.BusConfig{
		OutputChannelBuffer: cfg.Bus.OutputChannelBuffer,
	}, wmLogger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	router, err := event.NewRouter(&event.RouterConfig{
		CloseTimeout: cfg.Bus.CloseTimeout,
	}, wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event router")
	}

	monitor := tracker.NewMonitor(registry, resolver, appender, tracker.MonitorConfig{
		MinDuration: cfg.Tracker.MinDuration,
	})
	monitor.Register(router, bus.Subscriber())

	srv := server.New(&cfg.Server, db, registry, appender)

	slogLogger := slog.New(logging.NewSlogHandler())
	tree := supervisor.NewTree(slogLogger, supervisor.DefaultTreeConfig())
	tree.AddDataService(supervisor.NewAppenderService(appender))
	tree.AddMessagingService(supervisor.NewRouterService(router))
	tree.AddOpsService(supervisor.NewHTTPServerService(srv, cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Supervisor tree starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree exited with error")
	}

	// The supervisor already flushed the appender on the way down; Close is
	// idempotent and catches anything accepted after the final flush.
	if err := appender.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing appender")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Checkpoint(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("Final checkpoint failed")
	}

	logging.Info().Msg("Shutdown complete")
}
