// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root application configuration.
type Config struct {
	MediaServer MediaServerConfig `koanf:"mediaserver"`
	Database    DatabaseConfig    `koanf:"database"`
	Tracker     TrackerConfig     `koanf:"tracker"`
	Bus         BusConfig         `koanf:"bus"`
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// MediaServerConfig holds the host media server API settings. The API is
// only consulted by the deferred metadata resolver; when disabled, sessions
// report without resolved metadata.
type MediaServerConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url" validate:"required_if=Enabled true,omitempty,http_url"`
	APIKey         string        `koanf:"api_key" validate:"required_if=Enabled true"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"min=0"`

	// RateLimitPerSecond caps session list queries against the host.
	RateLimitPerSecond float64 `koanf:"rate_limit_per_second" validate:"min=0"`
	RateLimitBurst     int     `koanf:"rate_limit_burst" validate:"min=0"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"min=0"` // 0 = use NumCPU

	// Batch appender tuning.
	BatchSize     int           `koanf:"batch_size" validate:"min=1"`
	FlushInterval time.Duration `koanf:"flush_interval" validate:"min=1ms"`
}

// TrackerConfig holds session tracking behavior settings.
type TrackerConfig struct {
	// MinDuration is the persistence bar; sessions must play strictly
	// longer to produce a record.
	MinDuration time.Duration `koanf:"min_duration" validate:"min=0"`

	// ResolverDelay is how long after a start event the deferred metadata
	// lookup fires.
	ResolverDelay time.Duration `koanf:"resolver_delay" validate:"min=0"`

	// LookupTimeout bounds each metadata lookup request.
	LookupTimeout time.Duration `koanf:"lookup_timeout" validate:"min=1ms"`
}

// BusConfig holds in-process event bus settings.
type BusConfig struct {
	OutputChannelBuffer int64         `koanf:"output_channel_buffer" validate:"min=0"`
	CloseTimeout        time.Duration `koanf:"close_timeout" validate:"min=1ms"`
}

// ServerConfig holds the ops HTTP listener settings.
type ServerConfig struct {
	Host    string        `koanf:"host" validate:"required"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1ms"`

	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"min=1ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		MediaServer: MediaServerConfig{
			Enabled:            false, // Standalone mode by default
			URL:                "",
			APIKey:             "",
			RequestTimeout:     10 * time.Second,
			RateLimitPerSecond: 5,
			RateLimitBurst:     10,
		},
		Database: DatabaseConfig{
			Path:          "/data/chronicus.duckdb",
			MaxMemory:     "1GB",
			Threads:       0,
			BatchSize:     100,
			FlushInterval: 5 * time.Second,
		},
		Tracker: TrackerConfig{
			MinDuration:   20 * time.Second,
			ResolverDelay: 10 * time.Second,
			LookupTimeout: 5 * time.Second,
		},
		Bus: BusConfig{
			OutputChannelBuffer: 256,
			CloseTimeout:        30 * time.Second,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8240,
			Timeout:           30 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid configuration: field %s failed %q validation", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
