// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

/*
Package config provides layered application configuration.

Configuration is loaded with Koanf v2 from three sources, in increasing
precedence: built-in defaults, an optional YAML config file, and environment
variables. The result is validated with go-playground/validator before use.

# Config File

The file is searched at config.yaml, config.yml, /etc/chronicus/config.yaml,
and /etc/chronicus/config.yml, or wherever CONFIG_PATH points. Example:

	mediaserver:
	  enabled: true
	  url: http://media.local:8096
	  api_key: your-api-key
	database:
	  path: /data/chronicus.duckdb
	  max_memory: 1GB
	tracker:
	  min_duration: 20s
	  resolver_delay: 10s
	logging:
	  level: info
	  format: json

# Environment Variables

Every setting can be overridden through CHRONICUS_-prefixed variables, where
the first token selects the section:

	CHRONICUS_MEDIASERVER_URL=http://media.local:8096
	CHRONICUS_MEDIASERVER_API_KEY=your-api-key
	CHRONICUS_DATABASE_PATH=/data/chronicus.duckdb
	CHRONICUS_TRACKER_MIN_DURATION=20s
	CHRONICUS_LOGGING_LEVEL=debug
*/
package config
