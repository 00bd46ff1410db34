// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

// Package config loads FilmFlow configuration from defaults, an optional YAML
// file and environment variables, in that order of increasing precedence.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Backend BackendConfig `koanf:"backend"`
	Search  SearchConfig  `koanf:"search"`
	Cache   CacheConfig   `koanf:"cache"`
	Session SessionConfig `koanf:"session"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// BackendConfig describes the remote catalog and library REST API.
type BackendConfig struct {
	// URL is the API root, e.g. http://localhost:8000/api/. Endpoint paths
	// such as movie/ are resolved relative to it.
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond and Burst bound outgoing calls. Zero disables limiting.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// MaxRetries applies to HTTP 429 responses only.
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// CircuitBreakerConfig tunes the breaker in front of the backend client.
type CircuitBreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// SearchConfig covers the search and library list pages.
type SearchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
	PageSize int           `koanf:"page_size"`
}

// CacheConfig covers in-memory caches. Nothing is persisted.
type CacheConfig struct {
	GenreTTL time.Duration `koanf:"genre_ttl"`
}

// SessionConfig seeds the session store at startup. The external auth
// integration normally replaces it through PUT /api/v1/session.
type SessionConfig struct {
	Status      string `koanf:"status"`
	AccessToken string `koanf:"access_token"`
	Username    string `koanf:"username"`
}

// ServerConfig covers the local view-model host.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
