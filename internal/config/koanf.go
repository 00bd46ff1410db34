// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/filmflow/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:               "http://localhost:8000/api/",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 10,
			Burst:             20,
			MaxRetries:        3,
			RetryBaseDelay:    time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      2 * time.Minute,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Search: SearchConfig{
			Debounce: 400 * time.Millisecond,
			PageSize: 24,
		},
		Cache: CacheConfig{
			GenreTTL: 10 * time.Minute,
		},
		Session: SessionConfig{
			Status: "loading",
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            3900,
			CORSOrigins:     []string{"http://localhost:3000"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from three layers:
//  1. Built-in defaults
//  2. Optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"backend_url":                   "backend.url",
	"next_public_backend_url":       "backend.url",
	"backend_timeout":               "backend.timeout",
	"backend_requests_per_second":   "backend.requests_per_second",
	"backend_burst":                 "backend.burst",
	"backend_max_retries":           "backend.max_retries",
	"backend_retry_base_delay":      "backend.retry_base_delay",
	"circuit_breaker_enabled":       "backend.circuit_breaker.enabled",
	"circuit_breaker_max_requests":  "backend.circuit_breaker.max_requests",
	"circuit_breaker_interval":      "backend.circuit_breaker.interval",
	"circuit_breaker_timeout":       "backend.circuit_breaker.timeout",
	"circuit_breaker_min_requests":  "backend.circuit_breaker.min_requests",
	"circuit_breaker_failure_ratio": "backend.circuit_breaker.failure_ratio",
	"search_debounce":               "search.debounce",
	"page_size":                     "search.page_size",
	"genre_cache_ttl":               "cache.genre_ttl",
	"session_status":                "session.status",
	"access_token":                  "session.access_token",
	"session_username":              "session.username",
	"http_host":                     "server.host",
	"http_port":                     "server.port",
	"cors_origins":                  "server.cors_origins",
	"rate_limit_requests":           "server.rate_limit_reqs",
	"rate_limit_window":             "server.rate_limit_window",
	"shutdown_timeout":              "server.shutdown_timeout",
	"log_level":                     "logging.level",
	"log_format":                    "logging.format",
	"log_caller":                    "logging.caller",
}

// envTransformFunc maps BACKEND_URL -> backend.url and so on. Both
// BACKEND_URL and NEXT_PUBLIC_BACKEND_URL are accepted; set only one.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
