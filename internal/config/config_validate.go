// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/filmflow/internal/logging"
)

var validSessionStatuses = map[string]bool{
	"loading":         true,
	"authenticated":   true,
	"unauthenticated": true,
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBackend() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if err := validateHTTPURL(c.Backend.URL, "BACKEND_URL"); err != nil {
		return err
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.Backend.RequestsPerSecond < 0 {
		return fmt.Errorf("BACKEND_REQUESTS_PER_SECOND must not be negative")
	}
	if c.Backend.MaxRetries < 0 {
		return fmt.Errorf("BACKEND_MAX_RETRIES must not be negative")
	}
	cb := c.Backend.CircuitBreaker
	if cb.Enabled && (cb.FailureRatio <= 0 || cb.FailureRatio > 1) {
		return fmt.Errorf("CIRCUIT_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.Debounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must not be negative")
	}
	if c.Search.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.Status != "" && !validSessionStatuses[c.Session.Status] {
		return fmt.Errorf("SESSION_STATUS must be one of: loading, authenticated, unauthenticated")
	}
	if c.Session.Status == "authenticated" && c.Session.AccessToken == "" {
		return fmt.Errorf("ACCESS_TOKEN is required when SESSION_STATUS=authenticated")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error, fatal, disabled")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}

// validateHTTPURL checks scheme and host. Unlike a server base URL the
// backend root may carry a path prefix such as /api/, but no query.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}
