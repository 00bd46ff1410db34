// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tomtom215/filmflow/internal/cache"
	"github.com/tomtom215/filmflow/internal/config"
	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/models"
)

// API is the set of backend operations the sync layer depends on.
// Both Client and CircuitBreakerClient implement it.
type API interface {
	SearchMovies(ctx context.Context, token string, q MovieQuery) (*models.Page[models.Movie], error)
	ListGenres(ctx context.Context) ([]models.Genre, error)
	GetMovie(ctx context.Context, slug string) (*models.Movie, error)
	ListReviews(ctx context.Context, slug string) ([]models.Review, error)
	SubmitReview(ctx context.Context, token string, movieID int, sub models.ReviewSubmission) (*models.Review, error)
	GetEntry(ctx context.Context, token string, movieID int) (*models.EntryRef, error)
	AddEntry(ctx context.Context, token string, movieID int) (*models.EntryRef, error)
	UpdateEntry(ctx context.Context, token string, entryID int, status models.EntryStatus) (*models.EntryRef, error)
	DeleteEntry(ctx context.Context, token string, entryID int) error
	ListLibrary(ctx context.Context, token string, q LibraryQuery) (*models.Page[models.LibraryEntry], error)
	Recommendations(ctx context.Context, token string) ([]models.Movie, error)
}

var _ API = (*Client)(nil)

// maxErrorBodySize bounds how much of an error response is kept.
const maxErrorBodySize = 64 * 1024

const genresCacheKey = "genres"

// Client talks to the backend over HTTP.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
	genres         *cache.Cache[[]models.Genre]
}

// NewClient creates a client from backend configuration. A trailing slash is
// added to the base URL so that relative endpoint paths resolve beneath it.
func NewClient(cfg config.BackendConfig, genreTTL time.Duration) (*Client, error) {
	raw := cfg.URL
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:        base,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		limiter:        limiter,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		genres:         cache.New[[]models.Genre]("genres", genreTTL),
	}, nil
}

// GenreCache returns the cache holding the genre list, so its janitor can
// be supervised.
func (c *Client) GenreCache() *cache.Cache[[]models.Genre] {
	return c.genres
}

// requestConfig describes one backend call.
type requestConfig struct {
	op     string // metrics and error label
	method string
	path   string // escaped, relative to the base URL
	query  url.Values
	body   interface{}
	token  string
	auth   bool // endpoint requires a bearer token
}

// do executes cfg and decodes a 2xx body into result when result is non-nil.
func (c *Client) do(ctx context.Context, cfg requestConfig, result interface{}) error {
	if cfg.auth && cfg.token == "" {
		return fmt.Errorf("%s: %w", cfg.op, ErrNoToken)
	}

	var payload []byte
	if cfg.body != nil {
		var err error
		if payload, err = json.Marshal(cfg.body); err != nil {
			return fmt.Errorf("%s: encode body: %w", cfg.op, err)
		}
	}

	ref, err := url.Parse(cfg.path)
	if err != nil {
		return fmt.Errorf("%s: path: %w", cfg.op, err)
	}
	if len(cfg.query) > 0 {
		ref.RawQuery = cfg.query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(ref).String()

	resp, err := c.doRequestWithRateLimit(ctx, cfg, reqURL, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Op:         cfg.op,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	// An empty 200 body leaves result untouched.
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: decode response: %w", cfg.op, err)
	}
	return nil
}

// doRequestWithRateLimit waits on the client-side limiter, sends the request
// and retries HTTP 429 responses with exponential backoff. Retry-After (in
// seconds) overrides the computed delay. ctx cancels any wait.
func (c *Client) doRequestWithRateLimit(ctx context.Context, cfg requestConfig, reqURL string, payload []byte) (*http.Response, error) {
	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var body io.Reader = http.NoBody
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, cfg.method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if cfg.token != "" {
			req.Header.Set("Authorization", "Bearer "+cfg.token)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			recordRequest(cfg.op, 0, time.Since(start))
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		recordRequest(cfg.op, resp.StatusCode, time.Since(start))

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, &StatusError{
				Op:         cfg.op,
				StatusCode: http.StatusTooManyRequests,
				Body:       fmt.Sprintf("rate limit exceeded after %d retries", c.maxRetries),
			}
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			delay = time.Duration(secs) * time.Second
		}
		recordRetry(cfg.op)
		logging.Ctx(ctx).Debug().
			Str("op", cfg.op).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("backend rate limited, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

// readBodyForError reads at most maxErrorBodySize bytes of an error body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
