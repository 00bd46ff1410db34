// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package backend

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/filmflow/internal/config"
	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/metrics"
	"github.com/tomtom215/filmflow/internal/models"
)

var _ API = (*CircuitBreakerClient)(nil)

// CircuitBreakerClient wraps an API with a circuit breaker so an unreachable
// backend fails fast instead of leaving every view spinning until timeout.
//
// 4xx responses (including the 404 that means "not in library") and caller
// cancellation count as successes: the backend answered, or nobody is waiting.
type CircuitBreakerClient struct {
	client API
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient wraps client using cfg.
func NewCircuitBreakerClient(client API, cfg config.CircuitBreakerConfig) *CircuitBreakerClient {
	cbName := "filmflow-backend"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			return err == nil ||
				IsClientError(err) ||
				errors.Is(err, ErrNoToken) ||
				errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: cbName}
}

// State returns the breaker state as closed, half-open or open.
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		case IsClientError(err):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
			counts := cbc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)
	return result, nil
}

// castResult type-asserts a breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
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

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// SearchMovies implements API.
func (cbc *CircuitBreakerClient) SearchMovies(ctx context.Context, token string, q MovieQuery) (*models.Page[models.Movie], error) {
	return castResult[*models.Page[models.Movie]](cbc.execute(func() (interface{}, error) {
		return cbc.client.SearchMovies(ctx, token, q)
	}))
}

// ListGenres implements API.
func (cbc *CircuitBreakerClient) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return castResult[[]models.Genre](cbc.execute(func() (interface{}, error) {
		return cbc.client.ListGenres(ctx)
	}))
}

// GetMovie implements API.
func (cbc *CircuitBreakerClient) GetMovie(ctx context.Context, slug string) (*models.Movie, error) {
	return castResult[*models.Movie](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetMovie(ctx, slug)
	}))
}

// ListReviews implements API.
func (cbc *CircuitBreakerClient) ListReviews(ctx context.Context, slug string) ([]models.Review, error) {
	return castResult[[]models.Review](cbc.execute(func() (interface{}, error) {
		return cbc.client.ListReviews(ctx, slug)
	}))
}

// SubmitReview implements API.
func (cbc *CircuitBreakerClient) SubmitReview(ctx context.Context, token string, movieID int, sub models.ReviewSubmission) (*models.Review, error) {
	return castResult[*models.Review](cbc.execute(func() (interface{}, error) {
		return cbc.client.SubmitReview(ctx, token, movieID, sub)
	}))
}

// GetEntry implements API.
func (cbc *CircuitBreakerClient) GetEntry(ctx context.Context, token string, movieID int) (*models.EntryRef, error) {
	return castResult[*models.EntryRef](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetEntry(ctx, token, movieID)
	}))
}

// AddEntry implements API.
func (cbc *CircuitBreakerClient) AddEntry(ctx context.Context, token string, movieID int) (*models.EntryRef, error) {
	return castResult[*models.EntryRef](cbc.execute(func() (interface{}, error) {
		return cbc.client.AddEntry(ctx, token, movieID)
	}))
}

// UpdateEntry implements API.
func (cbc *CircuitBreakerClient) UpdateEntry(ctx context.Context, token string, entryID int, status models.EntryStatus) (*models.EntryRef, error) {
	return castResult[*models.EntryRef](cbc.execute(func() (interface{}, error) {
		return cbc.client.UpdateEntry(ctx, token, entryID, status)
	}))
}

// DeleteEntry implements API.
func (cbc *CircuitBreakerClient) DeleteEntry(ctx context.Context, token string, entryID int) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.DeleteEntry(ctx, token, entryID)
	})
	return err
}

// ListLibrary implements API.
func (cbc *CircuitBreakerClient) ListLibrary(ctx context.Context, token string, q LibraryQuery) (*models.Page[models.LibraryEntry], error) {
	return castResult[*models.Page[models.LibraryEntry]](cbc.execute(func() (interface{}, error) {
		return cbc.client.ListLibrary(ctx, token, q)
	}))
}

// Recommendations implements API.
func (cbc *CircuitBreakerClient) Recommendations(ctx context.Context, token string) ([]models.Movie, error) {
	return castResult[[]models.Movie](cbc.execute(func() (interface{}, error) {
		return cbc.client.Recommendations(ctx, token)
	}))
}
