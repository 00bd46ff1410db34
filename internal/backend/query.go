// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package backend

import (
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/filmflow/internal/metrics"
	"github.com/tomtom215/filmflow/internal/models"
)

// MovieQuery holds the movie/ list parameters. Zero values are omitted.
type MovieQuery struct {
	Page     int
	Search   string
	Ordering models.Ordering
	Genre    int
}

// Values encodes q as query parameters.
func (q MovieQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Ordering != models.OrderingNone {
		v.Set("ordering", string(q.Ordering))
	}
	if q.Genre > 0 {
		v.Set("genre", strconv.Itoa(q.Genre))
	}
	return v
}

// LibraryQuery holds the library/ list parameters. Ordering is sent with the
// movie__ prefix the library endpoint expects.
type LibraryQuery struct {
	Page     int
	Search   string
	Ordering models.Ordering
	Status   models.EntryStatus
}

// Values encodes q as query parameters.
func (q LibraryQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if p := q.Ordering.LibraryParam(); p != "" {
		v.Set("ordering", p)
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	return v
}

func recordRequest(op string, statusCode int, d time.Duration) {
	metrics.RecordBackendRequest(op, statusCode, d)
}

func recordRetry(op string) {
	metrics.BackendRateLimitRetries.WithLabelValues(op).Inc()
}
