// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

// Package paging fetches paginated lists and keeps the displayed page
// consistent while requests overlap.
//
// Every request is stamped with a generation number. Only the response to
// the latest generation is applied; an earlier response that arrives late is
// counted and dropped, so a slow first search can never overwrite the
// results of a faster second one.
package paging

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/metrics"
	"github.com/tomtom215/filmflow/internal/models"
)

// FetchFunc loads the page selected by c.
type FetchFunc[T any] func(ctx context.Context, c Criteria) (*models.Page[T], error)

// State is a snapshot of a fetcher. Items is replaced wholesale on every
// applied response and never merged.
type State[T any] struct {
	Criteria  Criteria `json:"criteria"`
	Items     []T      `json:"items"`
	Total     int      `json:"total"`
	Pages     int      `json:"pages"`
	Loading   bool     `json:"loading"`
	Loaded    bool     `json:"loaded"`
	LastError string   `json:"last_error,omitempty"`
}

// Fetcher issues page requests and applies only the latest response.
type Fetcher[T any] struct {
	name      string
	fetch     FetchFunc[T]
	pageSize  int
	onChange  func()
	onApplied func()
	onFailed  func(Criteria)
	logger    zerolog.Logger

	mu     sync.Mutex
	gen    uint64
	state  State[T]
	closed bool
}

// NewFetcher creates a fetcher. name labels logs and metrics; onChange (may
// be nil) is called after every state change, outside the lock.
func NewFetcher[T any](name string, pageSize int, fetch FetchFunc[T], onChange func()) *Fetcher[T] {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	if onChange == nil {
		onChange = func() {}
	}
	return &Fetcher[T]{
		name:     name,
		fetch:    fetch,
		pageSize: pageSize,
		onChange: onChange,
		logger:   logging.WithComponent("paging").With().Str("source", name).Logger(),
		state:    State[T]{Criteria: NewCriteria(), Pages: 1},
	}
}

// Request starts fetching c and supersedes any request still in flight.
// The returned channel closes once this request has been applied or
// discarded.
func (f *Fetcher[T]) Request(ctx context.Context, c Criteria) <-chan struct{} {
	done := make(chan struct{})

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		close(done)
		return done
	}
	f.gen++
	gen := f.gen
	f.state.Loading = true
	f.mu.Unlock()

	metrics.FetchesIssued.WithLabelValues(f.name).Inc()
	f.onChange()

	go func() {
		defer close(done)
		page, err := f.fetch(ctx, c)
		if f.apply(ctx, gen, c, page, err) {
			f.onChange()
			switch {
			case err == nil && f.onApplied != nil:
				f.onApplied()
			case err != nil && f.onFailed != nil:
				f.onFailed(c)
			}
		}
	}()
	return done
}

// apply installs a response if gen is still current. It reports whether the
// state changed.
func (f *Fetcher[T]) apply(ctx context.Context, gen uint64, c Criteria, page *models.Page[T], err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || gen != f.gen {
		metrics.FetchesStale.WithLabelValues(f.name).Inc()
		f.logger.Debug().
			Uint64("generation", gen).
			Uint64("latest", f.gen).
			Msg("discarding superseded response")
		return false
	}

	f.state.Loading = false
	if err != nil {
		metrics.FetchFailures.WithLabelValues(f.name).Inc()
		f.state.LastError = err.Error()
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("component", "paging").
			Str("source", f.name).
			Uint64("generation", gen).
			Int("page", c.Page).
			Msg("page fetch failed, keeping previous results")
		return true
	}

	if page == nil {
		page = &models.Page[T]{}
	}
	f.state.Criteria = c
	f.state.Items = page.Results
	if f.state.Items == nil {
		f.state.Items = []T{}
	}
	f.state.Total = page.Count
	f.state.Pages = models.TotalPages(page.Count, f.pageSize)
	f.state.Loaded = true
	f.state.LastError = ""
	return true
}

// Snapshot returns a copy of the current state.
func (f *Fetcher[T]) Snapshot() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	if f.state.Items != nil {
		s.Items = append([]T(nil), f.state.Items...)
	}
	return s
}

// RemoveWhere drops rows matching pred from the displayed page and lowers
// the total accordingly, without refetching. It returns the number removed.
func (f *Fetcher[T]) RemoveWhere(pred func(T) bool) int {
	f.mu.Lock()
	kept := f.state.Items[:0:0]
	removed := 0
	for _, item := range f.state.Items {
		if pred(item) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed > 0 {
		f.state.Items = kept
		f.state.Total -= removed
		if f.state.Total < 0 {
			f.state.Total = 0
		}
		f.state.Pages = models.TotalPages(f.state.Total, f.pageSize)
	}
	f.mu.Unlock()

	if removed > 0 {
		f.onChange()
	}
	return removed
}

// Reset clears the displayed page and invalidates any request in flight.
func (f *Fetcher[T]) Reset() {
	f.mu.Lock()
	f.gen++
	f.state = State[T]{Criteria: f.state.Criteria, Pages: 1}
	f.mu.Unlock()
	f.onChange()
}

// Close abandons the fetcher. Responses that arrive later are dropped.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	f.closed = true
	f.state.Loading = false
	f.mu.Unlock()
}
