// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

// Package optimistic applies local edits ahead of the server and reconciles
// them with the response.
//
// At most one mutation is in flight per key. A second mutation for a busy
// key is rejected with ErrInFlight and changes nothing; there is no queue.
// The local edit is applied before Apply returns, kept on success, and
// reverted only when the remote call fails.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/metrics"
)

// ErrInFlight is returned when a mutation for the key is already pending.
var ErrInFlight = errors.New("mutation already in flight")

// Outcome is how a mutation ended.
type Outcome string

const (
	OutcomeCommitted  Outcome = "committed"
	OutcomeRolledBack Outcome = "rolled_back"
	// OutcomeDiscarded means the key was discarded while the call was in
	// flight; neither Commit nor Rollback ran.
	OutcomeDiscarded Outcome = "discarded"
)

// Result is delivered once per applied mutation.
type Result struct {
	Outcome Outcome
	Err     error
}

// Mutation describes one optimistic edit.
type Mutation struct {
	// Kind labels logs and metrics ("add", "set_status", "remove", ...).
	Kind string

	// Optimistic applies the local edit. Runs before Apply returns. May be nil
	// for mutations that wait for the server.
	Optimistic func()

	// Call performs the remote mutation.
	Call func(ctx context.Context) error

	// Commit runs after Call succeeds. May be nil.
	Commit func()

	// Rollback runs after Call fails and must restore the pre-mutation state.
	Rollback func(err error)
}

// Applier enforces single-flight per key.
type Applier[K comparable] struct {
	mu       sync.Mutex
	next     uint64
	inFlight map[K]*flight
}

// flight is one reserved key. An abandoned flight still holds the key until
// its call returns; only its reconciliation is skipped.
type flight struct {
	token     uint64
	abandoned bool
}

// NewApplier creates an empty applier.
func NewApplier[K comparable]() *Applier[K] {
	return &Applier[K]{inFlight: make(map[K]*flight)}
}

// Apply starts m for key. It returns ErrInFlight without running any part of
// m if key is busy. The result channel receives exactly one Result and is
// then closed.
func (a *Applier[K]) Apply(ctx context.Context, key K, m Mutation) (<-chan Result, error) {
	a.mu.Lock()
	if _, busy := a.inFlight[key]; busy {
		a.mu.Unlock()
		metrics.RecordMutation(m.Kind, "rejected")
		return nil, ErrInFlight
	}
	a.next++
	token := a.next
	a.inFlight[key] = &flight{token: token}
	a.mu.Unlock()

	metrics.MutationsInFlight.Inc()
	if m.Optimistic != nil {
		m.Optimistic()
	}

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		defer metrics.MutationsInFlight.Dec()

		err := m.Call(ctx)
		res := a.settle(ctx, key, token, m, err)
		metrics.RecordMutation(m.Kind, string(res.Outcome))
		out <- res
	}()
	return out, nil
}

// settle applies the outcome while the key is still reserved, then frees it.
func (a *Applier[K]) settle(ctx context.Context, key K, token uint64, m Mutation, err error) Result {
	defer a.release(key, token)

	if !a.current(key, token) {
		return Result{Outcome: OutcomeDiscarded, Err: err}
	}
	if err == nil {
		if m.Commit != nil {
			m.Commit()
		}
		return Result{Outcome: OutcomeCommitted}
	}

	logging.Ctx(ctx).Warn().
		Err(err).
		Str("component", "optimistic").
		Str("kind", m.Kind).
		Str("key", fmt.Sprint(key)).
		Msg("mutation failed, rolling back")
	if m.Rollback != nil {
		m.Rollback(err)
	}
	return Result{Outcome: OutcomeRolledBack, Err: err}
}

// current reports whether token still owns key and was not abandoned.
func (a *Applier[K]) current(key K, token uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.inFlight[key]
	return ok && f.token == token && !f.abandoned
}

func (a *Applier[K]) release(key K, token uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.inFlight[key]; ok && f.token == token {
		delete(a.inFlight, key)
	}
}

// Pending reports whether a mutation for key is in flight, abandoned or not.
func (a *Applier[K]) Pending(key K) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.inFlight[key]
	return ok
}

// Discard abandons the mutation for key, if any. Its result is reported as
// discarded and neither Commit nor Rollback runs. The key stays reserved
// until the remote call returns.
func (a *Applier[K]) Discard(key K) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.inFlight[key]; ok {
		f.abandoned = true
	}
}

// DiscardAll abandons every pending mutation.
func (a *Applier[K]) DiscardAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, f := range a.inFlight {
		f.abandoned = true
	}
}
