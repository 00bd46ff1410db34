// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

// Package session exposes the externally owned authentication session to the
// sync layer as a read-only value. Token issuance and refresh happen
// elsewhere; this package only records what the auth integration reports.
package session

import (
	"sort"
	"sync"
)

// Status is the auth status reported by the session provider.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Valid reports whether s is one of the three statuses.
func (s Status) Valid() bool {
	return s == StatusLoading || s == StatusAuthenticated || s == StatusUnauthenticated
}

// Session is an immutable snapshot of the auth state.
type Session struct {
	Status      Status `json:"status"`
	AccessToken string `json:"-"`
	Username    string `json:"username,omitempty"`
}

// Authenticated reports whether the session can make authenticated calls.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.AccessToken != ""
}

// Provider is the read-only view consumers depend on.
type Provider interface {
	Current() Session

	// Subscribe registers fn to receive every subsequent session. The
	// returned func unregisters it.
	Subscribe(fn func(Session)) (unsubscribe func())
}

var _ Provider = (*Store)(nil)

// Store is the Provider implementation the auth integration writes into.
// Subscribers are called synchronously, in registration order, and see
// sessions in the order they were set. A subscriber must not call Set.
type Store struct {
	notifyMu sync.Mutex

	mu      sync.RWMutex
	current Session
	nextID  int
	subs    map[int]func(Session)
}

// NewStore creates a store holding initial.
func NewStore(initial Session) *Store {
	if initial.Status == "" {
		initial.Status = StatusLoading
	}
	return &Store{current: initial, subs: make(map[int]func(Session))}
}

// Current returns the latest session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the session and notifies subscribers. A session identical to
// the current one is not re-broadcast.
func (s *Store) Set(next Session) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if next == s.current {
		s.mu.Unlock()
		return
	}
	s.current = next
	fns := s.subscribersLocked()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// Subscribe implements Provider.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) subscribersLocked() []func(Session) {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Session), len(ids))
	for i, id := range ids {
		fns[i] = s.subs[id]
	}
	return fns
}
