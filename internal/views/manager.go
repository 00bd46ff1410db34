// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package views

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/tomtom215/filmflow/internal/logging"
)

// View names used in notifications.
const (
	ViewSearch      = "search"
	ViewLibrary     = "library"
	movieViewPrefix = "movie:"
)

// ErrViewNotMounted is returned for a movie page that is not mounted.
var ErrViewNotMounted = errors.New("view not mounted")

// MovieViewName returns the notification name of a movie page.
func MovieViewName(slug string) string {
	return movieViewPrefix + slug
}

// Publisher receives view snapshots.
type Publisher interface {
	Publish(view string, state interface{})
}

// Manager owns the views of one client and publishes their snapshots.
type Manager struct {
	ctx       context.Context
	deps      Deps
	publisher Publisher

	search  *SearchView
	library *LibraryView

	mu     sync.Mutex
	movies map[string]*MovieView
	dirty  map[string]struct{}
	wake   chan struct{}
}

// NewManager creates the search and library views. publisher may be nil.
func NewManager(ctx context.Context, deps Deps, publisher Publisher) *Manager {
	m := &Manager{
		ctx:       ctx,
		deps:      deps,
		publisher: publisher,
		movies:    make(map[string]*MovieView),
		dirty:     make(map[string]struct{}),
		wake:      make(chan struct{}, 1),
	}
	m.search = NewSearchView(ctx, deps, m.notifier(ViewSearch))
	m.library = NewLibraryView(ctx, deps, m.notifier(ViewLibrary))
	return m
}

// Start loads the search page and starts following the session.
func (m *Manager) Start() {
	m.search.Start()
	m.library.Start()
}

// Close closes every view.
func (m *Manager) Close() {
	m.search.Close()
	m.library.Close()

	m.mu.Lock()
	movies := make([]*MovieView, 0, len(m.movies))
	for _, v := range m.movies {
		movies = append(movies, v)
	}
	m.movies = make(map[string]*MovieView)
	m.mu.Unlock()

	for _, v := range movies {
		v.Close()
	}
}

// Search returns the search page.
func (m *Manager) Search() *SearchView { return m.search }

// Library returns the library page.
func (m *Manager) Library() *LibraryView { return m.library }

// MountMovie mounts the detail page for slug. Mounting an already mounted
// page returns it unchanged.
func (m *Manager) MountMovie(slug string) *MovieView {
	m.mu.Lock()
	if v, ok := m.movies[slug]; ok {
		m.mu.Unlock()
		return v
	}
	v := NewMovieView(m.ctx, m.deps, slug, m.notifier(MovieViewName(slug)))
	m.movies[slug] = v
	m.mu.Unlock()

	v.Start()
	return v
}

// Movie returns a mounted detail page.
func (m *Manager) Movie(slug string) (*MovieView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.movies[slug]
	if !ok {
		return nil, ErrViewNotMounted
	}
	return v, nil
}

// UnmountMovie closes the detail page for slug.
func (m *Manager) UnmountMovie(slug string) error {
	m.mu.Lock()
	v, ok := m.movies[slug]
	delete(m.movies, slug)
	m.mu.Unlock()
	if !ok {
		return ErrViewNotMounted
	}
	v.Close()
	return nil
}

// MountedMovies returns the slugs of mounted detail pages in order.
func (m *Manager) MountedMovies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.movies))
	for slug := range m.movies {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns the snapshot of the named view.
func (m *Manager) Snapshot(view string) (interface{}, error) {
	switch {
	case view == ViewSearch:
		return m.search.Snapshot(), nil
	case view == ViewLibrary:
		return m.library.Snapshot(), nil
	case strings.HasPrefix(view, movieViewPrefix):
		v, err := m.Movie(strings.TrimPrefix(view, movieViewPrefix))
		if err != nil {
			return nil, err
		}
		return v.Snapshot(), nil
	default:
		return nil, ErrViewNotMounted
	}
}

func (m *Manager) notifier(view string) func() {
	return func() { m.markDirty(view) }
}

func (m *Manager) markDirty(view string) {
	m.mu.Lock()
	m.dirty[view] = struct{}{}
	m.mu.Unlock()
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) takeDirty() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.dirty))
	for view := range m.dirty {
		out = append(out, view)
	}
	clear(m.dirty)
	sort.Strings(out)
	return out
}

// Serve publishes a snapshot for every view that changed since the last
// round. Notifications that arrive while a round is being published are
// coalesced into the next one. Serve returns when ctx is done.
func (m *Manager) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.wake:
		}
		m.Flush()
	}
}

// Flush publishes every pending change now.
func (m *Manager) Flush() {
	for _, view := range m.takeDirty() {
		snap, err := m.Snapshot(view)
		if err != nil {
			// Unmounted since the notification.
			continue
		}
		if m.publisher != nil {
			m.publisher.Publish(view, snap)
		}
		logging.Debug().Str("view", view).Msg("view snapshot published")
	}
}
