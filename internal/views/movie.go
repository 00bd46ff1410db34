// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package views

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/filmflow/internal/backend"
	"github.com/tomtom215/filmflow/internal/gate"
	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/models"
	"github.com/tomtom215/filmflow/internal/optimistic"
	"github.com/tomtom215/filmflow/internal/presence"
	"github.com/tomtom215/filmflow/internal/reviews"
	"github.com/tomtom215/filmflow/internal/session"
)

// ErrMovieNotReady is returned for actions before the movie has loaded.
var ErrMovieNotReady = errors.New("movie not loaded")

// MovieLibrarySnapshot is the library control of the detail page.
type MovieLibrarySnapshot struct {
	State      presence.State      `json:"state"`
	Affordance presence.Affordance `json:"affordance"`
}

// MovieSnapshot is the rendered state of a movie detail page.
type MovieSnapshot struct {
	Slug     string                `json:"slug"`
	Loading  bool                  `json:"loading"`
	NotFound bool                  `json:"not_found,omitempty"`
	Error    string                `json:"error,omitempty"`
	Movie    *models.Movie         `json:"movie,omitempty"`
	Gate     gate.State            `json:"gate"`
	Library  *MovieLibrarySnapshot `json:"library,omitempty"`
	Reviews  reviews.State         `json:"reviews"`
}

// MovieView is one mounted movie detail page.
type MovieView struct {
	ctx    context.Context
	deps   Deps
	slug   string
	notify func()

	gate    *gate.Gate
	loaded  chan struct{}
	machine *presence.Machine
	reviews *reviews.Pipeline

	// attachMu orders the late gate attach against Close.
	attachMu sync.Mutex
	closed   bool

	mu       sync.Mutex
	loading  bool
	notFound bool
	err      string
	movie    *models.Movie
}

// NewMovieView creates the detail page for slug. Call Start to load it.
func NewMovieView(ctx context.Context, deps Deps, slug string, notify func()) *MovieView {
	if notify == nil {
		notify = func() {}
	}
	v := &MovieView{
		ctx:     ctx,
		deps:    deps,
		slug:    slug,
		notify:  notify,
		loaded:  make(chan struct{}),
		loading: true,
	}
	v.gate = gate.New("movie_library", gate.Hooks{
		OnAuthenticated:   func(session.Session) { v.checkPresence() },
		OnUnauthenticated: v.resetPresence,
		OnLoading:         v.resetPresence,
	})
	return v
}

// Start loads the movie, then its reviews and library presence. The
// returned channel closes once the detail request has settled.
func (v *MovieView) Start() <-chan struct{} {
	go v.load()
	return v.loaded
}

func (v *MovieView) load() {
	defer close(v.loaded)
	ctx := withRequestID(v.ctx)

	movie, err := v.deps.API.GetMovie(ctx, v.slug)
	v.mu.Lock()
	v.loading = false
	switch {
	case errors.Is(err, backend.ErrNotFound):
		v.notFound = true
	case err != nil:
		v.err = err.Error()
		logging.Ctx(ctx).Warn().Err(err).Str("component", "views").Str("slug", v.slug).Msg("failed to load movie")
	default:
		v.movie = movie
		v.machine = presence.NewMachine(presence.Config{
			MovieID:  movie.ID,
			Remote:   presence.BindRemote(v.deps.API, v.gate.Token),
			Applier:  v.deps.Applier,
			OnChange: func(presence.State) { v.notify() },
		})
		v.reviews = reviews.New(reviews.Config{
			MovieID:  movie.ID,
			Remote:   reviews.BindRemote(v.deps.API, v.gate.Token),
			Username: func() string { return v.gate.Session().Username },
			OnChange: v.notify,
		})
	}
	ready := v.movie != nil
	v.mu.Unlock()
	v.notify()

	if !ready {
		return
	}

	list, err := v.deps.API.ListReviews(ctx, v.slug)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("component", "views").Str("slug", v.slug).Msg("failed to load reviews")
		list = []models.Review{}
	}
	v.reviews.SetReviews(list)

	v.attachMu.Lock()
	defer v.attachMu.Unlock()
	if !v.closed {
		v.gate.Attach(v.deps.Session)
	}
}

func (v *MovieView) checkPresence() {
	m := v.presenceMachine()
	if m == nil {
		return
	}
	if _, err := m.Check(withRequestID(v.ctx)); err != nil {
		logging.Debug().Err(err).Str("slug", v.slug).Msg("presence check skipped")
	}
}

func (v *MovieView) resetPresence() {
	if m := v.presenceMachine(); m != nil {
		m.Reset()
	}
	v.notify()
}

func (v *MovieView) presenceMachine() *presence.Machine {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.machine
}

func (v *MovieView) reviewPipeline() *reviews.Pipeline {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reviews
}

// Slug returns the movie slug.
func (v *MovieView) Slug() string {
	return v.slug
}

// Act dispatches a library action for this movie.
func (v *MovieView) Act(ctx context.Context, a presence.Action) (<-chan optimistic.Result, error) {
	m := v.presenceMachine()
	if m == nil {
		return nil, ErrMovieNotReady
	}
	return m.Dispatch(withRequestID(ctx), a)
}

// Reviews returns the review pipeline, or nil before the movie has loaded.
func (v *MovieView) Reviews() *reviews.Pipeline {
	return v.reviewPipeline()
}

// Close abandons the page. Requests still in flight are not cancelled;
// their results are discarded.
func (v *MovieView) Close() {
	v.attachMu.Lock()
	v.closed = true
	v.gate.Detach()
	v.attachMu.Unlock()

	if m := v.presenceMachine(); m != nil {
		m.Reset()
	}
	if p := v.reviewPipeline(); p != nil {
		p.Reset()
	}
}

// Snapshot returns the rendered state.
func (v *MovieView) Snapshot() MovieSnapshot {
	v.mu.Lock()
	out := MovieSnapshot{
		Slug:     v.slug,
		Loading:  v.loading,
		NotFound: v.notFound,
		Error:    v.err,
	}
	if v.movie != nil {
		mv := *v.movie
		out.Movie = &mv
	}
	m, p := v.machine, v.reviews
	v.mu.Unlock()

	out.Gate = v.gate.State()
	out.Reviews = reviews.State{Reviews: []models.Review{}}
	if p != nil {
		out.Reviews = p.Snapshot()
	}
	if m != nil && out.Gate.Renderable() {
		st := m.State()
		out.Library = &MovieLibrarySnapshot{State: st, Affordance: presence.AffordanceFor(st)}
	}
	return out
}
