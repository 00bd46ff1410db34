// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package views

import (
	"context"
	"sync"

	"github.com/tomtom215/filmflow/internal/gate"
	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/models"
	"github.com/tomtom215/filmflow/internal/paging"
	"github.com/tomtom215/filmflow/internal/session"
)

// SearchSnapshot is the rendered state of the search page.
type SearchSnapshot struct {
	Criteria        paging.Criteria            `json:"criteria"`
	Results         paging.State[models.Movie] `json:"results"`
	Genres          []models.Genre             `json:"genres"`
	Recommendations RecommendationsSnapshot    `json:"recommendations"`
}

// RecommendationsSnapshot is the recommendations panel. It is hidden unless
// the session is authenticated.
type RecommendationsSnapshot struct {
	Visible bool           `json:"visible"`
	Loading bool           `json:"loading"`
	Movies  []models.Movie `json:"movies,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// SearchView is the catalog search page.
type SearchView struct {
	ctx    context.Context
	deps   Deps
	notify func()

	results *paging.Controller[models.Movie]
	recs    *gate.Gate

	mu        sync.Mutex
	genres    []models.Genre
	recsGen   uint64
	recsState RecommendationsSnapshot
}

// NewSearchView creates the search page. Call Start to load it.
func NewSearchView(ctx context.Context, deps Deps, notify func()) *SearchView {
	if notify == nil {
		notify = func() {}
	}
	v := &SearchView{ctx: ctx, deps: deps, notify: notify, genres: []models.Genre{}}

	v.results = paging.NewController[models.Movie](ctx, paging.ControllerConfig{
		Name:            "search",
		PageSize:        deps.PageSize,
		Debounce:        deps.Debounce,
		DebounceOptions: deps.DebounceOptions,
	}, v.fetchPage, notify)

	v.recs = gate.New("recommendations", gate.Hooks{
		OnLoading:         v.clearRecommendations,
		OnAuthenticated:   v.loadRecommendations,
		OnUnauthenticated: v.clearRecommendations,
	})
	return v
}

// Start loads genres and the first page, and follows the session for the
// recommendations panel.
func (v *SearchView) Start() {
	go v.loadGenres()
	v.results.Start()
	v.recs.Attach(v.deps.Session)
}

// Close detaches from the session and abandons requests in flight.
func (v *SearchView) Close() {
	v.recs.Detach()
	v.results.Close()
	v.mu.Lock()
	v.recsGen++
	v.mu.Unlock()
}

// Results exposes the list controller for input events.
func (v *SearchView) Results() *paging.Controller[models.Movie] {
	return v.results
}

// fetchPage searches with the session token when there is one; the catalog
// does not require it.
func (v *SearchView) fetchPage(ctx context.Context, c paging.Criteria) (*models.Page[models.Movie], error) {
	token := ""
	if s := v.deps.Session.Current(); s.Authenticated() {
		token = s.AccessToken
	}
	return v.deps.API.SearchMovies(withRequestID(ctx), token, c.MovieQuery())
}

func (v *SearchView) loadGenres() {
	genres, err := v.deps.API.ListGenres(withRequestID(v.ctx))
	if err != nil {
		logging.Ctx(v.ctx).Warn().Err(err).Str("component", "views").Msg("failed to load genres")
		return
	}
	v.mu.Lock()
	v.genres = genres
	v.mu.Unlock()
	v.notify()
}

func (v *SearchView) loadRecommendations(s session.Session) {
	v.mu.Lock()
	v.recsGen++
	gen := v.recsGen
	v.recsState = RecommendationsSnapshot{Visible: true, Loading: true}
	v.mu.Unlock()
	v.notify()

	go func() {
		ctx := withRequestID(v.ctx)
		movies, err := v.deps.API.Recommendations(ctx, s.AccessToken)

		v.mu.Lock()
		if gen != v.recsGen {
			v.mu.Unlock()
			return
		}
		v.recsState.Loading = false
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("component", "views").Msg("failed to load recommendations")
			v.recsState.Error = err.Error()
		} else {
			v.recsState.Movies = movies
		}
		v.mu.Unlock()
		v.notify()
	}()
}

func (v *SearchView) clearRecommendations() {
	v.mu.Lock()
	v.recsGen++
	v.recsState = RecommendationsSnapshot{}
	v.mu.Unlock()
	v.notify()
}

// Snapshot returns the rendered state.
func (v *SearchView) Snapshot() SearchSnapshot {
	v.mu.Lock()
	genres := append([]models.Genre{}, v.genres...)
	recs := v.recsState
	recs.Movies = append([]models.Movie(nil), v.recsState.Movies...)
	v.mu.Unlock()

	return SearchSnapshot{
		Criteria:        v.results.Criteria(),
		Results:         v.results.Snapshot(),
		Genres:          genres,
		Recommendations: recs,
	}
}
