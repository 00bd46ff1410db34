// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package views

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/filmflow/internal/backend"
	"github.com/tomtom215/filmflow/internal/models"
	"github.com/tomtom215/filmflow/internal/optimistic"
	"github.com/tomtom215/filmflow/internal/session"
)

// fakeAPI is an in-memory backend.API. Calls are counted by name.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int
	log   []string

	movies   []models.Movie
	detail   map[string]*models.Movie
	reviews  map[string][]models.Review
	entries  map[int]*models.EntryRef // by movie id
	library  []models.LibraryEntry
	recs     []models.Movie
	deleteFn func(entryID int) error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls:   make(map[string]int),
		detail:  make(map[string]*models.Movie),
		reviews: make(map[string][]models.Review),
		entries: make(map[int]*models.EntryRef),
	}
}

var _ backend.API = (*fakeAPI)(nil)

func (f *fakeAPI) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	f.log = append(f.log, name)
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func notFound(op string) error {
	return &backend.StatusError{Op: op, StatusCode: http.StatusNotFound}
}

func (f *fakeAPI) SearchMovies(_ context.Context, _ string, q backend.MovieQuery) (*models.Page[models.Movie], error) {
	f.count("search")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Movie
	for _, m := range f.movies {
		if q.Search == "" || m.Slug == q.Search {
			out = append(out, m)
		}
	}
	return &models.Page[models.Movie]{Count: len(out), Results: out}, nil
}

func (f *fakeAPI) ListGenres(context.Context) ([]models.Genre, error) {
	f.count("genres")
	return []models.Genre{{ID: 1, Name: "Sci-Fi"}}, nil
}

func (f *fakeAPI) GetMovie(_ context.Context, slug string) (*models.Movie, error) {
	f.count("movie")
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.detail[slug]
	if !ok {
		return nil, notFound("movie_detail")
	}
	return m, nil
}

func (f *fakeAPI) ListReviews(_ context.Context, slug string) ([]models.Review, error) {
	f.count("reviews")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reviews[slug], nil
}

func (f *fakeAPI) SubmitReview(_ context.Context, token string, movieID int, sub models.ReviewSubmission) (*models.Review, error) {
	f.count("submit_review")
	if token == "" {
		return nil, backend.ErrNoToken
	}
	return &models.Review{ID: 100, Movie: movieID, Text: sub.Text, Rating: sub.Rating, Created: time.Now()}, nil
}

func (f *fakeAPI) GetEntry(_ context.Context, token string, movieID int) (*models.EntryRef, error) {
	f.count("get_entry")
	if token == "" {
		return nil, backend.ErrNoToken
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ref, ok := f.entries[movieID]
	if !ok {
		return nil, notFound("library_entry")
	}
	return ref, nil
}

func (f *fakeAPI) AddEntry(_ context.Context, _ string, movieID int) (*models.EntryRef, error) {
	f.count("add_entry")
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := &models.EntryRef{ID: 500 + movieID, Status: models.StatusPlanToWatch}
	f.entries[movieID] = ref
	return ref, nil
}

func (f *fakeAPI) UpdateEntry(_ context.Context, _ string, entryID int, status models.EntryStatus) (*models.EntryRef, error) {
	f.count("update_entry")
	return &models.EntryRef{ID: entryID, Status: status}, nil
}

func (f *fakeAPI) DeleteEntry(_ context.Context, _ string, entryID int) error {
	f.count("delete_entry")
	if f.deleteFn != nil {
		return f.deleteFn(entryID)
	}
	return nil
}

func (f *fakeAPI) ListLibrary(_ context.Context, token string, _ backend.LibraryQuery) (*models.Page[models.LibraryEntry], error) {
	f.count("library")
	if token == "" {
		return nil, backend.ErrNoToken
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.LibraryEntry(nil), f.library...)
	return &models.Page[models.LibraryEntry]{Count: len(out), Results: out}, nil
}

func (f *fakeAPI) Recommendations(_ context.Context, token string) ([]models.Movie, error) {
	f.count("recommendations")
	if token == "" {
		return nil, backend.ErrNoToken
	}
	return f.recs, nil
}

// ===================================================================================================
// Helpers
// ===================================================================================================

var (
	signedIn = session.Session{Status: session.StatusAuthenticated, AccessToken: "tok", Username: "neo"}
	anon     = session.Session{Status: session.StatusUnauthenticated}
)

func testDeps(api backend.API, store *session.Store) Deps {
	return Deps{
		API:      api,
		Session:  store,
		Applier:  optimistic.NewApplier[int](),
		PageSize: models.DefaultPageSize,
	}
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitChan[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
		var zero T
		return zero
	}
}
