// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/tomtom215/filmflow/internal/backend"
	"github.com/tomtom215/filmflow/internal/models"
)

// fakeAPI is an in-memory backend.API holding one movie.
type fakeAPI struct {
	mu      sync.Mutex
	calls   map[string]int
	entries map[int]*models.EntryRef
	library []models.LibraryEntry
}

var matrix = models.Movie{ID: 7, Slug: "the-matrix", Title: "The Matrix", Genres: []models.Genre{{ID: 2, Name: "Sci-Fi"}}}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int), entries: make(map[int]*models.EntryRef)}
}

var _ backend.API = (*fakeAPI)(nil)

func (f *fakeAPI) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) SearchMovies(_ context.Context, _ string, q backend.MovieQuery) (*models.Page[models.Movie], error) {
	f.count("search")
	if q.Search != "" && q.Search != "matrix" {
		return &models.Page[models.Movie]{}, nil
	}
	return &models.Page[models.Movie]{Count: 1, Results: []models.Movie{matrix}}, nil
}

func (f *fakeAPI) ListGenres(context.Context) ([]models.Genre, error) {
	f.count("genres")
	return matrix.Genres, nil
}

func (f *fakeAPI) GetMovie(_ context.Context, slug string) (*models.Movie, error) {
	f.count("movie")
	if slug != matrix.Slug {
		return nil, &backend.StatusError{Op: "movie_detail", StatusCode: http.StatusNotFound}
	}
	m := matrix
	return &m, nil
}

func (f *fakeAPI) ListReviews(context.Context, string) ([]models.Review, error) {
	f.count("reviews")
	return nil, nil
}

func (f *fakeAPI) SubmitReview(_ context.Context, _ string, movieID int, sub models.ReviewSubmission) (*models.Review, error) {
	f.count("submit_review")
	return &models.Review{ID: 1, Movie: movieID, Text: sub.Text, Rating: sub.Rating, Created: time.Now()}, nil
}

func (f *fakeAPI) GetEntry(_ context.Context, _ string, movieID int) (*models.EntryRef, error) {
	f.count("get_entry")
	f.mu.Lock()
	defer f.mu.Unlock()
	if ref, ok := f.entries[movieID]; ok {
		return ref, nil
	}
	return nil, &backend.StatusError{Op: "library_entry", StatusCode: http.StatusNotFound}
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

func (f *fakeAPI) DeleteEntry(context.Context, string, int) error {
	f.count("delete_entry")
	return nil
}

func (f *fakeAPI) ListLibrary(context.Context, string, backend.LibraryQuery) (*models.Page[models.LibraryEntry], error) {
	f.count("library")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.LibraryEntry(nil), f.library...)
	return &models.Page[models.LibraryEntry]{Count: len(out), Results: out}, nil
}

func (f *fakeAPI) Recommendations(context.Context, string) ([]models.Movie, error) {
	f.count("recommendations")
	return []models.Movie{matrix}, nil
}
