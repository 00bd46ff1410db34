// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tomtom215/filmflow/internal/models"
)

// resultsEnvelope is the {results: [...]} wrapper used by genre/ and reviews/.
type resultsEnvelope[T any] struct {
	Results []T `json:"results"`
}

// SearchMovies fetches one page of the catalog. The token is optional; when
// present it is sent so the backend can personalise the listing.
func (c *Client) SearchMovies(ctx context.Context, token string, q MovieQuery) (*models.Page[models.Movie], error) {
	var page models.Page[models.Movie]
	err := c.do(ctx, requestConfig{
		op:     "search_movies",
		method: http.MethodGet,
		path:   "movie/",
		query:  q.Values(),
		token:  token,
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ListGenres returns every genre, served from the in-memory cache while fresh.
func (c *Client) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return c.genres.GetOrLoad(ctx, genresCacheKey, func(ctx context.Context) ([]models.Genre, error) {
		var env resultsEnvelope[models.Genre]
		if err := c.do(ctx, requestConfig{
			op:     "list_genres",
			method: http.MethodGet,
			path:   "genre/",
		}, &env); err != nil {
			return nil, err
		}
		return env.Results, nil
	})
}

// GetMovie fetches a movie by slug. A missing movie is ErrNotFound.
func (c *Client) GetMovie(ctx context.Context, slug string) (*models.Movie, error) {
	if slug == "" {
		return nil, fmt.Errorf("get_movie: empty slug")
	}
	var movie models.Movie
	err := c.do(ctx, requestConfig{
		op:     "get_movie",
		method: http.MethodGet,
		path:   "movie/" + url.PathEscape(slug) + "/",
	}, &movie)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// ListReviews fetches the reviews for a movie.
func (c *Client) ListReviews(ctx context.Context, slug string) ([]models.Review, error) {
	var env resultsEnvelope[models.Review]
	err := c.do(ctx, requestConfig{
		op:     "list_reviews",
		method: http.MethodGet,
		path:   "movie/" + url.PathEscape(slug) + "/reviews/",
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Results, nil
}

// Recommendations returns personalised picks. The endpoint answers with a
// bare JSON array rather than a page.
func (c *Client) Recommendations(ctx context.Context, token string) ([]models.Movie, error) {
	var movies []models.Movie
	err := c.do(ctx, requestConfig{
		op:     "recommendations",
		method: http.MethodGet,
		path:   "recommendations/",
		token:  token,
		auth:   true,
	}, &movies)
	if err != nil {
		return nil, err
	}
	return movies, nil
}
