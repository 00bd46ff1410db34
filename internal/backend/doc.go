// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

/*
Package backend is the REST client for the FilmFlow catalog and library API.

Endpoints (relative to the configured base URL, e.g. http://localhost:8000/api/):

	GET    movie/                      search catalog (page, search, ordering, genre)
	GET    genre/                      list genres ({results})
	GET    movie/{slug}/               movie detail
	GET    movie/{slug}/reviews/       reviews ({results})
	POST   movie/{id}/reviews/submit/  submit review (auth)
	GET    library/entry/?movie={id}   entry lookup, 404 when absent (auth)
	POST   library/add/                add entry (auth)
	PUT    library/{entry}/update/     change status (auth)
	DELETE library/{entry}/delete/     remove entry (auth)
	GET    library/                    list entries (auth; page, search, ordering, status)
	GET    recommendations/            bare array of movies (auth)

Resilience:
  - Client applies a token-bucket limiter before every request
  - HTTP 429 responses are retried with exponential backoff honoring Retry-After
  - CircuitBreakerClient wraps Client; 4xx responses do not count as failures
  - Genres are cached in memory with a TTL

Errors:
  - Non-2xx responses become *StatusError
  - errors.Is(err, ErrNotFound) for 404, errors.Is(err, ErrUnauthorized) for 401/403
*/
//nolint:staticcheck // File documentation, not package doc
package backend
