// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

/*
Package models defines the data structures exchanged with the FilmFlow backend.

This package is the single source of truth for the wire shapes of the catalog
and personal-library endpoints. Every type decodes directly from the backend's
JSON responses.

Key Components:

  - Movie, Genre, CrewMember, MovieCrew: catalog records
  - LibraryEntry, EntryStatus: a user's tracked movie and its watch status
  - Review, ReviewSubmission: per-movie reviews and the submit request body
  - Page: the paginated list envelope ({count, next, previous, results})
  - Ordering: sort keys accepted by the search and library list endpoints

Model Categories:

1. Catalog Models (movie.go):
  - Movie carries nested genres and crew; identity is ID, routing key is Slug

2. Library Models (library.go):
  - LibraryEntry identity is the entry ID, distinct from the movie ID
  - EntryStatus has exactly five persisted values; removal is not a status

3. Review Models (review.go):
  - Review.Rating is optional (nil when the reviewer left it unset)

4. List Envelope (page.go):
  - Page[T] is replaced wholesale on each fetch, never merged
*/
package models
