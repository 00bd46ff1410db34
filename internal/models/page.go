// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package models

// DefaultPageSize is the backend's fixed page size for movie and library lists.
const DefaultPageSize = 24

// Page is the paginated list envelope returned by the list endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// TotalPages returns ceil(count/pageSize), never less than 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Ordering is a sort key for movie and library lists.
type Ordering string

const (
	OrderingNone        Ordering = ""
	OrderingTitle       Ordering = "title"
	OrderingDuration    Ordering = "duration"
	OrderingReleaseDate Ordering = "release_date"
)

// Valid reports whether o is a known ordering.
func (o Ordering) Valid() bool {
	switch o {
	case OrderingNone, OrderingTitle, OrderingDuration, OrderingReleaseDate:
		return true
	default:
		return false
	}
}

// LibraryParam returns the ordering as the library endpoint expects it,
// which sorts on the nested movie (movie__title etc).
func (o Ordering) LibraryParam() string {
	if o == OrderingNone {
		return ""
	}
	return "movie__" + string(o)
}
