// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package paging

import (
	"github.com/tomtom215/filmflow/internal/backend"
	"github.com/tomtom215/filmflow/internal/models"
)

// Criteria selects one page of a list. It is comparable; two equal criteria
// always produce the same request.
//
// Genre applies to the catalog search, Status to the library list.
type Criteria struct {
	Query    string             `json:"query"`
	Ordering models.Ordering    `json:"ordering"`
	Genre    int                `json:"genre,omitempty"`
	Status   models.EntryStatus `json:"status,omitempty"`
	Page     int                `json:"page"`
}

// NewCriteria returns criteria for the first page with no filters.
func NewCriteria() Criteria {
	return Criteria{Page: 1}
}

// WithQuery returns c with the query replaced. A changed query resets the
// page to 1.
func (c Criteria) WithQuery(q string) Criteria {
	if q != c.Query {
		c.Query = q
		c.Page = 1
	}
	return c
}

// WithOrdering returns c with the ordering replaced, resetting the page on change.
func (c Criteria) WithOrdering(o models.Ordering) Criteria {
	if o != c.Ordering {
		c.Ordering = o
		c.Page = 1
	}
	return c
}

// WithGenre returns c with the genre filter replaced (0 clears it),
// resetting the page on change.
func (c Criteria) WithGenre(id int) Criteria {
	if id < 0 {
		id = 0
	}
	if id != c.Genre {
		c.Genre = id
		c.Page = 1
	}
	return c
}

// WithStatus returns c with the status filter replaced ("" clears it),
// resetting the page on change.
func (c Criteria) WithStatus(s models.EntryStatus) Criteria {
	if s != c.Status {
		c.Status = s
		c.Page = 1
	}
	return c
}

// WithPage returns c on page p, clamped to [1, pages]. pages <= 0 means the
// total is not known yet and only the lower bound applies.
func (c Criteria) WithPage(p, pages int) Criteria {
	if pages > 0 && p > pages {
		p = pages
	}
	if p < 1 {
		p = 1
	}
	c.Page = p
	return c
}

// MovieQuery converts c to catalog search parameters.
func (c Criteria) MovieQuery() backend.MovieQuery {
	return backend.MovieQuery{
		Page:     c.Page,
		Search:   c.Query,
		Ordering: c.Ordering,
		Genre:    c.Genre,
	}
}

// LibraryQuery converts c to library list parameters.
func (c Criteria) LibraryQuery() backend.LibraryQuery {
	return backend.LibraryQuery{
		Page:     c.Page,
		Search:   c.Query,
		Ordering: c.Ordering,
		Status:   c.Status,
	}
}
