// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/filmflow/internal/models"
	"github.com/tomtom215/filmflow/internal/paging"
	"github.com/tomtom215/filmflow/internal/presence"
	"github.com/tomtom215/filmflow/internal/views"
)

// criteriaInput is the part of a list page that takes criteria events.
type criteriaInput interface {
	SetQueryInput(raw string)
	FlushQuery()
	SetOrdering(o models.Ordering) <-chan struct{}
	SetPage(p int) <-chan struct{}
	Refresh() <-chan struct{}
}

var (
	_ criteriaInput = (*paging.Controller[models.Movie])(nil)
	_ criteriaInput = (*paging.Controller[models.LibraryEntry])(nil)
)

func applyQuery(w http.ResponseWriter, r *http.Request, c criteriaInput) bool {
	var req QueryRequest
	if !decodeAndValidate(w, r, &req) {
		return false
	}
	c.SetQueryInput(req.Query)
	if req.Flush {
		c.FlushQuery()
	}
	return true
}

func applyOrdering(w http.ResponseWriter, r *http.Request, c criteriaInput) bool {
	var req OrderingRequest
	if !decodeAndValidate(w, r, &req) {
		return false
	}
	c.SetOrdering(models.Ordering(req.Ordering))
	return true
}

func applyPage(w http.ResponseWriter, r *http.Request, c criteriaInput) bool {
	var req PageRequest
	if !decodeAndValidate(w, r, &req) {
		return false
	}
	c.SetPage(req.Page)
	return true
}

// ===================================================================================================
// Search page
// ===================================================================================================

// SearchSnapshot returns the search page.
func (h *Handler) SearchSnapshot(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.views.Search().Snapshot())
}

// SearchQuery handles a keystroke in the search box.
func (h *Handler) SearchQuery(w http.ResponseWriter, r *http.Request) {
	if applyQuery(w, r, h.views.Search().Results()) {
		h.SearchSnapshot(w, r)
	}
}

// SearchOrdering changes the sort key.
func (h *Handler) SearchOrdering(w http.ResponseWriter, r *http.Request) {
	if applyOrdering(w, r, h.views.Search().Results()) {
		h.SearchSnapshot(w, r)
	}
}

// SearchGenre changes the genre filter.
func (h *Handler) SearchGenre(w http.ResponseWriter, r *http.Request) {
	var req GenreRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.views.Search().Results().SetGenre(req.Genre)
	h.SearchSnapshot(w, r)
}

// SearchPage changes the page.
func (h *Handler) SearchPage(w http.ResponseWriter, r *http.Request) {
	if applyPage(w, r, h.views.Search().Results()) {
		h.SearchSnapshot(w, r)
	}
}

// SearchRefresh refetches the current page, for example after a failed load.
func (h *Handler) SearchRefresh(w http.ResponseWriter, r *http.Request) {
	h.views.Search().Results().Refresh()
	h.SearchSnapshot(w, r)
}

// ===================================================================================================
// Library page
// ===================================================================================================

// LibrarySnapshot returns the library page. Without a session only the
// gate state, including the sign-in redirect, is set.
func (h *Handler) LibrarySnapshot(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.views.Library().Snapshot())
}

// LibraryQuery handles a keystroke in the library search box.
func (h *Handler) LibraryQuery(w http.ResponseWriter, r *http.Request) {
	if applyQuery(w, r, h.views.Library().Entries()) {
		h.LibrarySnapshot(w, r)
	}
}

// LibraryOrdering changes the sort key.
func (h *Handler) LibraryOrdering(w http.ResponseWriter, r *http.Request) {
	if applyOrdering(w, r, h.views.Library().Entries()) {
		h.LibrarySnapshot(w, r)
	}
}

// LibraryStatus changes the status filter.
func (h *Handler) LibraryStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusFilterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.views.Library().Entries().SetStatus(models.EntryStatus(req.Status))
	h.LibrarySnapshot(w, r)
}

// LibraryRefresh refetches the current page. It does nothing without a
// session.
func (h *Handler) LibraryRefresh(w http.ResponseWriter, r *http.Request) {
	h.views.Library().Entries().Refresh()
	h.LibrarySnapshot(w, r)
}

// LibraryPage changes the page.
func (h *Handler) LibraryPage(w http.ResponseWriter, r *http.Request) {
	if applyPage(w, r, h.views.Library().Entries()) {
		h.LibrarySnapshot(w, r)
	}
}

// LibraryEntryAction changes the status of, or removes, an entry on the
// displayed page.
func (h *Handler) LibraryEntryAction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	entryID, err := strconv.Atoi(chi.URLParam(r, "entryID"))
	if err != nil || entryID <= 0 {
		rw.BadRequest("Invalid entry ID")
		return
	}

	var req EntryActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	action, err := presence.ParseAction(presence.ActionKind(req.Action), models.EntryStatus(req.Status))
	if err != nil {
		writeActionError(rw, r, err)
		return
	}

	if _, err := h.views.Library().Act(detached(r), entryID, action); err != nil {
		writeActionError(rw, r, err)
		return
	}
	rw.Accepted(h.views.Library().Snapshot())
}

// ===================================================================================================
// Movie detail pages
// ===================================================================================================

// MountMovie opens the detail page for a slug. Mounting a page that is
// already open returns its current snapshot.
func (h *Handler) MountMovie(w http.ResponseWriter, r *http.Request) {
	v := h.views.MountMovie(chi.URLParam(r, "slug"))
	NewResponseWriter(w, r).Created(v.Snapshot())
}

// MovieSnapshot returns a mounted detail page.
func (h *Handler) MovieSnapshot(w http.ResponseWriter, r *http.Request) {
	v, err := h.views.Movie(chi.URLParam(r, "slug"))
	if err != nil {
		writeActionError(NewResponseWriter(w, r), r, err)
		return
	}
	WriteSuccess(w, r, v.Snapshot())
}

// UnmountMovie navigates away from a detail page. Requests it started keep
// running; their results are dropped.
func (h *Handler) UnmountMovie(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := h.views.UnmountMovie(slug); err != nil {
		writeActionError(NewResponseWriter(w, r), r, err)
		return
	}
	WriteSuccess(w, r, map[string]string{"unmounted": slug})
}

// MovieLibraryAction adds the movie to the library, changes its status or
// removes it.
func (h *Handler) MovieLibraryAction(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	v, err := h.views.Movie(chi.URLParam(r, "slug"))
	if err != nil {
		writeActionError(rw, r, err)
		return
	}

	var req MovieActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	action, err := presence.ParseAction(presence.ActionKind(req.Action), models.EntryStatus(req.Status))
	if err != nil {
		writeActionError(rw, r, err)
		return
	}

	if _, err := v.Act(detached(r), action); err != nil {
		writeActionError(rw, r, err)
		return
	}
	rw.Accepted(v.Snapshot())
}

// MovieReview fills the review form and submits it. Invalid input is
// rejected without a request and the form keeps the input.
func (h *Handler) MovieReview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	v, err := h.views.Movie(chi.URLParam(r, "slug"))
	if err != nil {
		writeActionError(rw, r, err)
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p := v.Reviews()
	if p == nil {
		writeActionError(rw, r, views.ErrMovieNotReady)
		return
	}
	p.SetText(req.Text)
	p.SetRating(req.Rating)

	if _, err := p.Submit(detached(r)); err != nil {
		writeActionError(rw, r, err)
		return
	}
	rw.Accepted(v.Snapshot())
}
