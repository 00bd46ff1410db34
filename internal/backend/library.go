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
	"strconv"

	"github.com/tomtom215/filmflow/internal/models"
)

// GetEntry looks up the caller's entry for movieID. When the movie is not in
// the library the backend answers 404 and the error matches ErrNotFound.
func (c *Client) GetEntry(ctx context.Context, token string, movieID int) (*models.EntryRef, error) {
	var ref models.EntryRef
	err := c.do(ctx, requestConfig{
		op:     "get_entry",
		method: http.MethodGet,
		path:   "library/entry/",
		query:  url.Values{"movie": {strconv.Itoa(movieID)}},
		token:  token,
		auth:   true,
	}, &ref)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// AddEntry adds movieID to the library. The response carries the new entry
// id and the server's default status.
func (c *Client) AddEntry(ctx context.Context, token string, movieID int) (*models.EntryRef, error) {
	var ref models.EntryRef
	err := c.do(ctx, requestConfig{
		op:     "add_entry",
		method: http.MethodPost,
		path:   "library/add/",
		body:   map[string]int{"movie": movieID},
		token:  token,
		auth:   true,
	}, &ref)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// UpdateEntry sets the status of an existing entry. Some backends answer the
// PUT with an empty body; the requested status is echoed back in that case.
func (c *Client) UpdateEntry(ctx context.Context, token string, entryID int, status models.EntryStatus) (*models.EntryRef, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("update_entry: invalid status %q", status)
	}
	ref := models.EntryRef{ID: entryID, Status: status}
	err := c.do(ctx, requestConfig{
		op:     "update_entry",
		method: http.MethodPut,
		path:   "library/" + strconv.Itoa(entryID) + "/update/",
		body:   map[string]models.EntryStatus{"status": status},
		token:  token,
		auth:   true,
	}, &ref)
	if err != nil {
		return nil, err
	}
	if ref.ID == 0 {
		ref.ID = entryID
	}
	if ref.Status == "" {
		ref.Status = status
	}
	return &ref, nil
}

// DeleteEntry removes an entry from the library.
func (c *Client) DeleteEntry(ctx context.Context, token string, entryID int) error {
	return c.do(ctx, requestConfig{
		op:     "delete_entry",
		method: http.MethodDelete,
		path:   "library/" + strconv.Itoa(entryID) + "/delete/",
		token:  token,
		auth:   true,
	}, nil)
}

// ListLibrary fetches one page of the caller's library.
func (c *Client) ListLibrary(ctx context.Context, token string, q LibraryQuery) (*models.Page[models.LibraryEntry], error) {
	var page models.Page[models.LibraryEntry]
	err := c.do(ctx, requestConfig{
		op:     "list_library",
		method: http.MethodGet,
		path:   "library/",
		query:  q.Values(),
		token:  token,
		auth:   true,
	}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// SubmitReview posts a review for movieID and returns the stored review.
func (c *Client) SubmitReview(ctx context.Context, token string, movieID int, sub models.ReviewSubmission) (*models.Review, error) {
	var review models.Review
	err := c.do(ctx, requestConfig{
		op:     "submit_review",
		method: http.MethodPost,
		path:   "movie/" + strconv.Itoa(movieID) + "/reviews/submit/",
		body:   sub,
		token:  token,
		auth:   true,
	}, &review)
	if err != nil {
		return nil, err
	}
	return &review, nil
}
