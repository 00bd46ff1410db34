// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/filmflow/internal/validation"
)

// maxBodyBytes bounds input event bodies. The largest is a 500 character
// review.
const maxBodyBytes = 64 << 10

// SessionRequest is pushed by the external auth integration.
type SessionRequest struct {
	Status      string `json:"status" validate:"required,oneof=loading authenticated unauthenticated"`
	AccessToken string `json:"access_token" validate:"max=8192"`
	Username    string `json:"username" validate:"max=150"`
}

// QueryRequest is a keystroke in a search box. Flush applies the text
// immediately instead of waiting for the debounce window.
type QueryRequest struct {
	Query string `json:"query" validate:"max=200"`
	Flush bool   `json:"flush"`
}

// OrderingRequest selects a sort key; "" clears it.
type OrderingRequest struct {
	Ordering string `json:"ordering" validate:"ordering"`
}

// GenreRequest selects a genre chip; 0 clears it.
type GenreRequest struct {
	Genre int `json:"genre" validate:"gte=0"`
}

// StatusFilterRequest selects a library status chip; "" shows all.
type StatusFilterRequest struct {
	Status string `json:"status" validate:"omitempty,entry_status"`
}

// PageRequest selects a page. Pages past the last known page are clamped.
type PageRequest struct {
	Page int `json:"page" validate:"gte=1"`
}

// MovieActionRequest is a library action from a movie detail page.
type MovieActionRequest struct {
	Action string `json:"action" validate:"required,oneof=add set_status remove"`
	Status string `json:"status" validate:"omitempty,entry_status"`
}

// EntryActionRequest is a library action from a library page row. Rows are
// already in the library, so add is not accepted.
type EntryActionRequest struct {
	Action string `json:"action" validate:"required,oneof=set_status remove"`
	Status string `json:"status" validate:"omitempty,entry_status"`
}

// ReviewRequest fills the review form and submits it. The form itself
// validates text and rating so the messages match the inline ones.
type ReviewRequest struct {
	Text   string   `json:"text"`
	Rating *float64 `json:"rating"`
}

// decodeAndValidate decodes the JSON body into dst and validates it,
// writing the error response itself. It reports whether the handler should
// continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rw := NewResponseWriter(w, r)

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			rw.BadRequest("Request body is required")
			return false
		}
		rw.BadRequest("Invalid JSON request body")
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		rw.ValidationError(verr)
		return false
	}
	return true
}
