// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

/*
Package views composes the sync components into the three screens of the
client.

  - SearchView: debounced catalog search with ordering, genre filter and
    pagination, plus a recommendations panel shown only when signed in.
  - LibraryView: the signed-in user's library list. Unauthenticated access
    reports a sign-in redirect and never renders data. Each row carries its
    own presence machine; a confirmed remove drops the row without refetch.
  - MovieView: movie detail, its reviews, the library control and the
    review form.

Every view reports changes through a notify callback. The Manager coalesces
those notifications and publishes snapshots from its own goroutine, so no
component lock is ever held while a snapshot is built or sent.
*/
package views

import (
	"context"
	"time"

	"github.com/tomtom215/filmflow/internal/backend"
	"github.com/tomtom215/filmflow/internal/debounce"
	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/optimistic"
	"github.com/tomtom215/filmflow/internal/session"
)

// Deps are shared by every view.
type Deps struct {
	API     backend.API
	Session session.Provider

	// Applier is shared so a movie has at most one library mutation in
	// flight across all views.
	Applier *optimistic.Applier[int]

	Debounce time.Duration
	PageSize int

	// DebounceOptions are passed to list query debouncers.
	DebounceOptions []debounce.Option
}

// withRequestID stamps ctx with a fresh request id so the backend call and
// its log lines can be correlated.
func withRequestID(ctx context.Context) context.Context {
	return logging.ContextWithRequestID(ctx, logging.GenerateRequestID())
}
