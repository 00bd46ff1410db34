// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package presence

import (
	"context"

	"github.com/tomtom215/filmflow/internal/backend"
	"github.com/tomtom215/filmflow/internal/models"
)

// Remote is the library endpoint set a Machine drives, already bound to the
// current session.
type Remote interface {
	Authenticated() bool
	GetEntry(ctx context.Context, movieID int) (*models.EntryRef, error)
	AddEntry(ctx context.Context, movieID int) (*models.EntryRef, error)
	UpdateEntry(ctx context.Context, entryID int, status models.EntryStatus) (*models.EntryRef, error)
	DeleteEntry(ctx context.Context, entryID int) error
}

// BindRemote binds api to a token source. token is read on every call, so
// a sign-out takes effect for the next request.
func BindRemote(api backend.API, token func() string) Remote {
	return &boundRemote{api: api, token: token}
}

type boundRemote struct {
	api   backend.API
	token func() string
}

func (r *boundRemote) Authenticated() bool {
	return r.token() != ""
}

func (r *boundRemote) GetEntry(ctx context.Context, movieID int) (*models.EntryRef, error) {
	return r.api.GetEntry(ctx, r.token(), movieID)
}

func (r *boundRemote) AddEntry(ctx context.Context, movieID int) (*models.EntryRef, error) {
	return r.api.AddEntry(ctx, r.token(), movieID)
}

func (r *boundRemote) UpdateEntry(ctx context.Context, entryID int, status models.EntryStatus) (*models.EntryRef, error) {
	return r.api.UpdateEntry(ctx, r.token(), entryID, status)
}

func (r *boundRemote) DeleteEntry(ctx context.Context, entryID int) error {
	return r.api.DeleteEntry(ctx, r.token(), entryID)
}
