// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/filmflow/internal/gate"
	"github.com/tomtom215/filmflow/internal/models"
	"github.com/tomtom215/filmflow/internal/optimistic"
	"github.com/tomtom215/filmflow/internal/paging"
	"github.com/tomtom215/filmflow/internal/presence"
	"github.com/tomtom215/filmflow/internal/session"
)

// LibraryPath is the route the sign-in redirect returns to.
const LibraryPath = "/library"

// ErrEntryNotFound is returned for an action on an entry that is not on the
// displayed page.
var ErrEntryNotFound = errors.New("library entry not on the current page")

// LibraryRow is one rendered library entry with its control.
type LibraryRow struct {
	Entry      models.LibraryEntry `json:"entry"`
	Presence   presence.State      `json:"presence"`
	Affordance presence.Affordance `json:"affordance"`
}

// LibrarySnapshot is the rendered state of the library page. Only Gate is
// set unless the session is authenticated.
type LibrarySnapshot struct {
	Gate     gate.State       `json:"gate"`
	Criteria *paging.Criteria `json:"criteria,omitempty"`
	Rows     []LibraryRow     `json:"rows,omitempty"`
	Total    int              `json:"total,omitempty"`
	Pages    int              `json:"pages,omitempty"`
	Loading  bool             `json:"loading,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// LibraryView is the library page.
type LibraryView struct {
	ctx    context.Context
	deps   Deps
	notify func()

	gate     *gate.Gate
	entries  *paging.Controller[models.LibraryEntry]
	presence *presence.Registry
}

// NewLibraryView creates the library page. Call Start to follow the session.
func NewLibraryView(ctx context.Context, deps Deps, notify func()) *LibraryView {
	if notify == nil {
		notify = func() {}
	}
	v := &LibraryView{ctx: ctx, deps: deps, notify: notify}

	v.gate = gate.New("library", gate.Hooks{
		OnLoading:         v.suspend,
		OnAuthenticated:   func(session.Session) { v.entries.Resume() },
		OnUnauthenticated: v.suspend,
	}, gate.WithRedirect(LibraryPath))

	v.presence = presence.NewRegistry(presence.RegistryConfig{
		Remote:    presence.BindRemote(deps.API, v.gate.Token),
		Applier:   deps.Applier,
		OnChange:  func(int, presence.State) { v.notify() },
		OnRemoved: v.dropRow,
	})

	v.entries = paging.NewController[models.LibraryEntry](ctx, paging.ControllerConfig{
		Name:            "library",
		PageSize:        deps.PageSize,
		Debounce:        deps.Debounce,
		Suspended:       true,
		DebounceOptions: deps.DebounceOptions,
	}, v.fetchPage, v.pageChanged)
	return v
}

// Start follows the session. The list is fetched once the session is
// authenticated.
func (v *LibraryView) Start() {
	v.gate.Attach(v.deps.Session)
}

// Close detaches from the session and abandons requests in flight.
func (v *LibraryView) Close() {
	v.gate.Detach()
	v.entries.Close()
	v.presence.ResetAll()
}

// Entries exposes the list controller for input events.
func (v *LibraryView) Entries() *paging.Controller[models.LibraryEntry] {
	return v.entries
}

// Gate returns the view's session gate state.
func (v *LibraryView) Gate() gate.State {
	return v.gate.State()
}

func (v *LibraryView) fetchPage(ctx context.Context, c paging.Criteria) (*models.Page[models.LibraryEntry], error) {
	return v.deps.API.ListLibrary(withRequestID(ctx), v.gate.Token(), c.LibraryQuery())
}

// suspend clears everything held for the previous session.
func (v *LibraryView) suspend() {
	v.entries.Suspend()
	v.entries.Reset()
	v.presence.ResetAll()
}

// pageChanged seeds presence for rows that are new on the page and drops
// machines for rows that left it. Machines already tracking a row are left
// alone, so a confirmed status change is not overwritten by list data.
func (v *LibraryView) pageChanged() {
	snap := v.entries.Snapshot()
	if snap.Loaded {
		ids := make([]int, 0, len(snap.Items))
		for _, e := range snap.Items {
			ids = append(ids, e.Movie.ID)
			if _, ok := v.presence.Lookup(e.Movie.ID); !ok {
				v.presence.Seed(e.Movie.ID, e.ID, e.Status)
			}
		}
		v.presence.Retain(ids)
	}
	v.notify()
}

// dropRow removes a confirmed deletion from the displayed page.
func (v *LibraryView) dropRow(_, entryID int) {
	v.entries.RemoveWhere(func(e models.LibraryEntry) bool { return e.ID == entryID })
}

// Act dispatches a library action for the entry on the current page.
func (v *LibraryView) Act(ctx context.Context, entryID int, a presence.Action) (<-chan optimistic.Result, error) {
	if !v.gate.State().Renderable() {
		return nil, presence.ErrUnauthenticated
	}
	for _, e := range v.entries.Snapshot().Items {
		if e.ID == entryID {
			return v.presence.Machine(e.Movie.ID).Dispatch(withRequestID(ctx), a)
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrEntryNotFound, entryID)
}

// Snapshot returns the rendered state.
func (v *LibraryView) Snapshot() LibrarySnapshot {
	out := LibrarySnapshot{Gate: v.gate.State()}
	if !out.Gate.Renderable() {
		return out
	}

	snap := v.entries.Snapshot()
	criteria := v.entries.Criteria()
	states := v.presence.States()

	out.Criteria = &criteria
	out.Total = snap.Total
	out.Pages = snap.Pages
	out.Loading = snap.Loading
	out.Error = snap.LastError
	out.Rows = make([]LibraryRow, 0, len(snap.Items))
	for _, e := range snap.Items {
		st, ok := states[e.Movie.ID]
		if !ok {
			st = presence.State{Kind: presence.KindPresent, EntryID: e.ID, Status: e.Status}
		}
		out.Rows = append(out.Rows, LibraryRow{
			Entry:      e,
			Presence:   st,
			Affordance: presence.AffordanceFor(st),
		})
	}
	return out
}
