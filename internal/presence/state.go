// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package presence

import (
	"errors"
	"fmt"

	"github.com/tomtom215/filmflow/internal/models"
)

var (
	// ErrBusy is returned when a mutation for the movie is already in
	// flight. The state is unchanged.
	ErrBusy = errors.New("library entry is being updated")

	// ErrNotAllowed is returned for an action the current state does not
	// permit, such as adding a movie that is already present.
	ErrNotAllowed = errors.New("action not allowed in current state")

	// ErrUnauthenticated is returned when no session token is available.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrInvalidStatus is returned for a status outside the five persisted ones.
	ErrInvalidStatus = errors.New("invalid library status")
)

// Kind is the presence state of one movie.
type Kind string

const (
	KindUnknown  Kind = "unknown"
	KindChecking Kind = "checking"
	KindAbsent   Kind = "absent"
	KindPresent  Kind = "present"
	KindMutating Kind = "mutating"
)

// State is the presence of one movie in the user's library.
//
// EntryID and Status are set for Present. While Mutating, Pending names the
// action, Previous holds the state to restore on failure, and Status holds
// the value the selector shows: the new status for an optimistic status
// change, the previous one otherwise.
type State struct {
	Kind     Kind               `json:"kind"`
	EntryID  int                `json:"entry_id,omitempty"`
	Status   models.EntryStatus `json:"status,omitempty"`
	Pending  ActionKind         `json:"pending,omitempty"`
	Previous *State             `json:"previous,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func unknown() State { return State{Kind: KindUnknown} }
func absent() State  { return State{Kind: KindAbsent} }

func present(entryID int, status models.EntryStatus) State {
	return State{Kind: KindPresent, EntryID: entryID, Status: status}
}

func mutating(action ActionKind, prev State, shown models.EntryStatus) State {
	p := prev
	return State{
		Kind:     KindMutating,
		EntryID:  prev.EntryID,
		Status:   shown,
		Pending:  action,
		Previous: &p,
	}
}

// ActionKind names an action variant.
type ActionKind string

const (
	ActionAdd       ActionKind = "add"
	ActionSetStatus ActionKind = "set_status"
	ActionRemove    ActionKind = "remove"
)

// Action is a user request against a movie's library entry. The variants
// are AddEntry, SetStatus and RemoveEntry.
type Action interface {
	Kind() ActionKind
}

// AddEntry adds the movie to the library. Allowed only from Absent.
type AddEntry struct{}

// SetStatus changes the entry's status. Allowed only from Present.
type SetStatus struct {
	Status models.EntryStatus
}

// RemoveEntry deletes the entry. Allowed only from Present.
type RemoveEntry struct{}

func (AddEntry) Kind() ActionKind    { return ActionAdd }
func (SetStatus) Kind() ActionKind   { return ActionSetStatus }
func (RemoveEntry) Kind() ActionKind { return ActionRemove }

// ParseAction builds an action from its wire form.
func ParseAction(kind ActionKind, status models.EntryStatus) (Action, error) {
	switch kind {
	case ActionAdd:
		return AddEntry{}, nil
	case ActionRemove:
		return RemoveEntry{}, nil
	case ActionSetStatus:
		if !status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		return SetStatus{Status: status}, nil
	default:
		return nil, fmt.Errorf("unknown library action %q", kind)
	}
}

// Control is the widget an affordance renders.
type Control string

const (
	ControlLoading  Control = "loading"
	ControlAdd      Control = "add"
	ControlSelector Control = "status_selector"
)

const (
	LabelAdd       = "Add to library"
	LabelInLibrary = "In library"
)

// Affordance is the button or selector derived from a state.
type Affordance struct {
	Control  Control            `json:"control"`
	Label    string             `json:"label,omitempty"`
	Status   models.EntryStatus `json:"status,omitempty"`
	Loading  bool               `json:"loading"`
	Disabled bool               `json:"disabled"`
}

// AffordanceFor derives the affordance for s. A mutating state keeps the
// control it started from and adds the loading overlay.
func AffordanceFor(s State) Affordance {
	switch s.Kind {
	case KindAbsent:
		return Affordance{Control: ControlAdd, Label: LabelAdd}
	case KindPresent:
		return Affordance{Control: ControlSelector, Label: LabelInLibrary, Status: s.Status}
	case KindMutating:
		base := Affordance{Control: ControlLoading}
		if s.Previous != nil {
			base = AffordanceFor(*s.Previous)
		}
		if base.Control == ControlSelector {
			base.Status = s.Status
		}
		base.Loading = true
		base.Disabled = true
		return base
	default:
		return Affordance{Control: ControlLoading, Loading: true, Disabled: true}
	}
}
