// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package models

import "time"

// EntryStatus is the persisted watch status of a library entry.
type EntryStatus string

const (
	StatusPlanToWatch EntryStatus = "plan_to_watch"
	StatusWatching    EntryStatus = "watching"
	StatusCompleted   EntryStatus = "completed"
	StatusDropped     EntryStatus = "dropped"
	StatusOnHold      EntryStatus = "on_hold"
)

// EntryStatuses lists every persisted status in selector order.
var EntryStatuses = []EntryStatus{
	StatusWatching,
	StatusCompleted,
	StatusPlanToWatch,
	StatusOnHold,
	StatusDropped,
}

// Valid reports whether s is one of the five persisted statuses.
func (s EntryStatus) Valid() bool {
	switch s {
	case StatusPlanToWatch, StatusWatching, StatusCompleted, StatusDropped, StatusOnHold:
		return true
	default:
		return false
	}
}

// Label returns the human-readable selector label.
func (s EntryStatus) Label() string {
	switch s {
	case StatusPlanToWatch:
		return "Plan to watch"
	case StatusWatching:
		return "Watching"
	case StatusCompleted:
		return "Completed"
	case StatusDropped:
		return "Dropped"
	case StatusOnHold:
		return "On hold"
	default:
		return string(s)
	}
}

// LibraryEntry is a movie tracked in the authenticated user's library.
// ID is server-assigned and is not the movie ID.
type LibraryEntry struct {
	ID      int         `json:"id"`
	Movie   Movie       `json:"movie"`
	Status  EntryStatus `json:"status"`
	Created time.Time   `json:"created"`
	Updated time.Time   `json:"updated"`
}

// EntryRef is the lightweight entry shape returned by the lookup, add and
// update endpoints. Only the identity and status are relied upon; the movie
// field may be a bare id or a nested object depending on the endpoint.
type EntryRef struct {
	ID     int         `json:"id"`
	Status EntryStatus `json:"status"`
}
