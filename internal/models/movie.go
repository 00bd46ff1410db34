// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package models

import "time"

// Movie is a catalog record as returned by movie/ and movie/{slug}/.
type Movie struct {
	ID          int         `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ImageURL    string      `json:"image_url"`
	ReleaseDate string      `json:"release_date"` // YYYY-MM-DD
	Duration    int         `json:"duration"`     // minutes
	Created     time.Time   `json:"created"`
	Updated     time.Time   `json:"updated"`
	Genres      []Genre     `json:"genres"`
	Crew        []MovieCrew `json:"crew,omitempty"`
}

// PrimaryGenre returns the first genre name, or an empty string if the movie has none.
// Recommendation cards show it as the category line.
func (m *Movie) PrimaryGenre() string {
	if len(m.Genres) == 0 {
		return ""
	}
	return m.Genres[0].Name
}

// Genre is a catalog genre, also used as the search page filter.
type Genre struct {
	ID      int       `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// CrewMember is a person credited on one or more movies.
type CrewMember struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Gender   string    `json:"gender"`
	Type     string    `json:"type"`
	ImageURL string    `json:"image_url"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
}

// MovieCrew links a crew member to a movie with a role and billing order.
type MovieCrew struct {
	CrewMember CrewMember `json:"crew_member"`
	Order      int        `json:"order"`
	Role       string     `json:"role"`
	Character  string     `json:"character,omitempty"`
}
