// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package models

import "time"

// MaxRating is the upper bound of the rating control.
const MaxRating = 5.0

// Review is a user's review of a movie. Rating is nil when unset.
type Review struct {
	ID       int       `json:"id"`
	User     int       `json:"user"`
	Username string    `json:"username"`
	Movie    int       `json:"movie"`
	Rating   *float64  `json:"rating"`
	Text     string    `json:"text"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
}

// ReviewSubmission is the request body of movie/{movieId}/reviews/submit/.
type ReviewSubmission struct {
	Text   string   `json:"text"`
	Rating *float64 `json:"rating,omitempty"`
}
