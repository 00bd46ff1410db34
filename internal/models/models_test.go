// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, size, want int
	}{
		{0, 24, 1},
		{1, 24, 1},
		{24, 24, 1},
		{25, 24, 2},
		{48, 24, 2},
		{49, 24, 3},
		{10, 0, 1},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.count, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.count, tt.size, got, tt.want)
		}
	}
}

func TestEntryStatusValid(t *testing.T) {
	for _, s := range EntryStatuses {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []EntryStatus{"", "remove", "WATCHING"} {
		if s.Valid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}

func TestOrderingLibraryParam(t *testing.T) {
	tests := map[Ordering]string{
		OrderingNone:        "",
		OrderingTitle:       "movie__title",
		OrderingDuration:    "movie__duration",
		OrderingReleaseDate: "movie__release_date",
	}
	for o, want := range tests {
		if got := o.LibraryParam(); got != want {
			t.Errorf("%q.LibraryParam() = %q, want %q", o, got, want)
		}
	}
}

func TestPageDecode(t *testing.T) {
	body := `{"count":1,"next":null,"previous":null,"results":[{"id":7,"slug":"the-matrix","title":"The Matrix","genres":[{"id":1,"name":"Sci-Fi"}]}]}`

	var page Page[Movie]
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if page.Count != 1 || len(page.Results) != 1 {
		t.Fatalf("page = %+v, want 1 result", page)
	}
	if page.Results[0].ID != 7 {
		t.Errorf("ID = %d, want 7", page.Results[0].ID)
	}
	if page.Results[0].PrimaryGenre() != "Sci-Fi" {
		t.Errorf("PrimaryGenre() = %q, want Sci-Fi", page.Results[0].PrimaryGenre())
	}
}

func TestReviewRatingUnset(t *testing.T) {
	var r Review
	if err := json.Unmarshal([]byte(`{"id":3,"text":"ok","rating":null}`), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if r.Rating != nil {
		t.Errorf("Rating = %v, want nil", *r.Rating)
	}
}
