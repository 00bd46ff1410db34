// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package presence

import (
	"errors"
	"testing"

	"github.com/tomtom215/filmflow/internal/models"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		kind    ActionKind
		status  models.EntryStatus
		want    Action
		wantErr bool
	}{
		{kind: ActionAdd, want: AddEntry{}},
		{kind: ActionRemove, want: RemoveEntry{}},
		{kind: ActionSetStatus, status: models.StatusDropped, want: SetStatus{Status: models.StatusDropped}},
		{kind: ActionSetStatus, status: "remove", wantErr: true},
		{kind: "delete", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.kind, tt.status)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAction(%q, %q) error = nil", tt.kind, tt.status)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseAction(%q, %q) = %v, %v", tt.kind, tt.status, got, err)
		}
	}

	if _, err := ParseAction(ActionSetStatus, ""); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("empty status error = %v, want ErrInvalidStatus", err)
	}
}

func TestAffordanceFor(t *testing.T) {
	presentWatching := present(1, models.StatusWatching)

	tests := []struct {
		name  string
		state State
		want  Affordance
	}{
		{"unknown", unknown(), Affordance{Control: ControlLoading, Loading: true, Disabled: true}},
		{"checking", State{Kind: KindChecking}, Affordance{Control: ControlLoading, Loading: true, Disabled: true}},
		{"absent", absent(), Affordance{Control: ControlAdd, Label: LabelAdd}},
		{"present", presentWatching, Affordance{Control: ControlSelector, Label: LabelInLibrary, Status: models.StatusWatching}},
		{
			"adding",
			mutating(ActionAdd, absent(), ""),
			Affordance{Control: ControlAdd, Label: LabelAdd, Loading: true, Disabled: true},
		},
		{
			"changing status",
			mutating(ActionSetStatus, presentWatching, models.StatusCompleted),
			Affordance{Control: ControlSelector, Label: LabelInLibrary, Status: models.StatusCompleted, Loading: true, Disabled: true},
		},
		{
			"removing",
			mutating(ActionRemove, presentWatching, models.StatusWatching),
			Affordance{Control: ControlSelector, Label: LabelInLibrary, Status: models.StatusWatching, Loading: true, Disabled: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AffordanceFor(tt.state); got != tt.want {
				t.Errorf("AffordanceFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
