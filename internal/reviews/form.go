// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package reviews

import (
	"fmt"
	"strings"

	"github.com/tomtom215/filmflow/internal/models"
	"github.com/tomtom215/filmflow/internal/validation"
)

// TextLengthMessage is shown next to the text input when it is empty or too long.
const TextLengthMessage = "Review must be between 1 and 500 characters"

// Form holds the review inputs. The zero value is the initial empty form.
type Form struct {
	Text   string   `json:"text" validate:"min=1,max=500"`
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
}

// ValidationMessage implements validation.MessageOverrider.
func (Form) ValidationMessage(field, _ string) string {
	switch field {
	case "text":
		return TextLengthMessage
	case "rating":
		return fmt.Sprintf("Rating must be between 0 and %g", models.MaxRating)
	}
	return ""
}

// Validate checks the form with surrounding whitespace removed from the text.
// Field names in the error are the json names.
func (f Form) Validate() *validation.RequestValidationError {
	f.Text = strings.TrimSpace(f.Text)
	return validation.ValidateStruct(f)
}

// Submission converts the form to the request body. The text is trimmed.
func (f Form) Submission() models.ReviewSubmission {
	sub := models.ReviewSubmission{Text: strings.TrimSpace(f.Text)}
	if f.Rating != nil {
		r := *f.Rating
		sub.Rating = &r
	}
	return sub
}
