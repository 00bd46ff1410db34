// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package reviews

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/filmflow/internal/models"
	"github.com/tomtom215/filmflow/internal/validation"
)

// fakeRemote answers SubmitReview from the test through reply.
type fakeRemote struct {
	authed bool

	mu    sync.Mutex
	calls []models.ReviewSubmission

	reply chan fakeReply
}

type fakeReply struct {
	review *models.Review
	err    error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{authed: true, reply: make(chan fakeReply, 1)}
}

func (r *fakeRemote) Authenticated() bool { return r.authed }

func (r *fakeRemote) SubmitReview(_ context.Context, _ int, sub models.ReviewSubmission) (*models.Review, error) {
	r.mu.Lock()
	r.calls = append(r.calls, sub)
	r.mu.Unlock()
	a := <-r.reply
	return a.review, a.err
}

func (r *fakeRemote) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func rating(v float64) *float64 { return &v }

func newPipeline(remote *fakeRemote) *Pipeline {
	p := New(Config{
		MovieID:  7,
		Remote:   remote,
		Username: func() string { return "neo" },
	})
	p.SetReviews([]models.Review{{ID: 1, Username: "trinity", Text: "older"}})
	return p
}

func awaitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for submission")
		return nil
	}
}

// ===================================================================================================
// Validation
// ===================================================================================================

func TestSubmit_InvalidTextNeverCallsNetwork(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace only", "  \t\n "},
		{"too long", strings.Repeat("x", 501)},
		{"too long after trimming", " " + strings.Repeat("x", 501) + " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newFakeRemote()
			p := newPipeline(remote)
			p.SetText(tt.text)

			_, err := p.Submit(context.Background())
			var verr *validation.RequestValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Submit() error = %v, want validation error", err)
			}
			if remote.callCount() != 0 {
				t.Error("invalid review reached the network")
			}
			snap := p.Snapshot()
			if snap.Errors["text"] != TextLengthMessage {
				t.Errorf("inline error = %q, want %q", snap.Errors["text"], TextLengthMessage)
			}
			if snap.Submitting {
				t.Error("form disabled after validation failure")
			}
		})
	}
}

func TestSubmit_TrimsTextBeforeSending(t *testing.T) {
	remote := newFakeRemote()
	p := newPipeline(remote)
	p.SetText("  " + strings.Repeat("x", 500) + "\n")

	done, err := p.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	remote.reply <- fakeReply{review: &models.Review{ID: 2}}
	if err := awaitErr(t, done); err != nil {
		t.Fatalf("submission error = %v", err)
	}

	remote.mu.Lock()
	sent := remote.calls[0].Text
	remote.mu.Unlock()
	if sent != strings.Repeat("x", 500) {
		t.Errorf("sent text has %d chars, want trimmed 500", len(sent))
	}
	if head := p.Snapshot().Reviews[0]; head.Text != sent {
		t.Errorf("confirmed text = %q, want the trimmed submission", head.Text)
	}
}

func TestSubmit_RatingBounds(t *testing.T) {
	tests := []struct {
		rating  *float64
		wantErr bool
	}{
		{rating: nil},
		{rating: rating(0)},
		{rating: rating(2.5)},
		{rating: rating(5)},
		{rating: rating(5.5), wantErr: true},
		{rating: rating(-0.5), wantErr: true},
	}
	for _, tt := range tests {
		verr := Form{Text: "fine", Rating: tt.rating}.Validate()
		if (verr != nil) != tt.wantErr {
			t.Errorf("Validate(rating=%v) = %v, wantErr %v", tt.rating, verr, tt.wantErr)
		}
	}
}

// ===================================================================================================
// Submission
// ===================================================================================================

func TestSubmit_SuccessPrependsAndClears(t *testing.T) {
	remote := newFakeRemote()
	p := newPipeline(remote)
	p.SetText("Mind-bending")
	p.SetRating(rating(4))

	done, err := p.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !p.Snapshot().Submitting {
		t.Error("form should be disabled while submitting")
	}
	p.SetText("typed while submitting")

	created := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	remote.reply <- fakeReply{review: &models.Review{ID: 2, Text: "Mind-bending", Rating: rating(4), Created: created}}
	if err := awaitErr(t, done); err != nil {
		t.Fatalf("submission error = %v", err)
	}

	snap := p.Snapshot()
	if len(snap.Reviews) != 2 {
		t.Fatalf("Reviews = %+v, want 2", snap.Reviews)
	}
	head := snap.Reviews[0]
	if head.ID != 2 || head.Username != "neo" || head.Text != "Mind-bending" || head.Rating == nil || *head.Rating != 4 {
		t.Errorf("head = %+v", head)
	}
	if !head.Created.Equal(created) {
		t.Errorf("Created = %v, want server value", head.Created)
	}
	if snap.Reviews[1].ID != 1 {
		t.Errorf("older review moved: %+v", snap.Reviews[1])
	}
	if snap.Form.Text != "" || snap.Form.Rating != nil || snap.Submitting {
		t.Errorf("form = %+v submitting=%v, want reset", snap.Form, snap.Submitting)
	}
}

func TestConfirmedReview_UsernamePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		server string
		local  string
		want   string
	}{
		{"local wins over server", "server-name", "neo", "neo"},
		{"server kept without local", "server-name", "", "server-name"},
		{"local fills missing server", "", "neo", "neo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confirmedReview(&models.Review{ID: 3, Username: tt.server}, models.ReviewSubmission{Text: "ok"}, 7, tt.local)
			if got.Username != tt.want {
				t.Errorf("Username = %q, want %q", got.Username, tt.want)
			}
			if got.Movie != 7 || got.Text != "ok" {
				t.Errorf("review = %+v", got)
			}
		})
	}
}

func TestSubmit_FailurePreservesInput(t *testing.T) {
	remote := newFakeRemote()
	p := newPipeline(remote)
	p.SetText("Keep me")
	p.SetRating(rating(3))

	done, err := p.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	remote.reply <- fakeReply{err: errors.New("502")}
	if err := awaitErr(t, done); err == nil {
		t.Fatal("expected submission error")
	}

	snap := p.Snapshot()
	if snap.Submitting {
		t.Error("form should be re-enabled")
	}
	if snap.Form.Text != "Keep me" || snap.Form.Rating == nil || *snap.Form.Rating != 3 {
		t.Errorf("form = %+v, want preserved input", snap.Form)
	}
	if len(snap.Reviews) != 1 {
		t.Errorf("Reviews = %+v, list must be unchanged", snap.Reviews)
	}
	if snap.LastError == "" {
		t.Error("LastError should be set")
	}
	if remote.callCount() != 1 {
		t.Errorf("calls = %d, failures are not retried", remote.callCount())
	}
}

func TestSubmit_Guards(t *testing.T) {
	remote := newFakeRemote()
	p := newPipeline(remote)
	p.SetText("first")

	done, err := p.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := p.Submit(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("second Submit() error = %v, want ErrBusy", err)
	}
	remote.reply <- fakeReply{review: &models.Review{ID: 3}}
	awaitErr(t, done)

	anon := newFakeRemote()
	anon.authed = false
	q := newPipeline(anon)
	q.SetText("hello")
	if _, err := q.Submit(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Submit() without session error = %v, want ErrUnauthenticated", err)
	}
}

func TestSubmit_ResetDiscardsResult(t *testing.T) {
	remote := newFakeRemote()
	p := newPipeline(remote)
	p.SetText("abandoned")

	done, err := p.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	p.Reset()
	remote.reply <- fakeReply{review: &models.Review{ID: 9}}
	awaitErr(t, done)

	if snap := p.Snapshot(); len(snap.Reviews) != 0 || snap.Submitting {
		t.Errorf("snapshot = %+v, want empty after reset", snap)
	}
}
