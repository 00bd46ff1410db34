// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

// Package reviews validates, submits and lists reviews for one movie.
//
// Invalid input never reaches the network. A confirmed review is put at the
// head of the local list, newest submission first, without refetching. A
// failed submission keeps the form as entered.
package reviews

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/filmflow/internal/backend"
	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/metrics"
	"github.com/tomtom215/filmflow/internal/models"
)

var (
	// ErrBusy is returned while a submission is in flight.
	ErrBusy = errors.New("review submission in progress")

	// ErrUnauthenticated is returned when no session token is available.
	ErrUnauthenticated = errors.New("sign in to submit a review")
)

// Remote submits reviews on behalf of the current session.
type Remote interface {
	Authenticated() bool
	SubmitReview(ctx context.Context, movieID int, sub models.ReviewSubmission) (*models.Review, error)
}

// BindRemote binds api to a token source read on every call.
func BindRemote(api backend.API, token func() string) Remote {
	return &boundRemote{api: api, token: token}
}

type boundRemote struct {
	api   backend.API
	token func() string
}

func (r *boundRemote) Authenticated() bool { return r.token() != "" }

func (r *boundRemote) SubmitReview(ctx context.Context, movieID int, sub models.ReviewSubmission) (*models.Review, error) {
	return r.api.SubmitReview(ctx, r.token(), movieID, sub)
}

// State is a snapshot of the pipeline.
type State struct {
	Form       Form              `json:"form"`
	Submitting bool              `json:"submitting"`
	Errors     map[string]string `json:"errors,omitempty"`
	LastError  string            `json:"last_error,omitempty"`
	Reviews    []models.Review   `json:"reviews"`
}

// Config configures a Pipeline.
type Config struct {
	MovieID int
	Remote  Remote

	// Username returns the signed-in user's name, used to attribute a
	// confirmed review.
	Username func() string

	// OnChange is called after every state change. May be nil.
	OnChange func()
}

// Pipeline owns the review form and list of one movie.
type Pipeline struct {
	movieID  int
	remote   Remote
	username func() string
	onChange func()

	mu         sync.Mutex
	form       Form
	submitting bool
	errs       map[string]string
	lastErr    string
	reviews    []models.Review
	epoch      uint64
}

// New creates a pipeline with an empty form and list.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		movieID:  cfg.MovieID,
		remote:   cfg.Remote,
		username: cfg.Username,
		onChange: cfg.OnChange,
		reviews:  []models.Review{},
	}
	if p.username == nil {
		p.username = func() string { return "" }
	}
	if p.onChange == nil {
		p.onChange = func() {}
	}
	return p
}

// SetReviews replaces the list, as loaded from the server.
func (p *Pipeline) SetReviews(list []models.Review) {
	p.mu.Lock()
	if list == nil {
		list = []models.Review{}
	}
	p.reviews = append([]models.Review(nil), list...)
	p.mu.Unlock()
	p.onChange()
}

// SetText updates the text input. Ignored while submitting.
func (p *Pipeline) SetText(text string) {
	p.edit(func(f *Form) { f.Text = text })
}

// SetRating updates the rating input; nil clears it. Ignored while submitting.
func (p *Pipeline) SetRating(rating *float64) {
	p.edit(func(f *Form) {
		if rating == nil {
			f.Rating = nil
			return
		}
		r := *rating
		f.Rating = &r
	})
}

func (p *Pipeline) edit(fn func(*Form)) {
	p.mu.Lock()
	if p.submitting {
		p.mu.Unlock()
		return
	}
	fn(&p.form)
	p.mu.Unlock()
	p.onChange()
}

// Submit validates the form and sends it. Validation failures are returned
// as *validation.RequestValidationError and recorded for inline display.
// The channel receives the outcome of the request once it completes.
func (p *Pipeline) Submit(ctx context.Context) (<-chan error, error) {
	p.mu.Lock()
	if p.submitting {
		p.mu.Unlock()
		metrics.ReviewSubmissions.WithLabelValues("rejected").Inc()
		return nil, ErrBusy
	}
	if !p.remote.Authenticated() {
		p.mu.Unlock()
		metrics.ReviewSubmissions.WithLabelValues("rejected").Inc()
		return nil, ErrUnauthenticated
	}
	if verr := p.form.Validate(); verr != nil {
		p.errs = verr.Fields()
		p.mu.Unlock()
		metrics.ReviewSubmissions.WithLabelValues("invalid").Inc()
		p.onChange()
		return nil, verr
	}

	sub := p.form.Submission()
	p.submitting = true
	p.errs = nil
	p.lastErr = ""
	epoch := p.epoch
	p.mu.Unlock()
	p.onChange()

	out := make(chan error, 1)
	go func() {
		defer close(out)
		review, err := p.remote.SubmitReview(ctx, p.movieID, sub)
		if p.finish(ctx, epoch, sub, review, err) {
			p.onChange()
		}
		out <- err
	}()
	return out, nil
}

// finish applies a submission result. It reports whether state changed.
func (p *Pipeline) finish(ctx context.Context, epoch uint64, sub models.ReviewSubmission, review *models.Review, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if epoch != p.epoch {
		return false
	}
	p.submitting = false

	if err != nil {
		metrics.ReviewSubmissions.WithLabelValues("failed").Inc()
		p.lastErr = err.Error()
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("component", "reviews").
			Int("movie_id", p.movieID).
			Msg("review submission failed, keeping form")
		return true
	}

	metrics.ReviewSubmissions.WithLabelValues("success").Inc()
	confirmed := confirmedReview(review, sub, p.movieID, p.username())
	p.reviews = append([]models.Review{confirmed}, p.reviews...)
	p.form = Form{}
	return true
}

// confirmedReview merges the server's record with what the client knows.
// The server supplies id and timestamps. The signed-in username takes
// precedence over the server's; the server's value is kept only when no
// local username is known.
func confirmedReview(review *models.Review, sub models.ReviewSubmission, movieID int, username string) models.Review {
	var r models.Review
	if review != nil {
		r = *review
	}
	if username != "" {
		r.Username = username
	}
	if r.Text == "" {
		r.Text = sub.Text
	}
	if r.Rating == nil && sub.Rating != nil {
		v := *sub.Rating
		r.Rating = &v
	}
	if r.Movie == 0 {
		r.Movie = movieID
	}
	return r
}

// Reset clears the form, list and any submission in flight.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.epoch++
	p.form = Form{}
	p.submitting = false
	p.errs = nil
	p.lastErr = ""
	p.reviews = []models.Review{}
	p.mu.Unlock()
	p.onChange()
}

// Snapshot returns a copy of the current state.
func (p *Pipeline) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := State{
		Form:       p.form,
		Submitting: p.submitting,
		LastError:  p.lastErr,
		Reviews:    append([]models.Review{}, p.reviews...),
	}
	if p.form.Rating != nil {
		r := *p.form.Rating
		st.Form.Rating = &r
	}
	if len(p.errs) > 0 {
		st.Errors = make(map[string]string, len(p.errs))
		for k, v := range p.errs {
			st.Errors[k] = v
		}
	}
	return st
}
