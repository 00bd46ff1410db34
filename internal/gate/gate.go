// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

/*
Package gate runs authenticated-only data sources off the session status.

A Gate reduces every session it observes to one of three phases and calls
the matching hook only when the phase changes:

	loading          -> OnLoading          (spinner, no fetch)
	authenticated    -> OnAuthenticated    (perform the gated fetch)
	unauthenticated  -> OnUnauthenticated  (clear held state, no fetch)

Re-observing the same phase is a no-op, so a source behind a gate is fetched
exactly once per transition into authenticated no matter how often the
session is re-broadcast. A token change while authenticated is treated as a
sign-out followed by a sign-in, so no state from the previous identity
survives.

A gate created with a callback path additionally reports a sign-in redirect
while unauthenticated; content behind such a gate must not be rendered
until the phase is authenticated.
*/
package gate

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/metrics"
	"github.com/tomtom215/filmflow/internal/session"
)

// Phase is the gate's reduction of a session.
type Phase string

const (
	PhaseInitial         Phase = ""
	PhaseLoading         Phase = "loading"
	PhaseAuthenticated   Phase = "authenticated"
	PhaseUnauthenticated Phase = "unauthenticated"
)

// PhaseOf reduces s to a phase. An authenticated status without a token
// cannot make calls and counts as unauthenticated.
func PhaseOf(s session.Session) Phase {
	switch {
	case s.Status == session.StatusLoading || s.Status == "":
		return PhaseLoading
	case s.Authenticated():
		return PhaseAuthenticated
	default:
		return PhaseUnauthenticated
	}
}

// Hooks are called on phase transitions. Nil hooks are skipped. Hooks run
// one at a time and must not call back into the same gate.
type Hooks struct {
	OnLoading         func()
	OnAuthenticated   func(session.Session)
	OnUnauthenticated func()
}

// Redirect is the sign-in redirect a page gate reports while unauthenticated.
type Redirect struct {
	CallbackURL string `json:"callback_url"`
}

// State is what a view renders for the gate.
type State struct {
	Phase    Phase     `json:"phase"`
	Redirect *Redirect `json:"redirect,omitempty"`
}

// Renderable reports whether gated content may be shown.
func (s State) Renderable() bool {
	return s.Phase == PhaseAuthenticated
}

// Gate tracks the phase for one group of gated sources.
type Gate struct {
	name        string
	callbackURL string
	hooks       Hooks
	logger      zerolog.Logger

	// observeMu serialises observations with the hooks they trigger.
	observeMu sync.Mutex

	mu      sync.Mutex
	phase   Phase
	current session.Session
	detach  func()
}

// Option configures a Gate.
type Option func(*Gate)

// WithRedirect makes the gate report a sign-in redirect back to callbackURL
// while unauthenticated.
func WithRedirect(callbackURL string) Option {
	return func(g *Gate) { g.callbackURL = callbackURL }
}

// New creates a gate in the initial phase. name labels logs and metrics.
func New(name string, hooks Hooks, opts ...Option) *Gate {
	g := &Gate{
		name:   name,
		hooks:  hooks,
		logger: logging.WithComponent("gate").With().Str("gate", name).Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Attach observes the provider's current session and every later one until
// Detach. Attaching again replaces the previous subscription.
func (g *Gate) Attach(p session.Provider) {
	g.observeMu.Lock()
	defer g.observeMu.Unlock()

	unsubscribe := p.Subscribe(func(s session.Session) { g.Observe(s) })

	g.mu.Lock()
	prev := g.detach
	g.detach = unsubscribe
	g.mu.Unlock()
	if prev != nil {
		prev()
	}

	g.observeLocked(p.Current())
}

// Detach stops following the provider. The phase is left as it is.
func (g *Gate) Detach() {
	g.mu.Lock()
	detach := g.detach
	g.detach = nil
	g.mu.Unlock()
	if detach != nil {
		detach()
	}
}

// Observe feeds a session to the gate. It reports whether the phase changed.
func (g *Gate) Observe(s session.Session) bool {
	g.observeMu.Lock()
	defer g.observeMu.Unlock()
	return g.observeLocked(s)
}

func (g *Gate) observeLocked(s session.Session) bool {
	next := PhaseOf(s)

	g.mu.Lock()
	prev := g.phase
	prevToken := g.current.AccessToken
	g.current = s
	g.phase = next
	g.mu.Unlock()

	if next == prev {
		if next != PhaseAuthenticated || s.AccessToken == prevToken {
			return false
		}
		// Identity changed under an authenticated session.
		g.logger.Info().Msg("access token changed, resetting gated state")
		g.transition(PhaseUnauthenticated, s)
	}

	g.transition(next, s)
	return true
}

func (g *Gate) transition(to Phase, s session.Session) {
	metrics.GateTransitions.WithLabelValues(g.name, string(to)).Inc()
	g.logger.Debug().Str("phase", string(to)).Msg("gate transition")

	switch to {
	case PhaseLoading:
		if g.hooks.OnLoading != nil {
			g.hooks.OnLoading()
		}
	case PhaseAuthenticated:
		if g.hooks.OnAuthenticated != nil {
			g.hooks.OnAuthenticated(s)
		}
	case PhaseUnauthenticated:
		if g.hooks.OnUnauthenticated != nil {
			g.hooks.OnUnauthenticated()
		}
	}
}

// Phase returns the current phase.
func (g *Gate) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Session returns the last observed session.
func (g *Gate) Session() session.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Token returns the access token while authenticated, or "".
func (g *Gate) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseAuthenticated {
		return ""
	}
	return g.current.AccessToken
}

// State returns the renderable gate state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := State{Phase: g.phase}
	if st.Phase == PhaseInitial {
		st.Phase = PhaseLoading
	}
	if g.callbackURL != "" && g.phase == PhaseUnauthenticated {
		st.Redirect = &Redirect{CallbackURL: g.callbackURL}
	}
	return st
}
