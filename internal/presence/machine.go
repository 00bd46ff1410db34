// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

/*
Package presence tracks whether each movie is in the user's library.

Every movie has its own Machine:

	Unknown --Check--> Checking --found--> Present(entry, status)
	                            \--404---> Absent
	                            \--fail--> Absent(error)
	Absent  --AddEntry-->    Mutating --ok--> Present(new entry)   --fail--> Absent
	Present --SetStatus-->   Mutating --ok--> Present(new status)  --fail--> Present(old status)
	Present --RemoveEntry--> Mutating --ok--> Absent               --fail--> Present(old status)

A status change is shown before the server confirms it. Adds and removes
wait for the server. While Mutating every action returns ErrBusy and leaves
the state alone.
*/
package presence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/filmflow/internal/backend"
	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/metrics"
	"github.com/tomtom215/filmflow/internal/models"
	"github.com/tomtom215/filmflow/internal/optimistic"
)

// Config configures a Machine.
type Config struct {
	MovieID int
	Remote  Remote

	// Applier enforces one mutation per movie. Machines for the same movie
	// in different views share it. Nil creates a private one.
	Applier *optimistic.Applier[int]

	// OnChange receives the current state after every change. It must not
	// call Check or Dispatch.
	OnChange func(State)

	// OnRemoved is called after a confirmed delete.
	OnRemoved func(entryID int)
}

// Machine is the presence state machine for one movie.
type Machine struct {
	movieID   int
	remote    Remote
	applier   *optimistic.Applier[int]
	onChange  func(State)
	onRemoved func(int)
	logger    zerolog.Logger

	notifyMu sync.Mutex

	mu    sync.Mutex
	state State
	epoch uint64
}

// NewMachine creates a machine in Unknown.
func NewMachine(cfg Config) *Machine {
	m := &Machine{
		movieID:   cfg.MovieID,
		remote:    cfg.Remote,
		applier:   cfg.Applier,
		onChange:  cfg.OnChange,
		onRemoved: cfg.OnRemoved,
		state:     unknown(),
		logger:    logging.WithComponent("presence").With().Int("movie_id", cfg.MovieID).Logger(),
	}
	if m.applier == nil {
		m.applier = optimistic.NewApplier[int]()
	}
	return m
}

// MovieID returns the movie this machine tracks.
func (m *Machine) MovieID() int {
	return m.movieID
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Affordance returns the affordance for the current state.
func (m *Machine) Affordance() Affordance {
	return AffordanceFor(m.State())
}

// Check looks the movie up. It runs only from Unknown; in any other state
// it returns a closed channel. A not-found response means Absent. Any other
// failure is logged and also lands in Absent, with Error set, so the add
// control stays usable; an add for a movie that is in fact present fails on
// the server and returns to Absent.
func (m *Machine) Check(ctx context.Context) (<-chan struct{}, error) {
	m.mu.Lock()
	if !m.remote.Authenticated() {
		m.mu.Unlock()
		return nil, ErrUnauthenticated
	}
	if m.state.Kind != KindUnknown {
		m.mu.Unlock()
		return closed(), nil
	}
	m.state = State{Kind: KindChecking}
	epoch := m.epoch
	m.mu.Unlock()
	m.emit()

	done := make(chan struct{})
	go func() {
		defer close(done)
		ref, err := m.remote.GetEntry(ctx, m.movieID)

		var next State
		switch {
		case err == nil && ref != nil:
			next = present(ref.ID, ref.Status)
		case err == nil || errors.Is(err, backend.ErrNotFound):
			next = absent()
		default:
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("component", "presence").
				Int("movie_id", m.movieID).
				Msg("library entry lookup failed, treating as absent")
			next = absent()
			next.Error = err.Error()
		}

		m.mu.Lock()
		if epoch != m.epoch || m.state.Kind != KindChecking {
			m.mu.Unlock()
			return
		}
		m.state = next
		m.mu.Unlock()
		m.emit()
	}()
	return done, nil
}

// Seed installs a presence known from another source, such as a row of the
// library list. It is ignored while a mutation is in flight.
func (m *Machine) Seed(entryID int, status models.EntryStatus) {
	m.mu.Lock()
	if m.state.Kind == KindMutating {
		m.mu.Unlock()
		return
	}
	m.epoch++
	m.state = present(entryID, status)
	m.mu.Unlock()
	m.emit()
}

// Dispatch starts action a. It returns ErrBusy while another mutation is in
// flight, ErrNotAllowed when the state does not permit a, and
// ErrUnauthenticated without a session. The channel reports how the
// mutation ended.
func (m *Machine) Dispatch(ctx context.Context, a Action) (<-chan optimistic.Result, error) {
	m.mu.Lock()
	if m.state.Kind == KindMutating || m.applier.Pending(m.movieID) {
		m.mu.Unlock()
		metrics.RecordMutation(string(a.Kind()), "rejected")
		return nil, ErrBusy
	}
	if !m.remote.Authenticated() {
		m.mu.Unlock()
		return nil, ErrUnauthenticated
	}

	prev := m.state
	epoch := m.epoch
	var (
		mut  optimistic.Mutation
		next State
	)

	switch act := a.(type) {
	case AddEntry:
		if prev.Kind != KindAbsent {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: add from %s", ErrNotAllowed, prev.Kind)
		}
		var ref *models.EntryRef
		mut = optimistic.Mutation{
			Call: func(ctx context.Context) error {
				r, err := m.remote.AddEntry(ctx, m.movieID)
				ref = r
				return err
			},
			Commit: func() {
				st := present(0, models.StatusPlanToWatch)
				if ref != nil {
					st.EntryID = ref.ID
					if ref.Status.Valid() {
						st.Status = ref.Status
					}
				}
				m.settle(epoch, st)
			},
		}
		next = mutating(ActionAdd, prev, "")

	case SetStatus:
		if prev.Kind != KindPresent {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: set status from %s", ErrNotAllowed, prev.Kind)
		}
		if !act.Status.Valid() {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, act.Status)
		}
		if act.Status == prev.Status {
			m.mu.Unlock()
			return settled(optimistic.OutcomeCommitted), nil
		}
		var ref *models.EntryRef
		mut = optimistic.Mutation{
			Call: func(ctx context.Context) error {
				r, err := m.remote.UpdateEntry(ctx, prev.EntryID, act.Status)
				ref = r
				return err
			},
			Commit: func() {
				st := present(prev.EntryID, act.Status)
				if ref != nil && ref.Status.Valid() {
					st.Status = ref.Status
				}
				m.settle(epoch, st)
			},
		}
		next = mutating(ActionSetStatus, prev, act.Status)

	case RemoveEntry:
		if prev.Kind != KindPresent {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: remove from %s", ErrNotAllowed, prev.Kind)
		}
		mut = optimistic.Mutation{
			Call: func(ctx context.Context) error {
				return m.remote.DeleteEntry(ctx, prev.EntryID)
			},
			Commit: func() {
				if m.settle(epoch, absent()) && m.onRemoved != nil {
					m.onRemoved(prev.EntryID)
				}
			},
		}
		next = mutating(ActionRemove, prev, prev.Status)

	default:
		m.mu.Unlock()
		return nil, fmt.Errorf("unsupported action %T", a)
	}

	mut.Kind = string(a.Kind())
	mut.Optimistic = func() { m.state = next }
	mut.Rollback = func(error) { m.settle(epoch, prev) }

	res, err := m.applier.Apply(ctx, m.movieID, mut)
	m.mu.Unlock()
	if errors.Is(err, optimistic.ErrInFlight) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, err
	}

	m.logger.Debug().
		Str("action", string(a.Kind())).
		Int("entry_id", prev.EntryID).
		Msg("library mutation started")
	m.emit()
	return res, nil
}

// settle installs st unless the machine was reset since the mutation
// started. It reports whether st was installed.
func (m *Machine) settle(epoch uint64, st State) bool {
	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return false
	}
	m.state = st
	m.mu.Unlock()
	m.emit()
	return true
}

// Reset returns the machine to Unknown and abandons any request in flight.
// Used on sign-out and when the owning view goes away.
func (m *Machine) Reset() {
	m.mu.Lock()
	wasMutating := m.state.Kind == KindMutating
	m.epoch++
	m.state = unknown()
	m.mu.Unlock()

	if wasMutating {
		m.applier.Discard(m.movieID)
	}
	m.emit()
}

// emit delivers the current state. Emissions are serialised and always
// read the latest state, so the last one delivered is never stale.
func (m *Machine) emit() {
	if m.onChange == nil {
		return
	}
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	m.onChange(m.State())
}

func closed() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func settled(o optimistic.Outcome) <-chan optimistic.Result {
	ch := make(chan optimistic.Result, 1)
	ch <- optimistic.Result{Outcome: o}
	close(ch)
	return ch
}
