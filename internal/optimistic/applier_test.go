// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package optimistic

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/filmflow/internal/metrics"
)

// status is a tiny piece of local state guarded by a mutex.
type status struct {
	mu  sync.Mutex
	val string
}

func (s *status) set(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val = v
}

func (s *status) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val
}

// setStatus builds a mutation that moves st to next and waits on release
// before the remote call returns err.
func setStatus(st *status, next string, release <-chan error) Mutation {
	prev := st.get()
	return Mutation{
		Kind:       "test_set",
		Optimistic: func() { st.set(next) },
		Call:       func(context.Context) error { return <-release },
		Rollback:   func(error) { st.set(prev) },
	}
}

func await(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result")
		return Result{}
	}
}

func TestApplier_CommitKeepsOptimisticValue(t *testing.T) {
	a := NewApplier[int]()
	st := &status{val: "watching"}
	release := make(chan error, 1)

	res, err := a.Apply(context.Background(), 7, setStatus(st, "completed", release))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if st.get() != "completed" {
		t.Errorf("value before response = %q, want optimistic completed", st.get())
	}

	release <- nil
	if r := await(t, res); r.Outcome != OutcomeCommitted {
		t.Errorf("Outcome = %q, want committed", r.Outcome)
	}
	if st.get() != "completed" {
		t.Errorf("value = %q, want completed", st.get())
	}
	if a.Pending(7) {
		t.Error("key still pending after commit")
	}
}

func TestApplier_FailureRollsBack(t *testing.T) {
	a := NewApplier[int]()
	st := &status{val: "watching"}
	release := make(chan error, 1)
	before := testutil.ToFloat64(metrics.MutationOutcomes.WithLabelValues("test_set", "rolled_back"))

	res, err := a.Apply(context.Background(), 7, setStatus(st, "dropped", release))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	boom := errors.New("502 bad gateway")
	release <- boom

	r := await(t, res)
	if r.Outcome != OutcomeRolledBack || !errors.Is(r.Err, boom) {
		t.Errorf("Result = %+v, want rolled_back with the call error", r)
	}
	if st.get() != "watching" {
		t.Errorf("value = %q, want previous watching", st.get())
	}
	after := testutil.ToFloat64(metrics.MutationOutcomes.WithLabelValues("test_set", "rolled_back"))
	if after != before+1 {
		t.Errorf("rolled_back counter moved by %v, want 1", after-before)
	}
}

func TestApplier_SingleFlightPerKey(t *testing.T) {
	a := NewApplier[int]()
	st := &status{val: "watching"}
	release := make(chan error, 1)

	res, err := a.Apply(context.Background(), 7, setStatus(st, "completed", release))
	if err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}

	var calls int
	_, err = a.Apply(context.Background(), 7, Mutation{
		Kind:       "test_set",
		Optimistic: func() { st.set("dropped") },
		Call:       func(context.Context) error { calls++; return nil },
	})
	if !errors.Is(err, ErrInFlight) {
		t.Fatalf("second Apply() error = %v, want ErrInFlight", err)
	}
	if st.get() != "completed" || calls != 0 {
		t.Errorf("rejected mutation ran: value=%q calls=%d", st.get(), calls)
	}

	// A different key is independent.
	other := make(chan error, 1)
	other <- nil
	res2, err := a.Apply(context.Background(), 8, setStatus(&status{}, "x", other))
	if err != nil {
		t.Fatalf("Apply() on another key error = %v", err)
	}
	await(t, res2)

	release <- nil
	await(t, res)

	// Free again once settled.
	again := make(chan error, 1)
	again <- nil
	res3, err := a.Apply(context.Background(), 7, setStatus(st, "on_hold", again))
	if err != nil {
		t.Fatalf("Apply() after settle error = %v", err)
	}
	await(t, res3)
}

func TestApplier_DiscardSkipsReconcile(t *testing.T) {
	a := NewApplier[string]()
	st := &status{val: "watching"}
	release := make(chan error, 1)

	res, err := a.Apply(context.Background(), "entry", setStatus(st, "completed", release))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	a.Discard("entry")
	st.set("reset")

	release <- errors.New("late failure")
	if r := await(t, res); r.Outcome != OutcomeDiscarded {
		t.Errorf("Outcome = %q, want discarded", r.Outcome)
	}
	if st.get() != "reset" {
		t.Errorf("value = %q, rollback must not run after discard", st.get())
	}
	if a.Pending("entry") {
		t.Error("key still pending after the discarded call returned")
	}
}

func TestApplier_DiscardKeepsKeyReservedUntilCallReturns(t *testing.T) {
	tests := []struct {
		name    string
		discard func(a *Applier[int])
	}{
		{"Discard", func(a *Applier[int]) { a.Discard(7) }},
		{"DiscardAll", func(a *Applier[int]) { a.DiscardAll() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewApplier[int]()
			st := &status{val: "watching"}
			release := make(chan error, 1)

			res, err := a.Apply(context.Background(), 7, setStatus(st, "completed", release))
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			tt.discard(a)

			if !a.Pending(7) {
				t.Error("Pending() = false while the abandoned call is still running")
			}
			if _, err := a.Apply(context.Background(), 7, setStatus(st, "dropped", make(chan error))); !errors.Is(err, ErrInFlight) {
				t.Fatalf("second Apply() error = %v, want ErrInFlight", err)
			}

			release <- nil
			if r := await(t, res); r.Outcome != OutcomeDiscarded {
				t.Errorf("Outcome = %q, want discarded", r.Outcome)
			}

			again := make(chan error, 1)
			again <- nil
			res2, err := a.Apply(context.Background(), 7, setStatus(st, "on_hold", again))
			if err != nil {
				t.Fatalf("Apply() after the call returned: error = %v", err)
			}
			if r := await(t, res2); r.Outcome != OutcomeCommitted {
				t.Errorf("Outcome = %q, want committed", r.Outcome)
			}
		})
	}
}
