// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

// Package debounce turns a rapidly changing input into a settled value.
//
// A value is emitted only after the input has been quiet for the window.
// Every Set restarts the window; the last value set is always emitted
// exactly once unless Stop is called first. A settled value equal to the
// previously emitted one is swallowed, so dependent fetches are not
// re-triggered by typing and then deleting a character.
package debounce

import (
	"sync"
	"time"

	"github.com/tomtom215/filmflow/internal/metrics"
)

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once adapted;
// tests inject a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Debouncer.
type Option func(*options)

type options struct {
	afterFunc AfterFunc
	name      string
}

// WithAfterFunc replaces the timer source.
func WithAfterFunc(fn AfterFunc) Option {
	return func(o *options) { o.afterFunc = fn }
}

// WithName labels the filmflow_debounce_emissions_total metric.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// Debouncer settles values of T.
type Debouncer[T comparable] struct {
	window    time.Duration
	emit      func(T)
	afterFunc AfterFunc
	name      string

	mu      sync.Mutex
	seq     uint64
	timer   Timer
	pending *T
	last    T
	stopped bool
}

// New creates a debouncer. initial is treated as already emitted, so setting
// it again after other keystrokes settles to nothing.
func New[T comparable](window time.Duration, initial T, emit func(T), opts ...Option) *Debouncer[T] {
	o := options{afterFunc: realAfterFunc, name: "default"}
	for _, opt := range opts {
		opt(&o)
	}
	return &Debouncer[T]{
		window:    window,
		emit:      emit,
		afterFunc: o.afterFunc,
		name:      o.name,
		last:      initial,
	}
}

// Set records a raw input value and restarts the quiet window.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = &v

	if d.window <= 0 {
		d.mu.Unlock()
		d.fire(seq)
		return
	}
	d.timer = d.afterFunc(d.window, func() { d.fire(seq) })
	d.mu.Unlock()
}

// Flush emits the pending value now instead of waiting for the window.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.fire(seq)
}

// Pending reports whether a value is waiting for the window to elapse.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop discards any pending value. Later Sets are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// fire emits the pending value if seq is still the latest Set.
func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	v := *d.pending
	d.pending = nil
	d.timer = nil
	if v == d.last {
		d.mu.Unlock()
		return
	}
	d.last = v
	d.mu.Unlock()

	metrics.DebounceEmissions.WithLabelValues(d.name).Inc()
	d.emit(v)
}
