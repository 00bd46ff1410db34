// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package presence

import (
	"sync"

	"github.com/tomtom215/filmflow/internal/models"
	"github.com/tomtom215/filmflow/internal/optimistic"
)

// Registry holds the machines of one view, keyed by movie ID. Machines are
// independent of each other; the registry only creates them and resets them
// together.
type Registry struct {
	remote    Remote
	applier   *optimistic.Applier[int]
	onChange  func(movieID int, st State)
	onRemoved func(movieID, entryID int)

	mu       sync.Mutex
	machines map[int]*Machine
}

// RegistryConfig configures a Registry. Callbacks may be nil.
type RegistryConfig struct {
	Remote    Remote
	Applier   *optimistic.Applier[int]
	OnChange  func(movieID int, st State)
	OnRemoved func(movieID, entryID int)
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Applier == nil {
		cfg.Applier = optimistic.NewApplier[int]()
	}
	return &Registry{
		remote:    cfg.Remote,
		applier:   cfg.Applier,
		onChange:  cfg.OnChange,
		onRemoved: cfg.OnRemoved,
		machines:  make(map[int]*Machine),
	}
}

// Machine returns the machine for movieID, creating it in Unknown.
func (r *Registry) Machine(movieID int) *Machine {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.machines[movieID]; ok {
		return m
	}
	m := NewMachine(Config{
		MovieID:   movieID,
		Remote:    r.remote,
		Applier:   r.applier,
		OnChange:  r.changeFunc(movieID),
		OnRemoved: r.removedFunc(movieID),
	})
	r.machines[movieID] = m
	return m
}

// Lookup returns the machine for movieID if one exists.
func (r *Registry) Lookup(movieID int) (*Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[movieID]
	return m, ok
}

// Seed marks movieID as present with the given entry.
func (r *Registry) Seed(movieID, entryID int, status models.EntryStatus) {
	r.Machine(movieID).Seed(entryID, status)
}

// Retain drops machines for movies not in keep, unless a mutation is in
// flight for them.
func (r *Registry) Retain(keep []int) {
	wanted := make(map[int]struct{}, len(keep))
	for _, id := range keep {
		wanted[id] = struct{}{}
	}

	r.mu.Lock()
	var dropped []*Machine
	for id, m := range r.machines {
		if _, ok := wanted[id]; ok {
			continue
		}
		if m.State().Kind == KindMutating {
			continue
		}
		delete(r.machines, id)
		dropped = append(dropped, m)
	}
	r.mu.Unlock()

	for _, m := range dropped {
		m.Reset()
	}
}

// ResetAll returns every machine to Unknown and forgets them.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	all := make([]*Machine, 0, len(r.machines))
	for _, m := range r.machines {
		all = append(all, m)
	}
	r.machines = make(map[int]*Machine)
	r.mu.Unlock()

	for _, m := range all {
		m.Reset()
	}
}

// States returns the state of every tracked movie.
func (r *Registry) States() map[int]State {
	r.mu.Lock()
	machines := make([]*Machine, 0, len(r.machines))
	for _, m := range r.machines {
		machines = append(machines, m)
	}
	r.mu.Unlock()

	out := make(map[int]State, len(machines))
	for _, m := range machines {
		out[m.MovieID()] = m.State()
	}
	return out
}

func (r *Registry) changeFunc(movieID int) func(State) {
	if r.onChange == nil {
		return nil
	}
	return func(st State) { r.onChange(movieID, st) }
}

func (r *Registry) removedFunc(movieID int) func(int) {
	if r.onRemoved == nil {
		return nil
	}
	return func(entryID int) { r.onRemoved(movieID, entryID) }
}
