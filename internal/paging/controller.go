// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package paging

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/filmflow/internal/debounce"
	"github.com/tomtom215/filmflow/internal/models"
)

// Controller owns the criteria of one list view. Query keystrokes go through
// a debouncer; ordering, filter and page changes apply immediately. A fetch
// is issued only when the effective criteria differ from the last ones
// issued, so no user action produces a duplicate request. A failed fetch
// forgets its criteria, so repeating the same action retries it.
//
// onChange runs synchronously while a fetch is being issued; it may read
// Criteria and Snapshot but must not call the mutating methods.
type Controller[T any] struct {
	ctx     context.Context
	fetcher *Fetcher[T]
	query   *debounce.Debouncer[string]

	// issueMu serialises criteria changes with the request they issue, so
	// generation order always matches criteria order.
	issueMu sync.Mutex

	mu        sync.Mutex
	criteria  Criteria
	issued    *Criteria
	suspended bool
	lastDone  <-chan struct{}
}

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	Name     string
	PageSize int
	Debounce time.Duration

	// Suspended starts the controller without fetching until Resume.
	Suspended bool

	// DebounceOptions are passed to the query debouncer.
	DebounceOptions []debounce.Option
}

var closedChan = func() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// NewController creates a controller. ctx is used for every request the
// controller issues; onChange is called after each state change.
func NewController[T any](ctx context.Context, cfg ControllerConfig, fetch FetchFunc[T], onChange func()) *Controller[T] {
	c := &Controller[T]{
		ctx:       ctx,
		criteria:  NewCriteria(),
		suspended: cfg.Suspended,
		lastDone:  closedChan,
	}
	c.fetcher = NewFetcher[T](cfg.Name, cfg.PageSize, fetch, onChange)
	c.fetcher.onApplied = c.clampToKnownPages
	c.fetcher.onFailed = c.forgetIssued

	opts := append([]debounce.Option{debounce.WithName(cfg.Name)}, cfg.DebounceOptions...)
	c.query = debounce.New(cfg.Debounce, "", c.applyQuery, opts...)
	return c
}

// Start issues the initial fetch unless the controller is suspended.
func (c *Controller[T]) Start() <-chan struct{} {
	return c.update(nil)
}

// SetQueryInput feeds a raw keystroke value. The fetch follows once the
// input settles.
func (c *Controller[T]) SetQueryInput(raw string) {
	c.query.Set(raw)
}

// FlushQuery applies a pending query immediately.
func (c *Controller[T]) FlushQuery() {
	c.query.Flush()
}

func (c *Controller[T]) applyQuery(q string) {
	c.update(func(cr Criteria) Criteria { return cr.WithQuery(q) })
}

// SetOrdering changes the sort key and returns to page 1.
func (c *Controller[T]) SetOrdering(o models.Ordering) <-chan struct{} {
	return c.update(func(cr Criteria) Criteria { return cr.WithOrdering(o) })
}

// SetGenre changes the genre filter and returns to page 1.
func (c *Controller[T]) SetGenre(id int) <-chan struct{} {
	return c.update(func(cr Criteria) Criteria { return cr.WithGenre(id) })
}

// SetStatus changes the status filter and returns to page 1.
func (c *Controller[T]) SetStatus(s models.EntryStatus) <-chan struct{} {
	return c.update(func(cr Criteria) Criteria { return cr.WithStatus(s) })
}

// SetPage moves to page p, clamped to the known page count.
func (c *Controller[T]) SetPage(p int) <-chan struct{} {
	pages := 0
	if snap := c.fetcher.Snapshot(); snap.Loaded {
		pages = snap.Pages
	}
	return c.update(func(cr Criteria) Criteria { return cr.WithPage(p, pages) })
}

// Refresh refetches the current criteria even if they were already issued.
func (c *Controller[T]) Refresh() <-chan struct{} {
	c.mu.Lock()
	c.issued = nil
	c.mu.Unlock()
	return c.update(nil)
}

// Criteria returns the criteria the controller is currently targeting,
// which may be ahead of the displayed page while a request is in flight.
func (c *Controller[T]) Criteria() Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

// Snapshot returns the fetcher state.
func (c *Controller[T]) Snapshot() State[T] {
	return c.fetcher.Snapshot()
}

// RemoveWhere removes displayed rows without refetching. When the removal
// leaves the current page past the last one, the page is pulled back and
// the new last page is fetched.
func (c *Controller[T]) RemoveWhere(pred func(T) bool) int {
	removed := c.fetcher.RemoveWhere(pred)
	if removed > 0 {
		c.clampToKnownPages()
	}
	return removed
}

// Suspend stops issuing fetches. Used while the session is not authenticated.
func (c *Controller[T]) Suspend() {
	c.mu.Lock()
	c.suspended = true
	c.issued = nil
	c.mu.Unlock()
}

// Resume re-enables fetching and issues exactly one fetch for the current
// criteria.
func (c *Controller[T]) Resume() <-chan struct{} {
	c.mu.Lock()
	c.suspended = false
	c.mu.Unlock()
	return c.update(nil)
}

// Reset clears the displayed page and drops any response still in flight.
func (c *Controller[T]) Reset() {
	c.issueMu.Lock()
	defer c.issueMu.Unlock()
	c.mu.Lock()
	c.issued = nil
	c.mu.Unlock()
	c.fetcher.Reset()
}

// Wait returns the completion channel of the most recently issued fetch.
func (c *Controller[T]) Wait() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastDone
}

// Close stops the debouncer and abandons in-flight requests.
func (c *Controller[T]) Close() {
	c.query.Stop()
	c.fetcher.Close()
}

// update applies fn (if any) to the criteria and issues a fetch when not
// suspended and the criteria differ from the last ones issued.
func (c *Controller[T]) update(fn func(Criteria) Criteria) <-chan struct{} {
	c.issueMu.Lock()
	defer c.issueMu.Unlock()

	c.mu.Lock()
	if fn != nil {
		c.criteria = fn(c.criteria)
	}
	if c.suspended || (c.issued != nil && *c.issued == c.criteria) {
		c.mu.Unlock()
		return closedChan
	}
	cr := c.criteria
	c.issued = &cr
	c.mu.Unlock()

	done := c.fetcher.Request(c.ctx, cr)

	c.mu.Lock()
	c.lastDone = done
	c.mu.Unlock()
	return done
}

// forgetIssued clears the dedupe record after the latest fetch for cr
// failed.
func (c *Controller[T]) forgetIssued(cr Criteria) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.issued != nil && *c.issued == cr {
		c.issued = nil
	}
}

// clampToKnownPages pulls the page back into range when the total shrinks
// below the current page. Runs on the response goroutine after a page is
// applied, and after rows are removed locally.
func (c *Controller[T]) clampToKnownPages() {
	snap := c.fetcher.Snapshot()
	if !snap.Loaded || snap.Loading {
		return
	}
	c.update(func(cr Criteria) Criteria {
		if cr.Page > snap.Pages {
			return cr.WithPage(cr.Page, snap.Pages)
		}
		return cr
	})
}
