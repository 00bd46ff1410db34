// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package paging

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/filmflow/internal/models"
)

func newTestController(t *testing.T, suspended bool) (*Controller[int], *fakeSource) {
	t.Helper()
	src := newFakeSource()
	c := NewController[int](context.Background(), ControllerConfig{
		Name:      "controller-" + t.Name(),
		PageSize:  24,
		Suspended: suspended,
	}, src.fetch, nil)
	t.Cleanup(c.Close)
	return c, src
}

// ===================================================================================================
// Scenarios
// ===================================================================================================

func TestController_MatrixSearch(t *testing.T) {
	c, src := newTestController(t, false)

	c.SetQueryInput("matrix")
	call := src.next(t)
	if got := call.criteria.MovieQuery().Values().Encode(); got != "page=1&search=matrix" {
		t.Fatalf("request = %q, want page=1&search=matrix", got)
	}
	call.resolve(1, 7)
	waitDone(t, c.Wait())

	snap := c.Snapshot()
	if !reflect.DeepEqual(snap.Items, []int{7}) {
		t.Errorf("Items = %v, want [7]", snap.Items)
	}
	if snap.Pages != 1 {
		t.Errorf("Pages = %d, want 1", snap.Pages)
	}
}

func TestController_FilterChangeResetsPageBeforeFetch(t *testing.T) {
	c, src := newTestController(t, false)

	c.Start()
	src.next(t).resolve(100, 1)
	waitDone(t, c.Wait())

	c.SetPage(3)
	src.next(t).resolve(100, 2)
	waitDone(t, c.Wait())

	tests := []struct {
		name   string
		change func()
	}{
		{"ordering", func() { c.SetOrdering(models.OrderingDuration) }},
		{"genre", func() { c.SetGenre(4) }},
		{"query", func() { c.SetQueryInput("alien") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.SetPage(2)
			src.next(t).resolve(100, 3)
			waitDone(t, c.Wait())

			tt.change()
			call := src.next(t)
			if call.criteria.Page != 1 {
				t.Errorf("page = %d, want 1", call.criteria.Page)
			}
			call.resolve(100, 4)
			waitDone(t, c.Wait())
		})
	}
}

// ===================================================================================================
// Equality gate
// ===================================================================================================

func TestController_NoDuplicateFetch(t *testing.T) {
	c, src := newTestController(t, false)

	c.Start()
	src.next(t).resolve(1, 1)
	waitDone(t, c.Wait())

	c.SetOrdering(models.OrderingTitle)
	src.next(t).resolve(1, 1)
	waitDone(t, c.Wait())

	c.SetOrdering(models.OrderingTitle)
	c.SetGenre(0)
	c.SetPage(1)
	c.Start()
	src.expectNone(t)

	c.Refresh()
	src.next(t).resolve(1, 1)
	waitDone(t, c.Wait())
}

func TestController_SetPageClampsToKnownPages(t *testing.T) {
	c, src := newTestController(t, false)

	c.Start()
	src.next(t).resolve(50, 1) // 3 pages of 24
	waitDone(t, c.Wait())

	c.SetPage(10)
	call := src.next(t)
	if call.criteria.Page != 3 {
		t.Errorf("page = %d, want 3", call.criteria.Page)
	}
	call.resolve(50, 2)
	waitDone(t, c.Wait())
}

func TestController_ShrinkingTotalPullsPageBack(t *testing.T) {
	c, src := newTestController(t, false)

	c.Start()
	src.next(t).resolve(120, 1) // 5 pages
	waitDone(t, c.Wait())

	c.SetPage(5)
	src.next(t).resolve(30) // shrank to 2 pages while browsing

	call := src.next(t)
	if call.criteria.Page != 2 {
		t.Fatalf("clamp fetch page = %d, want 2", call.criteria.Page)
	}
	call.resolve(30, 9)
	waitDone(t, c.Wait())

	if got := c.Criteria().Page; got != 2 {
		t.Errorf("Criteria().Page = %d, want 2", got)
	}
}

func TestController_RemovingLastRowPullsPageBack(t *testing.T) {
	c, src := newTestController(t, false)

	c.Start()
	src.next(t).resolve(25, 1) // 2 pages of 24
	waitDone(t, c.Wait())

	c.SetPage(2)
	src.next(t).resolve(25, 99)
	waitDone(t, c.Wait())

	if n := c.RemoveWhere(func(v int) bool { return v == 99 }); n != 1 {
		t.Fatalf("RemoveWhere() = %d, want 1", n)
	}
	if got := c.Criteria().Page; got != 1 {
		t.Errorf("Criteria().Page = %d, want 1 after the last page emptied", got)
	}

	call := src.next(t)
	if call.criteria.Page != 1 {
		t.Fatalf("refill fetch page = %d, want 1", call.criteria.Page)
	}
	call.resolve(24, 1)
	waitDone(t, c.Wait())

	snap := c.Snapshot()
	if snap.Criteria.Page != 1 || snap.Pages != 1 {
		t.Errorf("displayed page %d of %d, want 1 of 1", snap.Criteria.Page, snap.Pages)
	}
}

func TestController_RemovalWithinRangeDoesNotFetch(t *testing.T) {
	c, src := newTestController(t, false)

	c.Start()
	src.next(t).resolve(3, 1, 2, 3)
	waitDone(t, c.Wait())

	c.RemoveWhere(func(v int) bool { return v == 2 })
	src.expectNone(t)
	if got := c.Snapshot().Items; !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("Items = %v, want [1 3]", got)
	}
}

// ===================================================================================================
// Failure and retry
// ===================================================================================================

func TestController_RepeatingFailedActionRetries(t *testing.T) {
	tests := []struct {
		name   string
		action func(c *Controller[int])
	}{
		{"ordering", func(c *Controller[int]) { c.SetOrdering(models.OrderingTitle) }},
		{"genre", func(c *Controller[int]) { c.SetGenre(3) }},
		{"page", func(c *Controller[int]) { c.SetPage(2) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, src := newTestController(t, false)

			c.Start()
			src.next(t).resolve(48, 1)
			waitDone(t, c.Wait())

			tt.action(c)
			src.next(t).fail(errors.New("boom"))
			waitDone(t, c.Wait())
			if got := c.Snapshot().LastError; got != "boom" {
				t.Fatalf("LastError = %q, want boom", got)
			}

			tt.action(c)
			src.next(t).resolve(48, 2)
			waitDone(t, c.Wait())

			snap := c.Snapshot()
			if !reflect.DeepEqual(snap.Items, []int{2}) || snap.LastError != "" {
				t.Errorf("after retry: items = %v, error = %q", snap.Items, snap.LastError)
			}

			tt.action(c)
			src.expectNone(t)
		})
	}
}

// ===================================================================================================
// Suspension
// ===================================================================================================

func TestController_SuspendedUntilResume(t *testing.T) {
	c, src := newTestController(t, true)

	c.Start()
	c.SetStatus(models.StatusWatching)
	src.expectNone(t)

	c.Resume()
	call := src.next(t)
	if call.criteria.Status != models.StatusWatching {
		t.Errorf("status = %q, want watching", call.criteria.Status)
	}
	call.resolve(1, 1)
	waitDone(t, c.Wait())

	c.Resume()
	src.expectNone(t)

	c.Suspend()
	c.Reset()
	if snap := c.Snapshot(); snap.Loaded {
		t.Error("Reset should clear the displayed page")
	}
	c.Resume()
	src.next(t).resolve(0)
	waitDone(t, c.Wait())
}
