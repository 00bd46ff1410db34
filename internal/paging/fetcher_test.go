// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package paging

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/filmflow/internal/metrics"
	"github.com/tomtom215/filmflow/internal/models"
)

// ===================================================================================================
// Generation ordering
// ===================================================================================================

func TestFetcher_LateResponseIsDiscarded(t *testing.T) {
	src := newFakeSource()
	f := NewFetcher[int]("fetcher-late", 24, src.fetch, nil)
	ctx := context.Background()

	c1 := NewCriteria().WithQuery("mat")
	c2 := NewCriteria().WithQuery("matrix")

	done1 := f.Request(ctx, c1)
	r1 := src.next(t)
	done2 := f.Request(ctx, c2)
	r2 := src.next(t)

	// R2 resolves first, R1 arrives afterwards.
	r2.resolve(2, 5, 6)
	waitDone(t, done2)
	r1.resolve(9, 1, 2, 3)
	waitDone(t, done1)

	snap := f.Snapshot()
	if !reflect.DeepEqual(snap.Items, []int{5, 6}) {
		t.Errorf("Items = %v, want R2's [5 6]", snap.Items)
	}
	if snap.Criteria != c2 {
		t.Errorf("Criteria = %+v, want %+v", snap.Criteria, c2)
	}
	if snap.Total != 2 {
		t.Errorf("Total = %d, want 2", snap.Total)
	}
	if snap.Loading {
		t.Error("Loading should be false once the latest request resolved")
	}
	if got := testutil.ToFloat64(metrics.FetchesStale.WithLabelValues("fetcher-late")); got != 1 {
		t.Errorf("stale counter = %v, want 1", got)
	}
}

func TestFetcher_LoadingTracksLatestOnly(t *testing.T) {
	src := newFakeSource()
	f := NewFetcher[int]("fetcher-loading", 24, src.fetch, nil)
	ctx := context.Background()

	done1 := f.Request(ctx, NewCriteria().WithQuery("a"))
	r1 := src.next(t)
	done2 := f.Request(ctx, NewCriteria().WithQuery("ab"))
	r2 := src.next(t)

	r1.resolve(1, 1)
	waitDone(t, done1)
	if !f.Snapshot().Loading {
		t.Error("Loading cleared by a superseded response")
	}

	r2.resolve(1, 2)
	waitDone(t, done2)
	if f.Snapshot().Loading {
		t.Error("Loading still set after the latest response")
	}
}

// ===================================================================================================
// Failures
// ===================================================================================================

func TestFetcher_FailureKeepsPreviousPage(t *testing.T) {
	src := newFakeSource()
	f := NewFetcher[int]("fetcher-fail", 24, src.fetch, nil)
	ctx := context.Background()

	c1 := NewCriteria()
	done := f.Request(ctx, c1)
	src.next(t).resolve(3, 1, 2, 3)
	waitDone(t, done)

	done = f.Request(ctx, c1.WithPage(2, 0))
	src.next(t).fail(errors.New("connection refused"))
	waitDone(t, done)

	snap := f.Snapshot()
	if !reflect.DeepEqual(snap.Items, []int{1, 2, 3}) {
		t.Errorf("Items = %v, want previous page", snap.Items)
	}
	if snap.Criteria != c1 {
		t.Errorf("Criteria = %+v, want the last applied criteria", snap.Criteria)
	}
	if snap.Loading {
		t.Error("Loading should be cleared after a failure")
	}
	if snap.LastError == "" {
		t.Error("LastError should be set")
	}
	if got := testutil.ToFloat64(metrics.FetchFailures.WithLabelValues("fetcher-fail")); got != 1 {
		t.Errorf("failure counter = %v, want 1", got)
	}

	done = f.Request(ctx, c1)
	src.next(t).resolve(1, 7)
	waitDone(t, done)
	if snap := f.Snapshot(); snap.LastError != "" {
		t.Errorf("LastError = %q after success, want empty", snap.LastError)
	}
}

func TestFetcher_NilPageIsEmpty(t *testing.T) {
	f := NewFetcher[int]("fetcher-nil", 24, func(context.Context, Criteria) (*models.Page[int], error) {
		return nil, nil
	}, nil)
	waitDone(t, f.Request(context.Background(), NewCriteria()))

	snap := f.Snapshot()
	if !snap.Loaded || len(snap.Items) != 0 || snap.Pages != 1 {
		t.Errorf("snapshot = %+v, want loaded empty page", snap)
	}
}

// ===================================================================================================
// Local edits and lifecycle
// ===================================================================================================

func TestFetcher_RemoveWhere(t *testing.T) {
	var changes atomic.Int32
	src := newFakeSource()
	f := NewFetcher[int]("fetcher-remove", 2, src.fetch, func() { changes.Add(1) })

	done := f.Request(context.Background(), NewCriteria())
	src.next(t).resolve(3, 10, 11)
	waitDone(t, done)
	before := changes.Load()

	if n := f.RemoveWhere(func(v int) bool { return v == 11 }); n != 1 {
		t.Fatalf("RemoveWhere() = %d, want 1", n)
	}
	snap := f.Snapshot()
	if !reflect.DeepEqual(snap.Items, []int{10}) || snap.Total != 2 || snap.Pages != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if changes.Load() != before+1 {
		t.Error("onChange not called after removal")
	}

	if n := f.RemoveWhere(func(v int) bool { return v == 99 }); n != 0 {
		t.Errorf("RemoveWhere() = %d, want 0", n)
	}
	if changes.Load() != before+1 {
		t.Error("onChange called although nothing was removed")
	}
}

func TestFetcher_ResetDropsInFlight(t *testing.T) {
	src := newFakeSource()
	f := NewFetcher[int]("fetcher-reset", 24, src.fetch, nil)

	done := f.Request(context.Background(), NewCriteria())
	r := src.next(t)
	f.Reset()
	r.resolve(1, 1)
	waitDone(t, done)

	snap := f.Snapshot()
	if snap.Loaded || snap.Loading || snap.Items != nil {
		t.Errorf("snapshot after reset = %+v, want empty", snap)
	}
}

func TestFetcher_ClosedIgnoresRequests(t *testing.T) {
	src := newFakeSource()
	f := NewFetcher[int]("fetcher-closed", 24, src.fetch, nil)
	f.Close()

	waitDone(t, f.Request(context.Background(), NewCriteria()))
	src.expectNone(t)
}
