// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(ttl time.Duration) (*Cache[string], *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[string]("test", ttl)
	c.now = clock.Now
	return c, clock
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	if _, ok := c.Get("genres"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Set("genres", "Drama")
	got, ok := c.Get("genres")
	if !ok || got != "Drama" {
		t.Fatalf("Get() = %q, %v; want Drama, true", got, ok)
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.TotalKeys != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if c.HitRate() != 50 {
		t.Errorf("HitRate() = %v, want 50", c.HitRate())
	}
}

func TestCache_Expiry(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("k", "v")

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should still be live")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
	if stats := c.GetStats(); stats.Evictions != 1 || stats.TotalKeys != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCache_CleanupDropsExpired(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	clock.Advance(2 * time.Minute)
	c.Set("c", "3")

	c.cleanup()
	if stats := c.GetStats(); stats.TotalKeys != 1 || stats.Evictions != 2 {
		t.Errorf("after cleanup stats = %+v", stats)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("live entry should survive cleanup")
	}
	if stats := c.GetStats(); stats.LastCleanup.IsZero() {
		t.Error("LastCleanup not recorded")
	}
}

func TestCache_GetOrLoadSharesInflightLoad(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "loaded", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrLoad(context.Background(), "genres", load)
			if err != nil {
				t.Errorf("GetOrLoad() error = %v", err)
			}
			results[i] = v
		}(i)
	}

	// Give the goroutines a moment to pile onto the same key.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n < 1 || n > 5 {
		t.Fatalf("load calls = %d", n)
	}
	for i, v := range results {
		if v != "loaded" {
			t.Errorf("results[%d] = %q", i, v)
		}
	}

	// Now cached; load must not run again.
	before := calls.Load()
	if _, err := c.GetOrLoad(context.Background(), "genres", load); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != before {
		t.Error("cached value should not reload")
	}
}

func TestCache_GetOrLoadDoesNotCacheErrors(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	boom := errors.New("backend down")

	if _, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) {
		return "", boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("failed load should not be cached")
	}
}

func TestCache_RunStopsOnCancel(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
