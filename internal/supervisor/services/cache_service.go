// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package services

import (
	"context"
	"time"
)

// Janitor is satisfied by *cache.Cache.
type Janitor interface {
	Run(ctx context.Context, interval time.Duration)
}

// CacheJanitorService removes expired entries from an in-memory cache.
type CacheJanitorService struct {
	janitor  Janitor
	interval time.Duration
	name     string
}

// NewCacheJanitorService wraps janitor. A non-positive interval becomes
// one minute.
func NewCacheJanitorService(name string, janitor Janitor, interval time.Duration) *CacheJanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheJanitorService{
		janitor:  janitor,
		interval: interval,
		name:     "cache-janitor-" + name,
	}
}

// Serve implements suture.Service.
func (c *CacheJanitorService) Serve(ctx context.Context) error {
	c.janitor.Run(ctx, c.interval)
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (c *CacheJanitorService) String() string {
	return c.name
}
