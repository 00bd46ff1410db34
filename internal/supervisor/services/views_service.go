// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package services

import (
	"context"
	"time"

	"github.com/tomtom215/filmflow/internal/logging"
)

// ViewPublisher is satisfied by *views.Manager.
type ViewPublisher interface {
	Serve(ctx context.Context) error
	Flush()
}

// ViewPublisherService runs the loop that publishes changed view snapshots.
// Pending changes are flushed on shutdown so the last state reaches
// connected clients before the hub closes them.
type ViewPublisherService struct {
	publisher ViewPublisher
	name      string
}

// NewViewPublisherService wraps publisher.
func NewViewPublisherService(publisher ViewPublisher) *ViewPublisherService {
	return &ViewPublisherService{
		publisher: publisher,
		name:      "view-publisher",
	}
}

// Serve implements suture.Service.
func (v *ViewPublisherService) Serve(ctx context.Context) error {
	start := time.Now()
	err := v.publisher.Serve(ctx)
	v.publisher.Flush()
	logging.Debug().
		Str("component", v.name).
		Dur("uptime", time.Since(start)).
		Msg("view publisher stopped")
	return err
}

// String implements fmt.Stringer for suture's logs.
func (v *ViewPublisherService) String() string {
	return v.name
}
