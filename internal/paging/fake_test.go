// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package paging

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/filmflow/internal/models"
)

// fakeCall is one blocked fetch. The test decides when and how it resolves.
type fakeCall struct {
	criteria Criteria
	reply    chan fakeReply
}

type fakeReply struct {
	page *models.Page[int]
	err  error
}

func (c fakeCall) resolve(count int, items ...int) {
	c.reply <- fakeReply{page: &models.Page[int]{Count: count, Results: items}}
}

func (c fakeCall) fail(err error) {
	c.reply <- fakeReply{err: err}
}

// fakeSource hands every fetch to the test through calls.
type fakeSource struct {
	calls chan fakeCall
}

func newFakeSource() *fakeSource {
	return &fakeSource{calls: make(chan fakeCall, 16)}
}

func (s *fakeSource) fetch(_ context.Context, c Criteria) (*models.Page[int], error) {
	call := fakeCall{criteria: c, reply: make(chan fakeReply, 1)}
	s.calls <- call
	r := <-call.reply
	return r.page, r.err
}

func (s *fakeSource) next(t *testing.T) fakeCall {
	t.Helper()
	select {
	case c := <-s.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch")
		return fakeCall{}
	}
}

func (s *fakeSource) expectNone(t *testing.T) {
	t.Helper()
	select {
	case c := <-s.calls:
		t.Fatalf("unexpected fetch for %+v", c.criteria)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for request to settle")
	}
}
