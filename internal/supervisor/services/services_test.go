// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*WebSocketHubService)(nil)
	_ suture.Service = (*ViewPublisherService)(nil)
	_ suture.Service = (*CacheJanitorService)(nil)
)

// ===================================================================================================
// Test doubles
// ===================================================================================================

type mockHTTPServer struct {
	listenErr     error
	shutdownErr   error
	shutdownCount atomic.Int32
	started       chan struct{}
	stopCh        chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{started: make(chan struct{}, 1), stopCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

type mockHub struct{ runs atomic.Int32 }

func (m *mockHub) RunWithContext(ctx context.Context) error {
	m.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

type mockPublisher struct {
	serves  atomic.Int32
	flushes atomic.Int32
}

func (m *mockPublisher) Serve(ctx context.Context) error {
	m.serves.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockPublisher) Flush() { m.flushes.Add(1) }

type mockJanitor struct{ interval atomic.Int64 }

func (m *mockJanitor) Run(ctx context.Context, interval time.Duration) {
	m.interval.Store(int64(interval))
	<-ctx.Done()
}

// serveUntilCancel runs svc, cancels after it started and returns its error.
func serveUntilCancel(t *testing.T, svc suture.Service, started func() bool) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(time.Second)
	for !started() {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("service did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	return nil
}

// ===================================================================================================
// HTTPServerService
// ===================================================================================================

func TestHTTPServerService_DefaultTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, -5 * time.Second} {
		svc := NewHTTPServerService(newMockHTTPServer(), timeout)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("timeout %v: got %v, want 10s", timeout, svc.shutdownTimeout)
		}
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Run("graceful shutdown", func(t *testing.T) {
		server := newMockHTTPServer()
		svc := NewHTTPServerService(server, time.Second)

		err := serveUntilCancel(t, svc, func() bool { return len(server.started) > 0 })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if server.shutdownCount.Load() != 1 {
			t.Errorf("Shutdown calls = %d, want 1", server.shutdownCount.Load())
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		bindErr := errors.New("bind: address already in use")
		server := newMockHTTPServer()
		server.listenErr = bindErr

		err := NewHTTPServerService(server, time.Second).Serve(context.Background())
		if !errors.Is(err, bindErr) {
			t.Errorf("Serve() = %v, want %v", err, bindErr)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		shutdownErr := errors.New("shutdown timeout")
		server := newMockHTTPServer()
		server.shutdownErr = shutdownErr
		svc := NewHTTPServerService(server, time.Second)

		err := serveUntilCancel(t, svc, func() bool { return len(server.started) > 0 })
		if !errors.Is(err, shutdownErr) {
			t.Errorf("Serve() = %v, want %v", err, shutdownErr)
		}
	})
}

// ===================================================================================================
// WebSocketHubService, ViewPublisherService, CacheJanitorService
// ===================================================================================================

func TestWebSocketHubService(t *testing.T) {
	hub := &mockHub{}
	svc := NewWebSocketHubService(hub)
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}

	err := serveUntilCancel(t, svc, func() bool { return hub.runs.Load() == 1 })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestViewPublisherService_FlushesOnShutdown(t *testing.T) {
	pub := &mockPublisher{}
	svc := NewViewPublisherService(pub)

	err := serveUntilCancel(t, svc, func() bool { return pub.serves.Load() == 1 })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if pub.flushes.Load() != 1 {
		t.Errorf("Flush calls = %d, want 1", pub.flushes.Load())
	}
}

func TestCacheJanitorService(t *testing.T) {
	janitor := &mockJanitor{}
	svc := NewCacheJanitorService("genres", janitor, 0)
	if svc.String() != "cache-janitor-genres" {
		t.Errorf("String() = %q", svc.String())
	}

	err := serveUntilCancel(t, svc, func() bool { return janitor.interval.Load() != 0 })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if got := time.Duration(janitor.interval.Load()); got != time.Minute {
		t.Errorf("interval = %v, want 1m", got)
	}
}

func TestServicesUnderSupervisor(t *testing.T) {
	server := newMockHTTPServer()
	pub := &mockPublisher{}

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(NewHTTPServerService(server, time.Second))
	sup.Add(NewViewPublisherService(pub))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	select {
	case <-server.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
	cancel()
	<-errCh

	if server.shutdownCount.Load() < 1 {
		t.Error("server Shutdown was not called")
	}
	if pub.flushes.Load() < 1 {
		t.Error("publisher was not flushed")
	}
}
