// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

// Package main is the entry point for the FilmFlow view-model host.
//
// FilmFlow keeps the client-side state of a movie catalog and personal
// library: debounced search, paginated lists, library status changes with
// optimistic updates, and review submission. A UI shell drives it over a
// local REST API and receives view snapshots over a websocket.
//
// # Application Architecture
//
//  1. Configuration: defaults, config.yaml, environment (Koanf v2)
//  2. Backend client: rate limited REST client behind a circuit breaker
//  3. Session store: seeded from config, replaced by PUT /api/v1/session
//  4. Views: search, library and mounted movie pages
//  5. WebSocket hub: pushes view_update messages to the shell
//  6. HTTP server: chi router under /api/v1
//
// Long-lived pieces run under a suture supervisor tree.
//
// # Example Usage
//
//	export BACKEND_URL=http://localhost:8000/api/
//	export CORS_ORIGINS=http://localhost:3000
//	./filmflow
//
// The server stops gracefully on SIGINT and SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/filmflow/internal/api"
	"github.com/tomtom215/filmflow/internal/backend"
	"github.com/tomtom215/filmflow/internal/config"
	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/optimistic"
	"github.com/tomtom215/filmflow/internal/session"
	"github.com/tomtom215/filmflow/internal/supervisor"
	"github.com/tomtom215/filmflow/internal/supervisor/services"
	"github.com/tomtom215/filmflow/internal/views"
	ws "github.com/tomtom215/filmflow/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("backend_url", cfg.Backend.URL).
		Bool("circuit_breaker", cfg.Backend.CircuitBreaker.Enabled).
		Dur("debounce", cfg.Search.Debounce).
		Msg("Starting FilmFlow with supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := backend.NewClient(cfg.Backend, cfg.Cache.GenreTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create backend client")
	}
	var backendAPI backend.API = client
	if cfg.Backend.CircuitBreaker.Enabled {
		backendAPI = backend.NewCircuitBreakerClient(client, cfg.Backend.CircuitBreaker)
	}

	sessions := session.NewStore(initialSession(cfg.Session))
	logging.Info().Str("status", string(sessions.Current().Status)).Msg("Session store initialized")

	wsHub := ws.NewHub()

	manager := views.NewManager(ctx, views.Deps{
		API:      backendAPI,
		Session:  sessions,
		Applier:  optimistic.NewApplier[int](),
		Debounce: cfg.Search.Debounce,
		PageSize: cfg.Search.PageSize,
	}, wsHub)
	manager.Start()
	defer manager.Close()

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Server.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow

	handler := api.NewHandler(manager, sessions, wsHub, cfg.Server.CORSOrigins)
	handler.RegisterCache("genres", client.GenreCache())
	router := api.NewRouter(handler, api.NewChiMiddleware(mwConfig))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddStateService(services.NewViewPublisherService(manager))
	tree.AddStateService(services.NewCacheJanitorService("genres", client.GenreCache(), cfg.Cache.GenreTTL))
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		stop()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// initialSession builds the startup session. A configured token wins over
// the configured status.
func initialSession(cfg config.SessionConfig) session.Session {
	if cfg.AccessToken != "" {
		return session.FromToken(cfg.AccessToken, cfg.Username)
	}
	status := session.Status(cfg.Status)
	if status == session.StatusAuthenticated || !status.Valid() {
		return session.Session{Status: session.StatusUnauthenticated}
	}
	return session.Session{Status: status}
}
