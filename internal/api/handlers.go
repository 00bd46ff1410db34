// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/filmflow/internal/cache"
	"github.com/tomtom215/filmflow/internal/logging"
	"github.com/tomtom215/filmflow/internal/optimistic"
	"github.com/tomtom215/filmflow/internal/presence"
	"github.com/tomtom215/filmflow/internal/reviews"
	"github.com/tomtom215/filmflow/internal/session"
	"github.com/tomtom215/filmflow/internal/validation"
	"github.com/tomtom215/filmflow/internal/views"
	ws "github.com/tomtom215/filmflow/internal/websocket"
)

// Handler serves the view-model host endpoints.
type Handler struct {
	views       *views.Manager
	sessions    *session.Store
	wsHub       *ws.Hub
	corsOrigins []string
	startTime   time.Time
	caches      map[string]CacheStatsSource
}

// CacheStatsSource is a cache whose counters are reported by Health.
type CacheStatsSource interface {
	GetStats() cache.Stats
	HitRate() float64
}

// NewHandler creates a handler. hub may be nil, in which case the websocket
// endpoint reports 503.
func NewHandler(manager *views.Manager, sessions *session.Store, hub *ws.Hub, corsOrigins []string) *Handler {
	return &Handler{
		views:       manager,
		sessions:    sessions,
		wsHub:       hub,
		corsOrigins: corsOrigins,
		startTime:   time.Now(),
		caches:      make(map[string]CacheStatsSource),
	}
}

// RegisterCache adds a cache to the health report. Call before serving.
func (h *Handler) RegisterCache(name string, src CacheStatsSource) {
	h.caches[name] = src
}

// detached keeps the request's logging values but not its cancellation.
// Work started by an input event outlives the HTTP request; a superseded
// result is discarded by the view, never cancelled.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// writeActionError maps core errors to responses.
func writeActionError(rw *ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		rw.ValidationError(verr)
	case errors.Is(err, presence.ErrBusy),
		errors.Is(err, reviews.ErrBusy),
		errors.Is(err, optimistic.ErrInFlight):
		rw.Conflict("Another change is still in progress")
	case errors.Is(err, presence.ErrNotAllowed):
		rw.Conflict(err.Error())
	case errors.Is(err, views.ErrMovieNotReady):
		rw.Conflict("Movie is still loading")
	case errors.Is(err, presence.ErrUnauthenticated),
		errors.Is(err, reviews.ErrUnauthenticated):
		rw.Unauthorized("Sign in required")
	case errors.Is(err, presence.ErrInvalidStatus):
		rw.BadRequest(err.Error())
	case errors.Is(err, views.ErrViewNotMounted),
		errors.Is(err, views.ErrEntryNotFound):
		rw.NotFound(err.Error())
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("input event failed")
		rw.InternalError("Internal server error")
	}
}

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status           string                 `json:"status"`
	Session          session.Status         `json:"session"`
	WebSocketClients int                    `json:"websocket_clients"`
	MountedMovies    []string               `json:"mounted_movies"`
	Caches           map[string]CacheHealth `json:"caches,omitempty"`
	Uptime           float64                `json:"uptime_seconds"`
}

// CacheHealth summarizes one cache in the health report.
type CacheHealth struct {
	Keys      int64   `json:"keys"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate_percent"`
}

// Health reports process health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:        "healthy",
		Session:       h.sessions.Current().Status,
		MountedMovies: h.views.MountedMovies(),
		Uptime:        time.Since(h.startTime).Seconds(),
	}
	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.GetClientCount()
	}
	if len(h.caches) > 0 {
		health.Caches = make(map[string]CacheHealth, len(h.caches))
		for name, src := range h.caches {
			st := src.GetStats()
			health.Caches[name] = CacheHealth{
				Keys:      st.TotalKeys,
				Hits:      st.Hits,
				Misses:    st.Misses,
				Evictions: st.Evictions,
				HitRate:   src.HitRate(),
			}
		}
	}
	WriteSuccess(w, r, health)
}

// PutSession replaces the session. An authenticated session without an
// explicit username takes it from the token claims.
func (h *Handler) PutSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var next session.Session
	switch session.Status(req.Status) {
	case session.StatusAuthenticated:
		if req.AccessToken == "" {
			NewResponseWriter(w, r).ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed,
				"access_token is required when authenticated",
				map[string]interface{}{"fields": map[string]string{"access_token": "access_token is required"}})
			return
		}
		next = session.FromToken(req.AccessToken, req.Username)
	default:
		next = session.Session{Status: session.Status(req.Status)}
	}

	h.sessions.Set(next)
	logging.Ctx(r.Context()).Info().
		Str("component", "api").
		Str("status", string(next.Status)).
		Str("username", next.Username).
		Msg("session updated")
	WriteSuccess(w, r, next)
}
