// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router binds handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. mw may be nil for the default middleware
// configuration.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, r, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.With(router.chiMiddleware.RateLimitHealth()).Get("/health", router.handler.Health)
		r.With(router.chiMiddleware.RateLimitWebSocket()).Get("/ws", router.handler.WebSocket)

		r.Group(func(r chi.Router) {
			r.Use(PrometheusMetrics())

			r.With(router.chiMiddleware.RateLimitSession()).Put("/session", router.handler.PutSession)

			r.Route("/views", func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimit())

				r.Route("/search", func(r chi.Router) {
					r.Get("/", router.handler.SearchSnapshot)
					r.Post("/query", router.handler.SearchQuery)
					r.Post("/ordering", router.handler.SearchOrdering)
					r.Post("/genre", router.handler.SearchGenre)
					r.Post("/page", router.handler.SearchPage)
					r.Post("/refresh", router.handler.SearchRefresh)
				})

				r.Route("/library", func(r chi.Router) {
					r.Get("/", router.handler.LibrarySnapshot)
					r.Post("/query", router.handler.LibraryQuery)
					r.Post("/ordering", router.handler.LibraryOrdering)
					r.Post("/status", router.handler.LibraryStatus)
					r.Post("/page", router.handler.LibraryPage)
					r.Post("/refresh", router.handler.LibraryRefresh)
					r.Post("/entries/{entryID}/status", router.handler.LibraryEntryAction)
				})

				r.Route("/movies/{slug}", func(r chi.Router) {
					r.Post("/", router.handler.MountMovie)
					r.Get("/", router.handler.MovieSnapshot)
					r.Delete("/", router.handler.UnmountMovie)
					r.Post("/library", router.handler.MovieLibraryAction)
					r.Post("/review", router.handler.MovieReview)
				})
			})
		})
	})

	return r
}
