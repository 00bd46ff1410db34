// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

/*
Package services adapts FilmFlow's long-running components to suture v4.

Each wrapper implements suture.Service and fmt.Stringer:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Available services:

  - HTTPServerService: the view-model host, ListenAndServe with graceful Shutdown
  - WebSocketHubService: websocket.Hub.RunWithContext
  - ViewPublisherService: views.Manager.Serve, which publishes changed snapshots
  - CacheJanitorService: periodic removal of expired cache entries

Usage:

	tree.AddStateService(services.NewViewPublisherService(manager))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

Every wrapper returns ctx.Err() on shutdown so suture does not restart it.
*/
package services
