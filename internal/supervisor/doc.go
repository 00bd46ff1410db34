// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

/*
Package supervisor runs FilmFlow's long-lived services under suture v4.

	RootSupervisor ("filmflow")
	├── StateSupervisor ("state-layer")
	│   ├── ViewPublisherService
	│   └── CacheJanitorService (genres)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocketHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashed service is restarted by its layer with suture's backoff; the
other layers keep running. Supervisor events are logged through
sutureslog into the zerolog pipeline.

Shutdown cancels the root context. Each layer stops its children within
ShutdownTimeout; services that fail to stop are reported by
UnstoppedServiceReport.
*/
package supervisor
