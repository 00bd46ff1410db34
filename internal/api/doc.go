// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

/*
Package api is the local view-model host a thin UI shell drives.

The shell never talks to the backend. It reads view snapshots, sends user
input events, and listens on the websocket for a fresh snapshot whenever a
view changes. The auth integration pushes the current session here.

Routes (all under /api/v1):

	PUT    /session                                  session from the auth integration
	GET    /views/search                             search snapshot
	POST   /views/search/{query,ordering,genre,page} search input events
	POST   /views/search/refresh                     refetch the current page
	GET    /views/library                            library snapshot
	POST   /views/library/{query,ordering,status,page}
	POST   /views/library/refresh                    refetch the current page
	POST   /views/library/entries/{entryID}/status   {"action":"set_status","status":...} or {"action":"remove"}
	POST   /views/movies/{slug}                      mount a detail page
	GET    /views/movies/{slug}                      detail snapshot
	DELETE /views/movies/{slug}                      navigate away
	POST   /views/movies/{slug}/library              {"action":"add"|"set_status"|"remove"}
	POST   /views/movies/{slug}/review               {"text":...,"rating":...}
	GET    /ws                                       view_update stream
	GET    /health

Prometheus metrics are served at /metrics.

Input events return the snapshot as it stands right after the event was
applied. Results of the network work they trigger arrive over the websocket.

Every response uses the envelope

	{"success":true,"data":{...},"meta":{"request_id":"...","timestamp":"..."}}
	{"success":false,"error":{"code":"VALIDATION_FAILED","message":"...","details":{...}}}
*/
package api
