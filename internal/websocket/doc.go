// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

/*
Package websocket pushes view snapshots to connected UI shells.

It uses gorilla/websocket with a hub-client architecture: the Hub owns the
set of clients and fans every message out to them, each Client runs a read
pump (pings, close detection) and a write pump (messages, keepalive).

	┌──────────┐
	│   Hub    │ ← Publish(view, state)
	└────┬─────┘
	     │
	┌────┴─────┬─────────┐
	│ Client1  │ Client2 │ ...
	└──────────┴─────────┘

Message Types:

  - view_update: {"type":"view_update","data":{"view":"search","state":{...}}}
  - ping / pong: client keepalive

The hub is run under the supervisor through RunWithContext. Clients are
delivered to in ID order so tests observe a stable sequence. A client whose
buffer is full is dropped rather than blocking the broadcast.
*/
package websocket
