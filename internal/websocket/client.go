// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/filmflow/internal/logging"
)

// Connection timing. A peer that answers no ping for pongWait is dropped.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// clientIDCounter hands out increasing ids. The hub broadcasts in id order.
var clientIDCounter atomic.Uint64

// Client is one shell connection subscribed to view snapshots. The hub owns
// the send channel and closes it on unregister.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient wraps an upgraded connection. Register it with the hub, then
// call Start.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
}

// ID returns the client id.
func (c *Client) ID() uint64 {
	return c.id
}

// Send queues msg for this client only, such as the snapshots sent right
// after connecting. It reports false when the queue is full.
func (c *Client) Send(msg Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Start runs the connection until either side goes away.
func (c *Client) Start() {
	go c.writeLoop()
	go c.readLoop()
}

func (c *Client) logger() zerolog.Logger {
	return logging.WithComponent("websocket").With().Uint64("client_id", c.id).Logger()
}

// readLoop consumes shell frames. View input arrives over HTTP, so the only
// frame acted on here is the application-level ping. Returning unregisters
// the client.
func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) }
	if err := extend(""); err != nil {
		log := c.logger()
		log.Warn().Err(err).Msg("set read deadline")
		return
	}
	c.conn.SetPongHandler(extend)

	for {
		msg, err := c.next()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log := c.logger()
				log.Warn().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}
		if msg.Type == MessageTypePing {
			c.Send(Message{Type: MessageTypePong})
		}
	}
}

// next reads one text frame. A frame that is not a JSON message is skipped.
func (c *Client) next() (Message, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return Message{}, err
		}
		if kind != websocket.TextMessage {
			continue
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log := c.logger()
			log.Debug().Err(err).Msg("ignoring malformed frame")
			continue
		}
		return msg, nil
	}
}

// writeLoop drains the send queue and keeps the connection alive with
// control pings. A closed queue means the hub dropped the client.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		var err error
		select {
		case msg, open := <-c.send:
			if !open {
				_ = c.frame(websocket.CloseMessage, []byte{})
				return
			}
			err = c.writeMessage(msg)
		case <-ticker.C:
			err = c.frame(websocket.PingMessage, nil)
		}
		if err != nil {
			log := c.logger()
			log.Debug().Err(err).Msg("write failed, dropping connection")
			return
		}
	}
}

func (c *Client) writeMessage(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.frame(websocket.TextMessage, data)
}

// frame writes one frame under the write deadline.
func (c *Client) frame(kind int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(kind, data)
}
