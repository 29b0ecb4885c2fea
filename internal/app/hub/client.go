/*
Package hub contains the server-side logic for real-time chat rooms, user
connections, and message broadcasting.

This file defines the Client struct, representing one active WebSocket
connection. It runs the read and write pumps, performs the initial auth
exchange, and forwards everything else to the Hub.
*/
package hub

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ramblur/internal/pkg/logx"
)

const (
	// timeout for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size of an inbound wire unit: the image cap plus
	// headroom for text frames.
	maxInboundBytes = maxImageBytes + 4096

	// sendQueueSize buffers outbound units per client.
	sendQueueSize = 256
)

// outboundUnit is one queued wire unit, text or binary.
type outboundUnit struct {
	messageType int
	data        []byte
}

// Client represents an active WebSocket connection and its resolved user.
type Client struct {
	// hub is the event loop this client reports to.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// name is the resolved display name, set during the auth exchange.
	name string

	// device is the client's device id, empty for unidentified connections.
	device string

	// send queues outbound units for the write pump.
	send chan outboundUnit

	// closeOnce guards the send channel against double close.
	closeOnce sync.Once

	// structured logger with client context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection. The display name
// is unknown until the auth exchange in ReadPump resolves it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan outboundUnit, sendQueueSize),
		logger: logx.Logger().With().Str("component", "client").Logger(),
	}
}

// ReadPump performs the auth exchange, registers the client with the Hub,
// then forwards inbound wire units until the connection dies. It must run on
// its own goroutine, one per connection. ctx scopes the identity lookups
// made during the auth exchange.
func (c *Client) ReadPump(ctx context.Context) {
	registered := false

	defer func() {
		if registered {
			c.hub.unregister <- c
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundBytes)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The first inbound unit is the auth handshake. Anything that is not a
	// well-formed auth frame still gets a connection, just an anonymous one.
	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		c.logger.Info().Err(err).Msg("Connection closed before auth")
		return
	}

	var authData []byte
	if messageType == websocket.TextMessage {
		authData = data
	}

	c.name, c.device = c.hub.resolveIdentity(ctx, authData)

	c.logger = c.logger.With().Str("client_name", c.name).Logger()

	c.hub.register <- c
	registered = true

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			return
		}

		c.hub.inbound <- inboundUnit{client: c, messageType: messageType, data: data}
	}
}

// WritePump drains the send queue onto the connection and keeps the
// heartbeat going. It must run on its own goroutine, one per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case unit, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(unit.messageType, unit.data); err != nil {
				c.logger.Error().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// sendText queues a text unit without blocking; a full queue drops the unit.
func (c *Client) sendText(text string) {
	c.enqueue(outboundUnit{messageType: websocket.TextMessage, data: []byte(text)})
}

// sendBinary queues a binary unit without blocking; a full queue drops the unit.
func (c *Client) sendBinary(data []byte) {
	c.enqueue(outboundUnit{messageType: websocket.BinaryMessage, data: data})
}

func (c *Client) enqueue(unit outboundUnit) {
	select {
	case c.send <- unit:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping unit")
	}
}

// closeSend closes the send queue, ending the write pump. Safe to call more
// than once.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
