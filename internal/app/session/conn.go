/*
Package session implements the client-side session layer of the Ramblur chat
protocol.

This file owns the transport: exactly one websocket connection for the
lifetime of the session. There is no retry, no reconnect, and no send queue;
a session whose transport has failed stays failed until the caller builds a
new session. That limitation is part of the protocol contract, not an
oversight.
*/
package session

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ramblur/internal/pkg/logx"
)

// State is the lifecycle phase of a Connection.
type State int

const (
	// StateConnecting is the phase before the websocket dial completes.
	StateConnecting State = iota

	// StateOpen means the transport is up and sends will be transmitted.
	StateOpen

	// StateClosedError means the transport failed; sends are silent no-ops.
	StateClosedError

	// StateClosed means the session was shut down locally.
	StateClosed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosedError:
		return "closed-error"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// wsPath is the websocket endpoint on the server.
const wsPath = "/ws"

// authFrame is the one-time handshake sent right after the dial succeeds.
type authFrame struct {
	Type     string `json:"type"`
	DeviceID string `json:"deviceId"`
	Username string `json:"username,omitempty"`
}

const (
	noticeConnected       = "[Connected]"
	noticeConnectionError = "[Connection error]"
)

// Connection manages one websocket session: dial, handshake, the inbound
// classify-and-forward loop, and outbound sends. Construct a new Connection
// per session; all mutable session state (identity latch, presence snapshot)
// lives on it, so independent sessions never interfere.
type Connection struct {
	// baseURL is the HTTP(S) origin of the server; the websocket scheme is
	// derived from it, secure when the origin itself is secure.
	baseURL string

	// deviceID is the durable opaque device identifier, sent in the handshake.
	deviceID string

	// username is the chosen display name, possibly empty, sent in the handshake.
	username string

	// sink receives every classified frame and system notice.
	sink Sink

	identity   *IdentityResolver
	presence   *PresenceStore
	classifier *Classifier
	encoder    CommandEncoder

	// mu guards state and outbound writes on conn.
	mu    sync.Mutex
	state State
	conn  *websocket.Conn

	// errOnce collapses transport faults into a single user-facing notice.
	errOnce sync.Once

	// structured logger with session context.
	logger zerolog.Logger
}

// NewConnection constructs a Connection for one session. baseURL is the
// server's HTTP(S) origin; deviceID and username are the externally supplied
// identity strings, treated as immutable for the session's lifetime.
func NewConnection(baseURL, deviceID, username string, sink Sink) *Connection {
	identity := &IdentityResolver{}

	connLogger := logx.Logger().With().
		Str("component", "session").
		Str("device_id", deviceID).
		Logger()

	return &Connection{
		baseURL:    baseURL,
		deviceID:   deviceID,
		username:   username,
		sink:       sink,
		identity:   identity,
		presence:   &PresenceStore{},
		classifier: NewClassifier(identity),
		state:      StateConnecting,
		logger:     connLogger,
	}
}

// Connect dials the server, sends the auth handshake, emits the connected
// notice, and starts the inbound dispatch loop. It makes exactly one
// connection attempt; on failure the session is unusable and the transport
// fault notice has already been delivered to the sink.
func (c *Connection) Connect(ctx context.Context) error {
	endpoint, err := websocketURL(c.baseURL)
	if err != nil {
		c.failConnect(err)
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Websocket dial failed")
		c.failConnect(err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	err = conn.WriteJSON(authFrame{Type: "auth", DeviceID: c.deviceID, Username: c.username})
	c.mu.Unlock()

	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to send auth handshake")
		c.failConnect(err)
		return err
	}

	c.logger.Info().Str("endpoint", endpoint).Msg("Session connected")
	c.sink.Consume(System{Text: noticeConnected})

	go c.readLoop()

	return nil
}

// Send transmits one outbound unit and reports whether it was handed to the
// transport. When the transport is not open the call does nothing and
// returns false: nothing is queued, nothing reaches the sink. The return
// value is the only delivery feedback callers get.
func (c *Connection) Send(u Outbound) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateOpen {
		return false
	}

	var err error
	if u.Binary {
		err = c.conn.WriteMessage(websocket.BinaryMessage, u.Data)
	} else {
		err = c.conn.WriteMessage(websocket.TextMessage, []byte(u.Text))
	}

	if err != nil {
		c.logger.Error().Err(err).Msg("Websocket write failed")
		c.state = StateClosedError
		c.reportTransportFault(err)
		return false
	}

	return true
}

// CreateRoom asks the server for a fresh private room.
func (c *Connection) CreateRoom() bool {
	u, ok := c.encoder.CreateRoom()
	if !ok {
		return false
	}

	return c.Send(u)
}

// JoinRoom joins the room with the given code. Empty codes are dropped.
func (c *Connection) JoinRoom(code string) bool {
	u, ok := c.encoder.JoinRoom(code)
	if !ok {
		return false
	}

	return c.Send(u)
}

// JoinGlobal joins the public global room.
func (c *Connection) JoinGlobal() bool {
	u, ok := c.encoder.JoinGlobal()
	if !ok {
		return false
	}

	return c.Send(u)
}

// SendMessage sends a trimmed chat message. Empty messages are dropped.
func (c *Connection) SendMessage(text string) bool {
	u, ok := c.encoder.Message(text)
	if !ok {
		return false
	}

	return c.Send(u)
}

// SendImage transmits raw image bytes. The local sink receives an optimistic
// self-side Image frame before transmission; the sink is never told about a
// failed transmission afterwards, only the caller is, via the return value.
func (c *Connection) SendImage(data []byte) bool {
	u, ok := c.encoder.Image(data)
	if !ok {
		return false
	}

	c.sink.Consume(Image{Data: data, Side: SideSelf})
	return c.Send(u)
}

// Close shuts the session down locally. Safe to call in any state.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
	}

	if c.state == StateOpen || c.state == StateConnecting {
		c.state = StateClosed
	}
}

// State returns the current lifecycle phase.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// SelfName returns the latched local identity, if resolved yet.
func (c *Connection) SelfName() (string, bool) {
	return c.identity.Resolved()
}

// PresenceSnapshot returns the latest presence listing.
func (c *Connection) PresenceSnapshot() Presence {
	return c.presence.Snapshot()
}

// IsOnline reports whether name is in the latest online listing.
func (c *Connection) IsOnline(name string) bool {
	return c.presence.IsOnline(name)
}

// readLoop forwards every inbound unit through the classifier to the sink,
// one at a time. Presence frames update the presence store before delivery.
// The loop ends on the first transport fault.
func (c *Connection) readLoop() {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.state == StateOpen {
				c.state = StateClosedError
			}
			closed := c.state == StateClosed
			c.mu.Unlock()

			// A locally initiated Close is not a transport fault.
			if !closed {
				c.logger.Info().Err(err).Msg("Websocket read loop ended")
				c.reportTransportFault(err)
			}
			return
		}

		frame := c.classifier.Classify(messageType == websocket.BinaryMessage, data)

		if p, ok := frame.(Presence); ok {
			c.presence.Replace(p)
		}

		c.sink.Consume(frame)
	}
}

// failConnect records a failed connection attempt and reports the fault.
func (c *Connection) failConnect(err error) {
	c.mu.Lock()
	c.state = StateClosedError
	c.mu.Unlock()

	c.reportTransportFault(err)
}

// reportTransportFault delivers the fixed connection-error notice, at most
// once per session no matter how many faults occur.
func (c *Connection) reportTransportFault(err error) {
	c.errOnce.Do(func() {
		c.logger.Warn().Err(err).Msg("Transport fault; session is not recoverable")
		c.sink.Consume(System{Text: noticeConnectionError})
	})
}

// websocketURL derives the websocket endpoint from the server's HTTP(S)
// origin, selecting the secure variant when the origin is secure.
func websocketURL(baseURL string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}

	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", parsed.Scheme)
	}

	parsed.Path = wsPath
	parsed.RawQuery = ""

	return parsed.String(), nil
}
