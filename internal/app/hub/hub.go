/*
Package hub contains the server-side logic for real-time chat rooms, user
connections, and message broadcasting.

This file defines the Hub, the single event loop owning all rooms and the
global presence state. Clients hand every inbound wire unit to the Hub; the
Hub decides whether it is a room command, a chat message, or an image relay,
and fans the results back out through the clients' send queues. Room
membership, the online set, and the rooms map are only ever touched from the
Run loop, so they need no locking.
*/
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ramblur/internal/app/store"
	"ramblur/internal/pkg/logx"
	"ramblur/internal/pkg/randx"
)

const (
	// GlobalRoom is the public room every client lands in after auth.
	GlobalRoom = "global"

	// historyReplayLimit caps how many persisted messages a joining client
	// receives.
	historyReplayLimit = 50

	// maxImageBytes is the upper bound for relayed image payloads (25 MiB).
	maxImageBytes = 25 << 20

	// inboundBuffer sizes the shared inbound unit channel.
	inboundBuffer = 256
)

// Storage is the persistence surface the Hub needs. *store.Store implements
// it; tests substitute an in-memory fake.
type Storage interface {
	CreateRoom(ctx context.Context, name string, private bool) error
	AddMessage(ctx context.Context, room, username, message string) error
	RecentMessages(ctx context.Context, room string, limit int) ([]store.ChatLine, error)
	UserByDevice(ctx context.Context, device string) (string, bool, error)
	SetUsername(ctx context.Context, device, name string) error
	AllUsernames(ctx context.Context) ([]string, error)
}

// inboundUnit is one wire unit received from a client, unclassified.
type inboundUnit struct {
	client      *Client
	messageType int
	data        []byte
}

// roomState is the Hub's record of one live room.
type roomState struct {
	code    string
	private bool
	clients map[*Client]struct{}
}

// presencePayload is the control frame fanned out after every membership
// change. Clients replace their whole user listing with it.
type presencePayload struct {
	Type   string   `json:"type"`
	Online []string `json:"online"`
	All    []string `json:"all"`
}

// Hub coordinates every room and client of the server.
type Hub struct {
	storage Storage

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundUnit

	// rooms maps a room code to its live state. Only touched by Run.
	rooms map[string]*roomState

	// memberRoom tracks which room each connected client is in.
	memberRoom map[*Client]string

	// online is the set of currently connected display names.
	online map[string]struct{}

	// anonSeq feeds the AnonymousNNN fallback names.
	anonSeq atomic.Int64

	// structured logger with hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub with the global room present.
func NewHub(storage Storage) *Hub {
	h := &Hub{
		storage:    storage,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundUnit, inboundBuffer),
		rooms:      make(map[string]*roomState),
		memberRoom: make(map[*Client]string),
		online:     make(map[string]struct{}),
		logger:     logx.Logger().With().Str("component", "hub").Logger(),
	}

	h.rooms[GlobalRoom] = &roomState{
		code:    GlobalRoom,
		private: false,
		clients: make(map[*Client]struct{}),
	}

	return h
}

// EnsureGlobalRoom persists the global room record. Called once at startup.
func (h *Hub) EnsureGlobalRoom(ctx context.Context) error {
	return h.storage.CreateRoom(ctx, GlobalRoom, false)
}

// Run is the Hub's main event loop. It exits when ctx is canceled, closing
// every client's send queue on the way out.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info().Msg("Hub loop started")

	defer func() {
		for client := range h.memberRoom {
			client.closeSend()
		}
		h.logger.Info().Msg("Hub loop stopped")
	}()

	for {
		select {
		case client := <-h.register:
			h.handleRegister(ctx, client)

		case client := <-h.unregister:
			h.handleUnregister(ctx, client)

		case unit := <-h.inbound:
			h.handleInbound(ctx, unit)

		case <-ctx.Done():
			return
		}
	}
}

// handleRegister places a freshly authenticated client into the global room,
// replays history, announces the join, and refreshes presence everywhere.
func (h *Hub) handleRegister(ctx context.Context, client *Client) {
	room := h.rooms[GlobalRoom]
	room.clients[client] = struct{}{}
	h.memberRoom[client] = GlobalRoom
	h.online[client.name] = struct{}{}

	h.logger.Info().
		Str("client_name", client.name).
		Int("room_size", len(room.clients)).
		Msg("Client joined global room")

	h.replayHistory(ctx, client, GlobalRoom)
	h.broadcastText(room, fmt.Sprintf("[%s joined]", client.name))
	h.broadcastPresence(ctx)
}

// handleUnregister removes a client, announces the departure, and refreshes
// presence. A client that never completed registration is ignored.
func (h *Hub) handleUnregister(ctx context.Context, client *Client) {
	code, ok := h.memberRoom[client]
	if !ok {
		return
	}

	delete(h.memberRoom, client)
	delete(h.online, client.name)

	room := h.rooms[code]
	delete(room.clients, client)
	client.closeSend()

	h.logger.Info().
		Str("client_name", client.name).
		Str("room_code", code).
		Msg("Client left")

	h.broadcastText(room, fmt.Sprintf("[%s left]", client.name))
	h.broadcastPresence(ctx)
}

// handleInbound dispatches one wire unit from a registered client.
func (h *Hub) handleInbound(ctx context.Context, unit inboundUnit) {
	code, ok := h.memberRoom[unit.client]
	if !ok {
		return
	}

	if unit.messageType == websocket.BinaryMessage {
		h.relayImage(unit.client, h.rooms[code], unit.data)
		return
	}

	text := strings.TrimSpace(string(unit.data))

	switch {
	case text == "/create":
		h.createRoom(ctx, unit.client)

	case strings.HasPrefix(text, "/join "):
		h.joinRoom(ctx, unit.client, strings.SplitN(text, " ", 2)[1])

	case text != "":
		h.chatMessage(ctx, unit.client, h.rooms[code], text)
	}
}

// createRoom moves the client into a fresh private room and hands back the
// code. Nobody else is in it yet, so no join announcement is broadcast.
func (h *Hub) createRoom(ctx context.Context, client *Client) {
	code, err := randx.RoomCode()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to generate room code")
		client.sendText(serverNotice("Could not create a room, try again"))
		return
	}

	if _, exists := h.rooms[code]; !exists {
		h.rooms[code] = &roomState{
			code:    code,
			private: true,
			clients: make(map[*Client]struct{}),
		}

		if err := h.storage.CreateRoom(ctx, code, true); err != nil {
			h.logger.Error().Err(err).Str("room_code", code).Msg("Failed to persist room")
		}
	}

	h.moveClient(client, code)

	h.logger.Info().Str("client_name", client.name).Str("room_code", code).Msg("Private room created")

	client.sendText(fmt.Sprintf("[Room created] Code: %s", code))
	h.broadcastPresence(ctx)
}

// joinRoom moves the client into an existing room, replays its history, and
// announces the join there.
func (h *Hub) joinRoom(ctx context.Context, client *Client, code string) {
	if code != GlobalRoom && !randx.IsValidRoomCode(code) {
		client.sendText("[Room not found]")
		return
	}

	room, ok := h.rooms[code]
	if !ok {
		client.sendText("[Room not found]")
		return
	}

	h.moveClient(client, code)

	h.replayHistory(ctx, client, code)
	h.broadcastText(room, fmt.Sprintf("[%s joined]", client.name))
	h.broadcastPresence(ctx)
}

// chatMessage persists and broadcasts a chat line. Messages in the global
// room pass through the profanity filter first; private rooms are left
// untouched.
func (h *Hub) chatMessage(ctx context.Context, client *Client, room *roomState, text string) {
	if room.code == GlobalRoom {
		text = FilterText(text)
	}

	if err := h.storage.AddMessage(ctx, room.code, client.name, text); err != nil {
		h.logger.Error().Err(err).Str("room_code", room.code).Msg("Failed to persist message")
	}

	h.broadcastText(room, fmt.Sprintf("%s: %s", client.name, text))
}

// relayImage forwards raw image bytes to the other members of a private
// room. The sender already rendered the image optimistically, so it is
// excluded from the relay.
func (h *Hub) relayImage(sender *Client, room *roomState, data []byte) {
	if !room.private {
		sender.sendText(serverNotice("Images only allowed in private rooms"))
		return
	}

	if len(data) > maxImageBytes {
		sender.sendText(serverNotice("Image too large (max 25MB)"))
		return
	}

	if !isPNG(data) && !isJPEG(data) {
		sender.sendText(serverNotice("Only PNG/JPG allowed"))
		return
	}

	for client := range room.clients {
		if client != sender {
			client.sendBinary(data)
		}
	}
}

// moveClient relocates a client between rooms without any announcements.
func (h *Hub) moveClient(client *Client, code string) {
	if current, ok := h.memberRoom[client]; ok {
		delete(h.rooms[current].clients, client)
	}

	h.rooms[code].clients[client] = struct{}{}
	h.memberRoom[client] = code
}

// replayHistory sends a room's recent chat lines to one client.
func (h *Hub) replayHistory(ctx context.Context, client *Client, code string) {
	lines, err := h.storage.RecentMessages(ctx, code, historyReplayLimit)
	if err != nil {
		h.logger.Error().Err(err).Str("room_code", code).Msg("Failed to load history")
		return
	}

	for _, line := range lines {
		client.sendText(fmt.Sprintf("%s: %s", line.Username, line.Message))
	}
}

// broadcastText sends a text line to every member of a room, the sender
// included. Join announcements rely on this: the announced client must see
// its own line to resolve its identity.
func (h *Hub) broadcastText(room *roomState, text string) {
	for client := range room.clients {
		client.sendText(text)
	}
}

// broadcastPresence fans the current user listing out to every connected
// client in every room.
func (h *Hub) broadcastPresence(ctx context.Context) {
	all, err := h.storage.AllUsernames(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load user list")
	}

	online := make([]string, 0, len(h.online))
	for name := range h.online {
		online = append(online, name)
	}

	payload, err := json.Marshal(presencePayload{Type: "users", Online: online, All: all})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal presence payload")
		return
	}

	for client := range h.memberRoom {
		client.sendText(string(payload))
	}
}

// resolveIdentity derives the display name for a connecting client from its
// auth frame: a registered device keeps its chosen name, everything else is
// assigned a fresh anonymous name that is persisted for the device when one
// was supplied.
func (h *Hub) resolveIdentity(ctx context.Context, authData []byte) (name, device string) {
	var auth struct {
		Type     string `json:"type"`
		DeviceID string `json:"deviceId"`
		Username string `json:"username"`
	}

	if err := json.Unmarshal(authData, &auth); err == nil && auth.Type == "auth" && auth.DeviceID != "" {
		device = auth.DeviceID

		registered, found, err := h.storage.UserByDevice(ctx, device)
		if err != nil {
			h.logger.Error().Err(err).Msg("Device lookup failed")
		}
		if found {
			return registered, device
		}

		name = h.anonymousName()
		if err := h.storage.SetUsername(ctx, device, name); err != nil {
			h.logger.Error().Err(err).Msg("Failed to persist anonymous name")
		}

		return name, device
	}

	return h.anonymousName(), ""
}

// anonymousName hands out AnonymousNNN names in connection order.
func (h *Hub) anonymousName() string {
	return fmt.Sprintf("Anonymous%03d", h.anonSeq.Add(1))
}

// serverNotice formats a server-originated notice line.
func serverNotice(text string) string {
	return "[Server]: " + text
}

// isPNG checks the PNG signature prefix.
func isPNG(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G'
}

// isJPEG checks the JPEG SOI marker.
func isJPEG(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xff && data[1] == 0xd8
}
