/*
Package session implements the client-side session layer of the Ramblur chat
protocol.

This file translates user intents into outbound wire units. Commands and chat
text travel as plain text frames; images travel as raw binary frames. The
encoder applies nothing beyond trim-and-empty checks: no escaping, no length
limits, no content validation. That boundary is deliberate and matches what
the server accepts.
*/
package session

import "strings"

const (
	// cmdCreate asks the server to create a private room and move us into it.
	cmdCreate = "/create"

	// cmdJoinPrefix precedes a room code in a join command.
	cmdJoinPrefix = "/join "

	// GlobalRoom is the always-present public room code.
	GlobalRoom = "global"
)

// Outbound is one unit ready for transmission: either a text frame or a
// binary frame, never both.
type Outbound struct {
	// Binary selects the binary wire frame type.
	Binary bool

	// Text is the payload of a text frame.
	Text string

	// Data is the payload of a binary frame.
	Data []byte
}

// CommandEncoder maps user intents to outbound units. Each method returns
// the unit and whether one should be sent at all; an intent with effectively
// empty input yields nothing, silently.
type CommandEncoder struct{}

// CreateRoom encodes the create-room command.
func (CommandEncoder) CreateRoom() (Outbound, bool) {
	return Outbound{Text: cmdCreate}, true
}

// JoinRoom encodes a join command for the trimmed room code. An empty code
// after trimming produces no unit.
func (CommandEncoder) JoinRoom(code string) (Outbound, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Outbound{}, false
	}

	return Outbound{Text: cmdJoinPrefix + code}, true
}

// JoinGlobal encodes a join command for the global room.
func (CommandEncoder) JoinGlobal() (Outbound, bool) {
	return Outbound{Text: cmdJoinPrefix + GlobalRoom}, true
}

// Message encodes a trimmed chat message. An empty message after trimming
// produces no unit.
func (CommandEncoder) Message(text string) (Outbound, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outbound{}, false
	}

	return Outbound{Text: text}, true
}

// Image encodes an image as its full byte contents, untouched. Empty data
// produces no unit.
func (CommandEncoder) Image(data []byte) (Outbound, bool) {
	if len(data) == 0 {
		return Outbound{}, false
	}

	return Outbound{Binary: true, Data: data}, true
}
