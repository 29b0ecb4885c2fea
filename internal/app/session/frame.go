/*
Package session implements the client-side session layer of the Ramblur chat
protocol: one websocket connection carrying an untyped multiplexed stream that
is decoded at the boundary into typed frames.

This file defines the Frame union produced by the classifier, the Side of a
chat message relative to the local participant, and the Sink that consumes
classified frames.
*/
package session

// Side indicates whether a chat message was authored by the local
// participant or by someone else.
type Side string

const (
	// SideSelf marks messages authored by the resolved local identity.
	SideSelf Side = "self"

	// SideOther marks messages authored by any other participant.
	SideOther Side = "other"
)

// Frame is one decoded, typed unit of session communication. Exactly one of
// the concrete types Presence, Chat, Image, or System is produced for every
// inbound wire unit; decoding is total and never fails.
type Frame interface {
	frame()
}

// Presence is the full current user listing. Each snapshot replaces the
// previous one wholesale; the layer performs no diffing and no merge.
type Presence struct {
	// Online lists the names currently connected, order as delivered.
	Online []string `json:"online"`

	// All lists every known name, online or not, order as delivered.
	All []string `json:"all"`
}

// Chat is a single chat line attributed to a sender.
type Chat struct {
	// Sender is the display name before the first ": " separator.
	Sender string

	// Text is the message content after the separator.
	Text string

	// Side is self when Sender equals the latched local identity.
	Side Side
}

// Image is a raw binary payload. The bytes carry no header, length prefix,
// or content type; they are treated as an opaque blob. Inbound images are
// always SideOther; the optimistic local echo of an outgoing image is the
// only SideSelf producer.
type Image struct {
	Data []byte
	Side Side
}

// System is any text that matched no other classification, passed through
// verbatim. Connection status notices also use this type.
type System struct {
	Text string
}

func (Presence) frame() {}
func (Chat) frame()     {}
func (Image) frame()    {}
func (System) frame()   {}

// Sink consumes classified frames. Implementations render them (terminal,
// DOM, log); the session layer never blocks on or inspects the result, so
// Consume must return promptly.
type Sink interface {
	Consume(f Frame)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(f Frame)

// Consume calls fn(f).
func (fn SinkFunc) Consume(f Frame) {
	fn(f)
}
