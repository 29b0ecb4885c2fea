/*
Package session implements the client-side session layer of the Ramblur chat
protocol.

This file turns one inbound wire unit into exactly one typed Frame. The wire
carries no channel separation: binary frames are images, text frames are
sniffed in order for a presence JSON object, a join announcement, and a chat
line, with anything left over passed through verbatim as a system notice.
Classification is total; a malformed control frame is never dropped or raised
as an error, it simply falls through and surfaces as raw text.
*/
package session

import (
	"encoding/json"
	"regexp"
)

var (
	// joinPattern matches a full join announcement, capturing the name.
	joinPattern = regexp.MustCompile(`^\[(.+?) joined\]$`)

	// chatPattern matches "<sender>: <content>", splitting on the first
	// colon-whitespace pair. The sender may not contain a colon.
	chatPattern = regexp.MustCompile(`^([^:]+):\s(.+)$`)
)

// presenceDiscriminator is the type tag of a presence control frame.
const presenceDiscriminator = "users"

// Classifier decodes inbound units. It consults the identity resolver both
// to latch the local name from join announcements and to pick the side of
// chat lines.
type Classifier struct {
	identity *IdentityResolver
}

// NewClassifier returns a Classifier latching into identity.
func NewClassifier(identity *IdentityResolver) *Classifier {
	return &Classifier{identity: identity}
}

// Classify decodes one inbound unit into a Frame. binary indicates the wire
// frame type of the unit; data is its payload.
func (c *Classifier) Classify(binary bool, data []byte) Frame {
	if binary {
		return Image{Data: data, Side: SideOther}
	}

	text := string(data)

	var control struct {
		Type   string   `json:"type"`
		Online []string `json:"online"`
		All    []string `json:"all"`
	}

	if err := json.Unmarshal(data, &control); err == nil && control.Type == presenceDiscriminator {
		return Presence{Online: control.Online, All: control.All}
	}

	// A join announcement latches the local identity as a side effect even
	// when the same text also classifies as a chat line below.
	if m := joinPattern.FindStringSubmatch(text); m != nil {
		c.identity.TryLatch(m[1])
	}

	if m := chatPattern.FindStringSubmatch(text); m != nil {
		side := SideOther
		if self, ok := c.identity.Resolved(); ok && m[1] == self {
			side = SideSelf
		}

		return Chat{Sender: m[1], Text: m[2], Side: side}
	}

	return System{Text: text}
}
