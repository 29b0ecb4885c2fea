package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClassifier() (*Classifier, *IdentityResolver) {
	identity := &IdentityResolver{}
	return NewClassifier(identity), identity
}

func TestClassify_BinaryIsAlwaysImage(t *testing.T) {
	req := require.New(t)
	c, _ := newTestClassifier()

	// Binary units skip structured and text parsing entirely, even when the
	// bytes would decode as a presence frame or a chat line.
	payloads := [][]byte{
		[]byte(`{"type":"users","online":["A"],"all":["A"]}`),
		[]byte("Alice: hi"),
		{0x89, 0x50, 0x4e, 0x47},
		{},
	}

	for _, payload := range payloads {
		frame := c.Classify(true, payload)

		img, ok := frame.(Image)
		req.True(ok, "binary payload %q must classify as Image", payload)
		req.Equal(payload, img.Data)
		req.Equal(SideOther, img.Side)
	}
}

func TestClassify_PresenceSnapshot(t *testing.T) {
	req := require.New(t)
	c, _ := newTestClassifier()

	frame := c.Classify(false, []byte(`{"type":"users","online":["A","A"],"all":["B","A"]}`))

	p, ok := frame.(Presence)
	req.True(ok)

	// Order as delivered, duplicates kept.
	req.Equal([]string{"A", "A"}, p.Online)
	req.Equal([]string{"B", "A"}, p.All)
}

func TestClassify_WrongDiscriminatorFallsThroughToSystem(t *testing.T) {
	req := require.New(t)
	c, _ := newTestClassifier()

	raw := `{"type":"ping"}`
	frame := c.Classify(false, []byte(raw))

	sys, ok := frame.(System)
	req.True(ok, "valid JSON without the users discriminator is plain text")
	req.Equal(raw, sys.Text)
}

func TestClassify_MalformedJSONFallsThroughToSystem(t *testing.T) {
	req := require.New(t)
	c, _ := newTestClassifier()

	raw := `{"type":"users","online":[`
	frame := c.Classify(false, []byte(raw))

	sys, ok := frame.(System)
	req.True(ok, "parse failures never propagate as errors")
	req.Equal(raw, sys.Text)
}

func TestClassify_JoinAnnouncementLatchesOnce(t *testing.T) {
	req := require.New(t)
	c, identity := newTestClassifier()

	frame := c.Classify(false, []byte("[Alice joined]"))
	_, ok := frame.(System)
	req.True(ok, "a join announcement renders as a system line")

	name, resolved := identity.Resolved()
	req.True(resolved)
	req.Equal("Alice", name)

	// A later announcement never overrides the latched identity.
	c.Classify(false, []byte("[Bob joined]"))

	name, _ = identity.Resolved()
	req.Equal("Alice", name)
}

func TestClassify_ChatSideFollowsResolvedIdentity(t *testing.T) {
	req := require.New(t)
	c, _ := newTestClassifier()

	c.Classify(false, []byte("[Alice joined]"))

	self := c.Classify(false, []byte("Alice: hi")).(Chat)
	req.Equal(Chat{Sender: "Alice", Text: "hi", Side: SideSelf}, self)

	other := c.Classify(false, []byte("Bob: hi")).(Chat)
	req.Equal(Chat{Sender: "Bob", Text: "hi", Side: SideOther}, other)
}

func TestClassify_ChatBeforeResolutionIsOther(t *testing.T) {
	req := require.New(t)
	c, identity := newTestClassifier()

	frame := c.Classify(false, []byte("Alice: early"))

	chat, ok := frame.(Chat)
	req.True(ok)
	req.Equal(SideOther, chat.Side)

	_, resolved := identity.Resolved()
	req.False(resolved, "a chat line alone never resolves identity")
}

func TestClassify_ChatTakesPrecedenceButLatchStillApplies(t *testing.T) {
	req := require.New(t)
	c, identity := newTestClassifier()

	// This text matches both the join announcement and the chat pattern.
	frame := c.Classify(false, []byte("[a: b joined]"))

	chat, ok := frame.(Chat)
	req.True(ok, "chat wins when both patterns match")
	req.Equal("[a", chat.Sender)
	req.Equal("b joined]", chat.Text)

	name, resolved := identity.Resolved()
	req.True(resolved, "the identity latch side effect still happens")
	req.Equal("a: b", name)
}

func TestClassify_FreeTextIsSystem(t *testing.T) {
	req := require.New(t)
	c, _ := newTestClassifier()

	for _, raw := range []string{"[Room not found]", "plain words", "no-separator:here", ""} {
		frame := c.Classify(false, []byte(raw))

		sys, ok := frame.(System)
		req.True(ok, "%q must pass through as a system notice", raw)
		req.Equal(raw, sys.Text)
	}
}
