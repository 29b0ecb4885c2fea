package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// frameCollector is a Sink that funnels frames into a channel for assertions.
type frameCollector struct {
	frames chan Frame
}

func newFrameCollector() *frameCollector {
	return &frameCollector{frames: make(chan Frame, 32)}
}

func (fc *frameCollector) Consume(f Frame) {
	fc.frames <- f
}

func (fc *frameCollector) next(t *testing.T) Frame {
	t.Helper()

	select {
	case f := <-fc.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func (fc *frameCollector) expectQuiet(t *testing.T, d time.Duration) {
	t.Helper()

	select {
	case f := <-fc.frames:
		t.Fatalf("expected no frame, got %#v", f)
	case <-time.After(d):
	}
}

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// echoScript upgrades the connection, captures the auth handshake, then
// plays the given wire units to the client.
func echoScript(t *testing.T, authCh chan<- []byte, script []Outbound) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		_, auth, err := conn.ReadMessage()
		if err != nil {
			return
		}
		authCh <- auth

		for _, u := range script {
			if u.Binary {
				err = conn.WriteMessage(websocket.BinaryMessage, u.Data)
			} else {
				err = conn.WriteMessage(websocket.TextMessage, []byte(u.Text))
			}
			if err != nil {
				return
			}
		}

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func TestConnection_ConnectHandshakeAndDispatch(t *testing.T) {
	req := require.New(t)

	authCh := make(chan []byte, 1)
	script := []Outbound{
		{Text: "[Tester joined]"},
		{Text: `{"type":"users","online":["Tester"],"all":["Tester","Idle"]}`},
		{Text: "Tester: hello"},
		{Binary: true, Data: []byte{0x89, 0x50}},
	}

	srv := httptest.NewServer(echoScript(t, authCh, script))
	defer srv.Close()

	sink := newFrameCollector()
	c := NewConnection(srv.URL, "device-123", "Tester", sink)
	defer c.Close()

	req.NoError(c.Connect(context.Background()))
	req.Equal(StateOpen, c.State())

	// The handshake is sent once, immediately after the dial.
	var auth map[string]any
	req.NoError(json.Unmarshal(<-authCh, &auth))
	req.Equal("auth", auth["type"])
	req.Equal("device-123", auth["deviceId"])
	req.Equal("Tester", auth["username"])

	// The connected notice precedes any inbound traffic.
	req.Equal(System{Text: "[Connected]"}, sink.next(t))

	req.Equal(System{Text: "[Tester joined]"}, sink.next(t))

	presence, ok := sink.next(t).(Presence)
	req.True(ok)
	req.Equal([]string{"Tester"}, presence.Online)
	req.Equal([]string{"Tester", "Idle"}, presence.All)

	chat, ok := sink.next(t).(Chat)
	req.True(ok)
	req.Equal(Chat{Sender: "Tester", Text: "hello", Side: SideSelf}, chat)

	img, ok := sink.next(t).(Image)
	req.True(ok)
	req.Equal([]byte{0x89, 0x50}, img.Data)
	req.Equal(SideOther, img.Side)

	// Session state observed along the way.
	name, resolved := c.SelfName()
	req.True(resolved)
	req.Equal("Tester", name)
	req.True(c.IsOnline("Tester"))
	req.False(c.IsOnline("Idle"))
}

func TestConnection_AnonymousAuthOmitsUsername(t *testing.T) {
	req := require.New(t)

	authCh := make(chan []byte, 1)
	srv := httptest.NewServer(echoScript(t, authCh, nil))
	defer srv.Close()

	sink := newFrameCollector()
	c := NewConnection(srv.URL, "device-456", "", sink)
	defer c.Close()

	req.NoError(c.Connect(context.Background()))

	var auth map[string]any
	req.NoError(json.Unmarshal(<-authCh, &auth))
	req.NotContains(auth, "username")
}

func TestConnection_SendBeforeConnectIsNoOp(t *testing.T) {
	req := require.New(t)

	sink := newFrameCollector()
	c := NewConnection("http://127.0.0.1:0", "device-789", "Tester", sink)

	req.Equal(StateConnecting, c.State())

	// No transport yet: nothing is queued, nothing reaches the sink, and the
	// caller is told the unit went nowhere.
	req.False(c.SendMessage("hello"))
	req.False(c.CreateRoom())
	req.False(c.JoinRoom("AB12CD"))
	req.False(c.Send(Outbound{Text: "raw"}))

	sink.expectQuiet(t, 100*time.Millisecond)
}

func TestConnection_DialFailure(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	sink := newFrameCollector()
	c := NewConnection(url, "device-000", "Tester", sink)

	req.Error(c.Connect(context.Background()))
	req.Equal(StateClosedError, c.State())

	req.Equal(System{Text: "[Connection error]"}, sink.next(t))

	// Sends after the fault stay silent; the notice is delivered once.
	req.False(c.SendMessage("into the void"))
	sink.expectQuiet(t, 100*time.Millisecond)
}

func TestConnection_ServerDropEmitsSingleFaultNotice(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	sink := newFrameCollector()
	c := NewConnection(srv.URL, "device-drop", "Tester", sink)

	req.NoError(c.Connect(context.Background()))
	req.Equal(System{Text: "[Connected]"}, sink.next(t))

	req.Equal(System{Text: "[Connection error]"}, sink.next(t))
	sink.expectQuiet(t, 100*time.Millisecond)

	req.Eventually(func() bool {
		return c.State() == StateClosedError
	}, time.Second, 10*time.Millisecond)
}

func TestConnection_LocalCloseIsNotAFault(t *testing.T) {
	req := require.New(t)

	authCh := make(chan []byte, 1)
	srv := httptest.NewServer(echoScript(t, authCh, nil))
	defer srv.Close()

	sink := newFrameCollector()
	c := NewConnection(srv.URL, "device-close", "Tester", sink)

	req.NoError(c.Connect(context.Background()))
	req.Equal(System{Text: "[Connected]"}, sink.next(t))
	<-authCh

	c.Close()
	req.Equal(StateClosed, c.State())

	sink.expectQuiet(t, 200*time.Millisecond)
}

func TestWebsocketURL(t *testing.T) {
	req := require.New(t)

	u, err := websocketURL("http://example.com:8080")
	req.NoError(err)
	req.Equal("ws://example.com:8080/ws", u)

	u, err = websocketURL("https://chat.example.com")
	req.NoError(err)
	req.Equal("wss://chat.example.com/ws", u)

	_, err = websocketURL("ftp://example.com")
	req.Error(err)
}
