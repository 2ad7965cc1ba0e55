package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub() *Hub {
	return NewHub(zap.NewNop(), "*")
}

// addFakeClient registers a client without a real socket so group and
// delivery logic can be exercised directly.
func addFakeClient(h *Hub, id string, queue int) *Client {
	client := &Client{
		id:   id,
		hub:  h,
		send: make(chan []byte, queue),
	}
	h.mu.Lock()
	h.clients[id] = client
	h.mu.Unlock()
	return client
}

func receiveEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	default:
		t.Fatal("no message queued")
		return Envelope{}
	}
}

func TestNewHub(t *testing.T) {
	hub := newTestHub()

	require.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.groups)
	assert.Zero(t, hub.ClientCount())
}

func TestHub_GroupMembership(t *testing.T) {
	hub := newTestHub()
	addFakeClient(hub, "c1", 1)
	addFakeClient(hub, "c2", 1)

	hub.JoinGroup("c1", "R1")
	hub.JoinGroup("c2", "R1")
	assert.Equal(t, 2, hub.GroupSize("R1"))

	t.Run("unknown connection is ignored", func(t *testing.T) {
		hub.JoinGroup("ghost", "R1")
		assert.Equal(t, 2, hub.GroupSize("R1"))
	})

	t.Run("leave removes one member", func(t *testing.T) {
		hub.LeaveGroup("c1", "R1")
		assert.Equal(t, 1, hub.GroupSize("R1"))
	})

	t.Run("empty group is dropped", func(t *testing.T) {
		hub.LeaveGroup("c2", "R1")
		assert.Zero(t, hub.GroupSize("R1"))
		hub.mu.RLock()
		_, exists := hub.groups["R1"]
		hub.mu.RUnlock()
		assert.False(t, exists)
	})
}

func TestHub_SendToConn(t *testing.T) {
	hub := newTestHub()
	c1 := addFakeClient(hub, "c1", 4)
	c2 := addFakeClient(hub, "c2", 4)

	hub.SendToConn("c1", "connection_response", map[string]string{"socketId": "c1"})

	env := receiveEnvelope(t, c1)
	assert.Equal(t, "connection_response", env.Event)
	assert.Contains(t, string(env.Data), `"socketId":"c1"`)
	assert.Empty(t, c2.send)

	// sending to an unknown id is a no-op
	hub.SendToConn("ghost", "x", nil)
}

func TestHub_SendToGroup(t *testing.T) {
	hub := newTestHub()
	c1 := addFakeClient(hub, "c1", 4)
	c2 := addFakeClient(hub, "c2", 4)
	c3 := addFakeClient(hub, "c3", 4)

	hub.JoinGroup("c1", "R1")
	hub.JoinGroup("c2", "R1")
	hub.JoinGroup("c3", "R2")

	hub.SendToGroup("R1", "receive_message", map[string]string{"content": "hi"})

	assert.Equal(t, "receive_message", receiveEnvelope(t, c1).Event)
	assert.Equal(t, "receive_message", receiveEnvelope(t, c2).Event)
	assert.Empty(t, c3.send, "other groups must not hear the broadcast")
}

func TestHub_SendToGroupExcept(t *testing.T) {
	hub := newTestHub()
	c1 := addFakeClient(hub, "c1", 4)
	c2 := addFakeClient(hub, "c2", 4)

	hub.JoinGroup("c1", "R1")
	hub.JoinGroup("c2", "R1")

	hub.SendToGroupExcept("R1", "c1", "game_move", map[string]string{"playerSymbol": "X"})

	assert.Empty(t, c1.send, "sender is excluded")
	assert.Equal(t, "game_move", receiveEnvelope(t, c2).Event)
}

func TestHub_SlowConsumerIsDropped(t *testing.T) {
	hub := newTestHub()
	stuck := addFakeClient(hub, "c1", 1)
	hub.JoinGroup("c1", "R1")

	hub.SendToGroup("R1", "e1", nil) // fills the queue
	hub.SendToGroup("R1", "e2", nil) // overflows, drops the client

	assert.Zero(t, hub.ClientCount())
	assert.Zero(t, hub.GroupSize("R1"))

	// queue was closed after the buffered message
	<-stuck.send
	_, open := <-stuck.send
	assert.False(t, open)
}

func TestHub_DeliverToDroppedClient(t *testing.T) {
	hub := newTestHub()
	stuck := addFakeClient(hub, "c1", 1)
	hub.JoinGroup("c1", "R1")

	// A concurrent broadcaster can hold a membership snapshot taken before
	// the client was dropped; delivery through it must stay safe after the
	// drop path has closed the queue.
	stale := hub.groupMembers("R1", "")
	require.Len(t, stale, 1)

	hub.SendToGroup("R1", "e1", nil) // fills the queue
	hub.SendToGroup("R1", "e2", nil) // overflows, drops the client

	assert.Zero(t, hub.ClientCount())
	assert.NotPanics(t, func() {
		hub.deliver(stale, []byte(`{"event":"late"}`))
	})

	// only the buffered message survives; the late send was discarded
	env := receiveEnvelope(t, stuck)
	assert.Equal(t, "e1", env.Event)
	_, open := <-stuck.send
	assert.False(t, open)
}

func TestHub_ServeWSWithoutFactory(t *testing.T) {
	hub := newTestHub()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Zero(t, hub.ClientCount())
}

func TestHub_RemoveClientIsIdempotent(t *testing.T) {
	hub := newTestHub()
	client := addFakeClient(hub, "c1", 1)
	hub.JoinGroup("c1", "R1")

	hub.removeClient(client)
	hub.removeClient(client)

	assert.Zero(t, hub.ClientCount())
	assert.Zero(t, hub.GroupSize("R1"))
}

// recordingSession captures the lifecycle of one connection for the
// end-to-end test.
type recordingSession struct {
	connID       string
	hub          *Hub
	connected    chan struct{}
	events       chan string
	disconnected chan struct{}
}

func (s *recordingSession) OnConnect() {
	s.hub.SendToConn(s.connID, "connection_response", map[string]string{"socketId": s.connID})
	close(s.connected)
}

func (s *recordingSession) OnEvent(event string, data json.RawMessage) {
	s.events <- event
}

func (s *recordingSession) OnDisconnect() {
	close(s.disconnected)
}

func TestHub_ServeWS(t *testing.T) {
	hub := newTestHub()

	var session *recordingSession
	hub.SetSessionFactory(func(connID string) Session {
		session = &recordingSession{
			connID:       connID,
			hub:          hub,
			connected:    make(chan struct{}),
			events:       make(chan string, 8),
			disconnected: make(chan struct{}),
		}
		return session
	})

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	select {
	case <-session.connected:
	case <-time.After(time.Second):
		t.Fatal("session never connected")
	}
	assert.Equal(t, 1, hub.ClientCount())

	// the connection acknowledgment is the first frame on the wire
	conn.SetReadDeadline(time.Now().Add(time.Second))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, "connection_response", env.Event)

	// inbound frames reach the session
	require.NoError(t, conn.WriteJSON(Envelope{
		Event: "join_room",
		Data:  json.RawMessage(`{"roomId":"R1","playerName":"Ann"}`),
	}))
	select {
	case event := <-session.events:
		assert.Equal(t, "join_room", event)
	case <-time.After(time.Second):
		t.Fatal("event never dispatched")
	}

	// malformed frames are dropped without killing the connection
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(Envelope{Event: "game_reset"}))
	select {
	case event := <-session.events:
		assert.Equal(t, "game_reset", event)
	case <-time.After(time.Second):
		t.Fatal("connection died on malformed frame")
	}

	conn.Close()
	select {
	case <-session.disconnected:
	case <-time.After(time.Second):
		t.Fatal("session never disconnected")
	}
}

func TestHub_OriginCheck(t *testing.T) {
	hub := NewHub(zap.NewNop(), "http://localhost:3000")
	hub.SetSessionFactory(func(connID string) Session {
		return &recordingSession{
			connID:       connID,
			hub:          hub,
			connected:    make(chan struct{}),
			events:       make(chan string, 1),
			disconnected: make(chan struct{}),
		}
	})

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	t.Run("allowed origin", func(t *testing.T) {
		header := http.Header{"Origin": []string{"http://localhost:3000"}}
		conn, _, err := websocket.DefaultDialer.Dial(url, header)
		require.NoError(t, err)
		conn.Close()
	})

	t.Run("rejected origin", func(t *testing.T) {
		header := http.Header{"Origin": []string{"http://evil.example"}}
		_, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
