package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Envelope is the wire frame exchanged with clients in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Session receives the lifecycle of one connection. The hub calls
// OnConnect once after registration, OnEvent for every inbound frame, and
// OnDisconnect exactly once after the connection is gone and its group
// memberships are removed.
type Session interface {
	OnConnect()
	OnEvent(event string, data json.RawMessage)
	OnDisconnect()
}

// SessionFactory builds the Session for a newly accepted connection.
type SessionFactory func(connectionID string) Session

// Hub maintains the set of active connections and their named groups, and
// exposes the group messaging used by the protocol layer: send to a group,
// to a group minus one member, or to a single connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // connection id -> client
	groups  map[string]map[string]*Client // group name -> connection id -> client

	newSession SessionFactory
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// NewHub creates a hub that accepts upgrades from the given origin. An
// allowedOrigin of "*" disables the origin check; requests without an
// Origin header (non-browser clients) are always accepted.
func NewHub(logger *zap.Logger, allowedOrigin string) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
	}
}

// SetSessionFactory binds the per-connection session constructor. Until it
// is set the hub refuses upgrades.
func (h *Hub) SetSessionFactory(f SessionFactory) {
	h.mu.Lock()
	h.newSession = f
	h.mu.Unlock()
}

// ServeWS upgrades the request, assigns a connection id, and starts the
// client's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	factory := h.newSession
	h.mu.RUnlock()
	if factory == nil {
		h.logger.Error("no session factory bound, refusing upgrade")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}
	client.session = factory(client.id)

	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()

	h.logger.Info("connection registered",
		zap.String("connectionId", client.id),
		zap.String("remoteAddr", r.RemoteAddr))

	go client.writePump()
	client.session.OnConnect()
	go client.readPump()
}

// JoinGroup adds the connection to a named group, creating the group if
// needed. Unknown connection ids are ignored.
func (h *Hub) JoinGroup(connectionID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connectionID]
	if !ok {
		return
	}
	if h.groups[group] == nil {
		h.groups[group] = make(map[string]*Client)
	}
	h.groups[group][connectionID] = client
}

// LeaveGroup removes the connection from a named group. Emptied groups are
// dropped.
func (h *Hub) LeaveGroup(connectionID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, connectionID)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// SendToGroup delivers an event to every member of the group. Sends are
// fire-and-forget; a member whose queue is full is dropped.
func (h *Hub) SendToGroup(group, event string, payload interface{}) {
	data, err := h.encode(event, payload)
	if err != nil {
		return
	}
	h.deliver(h.groupMembers(group, ""), data)
}

// SendToGroupExcept delivers an event to every member of the group except
// the given connection.
func (h *Hub) SendToGroupExcept(group, exceptID, event string, payload interface{}) {
	data, err := h.encode(event, payload)
	if err != nil {
		return
	}
	h.deliver(h.groupMembers(group, exceptID), data)
}

// SendToConn delivers an event to a single connection.
func (h *Hub) SendToConn(connectionID, event string, payload interface{}) {
	data, err := h.encode(event, payload)
	if err != nil {
		return
	}

	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.deliver([]*Client{client}, data)
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GroupSize returns the number of members in a group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

func (h *Hub) encode(event string, payload interface{}) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if payload != nil {
		raw, err = json.Marshal(payload)
		if err != nil {
			h.logger.Error("failed to marshal event payload",
				zap.String("event", event), zap.Error(err))
			return nil, err
		}
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// groupMembers snapshots the group's membership so delivery happens
// outside the lock.
func (h *Hub) groupMembers(group, exceptID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.groups[group]
	targets := make([]*Client, 0, len(members))
	for id, client := range members {
		if id == exceptID {
			continue
		}
		targets = append(targets, client)
	}
	return targets
}

func (h *Hub) deliver(targets []*Client, data []byte) {
	for _, client := range targets {
		if client.trySend(data) {
			// Slow consumer: drop the connection rather than block the
			// sending handler.
			h.logger.Warn("send queue full, dropping client",
				zap.String("connectionId", client.id))
			h.removeClient(client)
		}
	}
}

// removeClient unregisters the client from the hub and every group, and
// closes its send queue. Safe to call more than once.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if current, ok := h.clients[client.id]; !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.id)
	for group, members := range h.groups {
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	h.mu.Unlock()

	client.closeSend()
	h.logger.Info("connection unregistered", zap.String("connectionId", client.id))
}
