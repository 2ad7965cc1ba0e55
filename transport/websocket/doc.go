// Package websocket provides the WebSocket transport for the game server.
//
// The websocket package implements:
//   - Real-time bidirectional communication
//   - Transport-assigned connection identifiers (UUID v4)
//   - Named connection groups with room-scoped fan-out
//   - Connection lifecycle management
//   - Frame decoding and session dispatch
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub owns all
// connections and their group memberships. Each connection is handled by a
// pair of goroutines: a read pump that decodes inbound frames and drives
// the protocol session, and a write pump that drains the outbound queue
// and keeps the connection alive with pings.
//
// Message Protocol:
//
// Every frame is a JSON envelope:
//   - Incoming: {"event": "join_room", "data": {"roomId": "R1", "playerName": "Ann"}}
//   - Outgoing: {"event": "player_joined", "data": {...}}
//
// Group Messaging:
//
// The hub exposes JoinGroup, LeaveGroup, SendToGroup, SendToGroupExcept,
// and SendToConn. The protocol layer maps rooms onto groups one-to-one and
// never touches sockets directly. Sends are fire-and-forget: a connection
// whose outbound queue is full is dropped rather than allowed to block a
// broadcast.
//
// Usage:
//
//	hub := websocket.NewHub(logger, cfg.ClientOrigin)
//	hub.SetSessionFactory(func(connID string) websocket.Session {
//		return protocol.NewHandler(connID, registry, hub, logger)
//	})
//	http.HandleFunc("/ws", hub.ServeWS)
//
// Connection Lifecycle:
//
// 1. Client connects, hub assigns a connection id
// 2. Session's OnConnect runs (connection acknowledgment)
// 3. Inbound frames drive OnEvent
// 4. Disconnection removes the client from all groups, then OnDisconnect runs
package websocket
