// Package room provides the in-memory room registry for the game server.
//
// The room package implements:
//   - Thread-safe room storage and retrieval
//   - Ordered player rosters (join order is preserved and significant)
//   - Empty-room cleanup on departure
//   - Opaque per-room game state storage
//   - Occupancy statistics for the status endpoints
//
// Core Types:
//
// Registry is the authoritative store mapping room ids to rooms. Room and
// Player are snapshot values; the registry never hands out references to
// its internal state, so a returned Room is unaffected by later mutation.
//
// Room Identifiers:
//
// Room ids are opaque strings chosen by the first joining client. The
// registry does not generate, normalize, or validate them.
//
// Concurrency:
//
// All registry state is guarded by a single mutex. The granular operations
// (CreateRoom, AddPlayer, RemovePlayer, ...) are individually atomic, and
// the compound operations (Join, Leave, LeaveCurrent) run their whole
// check-then-act sequence under one lock so that concurrent connection
// handlers cannot interleave inside them.
//
// Usage:
//
//	registry := room.NewRegistry()
//
//	players, created := registry.Join("R1", room.Player{
//		ConnectionID: connID,
//		Name:         "Ann",
//		JoinedAt:     time.Now(),
//	})
//
//	result, err := registry.Leave("R1", connID)
//	if err != nil {
//		// room or player absent
//	}
//
// Invariants:
//
// A room emptied through Leave or LeaveCurrent is deleted immediately; the
// registry never holds a room with zero players after a departure. Rosters
// are append-only on join and order-preserving on removal, which is what
// makes positional game-symbol assignment deterministic.
package room
