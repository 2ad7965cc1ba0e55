// Package api provides the HTTP harness around the game server core.
//
// The api package implements:
//   - Liveness and health endpoints backed by registry statistics
//   - A room listing debug surface
//   - WebSocket upgrade routing into the transport hub
//   - CORS restricted to the configured client origin
//   - Structured 404 responses
//
// Endpoints:
//
//   - GET /          - liveness: status string and timestamp
//   - GET /health    - environment, room/player statistics, timestamp
//   - GET /api/rooms - full room listing with player names, ids, and counts
//   - GET /ws        - WebSocket upgrade
//   - anything else  - 404 with {"status": "error", "message", "path"}
//
// Request/Response Format:
//
// All endpoints return JSON. The server never mutates game state over
// HTTP; rooms and players change only through the WebSocket protocol, and
// this package only reads registry snapshots.
//
// Usage:
//
//	server := api.NewServer(registry, hub, cfg, logger)
//	http.ListenAndServe(cfg.Addr(), server)
package api
