// Package mcp provides a Model Context Protocol view of the game server.
//
// The mcp package implements:
//   - An MCP server exposing read-only administrative tools
//   - Proxying of tool calls to the HTTP status API
//   - Tool result formatting for model consumption
//
// Architecture:
//
// The package is a thin proxy: every tool call becomes a GET request to
// the status API (/api/rooms or /health), so the MCP surface can never
// mutate room state and stays consistent with what the debug endpoints
// report. The server is mounted at POST /mcp by main.
//
// Tools:
//
//   - list_rooms: all active rooms with occupants
//   - room_info: one room's roster and creation time
//   - server_stats: aggregate room/player counts and health
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:5000")
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
