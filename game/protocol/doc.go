// Package protocol implements the per-connection event protocol of the
// game server.
//
// The protocol package implements:
//   - Dispatch of the six inbound client events
//   - Join/leave/disconnect sequencing against the room registry
//   - Broadcast set computation (whole room, all-but-sender, one player)
//   - Positional game symbol assignment (first joiner X, second O)
//
// Message Protocol:
//
// Every frame in either direction is a JSON envelope {event, data}.
// Inbound events are join_room, send_message, leave_room, game_start,
// game_move, and game_reset. Each inbound event is mirrored by one or more
// outbound events; see events.go for the exact payload shapes.
//
// Error Behavior:
//
// join_room, send_message, and leave_room acknowledge failures to the
// acting connection with a {status: "error", message} payload and never
// broadcast on failure. The game_* events are deliberately silent on
// missing fields, and game_start with fewer than two players is a silent
// waiting state rather than an error.
//
// Transport Coupling:
//
// The handler talks to the transport only through the Messenger interface,
// which models named connection groups. One Handler is created per
// accepted connection by the factory wired in main; it holds no membership
// state of its own and derives everything from the registry.
package protocol
