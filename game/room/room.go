package room

import "time"

// Player is one occupant of a room. ConnectionID is the transport-assigned
// identifier of the player's live connection and never changes for the
// lifetime of that connection.
type Player struct {
	ConnectionID string    `json:"socketId"`
	Name         string    `json:"name"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// Room is a snapshot of one room's state. Players preserves join order:
// the entry at index 0 joined first. Mutating a returned Room has no
// effect on the registry.
type Room struct {
	ID        string      `json:"id"`
	Players   []Player    `json:"players"`
	GameState interface{} `json:"gameState,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// RoomStat is the per-room entry of a Stats aggregate.
type RoomStat struct {
	RoomID      string    `json:"roomId"`
	PlayerCount int       `json:"playerCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Stats aggregates registry occupancy for the status endpoints.
type Stats struct {
	TotalRooms   int        `json:"totalRooms"`
	TotalPlayers int        `json:"totalPlayers"`
	Rooms        []RoomStat `json:"rooms"`
}

// LeaveResult reports the outcome of removing a player from a room.
type LeaveResult struct {
	RoomID      string
	Player      Player   // the removed player
	Remaining   []Player // roster after removal, join order preserved
	RoomDeleted bool     // true when the removed player was the last occupant
}
