package room

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found in room")
)

// entry is the registry's private, mutable room record. Callers only ever
// see copies of it (Room snapshots).
type entry struct {
	id        string
	players   []Player
	gameState interface{}
	createdAt time.Time
}

// Registry is the authoritative in-memory store of rooms and their
// occupants. All state lives behind a single mutex so that every
// check-then-act sequence exposed here executes as one critical section.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*entry),
	}
}

// CreateRoom stores a room with an empty player list. An existing room
// with the same id is overwritten; callers pairing RoomExists with
// CreateRoom should prefer Join, which performs the check and the create
// under one lock.
func (r *Registry) CreateRoom(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[id] = &entry{
		id:        id,
		players:   []Player{},
		createdAt: time.Now(),
	}
}

// RoomExists reports whether a room with the given id is stored.
func (r *Registry) RoomExists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[id]
	return ok
}

// Room returns a snapshot of the room, or false if it does not exist.
func (r *Registry) Room(id string) (Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rooms[id]
	if !ok {
		return Room{}, false
	}
	return e.snapshot(), true
}

// Rooms returns snapshots of every current room. Later registry mutation
// does not affect a previously returned slice.
func (r *Registry) Rooms() []Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Room, 0, len(r.rooms))
	for _, e := range r.rooms {
		result = append(result, e.snapshot())
	}
	return result
}

// DeleteRoom removes a room and reports whether it existed.
func (r *Registry) DeleteRoom(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; !ok {
		return false
	}
	delete(r.rooms, id)
	return true
}

// AddPlayer appends a player to the room's roster. It reports false if the
// room does not exist. Duplicate connection ids are not checked here; the
// protocol layer enforces the one-room-per-connection rule.
func (r *Registry) AddPlayer(id string, p Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rooms[id]
	if !ok {
		return false
	}
	e.players = append(e.players, p)
	return true
}

// RemovePlayer removes the player with the given connection id from the
// room, preserving the order of the remaining players. It reports false if
// the room or the player is absent. The room is kept even if emptied; use
// Leave for the empty-room deletion invariant.
func (r *Registry) RemovePlayer(id, connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rooms[id]
	if !ok {
		return false
	}
	return e.remove(connectionID)
}

// Players returns a copy of the room's roster in join order, or an empty
// slice if the room does not exist.
func (r *Registry) Players(id string) []Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rooms[id]
	if !ok {
		return []Player{}
	}
	return append([]Player(nil), e.players...)
}

// SetGameState replaces the room's opaque game state. The payload is not
// validated or interpreted. It reports false if the room does not exist.
func (r *Registry) SetGameState(id string, state interface{}) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rooms[id]
	if !ok {
		return false
	}
	e.gameState = state
	return true
}

// GameState returns the room's opaque game state.
func (r *Registry) GameState(id string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.rooms[id]
	if !ok {
		return nil, false
	}
	return e.gameState, true
}

// Stats aggregates room and player counts for the status surface.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		TotalRooms: len(r.rooms),
		Rooms:      make([]RoomStat, 0, len(r.rooms)),
	}
	for _, e := range r.rooms {
		stats.TotalPlayers += len(e.players)
		stats.Rooms = append(stats.Rooms, RoomStat{
			RoomID:      e.id,
			PlayerCount: len(e.players),
			CreatedAt:   e.createdAt,
		})
	}
	return stats
}

// Join adds a player to the room, creating the room first if it does not
// exist. The existence check and the create happen under one lock. It
// returns the roster after the join and whether the room was created.
func (r *Registry) Join(id string, p Player) (players []Player, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rooms[id]
	if !ok {
		e = &entry{
			id:        id,
			players:   []Player{},
			createdAt: time.Now(),
		}
		r.rooms[id] = e
		created = true
	}
	e.players = append(e.players, p)
	return append([]Player(nil), e.players...), created
}

// Leave removes the connection's player from the room and deletes the room
// when it empties, all under one lock. It returns ErrRoomNotFound or
// ErrPlayerNotFound when nothing was removed.
func (r *Registry) Leave(id, connectionID string) (LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.rooms[id]
	if !ok {
		return LeaveResult{}, ErrRoomNotFound
	}
	removed, ok := e.take(connectionID)
	if !ok {
		return LeaveResult{}, ErrPlayerNotFound
	}

	result := LeaveResult{
		RoomID:    id,
		Player:    removed,
		Remaining: append([]Player(nil), e.players...),
	}
	if len(e.players) == 0 {
		delete(r.rooms, id)
		result.RoomDeleted = true
	}
	return result, nil
}

// LeaveCurrent scans every room for the connection and removes it from the
// one it occupies, deleting the room if it empties. It reports false if the
// connection was not in any room. This is the disconnect cleanup path; the
// scan runs inside the registry's single critical section.
func (r *Registry) LeaveCurrent(connectionID string) (LeaveResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.rooms {
		removed, ok := e.take(connectionID)
		if !ok {
			continue
		}
		result := LeaveResult{
			RoomID:    id,
			Player:    removed,
			Remaining: append([]Player(nil), e.players...),
		}
		if len(e.players) == 0 {
			delete(r.rooms, id)
			result.RoomDeleted = true
		}
		return result, true
	}
	return LeaveResult{}, false
}

// snapshot copies the entry into an immutable-by-convention Room value.
func (e *entry) snapshot() Room {
	return Room{
		ID:        e.id,
		Players:   append([]Player(nil), e.players...),
		GameState: e.gameState,
		CreatedAt: e.createdAt,
	}
}

// remove drops the first player matching the connection id, keeping the
// order of the rest.
func (e *entry) remove(connectionID string) bool {
	_, ok := e.take(connectionID)
	return ok
}

// take removes and returns the first player matching the connection id.
func (e *entry) take(connectionID string) (Player, bool) {
	for i, p := range e.players {
		if p.ConnectionID == connectionID {
			e.players = append(e.players[:i], e.players[i+1:]...)
			return p, true
		}
	}
	return Player{}, false
}
