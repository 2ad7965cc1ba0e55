package protocol

import (
	"time"

	"github.com/gameroomhq/gameroom/game/room"
)

// Inbound event names.
const (
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventLeaveRoom   = "leave_room"
	EventGameStart   = "game_start"
	EventGameMove    = "game_move"
	EventGameReset   = "game_reset"
)

// Outbound event names. GameStart, GameMove, and GameReset are mirrored
// back out under the same name as the inbound event.
const (
	EventConnectionResponse = "connection_response"
	EventJoinRoomResponse   = "join_room_response"
	EventMessageResponse    = "message_response"
	EventLeaveRoomResponse  = "leave_room_response"
	EventPlayerJoined       = "player_joined"
	EventPlayerLeft         = "player_left"
	EventReceiveMessage     = "receive_message"
)

// Acknowledgment status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type joinRoomRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type sendMessageRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
}

type leaveRoomRequest struct {
	RoomID string `json:"roomId"`
}

type gameStartRequest struct {
	RoomID   string `json:"roomId"`
	GameType string `json:"gameType"`
}

type gameMoveRequest struct {
	RoomID       string      `json:"roomId"`
	Board        interface{} `json:"board"`
	PlayerSymbol string      `json:"playerSymbol"`
	PlayerName   string      `json:"playerName"`
}

type gameResetRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// ConnectionResponse is sent once, immediately after a connection is
// accepted, carrying the transport-assigned identifier.
type ConnectionResponse struct {
	SocketID string `json:"socketId"`
	Message  string `json:"message"`
}

// JoinRoomResponse acknowledges a join_room to the acting connection.
type JoinRoomResponse struct {
	Status  string        `json:"status"`
	RoomID  string        `json:"roomId,omitempty"`
	Players []room.Player `json:"players,omitempty"`
	Message string        `json:"message"`
}

// MessageResponse acknowledges a send_message to the acting connection.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LeaveRoomResponse acknowledges a leave_room to the acting connection.
type LeaveRoomResponse struct {
	Status  string `json:"status"`
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message"`
}

// RoomUpdate is the player_joined / player_left broadcast body.
type RoomUpdate struct {
	RoomID      string        `json:"roomId"`
	Players     []room.Player `json:"players"`
	Message     string        `json:"message"`
	PlayerCount int           `json:"playerCount"`
}

// ChatMessage is the receive_message broadcast body.
type ChatMessage struct {
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	RoomID     string    `json:"roomId"`
}

// GamePlayer is one roster entry of a game_start payload.
type GamePlayer struct {
	Name     string `json:"name"`
	SocketID string `json:"socketId"`
	Symbol   string `json:"symbol"`
}

// GameStartPayload is unicast per player; PlayerSymbol is the recipient's
// own assigned symbol while Players carries the full roster.
type GameStartPayload struct {
	GameType     string       `json:"gameType"`
	Players      []GamePlayer `json:"players"`
	PlayerSymbol string       `json:"playerSymbol"`
}

// GameMovePayload relays a move to every other room occupant.
type GameMovePayload struct {
	Board        interface{} `json:"board"`
	PlayerSymbol string      `json:"playerSymbol"`
	PlayerName   string      `json:"playerName"`
}

// GameResetPayload relays a board reset to every other room occupant.
type GameResetPayload struct {
	PlayerName string `json:"playerName"`
}
