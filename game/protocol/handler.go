package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gameroomhq/gameroom/game/room"
)

// Messenger is the room-scoped group messaging capability the handler
// expects from the transport. *websocket.Hub satisfies it; tests supply a
// recorder fake.
type Messenger interface {
	JoinGroup(connectionID, group string)
	LeaveGroup(connectionID, group string)
	SendToGroup(group, event string, payload interface{})
	SendToGroupExcept(group, exceptID, event string, payload interface{})
	SendToConn(connectionID, event string, payload interface{})
}

// Handler dispatches the events of one connection. It carries no room
// membership of its own; occupancy is always derived from the registry, so
// the registry stays the single source of truth for fan-out and symbol
// assignment.
type Handler struct {
	connID    string
	registry  *room.Registry
	messenger Messenger
	logger    *zap.Logger
}

// NewHandler creates the protocol handler for one accepted connection.
func NewHandler(connID string, registry *room.Registry, messenger Messenger, logger *zap.Logger) *Handler {
	return &Handler{
		connID:    connID,
		registry:  registry,
		messenger: messenger,
		logger:    logger.With(zap.String("connectionId", connID)),
	}
}

// OnConnect sends the connection acknowledgment with the assigned id.
func (h *Handler) OnConnect() {
	h.logger.Info("client connected")
	h.messenger.SendToConn(h.connID, EventConnectionResponse, ConnectionResponse{
		SocketID: h.connID,
		Message:  "Connected to server",
	})
}

// OnEvent routes one inbound event to its handler. Unknown events are
// dropped.
func (h *Handler) OnEvent(event string, data json.RawMessage) {
	switch event {
	case EventJoinRoom:
		h.handleJoinRoom(data)
	case EventSendMessage:
		h.handleSendMessage(data)
	case EventLeaveRoom:
		h.handleLeaveRoom(data)
	case EventGameStart:
		h.handleGameStart(data)
	case EventGameMove:
		h.handleGameMove(data)
	case EventGameReset:
		h.handleGameReset(data)
	default:
		h.logger.Debug("unknown event", zap.String("event", event))
	}
}

// OnDisconnect removes the connection from whichever room it occupies and
// notifies the remaining occupants. The registry scan doubles as the
// membership lookup since the handler keeps no local room state.
func (h *Handler) OnDisconnect() {
	result, ok := h.registry.LeaveCurrent(h.connID)
	if !ok {
		h.logger.Info("client disconnected")
		return
	}

	h.logger.Info("client disconnected from room",
		zap.String("roomId", result.RoomID),
		zap.Bool("roomDeleted", result.RoomDeleted))

	if result.RoomDeleted {
		return
	}
	h.messenger.SendToGroup(result.RoomID, EventPlayerLeft, RoomUpdate{
		RoomID:      result.RoomID,
		Players:     result.Remaining,
		Message:     fmt.Sprintf("%s left the room", result.Player.Name),
		PlayerCount: len(result.Remaining),
	})
}

func (h *Handler) handleJoinRoom(data json.RawMessage) {
	var req joinRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" || req.PlayerName == "" {
		h.messenger.SendToConn(h.connID, EventJoinRoomResponse, JoinRoomResponse{
			Status:  StatusError,
			Message: "Room ID and player name are required",
		})
		return
	}

	// A connection occupies at most one room. Any previous membership is
	// dropped without a player_left broadcast to the vacated room; clients
	// observe this asymmetry and it is part of the wire contract.
	if prev, ok := h.registry.LeaveCurrent(h.connID); ok {
		h.messenger.LeaveGroup(h.connID, prev.RoomID)
		h.logger.Info("forced leave before join", zap.String("roomId", prev.RoomID))
	}

	players, created := h.registry.Join(req.RoomID, room.Player{
		ConnectionID: h.connID,
		Name:         req.PlayerName,
		JoinedAt:     time.Now(),
	})
	h.messenger.JoinGroup(h.connID, req.RoomID)

	h.logger.Info("player joined room",
		zap.String("roomId", req.RoomID),
		zap.String("playerName", req.PlayerName),
		zap.Bool("roomCreated", created),
		zap.Int("playerCount", len(players)))

	h.messenger.SendToConn(h.connID, EventJoinRoomResponse, JoinRoomResponse{
		Status:  StatusSuccess,
		RoomID:  req.RoomID,
		Players: players,
		Message: fmt.Sprintf("Joined room %s", req.RoomID),
	})
	h.messenger.SendToGroup(req.RoomID, EventPlayerJoined, RoomUpdate{
		RoomID:      req.RoomID,
		Players:     players,
		Message:     fmt.Sprintf("%s joined the room", req.PlayerName),
		PlayerCount: len(players),
	})
}

func (h *Handler) handleSendMessage(data json.RawMessage) {
	var req sendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" || req.Message == "" {
		h.messenger.SendToConn(h.connID, EventMessageResponse, MessageResponse{
			Status:  StatusError,
			Message: "Room ID and message are required",
		})
		return
	}
	if !h.registry.RoomExists(req.RoomID) {
		h.messenger.SendToConn(h.connID, EventMessageResponse, MessageResponse{
			Status:  StatusError,
			Message: fmt.Sprintf("Room %s does not exist", req.RoomID),
		})
		return
	}

	// The whole room hears the message, sender included. Messages are not
	// persisted anywhere.
	h.messenger.SendToGroup(req.RoomID, EventReceiveMessage, ChatMessage{
		SenderID:   h.connID,
		SenderName: req.PlayerName,
		Content:    req.Message,
		Timestamp:  time.Now(),
		RoomID:     req.RoomID,
	})
	h.messenger.SendToConn(h.connID, EventMessageResponse, MessageResponse{
		Status:  StatusSuccess,
		Message: "Message sent",
	})
}

func (h *Handler) handleLeaveRoom(data json.RawMessage) {
	var req leaveRoomRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" {
		h.messenger.SendToConn(h.connID, EventLeaveRoomResponse, LeaveRoomResponse{
			Status:  StatusError,
			Message: "Room ID is required",
		})
		return
	}

	result, err := h.registry.Leave(req.RoomID, h.connID)
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		h.messenger.SendToConn(h.connID, EventLeaveRoomResponse, LeaveRoomResponse{
			Status:  StatusError,
			Message: fmt.Sprintf("Room %s does not exist", req.RoomID),
		})
		return
	case errors.Is(err, room.ErrPlayerNotFound):
		h.messenger.SendToConn(h.connID, EventLeaveRoomResponse, LeaveRoomResponse{
			Status:  StatusError,
			Message: fmt.Sprintf("You are not in room %s", req.RoomID),
		})
		return
	}

	h.messenger.LeaveGroup(h.connID, req.RoomID)

	h.logger.Info("player left room",
		zap.String("roomId", req.RoomID),
		zap.String("playerName", result.Player.Name),
		zap.Bool("roomDeleted", result.RoomDeleted))

	h.messenger.SendToConn(h.connID, EventLeaveRoomResponse, LeaveRoomResponse{
		Status:  StatusSuccess,
		RoomID:  req.RoomID,
		Message: fmt.Sprintf("Left room %s", req.RoomID),
	})
	if result.RoomDeleted {
		return
	}
	h.messenger.SendToGroup(req.RoomID, EventPlayerLeft, RoomUpdate{
		RoomID:      req.RoomID,
		Players:     result.Remaining,
		Message:     fmt.Sprintf("%s left the room", result.Player.Name),
		PlayerCount: len(result.Remaining),
	})
}

func (h *Handler) handleGameStart(data json.RawMessage) {
	var req gameStartRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" || req.GameType == "" {
		return
	}

	players := h.registry.Players(req.RoomID)
	if len(players) < 2 {
		// Waiting state: no response of any kind until a second player joins
		// and game_start is sent again.
		h.logger.Debug("game_start waiting for players",
			zap.String("roomId", req.RoomID),
			zap.Int("playerCount", len(players)))
		return
	}

	// Symbols are positional: first to join is X, everyone after is O.
	roster := make([]GamePlayer, len(players))
	for i, p := range players {
		symbol := "O"
		if i == 0 {
			symbol = "X"
		}
		roster[i] = GamePlayer{
			Name:     p.Name,
			SocketID: p.ConnectionID,
			Symbol:   symbol,
		}
	}

	h.logger.Info("game started",
		zap.String("roomId", req.RoomID),
		zap.String("gameType", req.GameType),
		zap.Int("playerCount", len(players)))

	for i, p := range players {
		h.messenger.SendToConn(p.ConnectionID, EventGameStart, GameStartPayload{
			GameType:     req.GameType,
			Players:      roster,
			PlayerSymbol: roster[i].Symbol,
		})
	}
}

func (h *Handler) handleGameMove(data json.RawMessage) {
	var req gameMoveRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" || req.Board == nil {
		return
	}

	// The board is opaque state; the last one sent wins. Move legality is
	// not validated.
	h.registry.SetGameState(req.RoomID, req.Board)

	h.messenger.SendToGroupExcept(req.RoomID, h.connID, EventGameMove, GameMovePayload{
		Board:        req.Board,
		PlayerSymbol: req.PlayerSymbol,
		PlayerName:   req.PlayerName,
	})
}

func (h *Handler) handleGameReset(data json.RawMessage) {
	var req gameResetRequest
	if err := json.Unmarshal(data, &req); err != nil || req.RoomID == "" {
		return
	}

	h.messenger.SendToGroupExcept(req.RoomID, h.connID, EventGameReset, GameResetPayload{
		PlayerName: req.PlayerName,
	})
}
