package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/gameroomhq/gameroom/config"
	"github.com/gameroomhq/gameroom/game/room"
	"github.com/gameroomhq/gameroom/transport/websocket"
)

// Server is the HTTP harness around the core: liveness and health probes,
// the room debug listing, and the WebSocket upgrade endpoint. It reads the
// registry but never mutates it.
type Server struct {
	registry *room.Registry
	hub      *websocket.Hub
	cfg      config.Config
	handler  http.Handler
	logger   *zap.Logger
}

// NewServer creates the HTTP server with CORS restricted to the
// configured client origin.
func NewServer(registry *room.Registry, hub *websocket.Hub, cfg config.Config, logger *zap.Logger) *Server {
	s := &Server{
		registry: registry,
		hub:      hub,
		cfg:      cfg,
		logger:   logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms", s.handleListRooms).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.handleWebSocket)
	router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	// Every browser-facing route here is a GET; mutations travel over the
	// WebSocket protocol, not HTTP.
	s.handler = cors.New(cors.Options{
		AllowedOrigins: []string{cfg.ClientOrigin},
		AllowedMethods: []string{http.MethodGet},
	}).Handler(router)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "Server is running",
		"timestamp": time.Now(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"environment": s.cfg.Environment,
		"stats":       s.registry.Stats(),
		"timestamp":   time.Now(),
	})
}

// handleListRooms is a debug surface: full rooms with player names and ids.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.registry.Rooms()

	listing := make([]map[string]interface{}, 0, len(rooms))
	for _, rm := range rooms {
		listing = append(listing, map[string]interface{}{
			"roomId":      rm.ID,
			"players":     rm.Players,
			"playerCount": len(rm.Players),
			"createdAt":   rm.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"totalRooms": len(rooms),
		"rooms":      listing,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("route not found",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))

	respondJSON(w, http.StatusNotFound, map[string]interface{}{
		"status":  "error",
		"message": "Route not found",
		"path":    r.URL.Path,
	})
}
