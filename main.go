// Command gameroom starts the real-time multiplayer room server.
//
// Clients connect over WebSocket at /ws, join named rooms, exchange chat
// messages, and synchronize turn-based game state. HTTP endpoints expose
// liveness, health, and a room listing; an /mcp endpoint exposes the same
// read-only view over the Model Context Protocol.
//
// Configuration comes from the environment (PORT, CLIENT_ORIGIN,
// ENVIRONMENT), optionally seeded from a .env file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gameroomhq/gameroom/api"
	"github.com/gameroomhq/gameroom/config"
	"github.com/gameroomhq/gameroom/game/protocol"
	"github.com/gameroomhq/gameroom/game/room"
	"github.com/gameroomhq/gameroom/transport/mcp"
	"github.com/gameroomhq/gameroom/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Game Room Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment variables from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting server",
		zap.String("app", AppName),
		zap.String("version", Version),
		zap.String("environment", cfg.Environment),
		zap.Int("port", cfg.Port),
		zap.String("clientOrigin", cfg.ClientOrigin))

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// newLogger builds the process logger. The environment mode only changes
// verbosity and encoding, never server behavior.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Environment == config.EnvProduction {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// run wires the core and serves until a shutdown signal arrives.
func run(cfg config.Config, logger *zap.Logger) error {
	// Core: one registry, one hub, one protocol handler per connection.
	registry := room.NewRegistry()
	hub := websocket.NewHub(logger, cfg.ClientOrigin)
	hub.SetSessionFactory(func(connID string) websocket.Session {
		return protocol.NewHandler(connID, registry, hub, logger)
	})

	apiServer := api.NewServer(registry, hub, cfg, logger)

	// MCP admin surface, proxying the status API over loopback.
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.Addr()),
			zap.String("websocket", fmt.Sprintf("ws://localhost:%d/ws", cfg.Port)),
			zap.String("health", fmt.Sprintf("http://localhost:%d/health", cfg.Port)),
			zap.String("mcp", fmt.Sprintf("http://localhost:%d/mcp", cfg.Port)))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server failure
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	// Graceful shutdown with timeout. WebSocket timeouts are not awaited;
	// a restart loses all rooms by design.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
