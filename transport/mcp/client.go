package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Client is a thin MCP server that proxies to the HTTP status API. It is
// read-only by construction: every tool maps to a GET endpoint, so an
// attached model can observe rooms but never mutate them.
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates an MCP client targeting the status API at baseURL.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// GetMCPServer returns the underlying MCP server for mounting.
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Game Room Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Game Room Server - MCP Interface

Read-only administrative view of a real-time multiplayer room server.
Clients join named rooms over WebSocket to chat and play tic-tac-toe.

AVAILABLE TOOLS:
- list_rooms: List all active rooms with their occupants
- room_info: Get one room's roster and creation time
- server_stats: Get aggregate room/player counts and server health

These tools observe live state; they cannot create, join, or modify rooms.`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all active rooms with player names and counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_info",
		Description: "Get the roster and creation time of a specific room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_id": map[string]interface{}{
					"type":        "string",
					"description": "Room ID to inspect",
				},
			},
			Required: []string{"room_id"},
		},
	}, c.handleRoomInfo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get aggregate room and player statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)
}

// roomListing mirrors the /api/rooms response shape.
type roomListing struct {
	TotalRooms int `json:"totalRooms"`
	Rooms      []struct {
		RoomID      string `json:"roomId"`
		PlayerCount int    `json:"playerCount"`
		CreatedAt   string `json:"createdAt"`
		Players     []struct {
			SocketID string `json:"socketId"`
			Name     string `json:"name"`
		} `json:"players"`
	} `json:"rooms"`
}

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var listing roomListing
	if err := c.apiCall(ctx, "/api/rooms", &listing); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Rooms (%d):\n\n", listing.TotalRooms)
	for _, r := range listing.Rooms {
		result += fmt.Sprintf("- %s (%d players)\n", r.RoomID, r.PlayerCount)
		for _, p := range r.Players {
			result += fmt.Sprintf("    %s [%s]\n", p.Name, p.SocketID)
		}
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRoomInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	roomID, _ := args["room_id"].(string)
	if roomID == "" {
		return mcp.NewToolResultError("room_id is required"), nil
	}

	var listing roomListing
	if err := c.apiCall(ctx, "/api/rooms", &listing); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	for _, r := range listing.Rooms {
		if r.RoomID != roomID {
			continue
		}
		result := fmt.Sprintf("Room %s\nCreated: %s\nPlayers (%d):\n", r.RoomID, r.CreatedAt, r.PlayerCount)
		for _, p := range r.Players {
			result += fmt.Sprintf("- %s [%s]\n", p.Name, p.SocketID)
		}
		return mcp.NewToolResultText(result), nil
	}

	return mcp.NewToolResultError(fmt.Sprintf("Room %s does not exist", roomID)), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var health struct {
		Status      string `json:"status"`
		Environment string `json:"environment"`
		Stats       struct {
			TotalRooms   int `json:"totalRooms"`
			TotalPlayers int `json:"totalPlayers"`
		} `json:"stats"`
	}
	if err := c.apiCall(ctx, "/health", &health); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Status: %s\nEnvironment: %s\nRooms: %d\nPlayers: %d\n",
		health.Status, health.Environment, health.Stats.TotalRooms, health.Stats.TotalPlayers)
	return mcp.NewToolResultText(result), nil
}

// apiCall performs a GET against the status API and decodes the JSON
// response into result.
func (c *Client) apiCall(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["message"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
