package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAPI serves canned /api/rooms and /health responses.
func stubAPI(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/rooms":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"totalRooms": 1,
				"rooms": []map[string]interface{}{{
					"roomId":      "R1",
					"playerCount": 2,
					"createdAt":   "2024-05-01T10:00:00Z",
					"players": []map[string]string{
						{"socketId": "c1", "name": "Ann"},
						{"socketId": "c2", "name": "Bob"},
					},
				}},
			})
		case "/health":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":      "healthy",
				"environment": "development",
				"stats": map[string]int{
					"totalRooms":   1,
					"totalPlayers": 2,
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{
				"status":  "error",
				"message": "Route not found",
			})
		}
	}))
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:5000")

	require.NotNil(t, client)
	assert.Equal(t, "http://localhost:5000", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.GetMCPServer())
}

func TestClient_ListRooms(t *testing.T) {
	server := stubAPI(t)
	defer server.Close()
	client := NewClient(server.URL)

	result, err := client.handleListRooms(context.Background(), toolRequest("list_rooms", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Active Rooms (1)")
	assert.Contains(t, text, "R1 (2 players)")
	assert.Contains(t, text, "Ann [c1]")
	assert.Contains(t, text, "Bob [c2]")
}

func TestClient_RoomInfo(t *testing.T) {
	server := stubAPI(t)
	defer server.Close()
	client := NewClient(server.URL)
	ctx := context.Background()

	t.Run("existing room", func(t *testing.T) {
		result, err := client.handleRoomInfo(ctx, toolRequest("room_info",
			map[string]interface{}{"room_id": "R1"}))
		require.NoError(t, err)

		text := resultText(t, result)
		assert.Contains(t, text, "Room R1")
		assert.Contains(t, text, "Ann [c1]")
	})

	t.Run("unknown room", func(t *testing.T) {
		result, err := client.handleRoomInfo(ctx, toolRequest("room_info",
			map[string]interface{}{"room_id": "R9"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("missing room_id", func(t *testing.T) {
		result, err := client.handleRoomInfo(ctx, toolRequest("room_info", map[string]interface{}{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestClient_ServerStats(t *testing.T) {
	server := stubAPI(t)
	defer server.Close()
	client := NewClient(server.URL)

	result, err := client.handleServerStats(context.Background(), toolRequest("server_stats", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Status: healthy")
	assert.Contains(t, text, "Rooms: 1")
	assert.Contains(t, text, "Players: 2")
}

func TestClient_APIUnavailable(t *testing.T) {
	server := stubAPI(t)
	server.Close() // refuse connections

	client := NewClient(server.URL)
	result, err := client.handleListRooms(context.Background(), toolRequest("list_rooms", nil))
	require.NoError(t, err, "transport failures surface as tool errors, not Go errors")
	assert.True(t, result.IsError)
}
