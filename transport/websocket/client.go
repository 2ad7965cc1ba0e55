package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Board payloads are small;
	// this leaves plenty of headroom for chat messages.
	maxMessageSize = 8192

	// Outbound queue depth per connection.
	sendQueueSize = 256
)

// Client is one live connection: the socket, its outbound queue, and the
// protocol session driven by its frames.
type Client struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session Session

	// sendMu serializes the queue's lifecycle against enqueues. Group
	// broadcasts run concurrently, so the queue may only be closed while no
	// sender holds it.
	sendMu sync.Mutex
	closed bool
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// trySend enqueues data without blocking. It reports whether the client's
// queue overflowed; sends to an already closed queue are silently dropped.
func (c *Client) trySend(data []byte) (overflowed bool) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return false
	default:
		return true
	}
}

// readPump decodes inbound envelopes and feeds them to the session. On
// exit the client is removed from the hub (and all groups) before the
// session's disconnect hook runs, so disconnect broadcasts only reach the
// remaining members.
func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.session.OnDisconnect()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error",
					zap.String("connectionId", c.id), zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			c.hub.logger.Debug("dropping malformed frame",
				zap.String("connectionId", c.id))
			continue
		}
		c.session.OnEvent(env.Event, env.Data)
	}
}

// writePump drains the outbound queue to the socket, one envelope per
// frame, and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the queue.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
