// Command roomcli is a terminal client for smoke-testing a running room
// server. It connects over WebSocket, joins a room, prints every event it
// receives, and sends each stdin line as a chat message.
//
// Usage:
//
//	roomcli -addr localhost:5000 -room R1 -name Ann
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"
)

var (
	addr     = flag.String("addr", "localhost:5000", "server host:port")
	roomID   = flag.String("room", "lobby", "room to join")
	name     = flag.String("name", "guest", "display name")
	gameType = flag.String("start", "", "send game_start with this game type after joining")
)

// envelope is the wire frame used by the server.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func send(conn *websocket.Conn, event string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(envelope{Event: event, Data: raw})
}

func main() {
	flag.Parse()
	log.SetFlags(0)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var env envelope
			if err := conn.ReadJSON(&env); err != nil {
				log.Printf("read: %v", err)
				return
			}
			fmt.Printf("<< %s %s\n", env.Event, string(env.Data))
		}
	}()

	if err := send(conn, "join_room", map[string]string{
		"roomId": *roomID, "playerName": *name,
	}); err != nil {
		log.Fatalf("join: %v", err)
	}

	if *gameType != "" {
		if err := send(conn, "game_start", map[string]string{
			"roomId": *roomID, "gameType": *gameType,
		}); err != nil {
			log.Fatalf("game_start: %v", err)
		}
	}

	// Each stdin line becomes a chat message.
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	for {
		select {
		case <-done:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if line == "" {
				continue
			}
			if err := send(conn, "send_message", map[string]string{
				"roomId": *roomID, "playerName": *name, "message": line,
			}); err != nil {
				log.Fatalf("send: %v", err)
			}
		case <-interrupt:
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			<-done
			return
		}
	}
}
