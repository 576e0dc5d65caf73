// Package gateway is the WebSocket entry point: it upgrades a connection,
// validates the query-string username, resolves or creates a room, and
// bridges the socket to the room registry for the life of the connection.
// Grounded on apps/server/internal/gateway/gateway.go's Connection/Gateway
// split, with the wire format swapped from protobuf to JSON (internal/wire)
// and the teacher's userID-from-connection-counter demo auth replaced by a
// generated UUID per spec.md §6.
package gateway

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/inkfarer/Tableturfer/internal/wire"
	"github.com/inkfarer/Tableturfer/room"
)

const maxUsernameLength = 25

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // intentionally permissive: any origin is accepted
	},
}

// Gateway owns the registry every connection joins rooms against.
type Gateway struct {
	registry       *room.RoomRegistry
	sendBufferSize int
}

// New builds a Gateway. sendBufferSize <= 0 falls back to 256, matching the
// teacher's hardcoded Connection.Send buffer size.
func New(registry *room.RoomRegistry, sendBufferSize int) *Gateway {
	if sendBufferSize <= 0 {
		sendBufferSize = 256
	}
	return &Gateway{registry: registry, sendBufferSize: sendBufferSize}
}

func usernameIsValid(username string) bool {
	return username != "" && len(username) <= maxUsernameLength
}

func closeWithCode(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// HandleWebSocket upgrades the request, validates the username and resolves
// or creates a room (both taken from query parameters, per spec.md §6), then
// spawns the two cooperative goroutines (readPump/writePump) that service
// the connection until either exits.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if !usernameIsValid(username) {
		log.Printf("[Gateway] Rejecting connection with invalid username")
		closeWithCode(conn, 4001, "Either no username or an invalid username was supplied.")
		conn.Close()
		return
	}

	userID := uuid.NewString()
	roomCode := strings.TrimSpace(r.URL.Query().Get("room"))

	send := make(chan wire.Outbound, g.sendBufferSize)
	// Room.broadcast/unicast invoke this closure while the registry's write
	// lock is held, so it must never block: a slow or dead connection must
	// not stall every other room. This non-blocking channel send is this
	// port's whole "broadcast-forward" stage collapsed into one step, since
	// a Go channel is itself a safe cross-goroutine queue (the original's
	// receive_from_room task existed to bridge a broadcast::Receiver into
	// the per-connection mpsc channel; Go's buffered channel needs no
	// separate forwarding goroutine for that).
	sender := room.Sender(func(out wire.Outbound) {
		select {
		case send <- out:
		default:
			log.Printf("[Gateway] Dropping event %s for user %s: send buffer full", out.Event, userID)
		}
	})

	var rm *room.Room
	if roomCode == "" {
		rm, err = g.registry.Create(userID, username, sender)
	} else {
		rm, err = g.registry.Join(roomCode, userID, username, sender)
	}
	if err != nil {
		log.Printf("[Gateway] Rejecting connection for room %q: %v", roomCode, err)
		closeWithCode(conn, 4000, fmt.Sprintf("Could not find room %q", roomCode))
		conn.Close()
		return
	}

	c := &connection{
		id:       userID,
		roomCode: rm.Code,
		conn:     conn,
		send:     send,
		registry: g.registry,
	}

	log.Printf("[Gateway] Client connected: %s (user=%s) room=%s, total rooms: %d", userID, username, rm.Code, g.registry.Count())

	// Welcome was already enqueued onto send by Room.Join/NewRoom, ahead of
	// any broadcast this connection's own join may have triggered.
	go c.writePump()
	go c.readPump()
}
