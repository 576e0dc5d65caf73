package gateway

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/inkfarer/Tableturfer/game"
	"github.com/inkfarer/Tableturfer/internal/wire"
	"github.com/inkfarer/Tableturfer/room"
)

const (
	readLimit    = 65536
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

// connection bridges one WebSocket to one room membership. It holds no
// mutex: send is owned by writePump, conn's read side by readPump, and the
// two never touch the same field concurrently.
type connection struct {
	id       string
	roomCode string
	conn     *websocket.Conn
	send     chan wire.Outbound
	registry *room.RoomRegistry
}

// writePump is the egress task: it drains send to the socket and keeps the
// connection alive with a 30s ping, mirroring table gateway's writePump.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case out, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(out)
			if err != nil {
				log.Printf("[Gateway] Failed to marshal outbound event %s: %v", out.Event, err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

// readPump is the ingress-dispatch task: it reads and decodes client
// messages and drives them against the room registry until the socket
// errors or closes, then evicts the connection's membership.
func (c *connection) readPump() {
	defer func() {
		c.registry.RemoveUser(c.roomCode, c.id)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error for %s: %v", c.id, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.handleMessage(data)
	}
}

func (c *connection) handleMessage(data []byte) {
	var in wire.Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		c.sendError("MessageParsingFailed", "")
		return
	}
	if err := c.dispatch(in); err != nil {
		code, detail := errorDetail(err)
		c.sendError(code, detail)
	}
}

func (c *connection) dispatch(in wire.Inbound) error {
	switch in.Action {
	case wire.ActionPing:
		c.unicast(wire.New(wire.EventPong, nil))
		return nil

	case wire.ActionSetMap:
		var args wire.SetMapArgs
		if err := json.Unmarshal(in.Args, &args); err != nil {
			return errMessageParsingFailed
		}
		return c.registry.Do(c.roomCode, func(r *room.Room) error { return r.SetMap(c.id, args.MapID) })

	case wire.ActionSetConfig:
		var args wire.SetConfigArgs
		if err := json.Unmarshal(in.Args, &args); err != nil {
			return errMessageParsingFailed
		}
		return c.registry.Do(c.roomCode, func(r *room.Room) error {
			return r.SetConfig(c.id, room.RoomConfig{MaxMembers: args.MaxMembers})
		})

	case wire.ActionSetDeck:
		var args wire.SetDeckArgs
		if err := json.Unmarshal(in.Args, &args); err != nil {
			return errMessageParsingFailed
		}
		return c.registry.Do(c.roomCode, func(r *room.Room) error { return r.SetDeck(c.id, args.ID, args.Cards) })

	case wire.ActionStartGame:
		return c.registry.Do(c.roomCode, func(r *room.Room) error { return r.StartGame(c.id) })

	case wire.ActionProposeMove:
		var args wire.ProposeMoveArgs
		if err := json.Unmarshal(in.Args, &args); err != nil {
			return errMessageParsingFailed
		}
		move, err := toPlayerMove(args)
		if err != nil {
			return err
		}
		return c.registry.Do(c.roomCode, func(r *room.Room) error { return r.ProposeMove(c.id, move) })

	case wire.ActionRequestRedraw:
		return c.registry.Do(c.roomCode, func(r *room.Room) error { return r.RequestRedraw(c.id) })

	case wire.ActionReturnToRoom:
		return c.registry.Do(c.roomCode, func(r *room.Room) error { return r.ReturnToRoom(c.id) })

	default:
		return errMessageParsingFailed
	}
}

func toPlayerMove(args wire.ProposeMoveArgs) (game.PlayerMove, error) {
	pos := game.Position{X: args.Position.X, Y: args.Position.Y}
	switch args.Kind {
	case wire.MoveKindPlaceCard:
		return game.PlaceCard(args.Card, pos, args.Rotation, args.Special), nil
	case wire.MoveKindPass:
		return game.Pass(args.Card), nil
	default:
		return game.PlayerMove{}, errMessageParsingFailed
	}
}

var errMessageParsingFailed = errors.New("gateway: message parsing failed")

// errorDetail maps an error from the room/game layers to the {code, detail}
// pair sent to the client, per spec.md §7's named error kinds.
func errorDetail(err error) (code, detail string) {
	switch {
	case errors.Is(err, errMessageParsingFailed):
		return "MessageParsingFailed", ""
	case errors.Is(err, room.ErrRoomNotFound):
		return "RoomNotFound", ""
	case errors.Is(err, room.ErrUserNotRoomOwner):
		return "UserNotRoomOwner", ""
	case errors.Is(err, room.ErrUserNotPlaying):
		return "UserNotPlaying", ""
	case errors.Is(err, room.ErrMissingOpponent):
		return "MissingOpponent", ""
	case errors.Is(err, room.ErrRoomStarted):
		return "RoomStarted", ""
	case errors.Is(err, room.ErrRoomNotStarted):
		return "RoomNotStarted", ""
	case errors.Is(err, room.ErrGameInProgress):
		return "GameInProgress", ""
	case errors.Is(err, room.ErrDecksNotChosen):
		return "DecksNotChosen", ""
	case errors.Is(err, room.ErrMapNotFound):
		return "MapNotFound", ""
	case errors.Is(err, room.ErrIncorrectDeckSize):
		return "IncorrectDeckSize", ""
	case errors.Is(err, room.ErrCardNotFound):
		return "CardNotFound", ""
	case errors.Is(err, room.ErrRoomFull):
		return "RoomFull", ""
	case errors.Is(err, room.ErrInvalidConfig):
		return "InvalidConfig", ""
	default:
		var gameErr room.GameError
		if errors.As(err, &gameErr) {
			return "GameError", gameErr.Unwrap().Error()
		}
		return "Error", err.Error()
	}
}

func (c *connection) unicast(out wire.Outbound) {
	select {
	case c.send <- out:
	default:
	}
}

func (c *connection) sendError(code, detail string) {
	c.unicast(wire.New(wire.EventError, wire.ErrorDetail{Code: code, Detail: detail}))
}
