package ws

import (
	"log"
	"time"

	"github.com/swearguard/swearguard/internal/protocol"
)

// Dispatcher decodes incoming frames and routes each room message to its
// typed callback. Ping is answered internally; parse failures and messages
// with no callback installed get a structured error reply. Callbacks are
// assigned once at startup, before the server accepts traffic, so no
// locking is needed.
type Dispatcher struct {
	OnJoinRoom  func(conn *Connection, msg protocol.JoinRoomMsg)
	OnLeaveRoom func(conn *Connection, msg protocol.LeaveRoomMsg)
	OnChat      func(conn *Connection, msg protocol.ChatMsg)
	OnTyping    func(conn *Connection, msg protocol.TypingMsg)
}

// NewDispatcher creates a Dispatcher with no callbacks installed. Until a
// callback is assigned, its message type is answered with unsupported_type.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Dispatch is the server's onMessage callback. ParseClientMessage already
// rejects unknown types, so the switch only sees the client message set.
func (d *Dispatcher) Dispatch(conn *Connection, data []byte) {
	msgType, msg, err := protocol.ParseClientMessage(data)
	if err != nil {
		log.Printf("ws: dispatch parse error session=%s: %v", conn.ID, err)
		d.sendError(conn, "parse_error", "invalid message format")
		return
	}

	switch m := msg.(type) {
	case protocol.PingMsg:
		d.sendPong(conn)
		return
	case protocol.JoinRoomMsg:
		if d.OnJoinRoom != nil {
			d.OnJoinRoom(conn, m)
			return
		}
	case protocol.LeaveRoomMsg:
		if d.OnLeaveRoom != nil {
			d.OnLeaveRoom(conn, m)
			return
		}
	case protocol.ChatMsg:
		if d.OnChat != nil {
			d.OnChat(conn, m)
			return
		}
	case protocol.TypingMsg:
		if d.OnTyping != nil {
			d.OnTyping(conn, m)
			return
		}
	}

	log.Printf("ws: unsupported message type=%q session=%s", msgType, conn.ID)
	d.sendError(conn, "unsupported_type", "unsupported message type")
}

// sendError sends a structured error message back to the client. Errors
// during construction or transmission are logged but not propagated.
func (d *Dispatcher) sendError(conn *Connection, code string, message string) {
	data, err := protocol.NewServerMessage(protocol.TypeError, protocol.ErrorMsg{
		Code:    code,
		Message: message,
	})
	if err != nil {
		log.Printf("ws: failed to build error message session=%s: %v", conn.ID, err)
		return
	}

	if err := conn.WriteMessage(data); err != nil {
		log.Printf("ws: failed to send error message session=%s: %v", conn.ID, err)
	}
}

// sendPong answers a client ping and records the keepalive on the
// connection so the heartbeat sweep sees it as live.
func (d *Dispatcher) sendPong(conn *Connection) {
	conn.LastPing = time.Now()

	data, err := protocol.NewServerMessage(protocol.TypePong, protocol.PongMsg{})
	if err != nil {
		log.Printf("ws: failed to build pong message session=%s: %v", conn.ID, err)
		return
	}

	if err := conn.WriteMessage(data); err != nil {
		log.Printf("ws: failed to send pong message session=%s: %v", conn.ID, err)
	}
}
