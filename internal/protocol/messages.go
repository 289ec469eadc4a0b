// Package protocol defines the WebSocket message types and structures used for
// communication between the client and server. All messages are serialized as
// JSON and follow a consistent envelope format with a type discriminator.
package protocol

import (
	"encoding/json"
	"fmt"
)

// ---------------------------------------------------------------------------
// Message type constants
// ---------------------------------------------------------------------------

// Client -> Server message types.
const (
	TypeJoinRoom  = "join_room"
	TypeLeaveRoom = "leave_room"
	TypeMessage   = "message"
	TypeTyping    = "typing"
	TypePing      = "ping"
)

// Server -> Client message types.
const (
	TypeSessionCreated = "session_created"
	TypeRoomJoined     = "room_joined"
	TypeRoomLeft       = "room_left"
	TypeMessageBlocked = "message_blocked"
	TypeWarning        = "warning"
	TypeMuted          = "muted"
	TypeRateLimited    = "rate_limited"
	TypeError          = "error"
	TypePong           = "pong"
)

// ---------------------------------------------------------------------------
// Envelope — used for initial JSON parsing to extract the type discriminator.
// ---------------------------------------------------------------------------

// Envelope holds the message type and the raw JSON payload for deferred
// parsing into a concrete struct.
type Envelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements the json.Unmarshaler interface. It captures the
// full raw bytes and extracts only the "type" field so that the rest of the
// payload can be decoded later into the appropriate concrete struct.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	// Capture the full raw message for deferred parsing.
	e.Raw = make(json.RawMessage, len(data))
	copy(e.Raw, data)

	// Extract only the type field.
	var partial struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("protocol: failed to unmarshal envelope: %w", err)
	}
	if partial.Type == "" {
		return fmt.Errorf("protocol: missing or empty \"type\" field")
	}
	e.Type = partial.Type
	return nil
}

// ---------------------------------------------------------------------------
// Client -> Server message structs
// ---------------------------------------------------------------------------

// JoinRoomMsg is sent by the client to join a chat room. Nickname is optional;
// the server assigns one when empty.
type JoinRoomMsg struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	Nickname string `json:"nickname"`
}

// LeaveRoomMsg is sent by the client to leave the current room.
type LeaveRoomMsg struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// ChatMsg is a text message sent by the client to a room.
type ChatMsg struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

// TypingMsg indicates whether the client is currently typing.
type TypingMsg struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	IsTyping bool   `json:"is_typing"`
}

// PingMsg is a client-initiated keepalive ping.
type PingMsg struct {
	Type string `json:"type"`
}

// ---------------------------------------------------------------------------
// Server -> Client message structs
// ---------------------------------------------------------------------------

// SessionCreatedMsg is sent by the server when a new session is established.
type SessionCreatedMsg struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// RoomJoinedMsg is sent by the server to confirm room membership.
type RoomJoinedMsg struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	Nickname string `json:"nickname"`
	Members  int    `json:"members"`
}

// RoomLeftMsg is sent by the server to confirm the client left a room.
type RoomLeftMsg struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// ServerChatMsg is a text message relayed to room members by the server.
type ServerChatMsg struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	RoomID    string `json:"room_id"`
	From      string `json:"from"`
	Text      string `json:"text"`
	Ts        int64  `json:"ts"`
}

// ServerTypingMsg relays another member's typing indicator to the client.
type ServerTypingMsg struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	From     string `json:"from"`
	IsTyping bool   `json:"is_typing"`
}

// MessageBlockedMsg is sent to the author when moderation rejected a message.
type MessageBlockedMsg struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	Reason    string `json:"reason"`
}

// WarningMsg is sent to the author after a violation, before a mute kicks in.
type WarningMsg struct {
	Type     string `json:"type"`
	Offenses int    `json:"offenses"`
	Message  string `json:"message"`
}

// MutedMsg is sent by the server when the client has been muted.
type MutedMsg struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"` // seconds
	Reason   string `json:"reason"`
}

// RateLimitedMsg is sent by the server when the client has been rate-limited.
type RateLimitedMsg struct {
	Type       string `json:"type"`
	RetryAfter int    `json:"retry_after"`
}

// ErrorMsg is sent by the server to communicate an error condition.
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PongMsg is the server's response to a client ping.
type PongMsg struct {
	Type string `json:"type"`
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// ParseClientMessage parses raw WebSocket bytes into a typed client message.
// It returns the message type string, the decoded struct, and any error
// encountered during parsing. An error is returned for unknown or
// server-only message types.
func ParseClientMessage(data []byte) (string, interface{}, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("protocol: failed to parse message: %w", err)
	}

	var (
		msg interface{}
		err error
	)

	switch env.Type {
	case TypeJoinRoom:
		var m JoinRoomMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeLeaveRoom:
		var m LeaveRoomMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeMessage:
		var m ChatMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeTyping:
		var m TypingMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypePing:
		var m PingMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	default:
		return env.Type, nil, fmt.Errorf("protocol: unknown client message type: %q", env.Type)
	}

	if err != nil {
		return env.Type, nil, fmt.Errorf("protocol: failed to decode %q payload: %w", env.Type, err)
	}
	return env.Type, msg, nil
}

// NewServerMessage creates a JSON-encoded byte slice for a server message.
// The msgType is injected into the payload under the "type" key. The payload
// should be one of the Server*Msg structs; this function marshals it to JSON,
// injects the type field, and returns the final bytes.
func NewServerMessage(msgType string, payload interface{}) ([]byte, error) {
	// Marshal the payload struct to a generic map so we can ensure the "type"
	// field is present and correct.
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal payload: %w", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("protocol: failed to unmarshal payload into map: %w", err)
	}

	m["type"] = msgType

	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal server message: %w", err)
	}
	return out, nil
}
