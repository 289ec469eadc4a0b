package chat

// RoomEvent is the payload published to NATS room.<room_id> subjects
// for fan-out to every server instance hosting members of the room.
type RoomEvent struct {
	Type      string `json:"type"`                 // "message", "typing", "member_joined", "member_left"
	MessageID string `json:"message_id,omitempty"` // for message events
	From      string `json:"from"`                 // sender's nickname
	Text      string `json:"text,omitempty"`       // for message events
	IsTyping  bool   `json:"is_typing,omitempty"`  // for typing events
	Ts        int64  `json:"ts,omitempty"`         // unix timestamp for messages
}
