package moderation

// Request is published to moderation.check by the chat server when a message
// needs async content review.
type Request struct {
	MessageID string `json:"message_id"`
	SessionID string `json:"session_id"`
	RoomID    string `json:"room_id"`
	Text      string `json:"text"`
	Ts        int64  `json:"ts"`
}

// Result is published back to the chat server with the review outcome.
type Result struct {
	MessageID string `json:"message_id"`
	SessionID string `json:"session_id"`
	RoomID    string `json:"room_id"`
	Blocked   bool   `json:"blocked"`
	Reason    string `json:"reason"`
	Term      string `json:"term"`
}
