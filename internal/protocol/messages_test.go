package protocol

import (
	"encoding/json"
	"testing"
)

// ---------------------------------------------------------------------------
// Test: Parsing a valid join_room message
// ---------------------------------------------------------------------------

func TestParseClientMessage_JoinRoom(t *testing.T) {
	input := []byte(`{"type":"join_room","room_id":"general","nickname":"ferret"}`)

	msgType, msg, err := ParseClientMessage(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgType != TypeJoinRoom {
		t.Fatalf("expected type %q, got %q", TypeJoinRoom, msgType)
	}

	jm, ok := msg.(JoinRoomMsg)
	if !ok {
		t.Fatalf("expected JoinRoomMsg, got %T", msg)
	}
	if jm.RoomID != "general" {
		t.Errorf("expected room_id %q, got %q", "general", jm.RoomID)
	}
	if jm.Nickname != "ferret" {
		t.Errorf("expected nickname %q, got %q", "ferret", jm.Nickname)
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing a valid message (chat) message
// ---------------------------------------------------------------------------

func TestParseClientMessage_ChatMsg(t *testing.T) {
	input := []byte(`{"type":"message","room_id":"abc-123","text":"Hello!"}`)

	msgType, msg, err := ParseClientMessage(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgType != TypeMessage {
		t.Fatalf("expected type %q, got %q", TypeMessage, msgType)
	}

	cm, ok := msg.(ChatMsg)
	if !ok {
		t.Fatalf("expected ChatMsg, got %T", msg)
	}
	if cm.RoomID != "abc-123" {
		t.Errorf("expected room_id %q, got %q", "abc-123", cm.RoomID)
	}
	if cm.Text != "Hello!" {
		t.Errorf("expected text %q, got %q", "Hello!", cm.Text)
	}
}

// ---------------------------------------------------------------------------
// Test: Creating a room_joined server message
// ---------------------------------------------------------------------------

func TestNewServerMessage_RoomJoined(t *testing.T) {
	payload := RoomJoinedMsg{
		RoomID:   "uuid-456",
		Nickname: "otter",
		Members:  7,
	}

	data, err := NewServerMessage(TypeRoomJoined, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Decode back and verify structure.
	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}

	if result["type"] != TypeRoomJoined {
		t.Errorf("expected type %q, got %v", TypeRoomJoined, result["type"])
	}
	if result["room_id"] != "uuid-456" {
		t.Errorf("expected room_id %q, got %v", "uuid-456", result["room_id"])
	}
	if result["nickname"] != "otter" {
		t.Errorf("expected nickname %q, got %v", "otter", result["nickname"])
	}

	members, ok := result["members"].(float64)
	if !ok {
		t.Fatalf("expected members to be a number, got %T", result["members"])
	}
	if int(members) != 7 {
		t.Errorf("expected members 7, got %v", members)
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing an unknown message type returns an error
// ---------------------------------------------------------------------------

func TestParseClientMessage_UnknownType(t *testing.T) {
	input := []byte(`{"type":"unknown_type","data":"something"}`)

	msgType, msg, err := ParseClientMessage(input)
	if err == nil {
		t.Fatal("expected an error for unknown message type, got nil")
	}
	if msg != nil {
		t.Errorf("expected nil message for unknown type, got %v", msg)
	}
	if msgType != "unknown_type" {
		t.Errorf("expected returned type %q, got %q", "unknown_type", msgType)
	}
}

// ---------------------------------------------------------------------------
// Test: Round-trip fidelity (marshal -> unmarshal)
// ---------------------------------------------------------------------------

func TestRoundTrip_JoinRoom(t *testing.T) {
	original := JoinRoomMsg{
		Type:     TypeJoinRoom,
		RoomID:   "lounge",
		Nickname: "stoat",
	}

	// Marshal to JSON.
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	// Parse back through the protocol parser.
	msgType, msg, err := ParseClientMessage(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msgType != TypeJoinRoom {
		t.Fatalf("expected type %q, got %q", TypeJoinRoom, msgType)
	}

	decoded, ok := msg.(JoinRoomMsg)
	if !ok {
		t.Fatalf("expected JoinRoomMsg, got %T", msg)
	}
	if decoded.Type != original.Type {
		t.Errorf("type mismatch: expected %q, got %q", original.Type, decoded.Type)
	}
	if decoded.RoomID != original.RoomID {
		t.Errorf("room_id mismatch: expected %q, got %q", original.RoomID, decoded.RoomID)
	}
	if decoded.Nickname != original.Nickname {
		t.Errorf("nickname mismatch: expected %q, got %q", original.Nickname, decoded.Nickname)
	}
}

func TestRoundTrip_ServerMessage(t *testing.T) {
	original := MutedMsg{
		Type:     TypeMuted,
		Duration: 900,
		Reason:   "repeated violations",
	}

	// Create server message bytes.
	data, err := NewServerMessage(TypeMuted, original)
	if err != nil {
		t.Fatalf("failed to create server message: %v", err)
	}

	// Unmarshal back into the struct.
	var decoded MutedMsg
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if decoded.Type != TypeMuted {
		t.Errorf("type mismatch: expected %q, got %q", TypeMuted, decoded.Type)
	}
	if decoded.Duration != original.Duration {
		t.Errorf("duration mismatch: expected %d, got %d", original.Duration, decoded.Duration)
	}
	if decoded.Reason != original.Reason {
		t.Errorf("reason mismatch: expected %q, got %q", original.Reason, decoded.Reason)
	}
}

// ---------------------------------------------------------------------------
// Test: Envelope UnmarshalJSON edge cases
// ---------------------------------------------------------------------------

func TestEnvelope_MissingType(t *testing.T) {
	input := []byte(`{"data":"no type field"}`)
	var env Envelope
	if err := json.Unmarshal(input, &env); err == nil {
		t.Fatal("expected error for missing type field, got nil")
	}
}

func TestEnvelope_InvalidJSON(t *testing.T) {
	input := []byte(`{invalid json}`)
	var env Envelope
	if err := json.Unmarshal(input, &env); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

// ---------------------------------------------------------------------------
// Test: Parsing all client message types succeeds
// ---------------------------------------------------------------------------

func TestParseClientMessage_AllTypes(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		wantType string
	}{
		{"join_room", `{"type":"join_room","room_id":"general"}`, TypeJoinRoom},
		{"leave_room", `{"type":"leave_room","room_id":"general"}`, TypeLeaveRoom},
		{"message", `{"type":"message","room_id":"id1","text":"hi"}`, TypeMessage},
		{"typing", `{"type":"typing","room_id":"id1","is_typing":true}`, TypeTyping},
		{"ping", `{"type":"ping"}`, TypePing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msgType, msg, err := ParseClientMessage([]byte(tc.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msgType != tc.wantType {
				t.Errorf("expected type %q, got %q", tc.wantType, msgType)
			}
			if msg == nil {
				t.Error("expected non-nil message")
			}
		})
	}
}
