package chat

import (
	"fmt"
	"sync"
	"testing"
)

func TestAddAndGet(t *testing.T) {
	mb := NewMessageBuffer()

	mb.Add("room1", BufferedMessage{From: "a", Text: "hello", Ts: 1})
	mb.Add("room1", BufferedMessage{From: "b", Text: "hi", Ts: 2})
	mb.Add("room1", BufferedMessage{From: "a", Text: "how are you?", Ts: 3})

	msgs := mb.Get("room1")
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "hello" {
		t.Errorf("expected first message 'hello', got %q", msgs[0].Text)
	}
	if msgs[1].Text != "hi" {
		t.Errorf("expected second message 'hi', got %q", msgs[1].Text)
	}
	if msgs[2].Text != "how are you?" {
		t.Errorf("expected third message 'how are you?', got %q", msgs[2].Text)
	}
}

func TestRingBufferWraparound(t *testing.T) {
	mb := NewMessageBuffer()

	// Add two more messages than the buffer holds.
	total := MaxBufferMessages + 2
	for i := 1; i <= total; i++ {
		mb.Add("room1", BufferedMessage{
			From: "sender",
			Text: fmt.Sprintf("msg-%d", i),
			Ts:   int64(i),
		})
	}

	msgs := mb.Get("room1")
	if len(msgs) != MaxBufferMessages {
		t.Fatalf("expected %d messages, got %d", MaxBufferMessages, len(msgs))
	}

	// Should contain the last MaxBufferMessages messages in order.
	for i, msg := range msgs {
		expected := fmt.Sprintf("msg-%d", i+3)
		if msg.Text != expected {
			t.Errorf("index %d: expected %q, got %q", i, expected, msg.Text)
		}
	}
}

func TestGetNonExistentRoom(t *testing.T) {
	mb := NewMessageBuffer()

	msgs := mb.Get("does-not-exist")
	if msgs == nil {
		t.Fatal("expected non-nil empty slice, got nil")
	}
	if len(msgs) != 0 {
		t.Fatalf("expected 0 messages, got %d", len(msgs))
	}
}

func TestRemove(t *testing.T) {
	mb := NewMessageBuffer()

	mb.Add("room1", BufferedMessage{From: "a", Text: "hello", Ts: 1})
	mb.Add("room1", BufferedMessage{From: "b", Text: "hi", Ts: 2})

	mb.Remove("room1")

	msgs := mb.Get("room1")
	if len(msgs) != 0 {
		t.Fatalf("expected 0 messages after remove, got %d", len(msgs))
	}
}

func TestRemoveNonExistent(t *testing.T) {
	mb := NewMessageBuffer()

	// Should not panic.
	mb.Remove("does-not-exist")
}

func TestMultipleRooms(t *testing.T) {
	mb := NewMessageBuffer()

	mb.Add("room1", BufferedMessage{From: "a", Text: "r1-msg1", Ts: 1})
	mb.Add("room2", BufferedMessage{From: "b", Text: "r2-msg1", Ts: 2})
	mb.Add("room1", BufferedMessage{From: "b", Text: "r1-msg2", Ts: 3})

	msgs1 := mb.Get("room1")
	msgs2 := mb.Get("room2")

	if len(msgs1) != 2 {
		t.Fatalf("room1: expected 2 messages, got %d", len(msgs1))
	}
	if len(msgs2) != 1 {
		t.Fatalf("room2: expected 1 message, got %d", len(msgs2))
	}
	if msgs1[0].Text != "r1-msg1" || msgs1[1].Text != "r1-msg2" {
		t.Errorf("room1 messages out of order: %+v", msgs1)
	}
	if msgs2[0].Text != "r2-msg1" {
		t.Errorf("room2 unexpected message: %+v", msgs2[0])
	}
}

func TestExactlyMaxMessages(t *testing.T) {
	mb := NewMessageBuffer()

	for i := 1; i <= MaxBufferMessages; i++ {
		mb.Add("room1", BufferedMessage{
			From: "sender",
			Text: fmt.Sprintf("msg-%d", i),
			Ts:   int64(i),
		})
	}

	msgs := mb.Get("room1")
	if len(msgs) != MaxBufferMessages {
		t.Fatalf("expected %d messages, got %d", MaxBufferMessages, len(msgs))
	}

	for i, msg := range msgs {
		expected := fmt.Sprintf("msg-%d", i+1)
		if msg.Text != expected {
			t.Errorf("index %d: expected %q, got %q", i, expected, msg.Text)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	mb := NewMessageBuffer()
	roomID := "concurrent-room"
	goroutines := 100
	messagesPerGoroutine := 20

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for m := 0; m < messagesPerGoroutine; m++ {
				mb.Add(roomID, BufferedMessage{
					From: fmt.Sprintf("sender-%d", id),
					Text: fmt.Sprintf("g%d-m%d", id, m),
					Ts:   int64(id*messagesPerGoroutine + m),
				})
				// Interleave reads to stress the RWMutex.
				_ = mb.Get(roomID)
			}
		}(g)
	}

	wg.Wait()

	msgs := mb.Get(roomID)
	if len(msgs) != MaxBufferMessages {
		t.Fatalf("expected %d messages after concurrent writes, got %d", MaxBufferMessages, len(msgs))
	}
}

func TestValidateMessage(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"normal", "hello there", false},
		{"empty", "", true},
		{"too many bytes", string(make([]byte, MaxMessageBytes+1)), true},
		{"invalid utf8", string([]byte{0xff, 0xfe}), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMessage(tc.text)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateMessage(%q): err=%v, wantErr=%v", tc.name, err, tc.wantErr)
			}
		})
	}
}

func TestValidateNickname(t *testing.T) {
	if err := ValidateNickname(""); err != nil {
		t.Errorf("empty nickname should be valid: %v", err)
	}
	if err := ValidateNickname("ferret"); err != nil {
		t.Errorf("normal nickname should be valid: %v", err)
	}
	long := ""
	for i := 0; i < MaxNicknameChars+1; i++ {
		long += "x"
	}
	if err := ValidateNickname(long); err == nil {
		t.Error("expected error for overlong nickname")
	}
}
