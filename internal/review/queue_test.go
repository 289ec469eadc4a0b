package review

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestItemID_Deterministic(t *testing.T) {
	h1 := ItemID("room1", "msg1")
	h2 := ItemID("room1", "msg1")
	if h1 != h2 {
		t.Errorf("same inputs should produce same ID: %s, %s", h1, h2)
	}
	if len(h1) != 16 {
		t.Fatalf("ID should be 16 hex chars, got %d: %s", len(h1), h1)
	}
}

func TestItemID_DifferentMessages(t *testing.T) {
	h1 := ItemID("room1", "msg1")
	h2 := ItemID("room1", "msg2")
	h3 := ItemID("room2", "msg1")

	if h1 == h2 || h1 == h3 {
		t.Error("different messages should produce different IDs")
	}
}

func TestNewQueue(t *testing.T) {
	// Verify queue can be created without Redis (nil client for unit test).
	q := NewQueue(nil)
	if q == nil {
		t.Fatal("NewQueue should return non-nil Queue")
	}
	if q.rdb != nil {
		t.Error("Queue.rdb should be nil when created with nil client")
	}
}

func TestItem_Fields(t *testing.T) {
	item := &Item{
		ID:        "abc123",
		SessionID: "test-session",
		RoomID:    "room1",
		MessageID: "msg1",
		Reason:    "blocked_keyword",
		Term:      "badword",
		Text:      "some badword here",
		FlaggedAt: 1000.0,
	}

	if item.SessionID != "test-session" {
		t.Errorf("unexpected SessionID: %s", item.SessionID)
	}
	if item.Reason != "blocked_keyword" {
		t.Errorf("unexpected Reason: %s", item.Reason)
	}
}

// newTestQueue returns a Queue connected to a local Redis instance, skipping
// the test if Redis is not available.
func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() {
		ids, _ := client.ZRange(ctx, keyReviewQueue, 0, -1).Result()
		for _, id := range ids {
			client.ZRem(ctx, keyReviewQueue, id)
			client.Del(ctx, keyItemPrefix+id)
		}
		client.Close()
	})
	return NewQueue(client)
}

func TestEnqueueAndNext(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	item := &Item{
		SessionID: "test-session",
		RoomID:    "test-room",
		MessageID: "test-msg-1",
		Reason:    "blocked_keyword",
		Term:      "badword",
		Text:      "contains badword",
	}
	if err := q.Enqueue(ctx, item); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if item.ID == "" {
		t.Fatal("Enqueue should assign an ID")
	}

	next, err := q.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if next == nil {
		t.Fatal("expected a pending item")
	}
	if next.MessageID != "test-msg-1" {
		t.Errorf("expected message test-msg-1, got %s", next.MessageID)
	}
	if next.Term != "badword" {
		t.Errorf("expected term badword, got %s", next.Term)
	}
}

func TestResolve(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	item := &Item{
		SessionID: "test-session",
		RoomID:    "test-room",
		MessageID: "test-msg-resolve",
		Reason:    "spam_pattern",
	}
	if err := q.Enqueue(ctx, item); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	if err := q.Resolve(ctx, item.ID, ResolutionDismissed); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	got, err := q.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != nil {
		t.Error("expected item removed after resolve")
	}

	size, _ := q.Size(ctx)
	if size != 0 {
		t.Errorf("expected empty queue after resolve, got %d", size)
	}
}

func TestResolve_InvalidResolution(t *testing.T) {
	q := NewQueue(nil)
	if err := q.Resolve(context.Background(), "id", "banana"); err == nil {
		t.Error("expected error for invalid resolution")
	}
}

func TestEnqueue_DuplicateCollapses(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	a := &Item{SessionID: "s", RoomID: "test-room", MessageID: "dup-msg", Reason: "blocked_keyword"}
	b := &Item{SessionID: "s", RoomID: "test-room", MessageID: "dup-msg", Reason: "blocked_keyword"}

	if err := q.Enqueue(ctx, a); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}
	if err := q.Enqueue(ctx, b); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	size, err := q.Size(ctx)
	if err != nil {
		t.Fatalf("Size() error: %v", err)
	}
	if size != 1 {
		t.Errorf("duplicate flags should collapse to one entry, got %d", size)
	}
}
