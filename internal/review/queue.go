// Package review provides a Redis-backed queue of flagged messages awaiting
// human review. Items are scored by flag time so reviewers always see the
// oldest pending message first.
package review

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key patterns for review data structures.
	keyReviewQueue = "review:queue" // Sorted set, score = flag timestamp (ms)
	keyItemPrefix  = "review:item:" // + <item_id> -> Hash

	// TTL for review items. Items not reviewed within this window are
	// dropped by the cleanup loop.
	itemTTL = 7 * 24 * time.Hour
)

// Resolution values for Resolve.
const (
	ResolutionConfirmed = "confirmed"
	ResolutionDismissed = "dismissed"
)

// Item represents one flagged message awaiting review.
type Item struct {
	ID        string
	SessionID string
	RoomID    string
	MessageID string
	Reason    string
	Term      string
	Text      string
	FlaggedAt float64 // Unix timestamp in milliseconds
}

// Queue manages the Redis data structures for the review queue.
type Queue struct {
	rdb *redis.Client
}

// NewQueue creates a new review queue backed by Redis.
func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// ItemID computes a deterministic identifier for a flagged message so that
// repeated flags of the same message collapse into one queue entry.
func ItemID(roomID, messageID string) string {
	h := sha256.Sum256([]byte(roomID + "/" + messageID))
	return fmt.Sprintf("%x", h[:8]) // 16-char hex prefix
}

// Enqueue adds a flagged message to the review queue.
func (q *Queue) Enqueue(ctx context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = ItemID(item.RoomID, item.MessageID)
	}
	now := float64(time.Now().UnixMilli())
	item.FlaggedAt = now

	pipe := q.rdb.Pipeline()

	// Global sorted queue (score = timestamp for review ordering).
	pipe.ZAdd(ctx, keyReviewQueue, redis.Z{Score: now, Member: item.ID})

	// Item detail hash.
	itemKey := keyItemPrefix + item.ID
	pipe.HSet(ctx, itemKey, map[string]interface{}{
		"session_id": item.SessionID,
		"room_id":    item.RoomID,
		"message_id": item.MessageID,
		"reason":     item.Reason,
		"term":       item.Term,
		"text":       item.Text,
		"flagged_at": fmt.Sprintf("%.0f", now),
	})
	pipe.Expire(ctx, itemKey, itemTTL)

	_, err := pipe.Exec(ctx)
	return err
}

// Get retrieves a review item by ID. Returns nil if not found.
func (q *Queue) Get(ctx context.Context, itemID string) (*Item, error) {
	itemKey := keyItemPrefix + itemID
	result, err := q.rdb.HGetAll(ctx, itemKey).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	flaggedAt, _ := strconv.ParseFloat(result["flagged_at"], 64)

	return &Item{
		ID:        itemID,
		SessionID: result["session_id"],
		RoomID:    result["room_id"],
		MessageID: result["message_id"],
		Reason:    result["reason"],
		Term:      result["term"],
		Text:      result["text"],
		FlaggedAt: flaggedAt,
	}, nil
}

// Next returns the oldest pending review item, or nil if the queue is empty.
// The item stays in the queue until Resolve is called.
func (q *Queue) Next(ctx context.Context) (*Item, error) {
	ids, err := q.rdb.ZRange(ctx, keyReviewQueue, 0, 0).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return q.Get(ctx, ids[0])
}

// Pending returns the IDs of all queued items, oldest first.
func (q *Queue) Pending(ctx context.Context) ([]string, error) {
	return q.rdb.ZRange(ctx, keyReviewQueue, 0, -1).Result()
}

// Resolve removes an item from the queue with the given resolution.
// Resolving an unknown item is not an error.
func (q *Queue) Resolve(ctx context.Context, itemID, resolution string) error {
	if resolution != ResolutionConfirmed && resolution != ResolutionDismissed {
		return fmt.Errorf("review: invalid resolution %q", resolution)
	}

	pipe := q.rdb.Pipeline()
	pipe.ZRem(ctx, keyReviewQueue, itemID)
	pipe.Del(ctx, keyItemPrefix+itemID)
	_, err := pipe.Exec(ctx)
	return err
}

// Size returns the number of items currently awaiting review.
func (q *Queue) Size(ctx context.Context) (int64, error) {
	return q.rdb.ZCard(ctx, keyReviewQueue).Result()
}
