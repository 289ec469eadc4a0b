package review

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/swearguard/swearguard/internal/messaging"
)

// FlaggedEvent is the payload published via NATS review.flagged when a
// message enters the review queue.
type FlaggedEvent struct {
	ItemID    string `json:"item_id"`
	SessionID string `json:"session_id"`
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
	Reason    string `json:"reason"`
	Term      string `json:"term,omitempty"`
}

// PublishFlagged publishes a flagged-message event for review dashboards and
// other consumers.
func PublishFlagged(nats *messaging.NATSClient, item *Item) error {
	event := FlaggedEvent{
		ItemID:    item.ID,
		SessionID: item.SessionID,
		RoomID:    item.RoomID,
		MessageID: item.MessageID,
		Reason:    item.Reason,
		Term:      item.Term,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("review: marshal flagged event: %w", err)
	}
	if err := nats.PublishReviewFlagged(data); err != nil {
		return fmt.Errorf("review: publish flagged event: %w", err)
	}

	log.Printf("[review] flagged item=%s room=%s session=%s reason=%s",
		item.ID, item.RoomID, item.SessionID, item.Reason)
	return nil
}
