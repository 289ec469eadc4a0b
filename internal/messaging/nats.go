// Package messaging provides a NATS client wrapper for pub/sub messaging
// between the chat server and the moderator service. It handles connection
// lifecycle, subject-based subscriptions, and convenience methods for the
// room, moderation and wordlist channels.
package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subject patterns used across SwearGuard services.
const (
	SubjectRoom             = "room"              // + .<room_id> (broadcast fan-out)
	SubjectModeration       = "moderation.check"  // chat server -> moderator
	SubjectModerationResult = "moderation.result" // + .<session_id>
	SubjectWordlistUpdated  = "wordlist.updated"  // + .<room_id>
	SubjectReviewFlagged    = "review.flagged"    // moderator -> review consumers
)

// NATSClient wraps the NATS connection with helper methods for pub/sub.
type NATSClient struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://localhost:4222",
		Name:          "swearguard",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewNATSClient connects to NATS with the given config and returns a ready client.
// It returns an error if the initial connection fails.
func NewNATSClient(config NATSConfig) (*NATSClient, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &NATSClient{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given NATS subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup.
func (c *NATSClient) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// SubscribeToRoom subscribes a session to the room.<roomID> broadcast
// subject. The subscription is keyed by sessionID so multiple sessions on
// the same server can join the same room without overwriting each other.
func (c *NATSClient) SubscribeToRoom(roomID, sessionID string, handler func(data []byte)) error {
	subject := SubjectRoom + "." + roomID
	key := "roomsub:" + sessionID
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[key] = sub
	c.mu.Unlock()
	return nil
}

// UnsubscribeFromRoom drops a session's room subscription, if any.
func (c *NATSClient) UnsubscribeFromRoom(sessionID string) error {
	return c.unsubscribe("roomsub:" + sessionID)
}

// PublishRoomMessage publishes data to the room.<roomID> subject.
func (c *NATSClient) PublishRoomMessage(roomID string, data []byte) error {
	return c.Publish(SubjectRoom+"."+roomID, data)
}

// PublishModerationRequest publishes a moderation check request.
func (c *NATSClient) PublishModerationRequest(data []byte) error {
	return c.Publish(SubjectModeration, data)
}

// SubscribeModerationCheck subscribes to moderation check requests.
func (c *NATSClient) SubscribeModerationCheck(handler func(data []byte)) error {
	return c.Subscribe(SubjectModeration, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// PublishModerationResult publishes a moderation result for a specific session.
func (c *NATSClient) PublishModerationResult(sessionID string, data []byte) error {
	return c.Publish(SubjectModerationResult+"."+sessionID, data)
}

// SubscribeModerationResults subscribes to moderation results for every
// session on this server (wildcard subject).
func (c *NATSClient) SubscribeModerationResults(handler func(data []byte)) error {
	return c.Subscribe(SubjectModerationResult+".*", func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// PublishWordlistUpdated notifies moderator instances that a room's wordlist
// changed and its filter must be rebuilt.
func (c *NATSClient) PublishWordlistUpdated(roomID string, data []byte) error {
	return c.Publish(SubjectWordlistUpdated+"."+roomID, data)
}

// SubscribeWordlistUpdated subscribes to wordlist updates for every room.
func (c *NATSClient) SubscribeWordlistUpdated(handler func(roomID string, data []byte)) error {
	subject := SubjectWordlistUpdated + ".*"
	return c.Subscribe(subject, func(msg *nats.Msg) {
		roomID := msg.Subject[len(SubjectWordlistUpdated)+1:]
		handler(roomID, msg.Data)
	})
}

// PublishReviewFlagged publishes a flagged-message event. Review dashboards
// subscribe to SubjectReviewFlagged directly; this service only produces.
func (c *NATSClient) PublishReviewFlagged(data []byte) error {
	return c.Publish(SubjectReviewFlagged, data)
}

// Close drains all active subscriptions and closes the NATS connection.
func (c *NATSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}

// unsubscribe removes and unsubscribes from a specific subject.
func (c *NATSClient) unsubscribe(subject string) error {
	c.mu.Lock()
	sub, ok := c.subs[subject]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("nats: no subscription for subject %s", subject)
	}
	delete(c.subs, subject)
	c.mu.Unlock()

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("nats unsubscribe %s: %w", subject, err)
	}
	return nil
}
