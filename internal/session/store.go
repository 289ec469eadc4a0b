package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionPrefix is the Redis key prefix for all session hashes.
	SessionPrefix = "session:"

	// SessionTTL is the time-to-live for session keys in Redis.
	SessionTTL = 1 * time.Hour

	// Status constants for the session state machine.
	StatusIdle   = "idle"
	StatusInRoom = "in_room"
	StatusMuted  = "muted"
)

// Session represents a user's session state stored in Redis.
type Session struct {
	ID         string `redis:"id"`
	Status     string `redis:"status"`      // idle | in_room | muted
	RoomID     string `redis:"room_id"`     // empty if not in a room
	Nickname   string `redis:"nickname"`    // display name within the room
	Server     string `redis:"server"`      // which WS server instance
	CreatedAt  int64  `redis:"created_at"`  // unix timestamp
	LastActive int64  `redis:"last_active"` // unix timestamp
}

// Store manages session state in Redis.
type Store struct {
	client     *redis.Client
	serverName string // identifier for this WS server instance
}

// NewStore creates a new session store connected to Redis.
func NewStore(redisAddr string, serverName string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	// Verify connection.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session: redis connection failed: %w", err)
	}

	return &Store{client: client, serverName: serverName}, nil
}

// Create stores a new session in Redis with idle status and 1h TTL.
func (s *Store) Create(ctx context.Context, sessionID string) error {
	key := SessionPrefix + sessionID
	now := time.Now().Unix()

	session := map[string]interface{}{
		"id":          sessionID,
		"status":      StatusIdle,
		"room_id":     "",
		"nickname":    "",
		"server":      s.serverName,
		"created_at":  now,
		"last_active": now,
	}

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, session)
	pipe.Expire(ctx, key, SessionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Get retrieves a session from Redis. Returns nil if not found.
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	key := SessionPrefix + sessionID
	var session Session
	err := s.client.HGetAll(ctx, key).Scan(&session)
	if err != nil {
		return nil, err
	}
	if session.ID == "" {
		return nil, nil // not found
	}
	return &session, nil
}

// UpdateStatus updates the session status and refreshes the TTL.
func (s *Store) UpdateStatus(ctx context.Context, sessionID string, status string) error {
	key := SessionPrefix + sessionID
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, "status", status, "last_active", time.Now().Unix())
	pipe.Expire(ctx, key, SessionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// SetNickname stores the display name chosen for (or assigned to) the session.
func (s *Store) SetNickname(ctx context.Context, sessionID string, nickname string) error {
	key := SessionPrefix + sessionID
	return s.client.HSet(ctx, key, "nickname", nickname, "last_active", time.Now().Unix()).Err()
}

// SetRoomID sets the active room for the session and marks status as in_room.
func (s *Store) SetRoomID(ctx context.Context, sessionID string, roomID string) error {
	key := SessionPrefix + sessionID
	return s.client.HSet(ctx, key, "room_id", roomID, "status", StatusInRoom, "last_active", time.Now().Unix()).Err()
}

// ClearRoomID removes the active room and resets status to idle.
func (s *Store) ClearRoomID(ctx context.Context, sessionID string) error {
	key := SessionPrefix + sessionID
	return s.client.HSet(ctx, key, "room_id", "", "status", StatusIdle, "last_active", time.Now().Unix()).Err()
}

// RefreshTTL extends the session's TTL.
func (s *Store) RefreshTTL(ctx context.Context, sessionID string) error {
	key := SessionPrefix + sessionID
	return s.client.Expire(ctx, key, SessionTTL).Err()
}

// Delete removes a session from Redis.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	key := SessionPrefix + sessionID
	return s.client.Del(ctx, key).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client for use by other packages.
func (s *Store) Client() *redis.Client {
	return s.client
}
