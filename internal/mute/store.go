// Package mute provides session-based mute management backed by Redis.
// Mute records are stored as simple key-value pairs with TTL-based expiry:
//
//	Key:   mute:<session_id>
//	Value: <reason>
//	TTL:   mute duration
package mute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// MutePrefix is the Redis key prefix for mute records.
	MutePrefix = "mute:"

	// OffensesPrefix is the Redis key prefix for violation counters.
	OffensesPrefix = "offenses:"

	// Escalating mute durations.
	Mute15Min  = 15 * time.Minute // first mute
	Mute1Hour  = 1 * time.Hour    // second mute
	Mute24Hour = 24 * time.Hour   // third and later mutes

	// OffensesTTL is how long the violation counter lives in Redis.
	// After 24h without new violations the counter resets to zero.
	OffensesTTL = 24 * time.Hour

	// WarnLimit is the number of violations tolerated before the first
	// mute. Violations up to this count only produce warnings.
	WarnLimit = 2
)

// Store manages mute records in Redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a new mute store using the provided Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// IsMuted checks if a session is currently muted.
// Returns (isMuted, remainingSeconds, reason, error).
// If the session is not muted, isMuted is false and the other
// return values are zero/empty. Redis errors are returned so callers
// can decide how to handle them (the recommended policy is fail-open).
func (s *Store) IsMuted(ctx context.Context, sessionID string) (bool, int, string, error) {
	key := MutePrefix + sessionID

	reason, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, 0, "", nil
	}
	if err != nil {
		return false, 0, "", err
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		// We know the mute exists but can't read the TTL. Report muted
		// with 0 remaining rather than swallowing the mute.
		return true, 0, reason, nil
	}

	remaining := 0
	if ttl > 0 {
		remaining = int(ttl.Seconds())
	}

	return true, remaining, reason, nil
}

// Mute sets a mute on a session with the given duration and reason.
// The mute automatically expires after the specified duration.
func (s *Store) Mute(ctx context.Context, sessionID string, duration time.Duration, reason string) error {
	key := MutePrefix + sessionID
	return s.client.Set(ctx, key, reason, duration).Err()
}

// Unmute removes a mute from a session immediately.
func (s *Store) Unmute(ctx context.Context, sessionID string) error {
	key := MutePrefix + sessionID
	return s.client.Del(ctx, key).Err()
}

// ---------------------------------------------------------------------------
// Escalation
// ---------------------------------------------------------------------------

// escalationDuration returns the mute duration for a given count of mutes
// beyond the warning limit.
func escalationDuration(muteCount int) time.Duration {
	switch {
	case muteCount <= 1:
		return Mute15Min
	case muteCount == 2:
		return Mute1Hour
	default:
		return Mute24Hour
	}
}

// GetOffenseCount returns the current violation counter for a session.
// Returns 0 if the key does not exist (no violations recorded or counter
// expired).
func (s *Store) GetOffenseCount(ctx context.Context, sessionID string) (int, error) {
	key := OffensesPrefix + sessionID
	val, err := s.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

// RecordViolation increments the violation counter for a session. Violations
// up to WarnLimit only warn; beyond that a mute is applied whose duration
// escalates with the number of mutes:
//
//	1st mute  -> 15 minutes
//	2nd mute  -> 1 hour
//	3rd+ mute -> 24 hours
//
// The violation counter has a 24h TTL set on first increment, so counters
// naturally expire if there is no new activity.
//
// Returns (muted, duration, offenseCount, error). When muted is false the
// caller should send a warning; offenseCount tells it which one this is.
func (s *Store) RecordViolation(ctx context.Context, sessionID string, reason string) (bool, time.Duration, int, error) {
	key := OffensesPrefix + sessionID

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("mute: violation incr: %w", err)
	}

	// Set TTL only on first increment so the window doesn't slide.
	if count == 1 {
		if err := s.client.Expire(ctx, key, OffensesTTL).Err(); err != nil {
			return false, 0, 0, fmt.Errorf("mute: violation expire: %w", err)
		}
	}

	if int(count) <= WarnLimit {
		return false, 0, int(count), nil
	}

	duration := escalationDuration(int(count) - WarnLimit)
	if err := s.Mute(ctx, sessionID, duration, reason); err != nil {
		return false, 0, int(count), fmt.Errorf("mute: violation mute: %w", err)
	}

	return true, duration, int(count), nil
}
