package chat

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	RoomPrefix    = "room:"
	MembersSuffix = ":members"
	RoomTTL       = 24 * time.Hour

	// DefaultMaxMembers caps room size. Join is rejected at capacity.
	DefaultMaxMembers = 200
)

// Room represents a chat room's persistent metadata in Redis.
type Room struct {
	RoomID     string
	Name       string
	CreatedAt  int64
	MaxMembers int
}

// Store manages room membership state in Redis. Membership changes go
// through a Lua script so the capacity check and the set update are atomic
// across server instances.
type Store struct {
	rdb        *redis.Client
	joinScript *redis.Script
}

// NewStore creates a new room store backed by Redis.
func NewStore(rdb *redis.Client) *Store {
	return &Store{
		rdb:        rdb,
		joinScript: redis.NewScript(joinRoomLua),
	}
}

// Ensure creates the room hash if it does not exist yet and refreshes its TTL.
// Rooms are created lazily on first join.
func (s *Store) Ensure(ctx context.Context, roomID, name string) error {
	key := RoomPrefix + roomID
	pipe := s.rdb.Pipeline()
	pipe.HSetNX(ctx, key, "name", name)
	pipe.HSetNX(ctx, key, "created_at", time.Now().Unix())
	pipe.HSetNX(ctx, key, "max_members", DefaultMaxMembers)
	pipe.Expire(ctx, key, RoomTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Get retrieves room metadata. Returns nil if the room does not exist.
func (s *Store) Get(ctx context.Context, roomID string) (*Room, error) {
	key := RoomPrefix + roomID
	result, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	createdAt, _ := strconv.ParseInt(result["created_at"], 10, 64)
	maxMembers, _ := strconv.Atoi(result["max_members"])

	return &Room{
		RoomID:     roomID,
		Name:       result["name"],
		CreatedAt:  createdAt,
		MaxMembers: maxMembers,
	}, nil
}

// Join atomically adds a session to the room's member set. Returns:
//
//	>=1 = member count after joining
//	 0  = already a member (count unchanged on the caller's side)
//	-1  = room not found
//	-2  = room at capacity
func (s *Store) Join(ctx context.Context, roomID, sessionID string) (int, error) {
	key := RoomPrefix + roomID
	membersKey := key + MembersSuffix
	result, err := s.joinScript.Run(ctx, s.rdb, []string{key, membersKey}, sessionID).Int()
	if err != nil {
		return -1, fmt.Errorf("chat: join room: %w", err)
	}
	return result, nil
}

// Leave removes a session from the room's member set.
func (s *Store) Leave(ctx context.Context, roomID, sessionID string) error {
	return s.rdb.SRem(ctx, RoomPrefix+roomID+MembersSuffix, sessionID).Err()
}

// IsMember reports whether the session is currently in the room.
func (s *Store) IsMember(ctx context.Context, roomID, sessionID string) (bool, error) {
	return s.rdb.SIsMember(ctx, RoomPrefix+roomID+MembersSuffix, sessionID).Result()
}

// MemberCount returns the number of sessions in the room.
func (s *Store) MemberCount(ctx context.Context, roomID string) (int64, error) {
	return s.rdb.SCard(ctx, RoomPrefix+roomID+MembersSuffix).Result()
}

// CountActive counts rooms that currently have a member set. Member sets
// expire with their room, so this approximates rooms with recent activity.
func (s *Store) CountActive(ctx context.Context) (int, error) {
	var count int
	iter := s.rdb.Scan(ctx, 0, RoomPrefix+"*"+MembersSuffix, 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count, iter.Err()
}

// Delete removes a room and its member set.
func (s *Store) Delete(ctx context.Context, roomID string) error {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, RoomPrefix+roomID)
	pipe.Del(ctx, RoomPrefix+roomID+MembersSuffix)
	_, err := pipe.Exec(ctx)
	return err
}

// joinRoomLua atomically checks room existence and capacity, then adds the
// session to the member set. The member set inherits the room TTL so orphaned
// sets do not accumulate.
const joinRoomLua = `
local room_key = KEYS[1]
local members_key = KEYS[2]
local session_id = ARGV[1]

if redis.call('EXISTS', room_key) == 0 then return -1 end

if redis.call('SISMEMBER', members_key, session_id) == 1 then return 0 end

local max = tonumber(redis.call('HGET', room_key, 'max_members')) or 200
local count = redis.call('SCARD', members_key)
if count >= max then return -2 end

redis.call('SADD', members_key, session_id)
local ttl = redis.call('TTL', room_key)
if ttl > 0 then
    redis.call('EXPIRE', members_key, ttl)
end

return count + 1
`
