package wordlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// RoomWordlist holds the moderation vocabulary configured for one room.
// Empty BannedTerms means the room uses the service-wide defaults.
// Unmoderated rooms skip the filter entirely; their messages are delivered
// without a check.
type RoomWordlist struct {
	RoomID      string
	BannedTerms []string
	SafeWords   []string
	Unmoderated bool
	UpdatedAt   time.Time
}

// Store manages room wordlists in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a wordlist store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the wordlist for a room. Returns nil if the room has no
// custom wordlist configured.
func (s *Store) Get(ctx context.Context, roomID string) (*RoomWordlist, error) {
	const query = `
		SELECT banned_terms, safe_words, unmoderated, updated_at
		FROM room_wordlists
		WHERE room_id = $1`

	wl := RoomWordlist{RoomID: roomID}
	err := s.db.QueryRowContext(ctx, query, roomID).Scan(
		pq.Array(&wl.BannedTerms),
		pq.Array(&wl.SafeWords),
		&wl.Unmoderated,
		&wl.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("wordlist: get %s: %w", roomID, err)
	}
	return &wl, nil
}

// Upsert stores the wordlist for a room, replacing any existing entry. The
// unmoderated flag is left untouched; SetUnmoderated owns it.
func (s *Store) Upsert(ctx context.Context, wl *RoomWordlist) error {
	const query = `
		INSERT INTO room_wordlists (room_id, banned_terms, safe_words, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (room_id) DO UPDATE
		SET banned_terms = EXCLUDED.banned_terms,
		    safe_words = EXCLUDED.safe_words,
		    updated_at = NOW()`

	_, err := s.db.ExecContext(ctx, query,
		wl.RoomID,
		pq.Array(wl.BannedTerms),
		pq.Array(wl.SafeWords),
	)
	if err != nil {
		return fmt.Errorf("wordlist: upsert %s: %w", wl.RoomID, err)
	}
	return nil
}

// SetUnmoderated flips the per-room moderation bypass. A room can be
// unmoderated without carrying custom terms, so a missing row is created.
func (s *Store) SetUnmoderated(ctx context.Context, roomID string, unmoderated bool) error {
	const query = `
		INSERT INTO room_wordlists (room_id, unmoderated, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (room_id) DO UPDATE
		SET unmoderated = EXCLUDED.unmoderated,
		    updated_at = NOW()`

	_, err := s.db.ExecContext(ctx, query, roomID, unmoderated)
	if err != nil {
		return fmt.Errorf("wordlist: set unmoderated %s: %w", roomID, err)
	}
	return nil
}

// Delete removes a room's custom wordlist so it falls back to the defaults.
// The unmoderated flag lives in the same row and is dropped with it.
func (s *Store) Delete(ctx context.Context, roomID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM room_wordlists WHERE room_id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("wordlist: delete %s: %w", roomID, err)
	}
	return nil
}

// All returns every configured room wordlist. Called once at startup to
// warm the filter registry.
func (s *Store) All(ctx context.Context) ([]RoomWordlist, error) {
	const query = `
		SELECT room_id, banned_terms, safe_words, unmoderated, updated_at
		FROM room_wordlists
		ORDER BY room_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("wordlist: list all: %w", err)
	}
	defer rows.Close()

	var out []RoomWordlist
	for rows.Next() {
		var wl RoomWordlist
		if err := rows.Scan(&wl.RoomID, pq.Array(&wl.BannedTerms), pq.Array(&wl.SafeWords), &wl.Unmoderated, &wl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("wordlist: scan: %w", err)
		}
		out = append(out, wl)
	}
	return out, rows.Err()
}
