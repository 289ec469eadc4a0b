// Package report provides PostgreSQL-backed storage for moderation
// violations. Each record captures the offending session, the room, the
// matched term, and the recent messages around the violation (for human
// review).
package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// validReasons is the set of allowed reason values, matching the CHECK
// constraint on the violations table.
var validReasons = map[string]bool{
	"blocked_keyword": true,
	"blocked_phrase":  true,
	"spam_pattern":    true,
	"manual_flag":     true,
}

// Store manages violation records in PostgreSQL.
type Store struct {
	db *sql.DB
}

// Violation represents a single moderation violation to be persisted.
type Violation struct {
	ID        int64
	SessionID string
	RoomID    string
	MessageID string
	Reason    string
	Term      string
	Context   []MessageEntry // recent messages from the room buffer
	CreatedAt time.Time
}

// MessageEntry is one message in the conversation snapshot attached to a
// violation.
type MessageEntry struct {
	From string `json:"from"`
	Text string `json:"text"`
	Ts   int64  `json:"ts"`
}

// NewStore creates a new violation store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a violation into PostgreSQL.
// Context messages are marshalled to JSONB. The reason is validated against
// the allowed set before insertion.
func (s *Store) Create(ctx context.Context, v *Violation) error {
	if !validReasons[v.Reason] {
		return fmt.Errorf("report: invalid reason %q", v.Reason)
	}

	// pq encodes []byte as bytea, which Postgres rejects for jsonb; send the
	// document as text instead. NULL when there is no snapshot.
	var contextJSON sql.NullString
	if len(v.Context) > 0 {
		b, err := json.Marshal(v.Context)
		if err != nil {
			return fmt.Errorf("report: marshal context: %w", err)
		}
		contextJSON = sql.NullString{String: string(b), Valid: true}
	}

	const query = `
		INSERT INTO violations (session_id, room_id, message_id, reason, term, context)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		v.SessionID,
		v.RoomID,
		v.MessageID,
		v.Reason,
		v.Term,
		contextJSON,
	)
	if err != nil {
		return fmt.Errorf("report: insert: %w", err)
	}
	return nil
}

// CountRecent returns the number of violations recorded against a session
// within the given time window. The mute escalation path keeps its own
// Redis counter; this query backs the admin view.
func (s *Store) CountRecent(ctx context.Context, sessionID string, window time.Duration) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM violations
		WHERE session_id = $1
		  AND created_at >= NOW() - $2::interval`

	var count int
	err := s.db.QueryRowContext(ctx, query, sessionID, window.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("report: count recent: %w", err)
	}
	return count, nil
}

// ListByRoom returns the most recent violations for a room, newest first.
func (s *Store) ListByRoom(ctx context.Context, roomID string, limit int) ([]Violation, error) {
	const query = `
		SELECT id, session_id, room_id, message_id, reason, term, COALESCE(context, 'null'), created_at
		FROM violations
		WHERE room_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("report: list by room: %w", err)
	}
	defer rows.Close()

	var out []Violation
	for rows.Next() {
		var v Violation
		var contextJSON []byte
		if err := rows.Scan(&v.ID, &v.SessionID, &v.RoomID, &v.MessageID, &v.Reason, &v.Term, &contextJSON, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("report: scan: %w", err)
		}
		if len(contextJSON) > 0 {
			if err := json.Unmarshal(contextJSON, &v.Context); err != nil {
				return nil, fmt.Errorf("report: unmarshal context: %w", err)
			}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
