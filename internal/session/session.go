// Package session tracks anonymous chat sessions in Redis: creation, lookup,
// expiration, and the per-session state the moderation pipeline acts on
// (current room, nickname, idle/in_room/muted status).
package session
