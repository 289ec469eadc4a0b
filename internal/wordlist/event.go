package wordlist

// UpdateEvent is the payload published on wordlist.updated.<room_id> when a
// room's moderation settings change. Subscribers rebuild the room's filter
// from the payload without a database round trip; an event with no banned
// terms drops the room back to the default blocklist. Unmoderated carries
// the room's bypass flag so every instance applies it.
type UpdateEvent struct {
	BannedTerms []string `json:"banned_terms"`
	SafeWords   []string `json:"safe_words"`
	Unmoderated bool     `json:"unmoderated,omitempty"`
}
