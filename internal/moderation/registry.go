package moderation

import (
	"log"
	"sync"
)

// Registry holds one Filter per room. Filters are immutable, so a wordlist
// change swaps in a freshly built instance; checks racing a swap use
// whichever filter they grabbed, which is acceptable for moderation.
type Registry struct {
	mu       sync.RWMutex
	fallback *Filter
	rooms    map[string]*Filter
	bypass   map[string]struct{}
	opts     []Option
}

// NewRegistry creates a registry whose fallback filter uses the default
// blocklist. opts apply to the fallback and every room filter built later.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		fallback: NewFilter(opts...),
		rooms:    make(map[string]*Filter),
		bypass:   make(map[string]struct{}),
		opts:     opts,
	}
}

// ForRoom returns the room's filter, or the fallback when the room has no
// wordlist of its own.
func (r *Registry) ForRoom(roomID string) *Filter {
	r.mu.RLock()
	f, ok := r.rooms[roomID]
	r.mu.RUnlock()
	if ok {
		return f
	}
	return r.fallback
}

// SetRoom builds and installs a filter for the room's wordlist. An empty
// term list removes the room-specific filter so the room falls back to the
// defaults.
func (r *Registry) SetRoom(roomID string, terms, safeWords []string) {
	if len(terms) == 0 {
		r.DropRoom(roomID)
		return
	}
	opts := r.opts
	if len(safeWords) > 0 {
		opts = append(append([]Option(nil), r.opts...), WithSafeWords(safeWords...))
	}
	f := NewFilterWithTerms(terms, opts...)

	r.mu.Lock()
	r.rooms[roomID] = f
	r.mu.Unlock()
	log.Printf("[moderation] room %s filter rebuilt: %d terms, %d safe words",
		roomID, len(terms), len(safeWords))
}

// SetBypass turns moderation off or back on for a room. Operators mark
// rooms where profanity is acceptable; checks for such rooms must return
// clean without running the filter.
func (r *Registry) SetBypass(roomID string, bypassed bool) {
	r.mu.Lock()
	if bypassed {
		r.bypass[roomID] = struct{}{}
	} else {
		delete(r.bypass, roomID)
	}
	r.mu.Unlock()
}

// Bypassed reports whether moderation is switched off for the room.
func (r *Registry) Bypassed(roomID string) bool {
	r.mu.RLock()
	_, ok := r.bypass[roomID]
	r.mu.RUnlock()
	return ok
}

// DropRoom removes the room-specific filter and clears its bypass flag;
// the room reverts to the moderated defaults.
func (r *Registry) DropRoom(roomID string) {
	r.mu.Lock()
	delete(r.rooms, roomID)
	delete(r.bypass, roomID)
	r.mu.Unlock()
}

// Rooms lists the rooms with a dedicated filter installed.
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		out = append(out, id)
	}
	return out
}
