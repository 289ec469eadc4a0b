package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/swearguard/swearguard/internal/messaging"
	"github.com/swearguard/swearguard/internal/metrics"
	"github.com/swearguard/swearguard/internal/moderation"
	"github.com/swearguard/swearguard/internal/report"
	"github.com/swearguard/swearguard/internal/review"
	"github.com/swearguard/swearguard/internal/wordlist"
)

// adminAPI serves the operator endpoints for wordlist management, the
// violation log, and the review queue.
type adminAPI struct {
	wordlists  *wordlist.Store
	violations *report.Store
	reviews    *review.Queue
	registry   *moderation.Registry
	nats       *messaging.NATSClient
}

func (a *adminAPI) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /rooms/{room}/wordlist", a.handleGetWordlist)
	mux.HandleFunc("PUT /rooms/{room}/wordlist", a.handlePutWordlist)
	mux.HandleFunc("DELETE /rooms/{room}/wordlist", a.handleDeleteWordlist)
	mux.HandleFunc("PUT /rooms/{room}/moderation", a.handleSetModeration)
	mux.HandleFunc("GET /rooms/{room}/violations", a.handleListViolations)
	mux.HandleFunc("POST /rooms/{room}/flag", a.handleManualFlag)
	mux.HandleFunc("GET /review/next", a.handleReviewNext)
	mux.HandleFunc("GET /review/pending", a.handleReviewPending)
	mux.HandleFunc("POST /review/{item}/resolve", a.handleReviewResolve)
	return mux
}

func (a *adminAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type wordlistResponse struct {
	RoomID      string   `json:"room_id"`
	BannedTerms []string `json:"banned_terms"`
	SafeWords   []string `json:"safe_words"`
	Unmoderated bool     `json:"unmoderated"`
	UpdatedAt   int64    `json:"updated_at,omitempty"`
}

func (a *adminAPI) handleGetWordlist(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")
	ctx, cancel := reqContext(r)
	defer cancel()

	wl, err := a.wordlists.Get(ctx, roomID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		log.Printf("[admin] get wordlist room=%s: %v", roomID, err)
		return
	}
	if wl == nil {
		writeError(w, http.StatusNotFound, "room has no wordlist")
		return
	}
	writeJSON(w, http.StatusOK, wordlistResponse{
		RoomID:      wl.RoomID,
		BannedTerms: wl.BannedTerms,
		SafeWords:   wl.SafeWords,
		Unmoderated: wl.Unmoderated,
		UpdatedAt:   wl.UpdatedAt.Unix(),
	})
}

// handlePutWordlist replaces a room's wordlist. Terms arrive as free text and
// go through the same normalization as chat commands: lowercased, specials
// stripped, split on commas and whitespace.
func (a *adminAPI) handlePutWordlist(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")

	var body struct {
		BannedTerms string `json:"banned_terms"`
		SafeWords   string `json:"safe_words"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	terms := wordlist.SplitTerms(body.BannedTerms)
	safeWords := wordlist.SplitTerms(body.SafeWords)

	ctx, cancel := reqContext(r)
	defer cancel()
	wl := &wordlist.RoomWordlist{
		RoomID:      roomID,
		BannedTerms: terms,
		SafeWords:   safeWords,
	}
	if err := a.wordlists.Upsert(ctx, wl); err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		log.Printf("[admin] put wordlist room=%s: %v", roomID, err)
		return
	}

	// Upsert leaves the bypass flag alone; read it back so the broadcast
	// carries the room's full settings.
	unmoderated := false
	if stored, err := a.wordlists.Get(ctx, roomID); err == nil && stored != nil {
		unmoderated = stored.Unmoderated
	}

	a.registry.SetRoom(roomID, terms, safeWords)
	a.registry.SetBypass(roomID, unmoderated)
	metrics.WordlistRebuildsTotal.Inc()
	a.publishUpdate(roomID, terms, safeWords, unmoderated)

	writeJSON(w, http.StatusOK, wordlistResponse{
		RoomID:      roomID,
		BannedTerms: terms,
		SafeWords:   safeWords,
		Unmoderated: unmoderated,
	})
}

func (a *adminAPI) handleDeleteWordlist(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")
	ctx, cancel := reqContext(r)
	defer cancel()

	if err := a.wordlists.Delete(ctx, roomID); err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		log.Printf("[admin] delete wordlist room=%s: %v", roomID, err)
		return
	}
	a.registry.DropRoom(roomID)
	a.publishUpdate(roomID, nil, nil, false)
	w.WriteHeader(http.StatusNoContent)
}

// handleSetModeration turns the filter off or back on for a room. Operators
// use this for rooms where profanity is acceptable; messages there are
// delivered without a check.
func (a *adminAPI) handleSetModeration(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")

	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}
	unmoderated := !*body.Enabled

	ctx, cancel := reqContext(r)
	defer cancel()
	if err := a.wordlists.SetUnmoderated(ctx, roomID, unmoderated); err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		log.Printf("[admin] set moderation room=%s: %v", roomID, err)
		return
	}
	a.registry.SetBypass(roomID, unmoderated)

	var terms, safeWords []string
	if stored, err := a.wordlists.Get(ctx, roomID); err == nil && stored != nil {
		terms, safeWords = stored.BannedTerms, stored.SafeWords
	}
	a.publishUpdate(roomID, terms, safeWords, unmoderated)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room_id":            roomID,
		"moderation_enabled": *body.Enabled,
	})
}

// publishUpdate tells the other moderator instances to rebuild the room's
// filter. Local state is already updated; a publish failure only delays the
// other instances until their next restart.
func (a *adminAPI) publishUpdate(roomID string, terms, safeWords []string, unmoderated bool) {
	event := wordlist.UpdateEvent{BannedTerms: terms, SafeWords: safeWords, Unmoderated: unmoderated}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := a.nats.PublishWordlistUpdated(roomID, data); err != nil {
		log.Printf("[admin] publish wordlist update room=%s: %v", roomID, err)
	}
}

type violationResponse struct {
	ID        int64                 `json:"id"`
	SessionID string                `json:"session_id"`
	MessageID string                `json:"message_id"`
	Reason    string                `json:"reason"`
	Term      string                `json:"term"`
	Context   []report.MessageEntry `json:"context,omitempty"`
	CreatedAt int64                 `json:"created_at"`
}

func (a *adminAPI) handleListViolations(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	ctx, cancel := reqContext(r)
	defer cancel()
	violations, err := a.violations.ListByRoom(ctx, roomID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		log.Printf("[admin] list violations room=%s: %v", roomID, err)
		return
	}

	out := make([]violationResponse, 0, len(violations))
	for _, v := range violations {
		out = append(out, violationResponse{
			ID:        v.ID,
			SessionID: v.SessionID,
			MessageID: v.MessageID,
			Reason:    v.Reason,
			Term:      v.Term,
			Context:   v.Context,
			CreatedAt: v.CreatedAt.Unix(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room_id":    roomID,
		"violations": out,
	})
}

// handleManualFlag lets an operator flag a message the filter missed. The
// violation is recorded with reason manual_flag and the message joins the
// review queue.
func (a *adminAPI) handleManualFlag(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")

	var body struct {
		SessionID string `json:"session_id"`
		MessageID string `json:"message_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.SessionID == "" || body.MessageID == "" {
		writeError(w, http.StatusBadRequest, "session_id and message_id are required")
		return
	}

	ctx, cancel := reqContext(r)
	defer cancel()

	v := &report.Violation{
		SessionID: body.SessionID,
		RoomID:    roomID,
		MessageID: body.MessageID,
		Reason:    "manual_flag",
		Context: []report.MessageEntry{
			{From: body.SessionID, Text: body.Text, Ts: time.Now().Unix()},
		},
	}
	if err := a.violations.Create(ctx, v); err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		log.Printf("[admin] manual flag room=%s: %v", roomID, err)
		return
	}

	item := &review.Item{
		SessionID: body.SessionID,
		RoomID:    roomID,
		MessageID: body.MessageID,
		Reason:    "manual_flag",
		Text:      body.Text,
	}
	if err := a.reviews.Enqueue(ctx, item); err != nil {
		writeError(w, http.StatusInternalServerError, "queue error")
		log.Printf("[admin] enqueue manual flag room=%s: %v", roomID, err)
		return
	}
	if err := review.PublishFlagged(a.nats, item); err != nil {
		log.Printf("[admin] publish flagged event: %v", err)
	}
	writeJSON(w, http.StatusCreated, map[string]string{"item_id": item.ID})
}

type reviewItemResponse struct {
	ID        string  `json:"id"`
	SessionID string  `json:"session_id"`
	RoomID    string  `json:"room_id"`
	MessageID string  `json:"message_id"`
	Reason    string  `json:"reason"`
	Term      string  `json:"term,omitempty"`
	Text      string  `json:"text"`
	FlaggedAt float64 `json:"flagged_at"`
}

func (a *adminAPI) handleReviewNext(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqContext(r)
	defer cancel()

	item, err := a.reviews.Next(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "queue error")
		log.Printf("[admin] review next: %v", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "review queue is empty")
		return
	}
	writeJSON(w, http.StatusOK, reviewItemResponse{
		ID:        item.ID,
		SessionID: item.SessionID,
		RoomID:    item.RoomID,
		MessageID: item.MessageID,
		Reason:    item.Reason,
		Term:      item.Term,
		Text:      item.Text,
		FlaggedAt: item.FlaggedAt,
	})
}

func (a *adminAPI) handleReviewPending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqContext(r)
	defer cancel()

	ids, err := a.reviews.Pending(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "queue error")
		log.Printf("[admin] review pending: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(ids),
		"items": ids,
	})
}

func (a *adminAPI) handleReviewResolve(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("item")

	var body struct {
		Resolution string `json:"resolution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := reqContext(r)
	defer cancel()
	if err := a.reviews.Resolve(ctx, itemID, body.Resolution); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if size, err := a.reviews.Size(ctx); err == nil {
		metrics.ReviewQueueSize.Set(float64(size))
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"item_id":    itemID,
		"resolution": body.Resolution,
	})
}

func reqContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
