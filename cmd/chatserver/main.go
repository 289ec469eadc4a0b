package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/swearguard/swearguard/internal/chat"
	"github.com/swearguard/swearguard/internal/messaging"
	"github.com/swearguard/swearguard/internal/metrics"
	"github.com/swearguard/swearguard/internal/moderation"
	"github.com/swearguard/swearguard/internal/mute"
	"github.com/swearguard/swearguard/internal/protocol"
	"github.com/swearguard/swearguard/internal/ratelimit"
	"github.com/swearguard/swearguard/internal/session"
	"github.com/swearguard/swearguard/internal/ws"
)

// verdictTimeout bounds how long a message waits for a moderation verdict.
// Past the deadline the message is delivered (fail open) so a moderator
// outage does not silence every room.
const verdictTimeout = 2 * time.Second

// pendingMessage is a message held back until the moderator returns a verdict.
type pendingMessage struct {
	roomID    string
	sessionID string
	nickname  string
	text      string
	ts        int64
	heldAt    time.Time
}

// pendingStore tracks messages awaiting moderation verdicts, keyed by
// message ID.
type pendingStore struct {
	mu    sync.Mutex
	items map[string]pendingMessage
}

func newPendingStore() *pendingStore {
	return &pendingStore{items: make(map[string]pendingMessage)}
}

func (p *pendingStore) put(id string, msg pendingMessage) {
	p.mu.Lock()
	p.items[id] = msg
	p.mu.Unlock()
}

func (p *pendingStore) take(id string) (pendingMessage, bool) {
	p.mu.Lock()
	msg, ok := p.items[id]
	if ok {
		delete(p.items, id)
	}
	p.mu.Unlock()
	return msg, ok
}

// expired removes and returns all messages held longer than the deadline.
func (p *pendingStore) expired(deadline time.Duration) map[string]pendingMessage {
	now := time.Now()
	out := make(map[string]pendingMessage)
	p.mu.Lock()
	for id, msg := range p.items {
		if now.Sub(msg.heldAt) > deadline {
			out[id] = msg
			delete(p.items, id)
		}
	}
	p.mu.Unlock()
	return out
}

func main() {
	config := ws.DefaultServerConfig()

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		config.ListenAddr = addr
	}
	if v := os.Getenv("WORKER_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.WorkerPoolSize = n
		}
	}
	if v := os.Getenv("MAX_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.MaxConnections = n
		}
	}
	if v := os.Getenv("READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.ReadTimeout = d
		}
	}
	if v := os.Getenv("WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.WriteTimeout = d
		}
	}

	// --- NATS ---
	natsConfig := messaging.DefaultNATSConfig()
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		natsConfig.URL = natsURL
	}
	natsConfig.Name = "swearguard-chatserver"
	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	// --- Redis ---
	redisAddr := "localhost:6379"
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		redisAddr = v
	}
	serverName, _ := os.Hostname()
	if v := os.Getenv("SERVER_NAME"); v != "" {
		serverName = v
	}
	if serverName == "" {
		serverName = "chat-1"
	}

	sessionStore, err := session.NewStore(redisAddr, serverName)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}

	roomStore := chat.NewStore(sessionStore.Client())
	muteStore := mute.NewStore(sessionStore.Client())
	limiter := ratelimit.NewLimiter(sessionStore.Client())
	buffer := chat.NewMessageBuffer()
	pending := newPendingStore()

	log.Printf("SwearGuard chat server starting")
	log.Printf("  listen_addr:     %s", config.ListenAddr)
	log.Printf("  worker_pool:     %d", config.WorkerPoolSize)
	log.Printf("  max_connections: %d", config.MaxConnections)
	log.Printf("  read_timeout:    %s", config.ReadTimeout)
	log.Printf("  write_timeout:   %s", config.WriteTimeout)
	log.Printf("  nats_url:        %s", natsConfig.URL)
	log.Printf("  redis_addr:      %s", redisAddr)
	log.Printf("  server_name:     %s", serverName)

	// Declare server early so closures can capture it.
	var server *ws.Server

	// deliver publishes an approved message to the room subject and records
	// it in the replay buffer.
	deliver := func(messageID string, msg pendingMessage) {
		event := chat.RoomEvent{
			Type:      "message",
			MessageID: messageID,
			From:      msg.nickname,
			Text:      msg.text,
			Ts:        msg.ts,
		}
		data, _ := json.Marshal(event)
		if err := natsClient.PublishRoomMessage(msg.roomID, data); err != nil {
			log.Printf("[deliver] publish room=%s failed: %v", msg.roomID, err)
			return
		}
		buffer.Add(msg.roomID, chat.BufferedMessage{
			MessageID: messageID,
			From:      msg.nickname,
			Text:      msg.text,
			Ts:        msg.ts,
		})
		metrics.MessagesTotal.WithLabelValues("delivered").Inc()
	}

	// subscribeToRoomNATS forwards room events to the local client, skipping
	// echoes of the client's own messages (the sender already rendered them).
	subscribeToRoomNATS := func(localSID, roomID, nickname string) {
		if err := natsClient.SubscribeToRoom(roomID, localSID, func(data []byte) {
			var event chat.RoomEvent
			if err := json.Unmarshal(data, &event); err != nil {
				log.Printf("[room-sub] unmarshal error for session=%s: %v", localSID, err)
				return
			}

			switch event.Type {
			case "message":
				resp, _ := protocol.NewServerMessage(protocol.TypeMessage, protocol.ServerChatMsg{
					MessageID: event.MessageID,
					RoomID:    roomID,
					From:      event.From,
					Text:      event.Text,
					Ts:        event.Ts,
				})
				if err := server.SendMessage(localSID, resp); err != nil {
					log.Printf("[room-sub] send message to %s failed: %v", localSID, err)
				}

			case "typing":
				if event.From == nickname {
					return // don't echo the sender's own indicator
				}
				resp, _ := protocol.NewServerMessage(protocol.TypeTyping, protocol.ServerTypingMsg{
					RoomID:   roomID,
					From:     event.From,
					IsTyping: event.IsTyping,
				})
				server.SendMessage(localSID, resp)
			}
		}); err != nil {
			log.Printf("[room-sub] subscribe room=%s for session=%s FAILED: %v", roomID, localSID, err)
		}
	}

	dispatcher := ws.NewDispatcher()

	// -----------------------------------------------------------------------
	// join_room — enter a chat room
	// -----------------------------------------------------------------------
	dispatcher.OnJoinRoom = func(conn *ws.Connection, joinMsg protocol.JoinRoomMsg) {
		sid := conn.ID
		ctx := context.Background()

		if joinMsg.RoomID == "" {
			errResp, _ := protocol.NewServerMessage(protocol.TypeError, protocol.ErrorMsg{
				Code: "invalid_room", Message: "room_id is required",
			})
			conn.WriteMessage(errResp)
			return
		}
		if err := chat.ValidateNickname(joinMsg.Nickname); err != nil {
			errResp, _ := protocol.NewServerMessage(protocol.TypeError, protocol.ErrorMsg{
				Code: "invalid_nickname", Message: err.Error(),
			})
			conn.WriteMessage(errResp)
			return
		}

		allowed, _ := limiter.Allow(ctx, sid, ratelimit.RuleJoin)
		if !allowed {
			resp, _ := protocol.NewServerMessage(protocol.TypeRateLimited, protocol.RateLimitedMsg{
				RetryAfter: int(ratelimit.RuleJoin.Window.Seconds()),
			})
			conn.WriteMessage(resp)
			return
		}

		// Leave the previous room first, if any.
		if prevRoom, _ := conn.Room(); prevRoom != "" {
			roomStore.Leave(ctx, prevRoom, sid)
			_ = natsClient.UnsubscribeFromRoom(sid)
		}

		nickname := joinMsg.Nickname
		if nickname == "" {
			nickname = "anon-" + sid[:8]
		}

		if err := roomStore.Ensure(ctx, joinMsg.RoomID, joinMsg.RoomID); err != nil {
			log.Printf("join_room: ensure room=%s: %v", joinMsg.RoomID, err)
		}
		count, err := roomStore.Join(ctx, joinMsg.RoomID, sid)
		if err != nil || count < 0 {
			code := "join_failed"
			message := "could not join room"
			if count == -2 {
				code, message = "room_full", "room is at capacity"
			}
			errResp, _ := protocol.NewServerMessage(protocol.TypeError, protocol.ErrorMsg{
				Code: code, Message: message,
			})
			conn.WriteMessage(errResp)
			return
		}

		conn.SetRoom(joinMsg.RoomID, nickname)
		sessionStore.SetNickname(ctx, sid, nickname)
		sessionStore.SetRoomID(ctx, sid, joinMsg.RoomID)

		subscribeToRoomNATS(sid, joinMsg.RoomID, nickname)

		members, _ := roomStore.MemberCount(ctx, joinMsg.RoomID)
		resp, _ := protocol.NewServerMessage(protocol.TypeRoomJoined, protocol.RoomJoinedMsg{
			RoomID:   joinMsg.RoomID,
			Nickname: nickname,
			Members:  int(members),
		})
		conn.WriteMessage(resp)

		// Replay the recent backlog to the new member.
		for _, m := range buffer.Get(joinMsg.RoomID) {
			replay, _ := protocol.NewServerMessage(protocol.TypeMessage, protocol.ServerChatMsg{
				MessageID: m.MessageID,
				RoomID:    joinMsg.RoomID,
				From:      m.From,
				Text:      m.Text,
				Ts:        m.Ts,
			})
			conn.WriteMessage(replay)
		}

		log.Printf("join_room session=%s room=%s nickname=%s members=%d", sid, joinMsg.RoomID, nickname, members)
	}

	// -----------------------------------------------------------------------
	// leave_room — leave the current room
	// -----------------------------------------------------------------------
	dispatcher.OnLeaveRoom = func(conn *ws.Connection, leaveMsg protocol.LeaveRoomMsg) {
		sid := conn.ID
		ctx := context.Background()

		roomID, _ := conn.Room()
		if roomID == "" || (leaveMsg.RoomID != "" && leaveMsg.RoomID != roomID) {
			return
		}

		roomStore.Leave(ctx, roomID, sid)
		_ = natsClient.UnsubscribeFromRoom(sid)
		conn.SetRoom("", "")
		sessionStore.ClearRoomID(ctx, sid)

		resp, _ := protocol.NewServerMessage(protocol.TypeRoomLeft, protocol.RoomLeftMsg{RoomID: roomID})
		conn.WriteMessage(resp)

		log.Printf("leave_room session=%s room=%s", sid, roomID)
	}

	// -----------------------------------------------------------------------
	// message — send a chat message through moderation
	// -----------------------------------------------------------------------
	dispatcher.OnChat = func(conn *ws.Connection, chatMsg protocol.ChatMsg) {
		sid := conn.ID
		ctx := context.Background()

		roomID, nickname := conn.Room()
		if roomID == "" || (chatMsg.RoomID != "" && chatMsg.RoomID != roomID) {
			errResp, _ := protocol.NewServerMessage(protocol.TypeError, protocol.ErrorMsg{
				Code: "not_in_room", Message: "join a room first",
			})
			conn.WriteMessage(errResp)
			return
		}

		if err := chat.ValidateMessage(chatMsg.Text); err != nil {
			errResp, _ := protocol.NewServerMessage(protocol.TypeError, protocol.ErrorMsg{
				Code: "invalid_message", Message: err.Error(),
			})
			conn.WriteMessage(errResp)
			return
		}

		// Muted sessions cannot post.
		if muted, remaining, reason, _ := muteStore.IsMuted(ctx, sid); muted {
			resp, _ := protocol.NewServerMessage(protocol.TypeMuted, protocol.MutedMsg{
				Duration: remaining,
				Reason:   reason,
			})
			conn.WriteMessage(resp)
			metrics.MessagesTotal.WithLabelValues("muted").Inc()
			return
		}

		allowed, _ := limiter.Allow(ctx, sid, ratelimit.RuleMessage)
		if !allowed {
			resp, _ := protocol.NewServerMessage(protocol.TypeRateLimited, protocol.RateLimitedMsg{
				RetryAfter: int(ratelimit.RuleMessage.Window.Seconds()),
			})
			conn.WriteMessage(resp)
			metrics.MessagesTotal.WithLabelValues("rate_limited").Inc()
			return
		}

		messageID := uuid.New().String()
		pending.put(messageID, pendingMessage{
			roomID:    roomID,
			sessionID: sid,
			nickname:  nickname,
			text:      chatMsg.Text,
			ts:        time.Now().Unix(),
			heldAt:    time.Now(),
		})

		req := moderation.Request{
			MessageID: messageID,
			SessionID: sid,
			RoomID:    roomID,
			Text:      chatMsg.Text,
			Ts:        time.Now().Unix(),
		}
		data, _ := json.Marshal(req)
		if err := natsClient.PublishModerationRequest(data); err != nil {
			log.Printf("[message] moderation publish failed, delivering unchecked: %v", err)
			if held, ok := pending.take(messageID); ok {
				deliver(messageID, held)
			}
		}
	}

	// -----------------------------------------------------------------------
	// typing — relay typing indicator to the room
	// -----------------------------------------------------------------------
	dispatcher.OnTyping = func(conn *ws.Connection, typingMsg protocol.TypingMsg) {
		roomID, nickname := conn.Room()
		if roomID == "" {
			return
		}

		event := chat.RoomEvent{
			Type:     "typing",
			From:     nickname,
			IsTyping: typingMsg.IsTyping,
		}
		data, _ := json.Marshal(event)
		natsClient.PublishRoomMessage(roomID, data)
	}

	server = ws.NewServer(config, sessionStore, dispatcher.Dispatch)

	// Moderation verdicts arrive on a wildcard subject; each verdict resolves
	// one held message.
	handleVerdict := func(data []byte) {
		var result moderation.Result
		if err := json.Unmarshal(data, &result); err != nil {
			log.Printf("[verdict] unmarshal error: %v", err)
			return
		}

		held, ok := pending.take(result.MessageID)
		if !ok {
			return // expired or handled elsewhere
		}

		if !result.Blocked {
			deliver(result.MessageID, held)
			return
		}

		metrics.MessagesTotal.WithLabelValues("blocked").Inc()

		blockedMsg, _ := protocol.NewServerMessage(protocol.TypeMessageBlocked, protocol.MessageBlockedMsg{
			MessageID: result.MessageID,
			Reason:    result.Reason,
		})
		server.SendMessage(held.sessionID, blockedMsg)

		// Escalate: warnings first, then mutes of increasing length.
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		muted, duration, offenses, err := muteStore.RecordViolation(ctx, held.sessionID, result.Reason)
		if err != nil {
			log.Printf("[verdict] record violation session=%s: %v", held.sessionID, err)
			return
		}
		if muted {
			metrics.MutesTotal.Inc()
			sessionStore.UpdateStatus(ctx, held.sessionID, session.StatusMuted)
			resp, _ := protocol.NewServerMessage(protocol.TypeMuted, protocol.MutedMsg{
				Duration: int(duration.Seconds()),
				Reason:   result.Reason,
			})
			server.SendMessage(held.sessionID, resp)
			log.Printf("[verdict] MUTED session=%s duration=%s offenses=%d", held.sessionID, duration, offenses)
		} else {
			resp, _ := protocol.NewServerMessage(protocol.TypeWarning, protocol.WarningMsg{
				Offenses: offenses,
				Message:  "your message violated the room rules",
			})
			server.SendMessage(held.sessionID, resp)
		}
	}

	if err := natsClient.SubscribeModerationResults(handleVerdict); err != nil {
		log.Fatalf("failed to subscribe to moderation results: %v", err)
	}

	// Fail-open janitor: deliver messages whose verdict never arrived.
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			for id, msg := range pending.expired(verdictTimeout) {
				log.Printf("[janitor] verdict timeout message=%s room=%s, delivering", id, msg.roomID)
				deliver(id, msg)
			}
		}
	}()

	// Handle disconnects: drop room membership and notify the room.
	server.SetOnDisconnect(func(connID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		sess, err := sessionStore.Get(ctx, connID)
		if err != nil || sess == nil {
			return
		}

		if sess.RoomID != "" {
			roomStore.Leave(ctx, sess.RoomID, connID)
			_ = natsClient.UnsubscribeFromRoom(connID)
		}

		log.Printf("disconnect cleanup for session=%s status=%s", connID, sess.Status)
	})

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, initiating graceful shutdown...", sig)
		natsClient.Close()
		if err := server.Shutdown(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		if err := sessionStore.Close(); err != nil {
			log.Printf("session store close error: %v", err)
		}
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
