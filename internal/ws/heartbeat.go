package ws

import (
	"context"
	"log"
	"time"

	"github.com/gobwas/ws"
)

// HeartbeatConfig holds heartbeat tuning parameters.
type HeartbeatConfig struct {
	Interval time.Duration // how often to ping (default: 30s)
	Timeout  time.Duration // max time to wait for activity after ping (default: 10s)
}

// DefaultHeartbeatConfig returns the defaults for heartbeat monitoring.
func DefaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{
		Interval: 30 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// StartHeartbeat starts a background goroutine that periodically pings every
// connection, closes the ones that have gone stale, and keeps the Redis
// session of each live connection from expiring. It returns immediately; the
// goroutine exits when the server's done channel is closed.
func StartHeartbeat(server *Server, config HeartbeatConfig) {
	go func() {
		ticker := time.NewTicker(config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-server.done:
				return
			case <-ticker.C:
				sweepConnections(server, config)
			}
		}
	}()
}

// sweepConnections walks the active connections. A connection with no
// successful read within Interval + Timeout is dead and gets removed; its
// session is left to expire on its own TTL. Live connections receive a
// WebSocket ping frame (opcode 0x9, answered automatically by browsers) and
// a session TTL refresh, so a session only expires once its socket is gone.
func sweepConnections(server *Server, config HeartbeatConfig) {
	deadline := config.Interval + config.Timeout
	now := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	for _, c := range server.Connections().All() {
		if now.Sub(c.LastPing) > deadline {
			log.Printf("ws: heartbeat timeout session=%s last_activity=%s ago",
				c.ID, now.Sub(c.LastPing).Round(time.Second))
			server.RemoveConnection(c)
			continue
		}

		// The write mutex serializes the ping with concurrent application
		// writes.
		if err := c.WritePing(); err != nil {
			log.Printf("ws: heartbeat ping failed session=%s: %v", c.ID, err)
			server.RemoveConnection(c)
			continue
		}

		if err := server.SessionStore().RefreshTTL(ctx, c.ID); err != nil {
			log.Printf("ws: heartbeat session refresh failed session=%s: %v", c.ID, err)
		}
	}
}

// WritePing sends a WebSocket protocol-level ping frame on the connection.
func (c *Connection) WritePing() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return ws.WriteFrame(c.Conn, ws.NewPingFrame(nil))
}
