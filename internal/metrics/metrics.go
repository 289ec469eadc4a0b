// Package metrics provides Prometheus instrumentation for the SwearGuard
// services. It exposes gauges for connection and room counts, counters for
// message and verdict throughput, and histograms for check latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsTotal tracks the current number of active WebSocket connections.
	ConnectionsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "swearguard_connections_total",
		Help: "Current number of active WebSocket connections",
	})

	// MessagesTotal counts processed messages, labeled by outcome:
	// "delivered", "blocked", "rate_limited" or "muted".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "swearguard_messages_total",
		Help: "Total number of messages processed",
	}, []string{"outcome"})

	// ChecksTotal counts moderation verdicts, labeled by reason:
	// "clean", "blocked_keyword", "blocked_phrase" or "spam_pattern".
	ChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "swearguard_checks_total",
		Help: "Total number of moderation checks by verdict reason",
	}, []string{"reason"})

	// CheckDuration records the time spent running one moderation check.
	CheckDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "swearguard_check_duration_seconds",
		Help:    "Moderation check duration in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	})

	// CacheEventsTotal counts verdict cache hits and misses in the matching
	// engine, labeled "hit" or "miss".
	CacheEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "swearguard_cache_events_total",
		Help: "Verdict cache hits and misses",
	}, []string{"event"})

	// ActiveRooms tracks the current number of rooms with members.
	ActiveRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "swearguard_active_rooms",
		Help: "Current number of rooms with at least one member",
	})

	// ReviewQueueSize tracks the number of flagged messages awaiting human
	// review.
	ReviewQueueSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "swearguard_review_queue_size",
		Help: "Flagged messages currently awaiting review",
	})

	// MutesTotal counts mute escalations applied to sessions.
	MutesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "swearguard_mutes_total",
		Help: "Total number of mutes applied",
	})

	// WordlistRebuildsTotal counts per-room filter rebuilds triggered by
	// wordlist updates.
	WordlistRebuildsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "swearguard_wordlist_rebuilds_total",
		Help: "Total number of room filter rebuilds",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsTotal,
		MessagesTotal,
		ChecksTotal,
		CheckDuration,
		CacheEventsTotal,
		ActiveRooms,
		ReviewQueueSize,
		MutesTotal,
		WordlistRebuildsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
