package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "padloom", Name: "active_rooms", Help: "Number of rooms resident in memory."},
	)
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "padloom", Name: "active_connections", Help: "Number of live websocket connections."},
	)
	EditsApplied = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "padloom", Name: "edits_applied_total", Help: "Number of document edits applied."},
	)
	BroadcastsSent = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "padloom", Name: "broadcasts_sent_total", Help: "Number of frames broadcast to room members."},
	)
	DocumentsReclaimed = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "padloom", Name: "documents_reclaimed_total", Help: "Number of orphaned documents deleted by the sweeper."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "padloom", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "padloom", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ActiveRooms)
	reg.MustRegister(ActiveConnections)
	reg.MustRegister(EditsApplied)
	reg.MustRegister(BroadcastsSent)
	reg.MustRegister(DocumentsReclaimed)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
