package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec
	moderationActions   *prometheus.CounterVec
	activityStreamed    *prometheus.CounterVec
	streamClients       prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used for admin observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		moderationActions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_moderation_actions_total",
			Help: "Total number of successful moderation actions by action and target type.",
		}, []string{"action", "target_type"})

		activityStreamed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_activity_events_streamed_total",
			Help: "Total number of activity events fanned out to live stream clients.",
		}, []string{"category"})

		streamClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "admin_activity_stream_clients",
			Help: "Number of currently connected live activity stream clients.",
		})

		prometheus.MustRegister(
			adminRequestsTotal, adminLatencySeconds, adminErrorsTotal,
			moderationActions, activityStreamed, streamClients,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// ModerationActionsTotal exposes the counter for successful moderation actions.
func ModerationActionsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return moderationActions
}

// ActivityEventsStreamedTotal exposes the counter for streamed activity events.
func ActivityEventsStreamedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return activityStreamed
}

// StreamClientsActive exposes the gauge of connected stream clients.
func StreamClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return streamClients
}
