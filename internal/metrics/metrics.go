// Package metrics holds the Prometheus collectors of the service. They are
// registered with the default registry and served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "office_panel_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "office_panel_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AuditEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "office_panel_audit_entries_total",
			Help: "Audit log rows written, by action and model.",
		},
		[]string{"action", "model"},
	)

	AuditFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "office_panel_audit_failures_total",
		Help: "Audit log rows that could not be written.",
	})

	WebhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "office_panel_webhook_deliveries_total",
			Help: "Outbound webhook attempts, by result.",
		},
		[]string{"result"},
	)

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "office_panel_cache_hits_total",
		Help: "Published notice feed cache hits.",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "office_panel_cache_misses_total",
		Help: "Published notice feed cache misses.",
	})
)
