// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AlertsReceived tracks total alerts received by status.
	AlertsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_received_total",
			Help: "Total alerts received by status",
		},
		[]string{"status"},
	)

	// AlertsSkipped tracks alerts skipped as duplicates.
	AlertsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_skipped_total",
			Help: "Total alerts skipped as duplicates within the dedup window",
		},
	)

	// NotificationsSent tracks total notifications sent by outcome.
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total notifications sent by status",
		},
		[]string{"status"},
	)

	// NotificationLatency tracks notification delivery latency.
	NotificationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notification_latency_seconds",
			Help:    "Notification delivery latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DedupCacheSize tracks the current number of cached fingerprints.
	DedupCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dedup_cache_size",
			Help: "Current number of fingerprints in the dedup cache",
		},
	)

	// DedupCacheEvictions tracks fingerprints evicted by the sweep.
	DedupCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_cache_evictions_total",
			Help: "Total fingerprints evicted from the dedup cache",
		},
	)

	// WebhookRequestsTotal tracks total webhook requests received.
	WebhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Total webhook requests received by status",
		},
		[]string{"status"},
	)
)

// RegisterMetricsEndpoint registers the /metrics endpoint on a Gin router.
func RegisterMetricsEndpoint(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RecordAlertReceived records an alert received event.
func RecordAlertReceived(status string) {
	AlertsReceived.WithLabelValues(status).Inc()
}

// RecordAlertSkipped records a duplicate alert skipped event.
func RecordAlertSkipped() {
	AlertsSkipped.Inc()
}

// RecordNotificationSent records a notification sent event.
func RecordNotificationSent(status string) {
	NotificationsSent.WithLabelValues(status).Inc()
}

// RecordNotificationLatency records notification delivery latency.
func RecordNotificationLatency(seconds float64) {
	NotificationLatency.Observe(seconds)
}

// SetCacheSize sets the current dedup cache size.
func SetCacheSize(size float64) {
	DedupCacheSize.Set(size)
}

// RecordCacheEviction records a fingerprint eviction.
func RecordCacheEviction() {
	DedupCacheEvictions.Inc()
}

// RecordWebhookRequest records a webhook request.
func RecordWebhookRequest(status string) {
	WebhookRequestsTotal.WithLabelValues(status).Inc()
}
