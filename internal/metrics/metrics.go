// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_document_uploads_total",
		Help: "Confirmed document uploads by domain and outcome",
	}, []string{"domain", "outcome"})

	deletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_document_deletes_total",
		Help: "Confirmed document deletes by domain and the strategy that resolved them",
	}, []string{"domain", "strategy"})

	signedURLFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_signed_url_failures_total",
		Help: "Listed documents returned without a signed URL",
	}, []string{"domain", "reason"})

	statusEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_status_events_total",
		Help: "Document status events published to subscribers",
	}, []string{"status"})

	activeSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portal_status_subscriptions_active",
		Help: "Open status event streams",
	})

	listDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_document_list_duration_ms",
		Help:    "Latency of document listings including URL signing, in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"domain"})

	loginThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_login_throttled_total",
		Help: "Login attempts rejected by the rate limiter",
	})
)

// RecordUpload counts a finished upload. outcome is success, failed or partial.
func RecordUpload(domain, outcome string) {
	uploadsTotal.WithLabelValues(domain, outcome).Inc()
}

// RecordDelete counts a finished delete under the resolving strategy, or "orphaned".
func RecordDelete(domain, strategy string) {
	deletesTotal.WithLabelValues(domain, strategy).Inc()
}

// RecordSignedURLFailure counts a listed document left without a URL.
func RecordSignedURLFailure(domain, reason string) {
	signedURLFailures.WithLabelValues(domain, reason).Inc()
}

// RecordStatusEvent counts a published status change.
func RecordStatusEvent(status string) {
	statusEvents.WithLabelValues(status).Inc()
}

// SubscriptionOpened and SubscriptionClosed track open event streams.
func SubscriptionOpened() { activeSubscriptions.Inc() }

func SubscriptionClosed() { activeSubscriptions.Dec() }

// ObserveList records how long a listing took.
func ObserveList(domain string, start time.Time) {
	listDurationMs.WithLabelValues(domain).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

// RecordLoginThrottled counts a rejected login attempt.
func RecordLoginThrottled() {
	loginThrottled.Inc()
}
