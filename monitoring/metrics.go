// Package monitoring exposes Prometheus instrumentation for the HTTP layer.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FeedMetrics counts feed requests by response status and tracks how long
// handling takes.
type FeedMetrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Summary
}

func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	m := &FeedMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feed_requests_total",
			Help: "Feed requests by response status.",
		}, []string{"status"}),
		duration: prometheus.NewSummary(prometheus.SummaryOpts{
			Name: "feed_request_duration_seconds",
			Help: "Feed request handling time.",
		}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *FeedMetrics) ObserveFeed(status string, d time.Duration) {
	m.requests.WithLabelValues(status).Inc()
	m.duration.Observe(d.Seconds())
}
