package feed

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce sync.Once

	// feedSyncTotal tracks sync attempts by source and outcome
	feedSyncTotal *prometheus.CounterVec

	// feedItemsNormalized tracks canonical records produced per source
	feedItemsNormalized *prometheus.CounterVec

	// feedSyncDuration tracks end-to-end fetch+parse latency per source
	feedSyncDuration prometheus.Histogram
)

// InitMetrics registers the Prometheus metrics for feed syncing.
// Call once at application startup.
func InitMetrics() {
	metricsOnce.Do(func() {
		feedSyncTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_sync_total",
				Help: "Total number of feed sync attempts by source and status",
			},
			[]string{"source", "status"},
		)

		feedItemsNormalized = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_items_normalized_total",
				Help: "Total number of canonical records produced per source",
			},
			[]string{"source"},
		)

		feedSyncDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "feed_sync_duration_seconds",
				Help:    "Duration of one source's fetch and normalize pass",
				Buckets: []float64{0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
			},
		)
	})
}

func recordSync(source, status string, items int, elapsed time.Duration) {
	if feedSyncTotal == nil {
		return
	}
	feedSyncTotal.WithLabelValues(source, status).Inc()
	if items > 0 {
		feedItemsNormalized.WithLabelValues(source).Add(float64(items))
	}
	feedSyncDuration.Observe(elapsed.Seconds())
}
