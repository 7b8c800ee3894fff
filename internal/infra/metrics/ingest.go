package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(itemsProcessedTotal, stageLatencySeconds, itemsDiscoveredTotal) }

var itemsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ingest_items_processed_total",
		Help: "Items run through the pipeline, labeled by final status.",
	},
	[]string{"status"}, // 'completed', 'failed', 'conflict', 'redelivered'
)

var stageLatencySeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ingest_stage_latency_seconds",
		Help:    "Pipeline stage latency distribution.",
		Buckets: []float64{0.5, 1, 5, 15, 60, 180, 600, 1800},
	},
	[]string{"stage"}, // 'fetch', 'transcribe', 'embed', 'persist'
)

var itemsDiscoveredTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ingest_items_discovered_total",
		Help: "New items registered by the source watcher.",
	},
)

func IncItemProcessed(status string) {
	itemsProcessedTotal.WithLabelValues(status).Inc()
}

func ObserveStage(stage string, d time.Duration) {
	stageLatencySeconds.WithLabelValues(stage).Observe(d.Seconds())
}

func IncItemsDiscovered(n int) {
	itemsDiscoveredTotal.Add(float64(n))
}
