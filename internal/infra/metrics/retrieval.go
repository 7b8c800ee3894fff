package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(queriesTotal, queryLatencySeconds) }

var queriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "retrieval_queries_total",
		Help: "Retrieval queries, labeled by outcome.",
	},
	[]string{"outcome"}, // 'grounded', 'no_answer', 'cached', 'error'
)

var queryLatencySeconds = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "retrieval_query_latency_seconds",
		Help:    "End-to-end answer latency distribution.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	},
)

func IncQuery(outcome string) { queriesTotal.WithLabelValues(outcome).Inc() }

func ObserveQueryLatency(d time.Duration) { queryLatencySeconds.Observe(d.Seconds()) }
