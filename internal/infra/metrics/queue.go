package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsEnqueuedTotal, jobsReclaimedTotal) }

var jobsEnqueuedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "queue_jobs_enqueued_total",
		Help: "Jobs pushed onto the processing queue.",
	},
)

var jobsReclaimedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "queue_jobs_reclaimed_total",
		Help: "Jobs redelivered after exceeding the visibility timeout.",
	},
)

func IncJobEnqueued()  { jobsEnqueuedTotal.Inc() }
func IncJobReclaimed() { jobsReclaimedTotal.Inc() }
