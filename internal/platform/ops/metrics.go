package ops

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the counter set shared by the scheduler and worker
// recording is best effort and never affects control flow
type Metrics struct {
	JobsEnqueued prometheus.Counter
	JobsClaimed  prometheus.Counter
	JobsDone     prometheus.Counter
	JobsRetried  prometheus.Counter
	JobsFailed   prometheus.Counter

	// CheckRuns is labeled by result status (up, degraded, down)
	CheckRuns *prometheus.CounterVec

	ProbeDuration prometheus.Histogram
}

// NewMetrics builds the collector set
// a nil registerer constructs unregistered collectors, handy in tests
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		JobsEnqueued: f.NewCounter(prometheus.CounterOpts{
			Name: "vigil_scheduler_jobs_enqueued_total",
			Help: "Check jobs inserted by the scheduler.",
		}),
		JobsClaimed: f.NewCounter(prometheus.CounterOpts{
			Name: "vigil_worker_jobs_claimed_total",
			Help: "Check jobs claimed by this worker.",
		}),
		JobsDone: f.NewCounter(prometheus.CounterOpts{
			Name: "vigil_worker_jobs_done_total",
			Help: "Check jobs completed by this worker.",
		}),
		JobsRetried: f.NewCounter(prometheus.CounterOpts{
			Name: "vigil_worker_jobs_retried_total",
			Help: "Check jobs returned to the queue after a processing failure.",
		}),
		JobsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "vigil_worker_jobs_failed_total",
			Help: "Check jobs that exhausted their attempts.",
		}),
		CheckRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_check_runs_total",
			Help: "Recorded check runs by result status.",
		}, []string{"status"}),
		ProbeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vigil_probe_duration_seconds",
			Help:    "Wall time of one probe execution including the timeout envelope.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
