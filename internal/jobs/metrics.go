package jobmetrics

import (
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes recorded on odyssey_jobs_total.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// Metrics exposes Prometheus collectors for background jobs.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight *prometheus.GaugeVec
	items    *prometheus.CounterVec
}

var defaultMetrics = sync.OnceValue(func() *Metrics {
	return buildMetrics(prometheus.DefaultRegisterer)
})

// NewMetrics registers the job metrics against registerer. A nil registerer
// shares one set of collectors on the default Prometheus registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		return defaultMetrics()
	}
	return buildMetrics(registerer)
}

// Tracker instruments a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track starts timing a run of job.
func (m *Metrics) Track(job string) *Tracker {
	t := &Tracker{metrics: m, job: job, start: time.Now()}
	if m != nil {
		m.inflight.WithLabelValues(job).Inc()
	}
	return t
}

// End records the run outcome and returns err untouched. Errors wrapping
// asynq.SkipRetry count as skipped rather than failed.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	t.metrics.inflight.WithLabelValues(t.job).Dec()
	t.metrics.runs.WithLabelValues(t.job, outcome(err)).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// AddItems counts the units of work a job processed, e.g. warmed resources.
func (m *Metrics) AddItems(job, company string, count int) {
	if m == nil || count <= 0 {
		return
	}
	if company == "" {
		company = "none"
	}
	m.items.WithLabelValues(job, company).Add(float64(count))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, asynq.SkipRetry):
		return StatusSkipped
	default:
		return StatusFailure
	}
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_jobs_total",
		Help: "Job executions by job name and outcome.",
	}, []string{"job", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_job_duration_seconds",
		Help:    "Duration in seconds of background job executions.",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
	}, []string{"job"})
	inflight := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "odyssey_jobs_inflight",
		Help: "Jobs currently executing.",
	}, []string{"job"})
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_job_items_total",
		Help: "Units of work processed by background jobs, per company.",
	}, []string{"job", "company"})
	registerer.MustRegister(runs, duration, inflight, items)
	return &Metrics{runs: runs, duration: duration, inflight: inflight, items: items}
}
