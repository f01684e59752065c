package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks auto-review creation outcomes and the batch jobs.
type Metrics struct {
	Outcomes           *prometheus.CounterVec
	Sweeps             *prometheus.CounterVec
	SweepDuration      prometheus.Histogram
	StaleDraftsDeleted prometheus.Counter
}

// New registers the auto-review metrics with reg, or the default registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casework_auto_review_outcomes_total",
			Help: "Auto-review creation outcomes by review type (created, skipped, failed)",
		}, []string{"review_type", "outcome"}),
		Sweeps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casework_auto_review_sweeps_total",
			Help: "Auto-review sweeps by result (completed, locked, failed)",
		}, []string{"result"}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "casework_auto_review_sweep_duration_seconds",
			Help:    "Duration of completed auto-review sweeps",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
		StaleDraftsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "casework_stale_auto_drafts_deleted_total",
			Help: "Auto-created drafts removed by the retention cleanup",
		}),
	}
}

func (m *Metrics) IncrementOutcome(reviewType, outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(reviewType, outcome).Inc()
	}
}

func (m *Metrics) IncrementSweep(result string) {
	if m != nil {
		m.Sweeps.WithLabelValues(result).Inc()
	}
}

// ObserveSweep records the duration of a sweep started at start.
func (m *Metrics) ObserveSweep(start time.Time) {
	if m != nil {
		m.SweepDuration.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) AddStaleDraftsDeleted(n int) {
	if m != nil && n > 0 {
		m.StaleDraftsDeleted.Add(float64(n))
	}
}
