package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the review workflow.
// Tracks transitions, failures by error code and operation durations.
type Metrics struct {
	Transitions        *prometheus.CounterVec
	ExceptionEvents    *prometheus.CounterVec
	Failures           *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	ApprovedWithActive prometheus.Counter
}

// New registers the review metrics with reg, or the default registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casework_review_transitions_total",
			Help: "Total review workflow transitions by action and resulting status",
		}, []string{"action", "to_status"}),
		ExceptionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casework_exception_transitions_total",
			Help: "Total exception lifecycle transitions by action and resulting status",
		}, []string{"action", "to_status"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casework_review_failures_total",
			Help: "Total failed review operations by operation and error code",
		}, []string{"operation", "code"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "casework_review_operation_duration_seconds",
			Help:    "Duration of review service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		ApprovedWithActive: factory.NewCounter(prometheus.CounterOpts{
			Name: "casework_reviews_approved_with_active_exceptions_total",
			Help: "Approvals granted while the review still had active exceptions",
		}),
	}
}

// IncrementTransition records a successful review transition.
func (m *Metrics) IncrementTransition(action, toStatus string) {
	if m != nil {
		m.Transitions.WithLabelValues(action, toStatus).Inc()
	}
}

// IncrementExceptionTransition records a successful exception transition.
func (m *Metrics) IncrementExceptionTransition(action, toStatus string) {
	if m != nil {
		m.ExceptionEvents.WithLabelValues(action, toStatus).Inc()
	}
}

// IncrementFailure records a failed operation by its error code.
func (m *Metrics) IncrementFailure(operation, code string) {
	if m != nil {
		m.Failures.WithLabelValues(operation, code).Inc()
	}
}

func (m *Metrics) IncrementApprovedWithActiveExceptions() {
	if m != nil {
		m.ApprovedWithActive.Inc()
	}
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m != nil {
		m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
