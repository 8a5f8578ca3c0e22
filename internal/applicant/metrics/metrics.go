package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the applicant module: registration
// volume, status-transition counts per target status, and the latency of the
// two write paths that hold transactions.
type Metrics struct {
	RegistrationsTotal  prometheus.Counter
	TransitionsTotal    *prometheus.CounterVec
	TransitionConflicts prometheus.Counter
	RegisterDuration    prometheus.Histogram
	TransitionDuration  prometheus.Histogram
}

// New creates a Metrics instance with all applicant module metrics registered.
func New() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ppdb_registrations_total",
			Help: "Total number of applicant registrations",
		}),
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ppdb_status_transitions_total",
			Help: "Total number of status transitions by target status",
		}, []string{"to_status"}),
		TransitionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ppdb_status_transition_conflicts_total",
			Help: "Status transitions rejected because a concurrent change won",
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ppdb_register_duration_seconds",
			Help:    "Duration of registration transactions",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		TransitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ppdb_transition_duration_seconds",
			Help:    "Duration of status transition transactions",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncrementRegistered() {
	m.RegistrationsTotal.Inc()
}

func (m *Metrics) IncrementTransition(toStatus string) {
	m.TransitionsTotal.WithLabelValues(toStatus).Inc()
}

func (m *Metrics) IncrementConflict() {
	m.TransitionConflicts.Inc()
}

// ObserveRegister records the duration of a registration. Call with
// time.Now() taken at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}

// ObserveTransition records the duration of a status transition.
func (m *Metrics) ObserveTransition(start time.Time) {
	m.TransitionDuration.Observe(time.Since(start).Seconds())
}
