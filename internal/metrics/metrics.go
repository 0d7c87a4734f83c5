package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "abtest"

// Metrics holds the Prometheus collectors for hypothesis test evaluations.
//
// Thread Safety: Safe for concurrent use (Prometheus metrics are thread-safe).
type Metrics struct {
	// EvaluationsTotal counts successful evaluations by verdict and confidence level.
	EvaluationsTotal *prometheus.CounterVec

	// ErrorsTotal counts rejected evaluations by error code.
	ErrorsTotal *prometheus.CounterVec

	// DegenerateTotal counts evaluations whose pooled standard error was zero.
	DegenerateTotal prometheus.Counter

	// BatchRowsTotal counts rows processed by batch evaluation by outcome.
	BatchRowsTotal *prometheus.CounterVec

	// EvaluationDurationSeconds measures the time spent per evaluation.
	EvaluationDurationSeconds prometheus.Histogram
}

// New creates the metrics and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EvaluationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Completed hypothesis test evaluations by verdict and confidence level.",
		}, []string{"verdict", "confidence"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluation_errors_total",
			Help:      "Rejected hypothesis test evaluations by error code.",
		}, []string{"code"}),
		DegenerateTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_evaluations_total",
			Help:      "Evaluations with zero pooled standard error, reported as indeterminate.",
		}),
		BatchRowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_rows_total",
			Help:      "Batch rows processed by outcome (ok or error).",
		}, []string{"outcome"}),
		EvaluationDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent evaluating a single hypothesis test.",
			Buckets:   []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3},
		}),
	}
}
