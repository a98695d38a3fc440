package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/vecrud/internal/domain"
)

var (
	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "record_operation_duration_seconds",
			Help:      "Record operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "status"},
	)

	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_operations_total",
			Help:      "Total number of record operations",
		},
		[]string{"operation", "status"},
	)
)

func init() {
	prometheus.MustRegister(operationDuration)
	prometheus.MustRegister(operationsTotal)
}

// ObserveOperation records the duration and outcome of a record operation.
// Call it deferred with the operation start time and a pointer to the named error.
func ObserveOperation(op string, start time.Time, err *error) {
	status := statusOf(*err)
	operationDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	operationsTotal.WithLabelValues(op, status).Inc()
}

// statusOf keeps the status label low-cardinality.
func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidRecord),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrVectorDimMismatch):
		return "invalid"
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return "embedding_error"
	default:
		return "error"
	}
}
