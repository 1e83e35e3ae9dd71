package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Domain-specific metric collectors.
//
// controller-runtime records its own per-controller metrics; these add the
// per-WorkerGroup resource label and the error kind.
var (
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probelet_reconcile_total",
			Help: "Total number of WorkerGroup reconciliations.",
		},
		[]string{"resource"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "probelet_reconcile_duration_seconds",
			Help:    "Duration of WorkerGroup reconciliations in seconds.",
			Buckets: []float64{0.01, 0.1, 0.25, 0.5, 1, 5, 15, 60},
		},
		[]string{"resource"},
	)

	reconcileFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probelet_reconcile_failures_total",
			Help: "Total number of failed WorkerGroup reconciliations by error kind.",
		},
		[]string{"resource", "error_kind"},
	)

	workersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "probelet_workers_created_total",
			Help: "Total number of worker pods created.",
		},
		[]string{"namespace"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		reconcileTotal,
		reconcileDuration,
		reconcileFailures,
		workersCreated,
	)
}

// Collectors returns all registered metric collectors. This is useful for
// testing that metrics are properly registered.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		reconcileTotal,
		reconcileDuration,
		reconcileFailures,
		workersCreated,
	}
}
