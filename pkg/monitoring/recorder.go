package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MeasureReconcile counts one reconciliation of resource and starts its timer.
// The returned function stops the timer; call it when the reconciliation ends.
// When ctx carries a sampled span the duration is recorded with a trace_id
// exemplar.
func MeasureReconcile(ctx context.Context, resource string) func() {
	reconcileTotal.WithLabelValues(resource).Inc()
	traceID := TraceID(ctx)
	start := time.Now()

	return func() {
		observeWithTrace(
			reconcileDuration.WithLabelValues(resource),
			time.Since(start).Seconds(),
			traceID,
		)
	}
}

// RecordReconcileFailure counts a failed reconciliation of resource.
func RecordReconcileFailure(resource, errorKind string) {
	reconcileFailures.WithLabelValues(resource, errorKind).Inc()
}

// RecordWorkerCreated counts a worker pod created in namespace.
func RecordWorkerCreated(namespace string) {
	workersCreated.WithLabelValues(namespace).Inc()
}

func observeWithTrace(obs prometheus.Observer, value float64, traceID string) {
	if traceID != "" {
		if eo, ok := obs.(prometheus.ExemplarObserver); ok {
			eo.ObserveWithExemplar(value, prometheus.Labels{"trace_id": traceID})
			return
		}
	}
	obs.Observe(value)
}
