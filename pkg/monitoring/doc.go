// Package monitoring provides Prometheus metrics, tracing, event publication
// and process diagnostics for the Probelet Operator.
//
// All metrics follow the naming convention probelet_<metric>_<unit> and are
// registered against controller-runtime's default Prometheus registry on
// import, so they are served next to the framework metrics.
//
// Usage in controllers:
//
//	done := monitoring.MeasureReconcile(ctx, wg.MetricLabel())
//	defer done()
//	...
//	monitoring.RecordReconcileFailure(wg.MetricLabel(), kind)
package monitoring
