package workergroup

import (
	"context"
	"fmt"
	"time"

	"k8s.io/client-go/util/workqueue"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
	"github.com/probelet/probelet-operator/pkg/monitoring"
)

// ControllerName is the reporting controller of published events.
const ControllerName = "probelet-worker-group-controller"

// DefaultMaxConcurrentReconciles is the default number of workers.
const DefaultMaxConcurrentReconciles = 4

// +kubebuilder:rbac:groups=probelet.dev,resources=workergroups,verbs=get;list;watch;update;patch
// +kubebuilder:rbac:groups=probelet.dev,resources=workergroups/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=probelet.dev,resources=workergroups/finalizers,verbs=update
// +kubebuilder:rbac:groups="",resources=pods,verbs=get;list;watch;create
// +kubebuilder:rbac:groups=events.k8s.io,resources=events,verbs=create;patch

// Options configures the controller.
type Options struct {
	// MaxConcurrentReconciles bounds how many WorkerGroups are reconciled at
	// once. Defaults to DefaultMaxConcurrentReconciles.
	MaxConcurrentReconciles int

	// ErrorRequeue is the delay before a failed reconciliation is retried.
	// Defaults to DefaultRequeue.
	ErrorRequeue time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrentReconciles <= 0 {
		o.MaxConcurrentReconciles = DefaultMaxConcurrentReconciles
	}
	if o.ErrorRequeue <= 0 {
		o.ErrorRequeue = DefaultRequeue
	}
	return o
}

// newRateLimiter retries every failed request after the same delay, with no
// backoff and no retry limit.
func newRateLimiter(delay time.Duration) workqueue.TypedRateLimiter[reconcile.Request] {
	return workqueue.NewTypedItemExponentialFailureRateLimiter[reconcile.Request](delay, delay)
}

// SetupWithManager builds a Reconciler for mgr and registers it. Events are
// published as ControllerName from the given instance, usually the pod name.
func SetupWithManager(
	mgr ctrl.Manager,
	diag *monitoring.Diagnostics,
	instance string,
	opts Options,
) error {
	events := monitoring.NewEventPublisher(mgr.GetClient(), ControllerName, instance)
	r := NewReconciler(mgr.GetClient(), events, diag)
	// The cache lags behind our own writes.
	r.Reader = mgr.GetAPIReader()
	return r.SetupWithManager(mgr, opts)
}

// SetupWithManager sets up the controller with the Manager.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager, opts Options) error {
	opts = opts.withDefaults()
	err := ctrl.NewControllerManagedBy(mgr).
		For(&probeletv0.WorkerGroup{}).
		Named("workergroup").
		WithOptions(controller.Options{
			MaxConcurrentReconciles: opts.MaxConcurrentReconciles,
			RateLimiter:             newRateLimiter(opts.ErrorRequeue),
		}).
		Complete(r)
	if err != nil {
		return fmt.Errorf("failed to set up WorkerGroup controller: %w", err)
	}
	return nil
}

// CheckInstalled verifies the WorkerGroup resource type is served by the
// cluster by listing at most one object across all namespaces.
func CheckInstalled(ctx context.Context, reader client.Reader) error {
	if err := reader.List(ctx, &probeletv0.WorkerGroupList{}, client.Limit(1)); err != nil {
		return fmt.Errorf("%w: %w", ErrResourceNotInstalled, err)
	}
	return nil
}
