package workergroup

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/clock"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
	"github.com/probelet/probelet-operator/pkg/monitoring"
)

// Reconciler reconciles a WorkerGroup object.
type Reconciler struct {
	Client client.Client
	// Reader serves the WorkerGroup and its pods. It must observe the
	// reconciler's own writes, otherwise a worker created by the previous
	// run is missed and created again. Defaults to Client.
	Reader      client.Reader
	Events      EventPublisher
	Diagnostics *monitoring.Diagnostics
	Clock       clock.PassiveClock
}

var _ reconcile.Reconciler = &Reconciler{}

// NewReconciler returns a Reconciler using the real clock.
func NewReconciler(c client.Client, events EventPublisher, diag *monitoring.Diagnostics) *Reconciler {
	return &Reconciler{
		Client:      c,
		Events:      events,
		Diagnostics: diag,
		Clock:       clock.RealClock{},
	}
}

// Reconcile drives the WorkerGroup named by req toward its desired state. A
// WorkerGroup that no longer exists is gone and is not requeued. Failures are
// counted by error kind and returned, so the controller retries them after
// the fixed error delay.
func (r *Reconciler) Reconcile(ctx context.Context, req reconcile.Request) (reconcile.Result, error) {
	key := req.NamespacedName
	resource := probeletv0.MetricLabelFor(key.Name)

	ctx, span := monitoring.StartReconcileSpan(ctx, "WorkerGroup.Reconcile",
		key.Name, key.Namespace, probeletv0.WorkerGroupKind)
	defer span.End()
	ctx = monitoring.EnrichLoggerWithTrace(ctx)

	done := monitoring.MeasureReconcile(ctx, resource)
	defer done()

	action, err := r.reconcile(ctx, key)
	if err != nil {
		monitoring.RecordReconcileFailure(resource, ErrorKind(err))
		monitoring.RecordSpanError(span, err)
		return reconcile.Result{}, err
	}
	return action, nil
}

func (r *Reconciler) reconcile(ctx context.Context, key types.NamespacedName) (Action, error) {
	logger := log.FromContext(ctx)

	wg := &probeletv0.WorkerGroup{}
	if err := r.reader().Get(ctx, key, wg); err != nil {
		if apierrors.IsNotFound(err) {
			logger.V(1).Info("WorkerGroup resource not found, ignoring")
			return AwaitChange(), nil
		}
		return Action{}, &KubeError{
			Message: fmt.Sprintf("failed to get worker group %s", key),
			Err:     err,
		}
	}

	if r.Diagnostics != nil {
		r.Diagnostics.MarkEvent(r.Clock.Now())
	}

	return finalize(ctx, r.Client, wg, r.apply, r.cleanup)
}

// apply plans and runs at most one task, then observes the worker pods. The
// status is observed even when the task failed so that a pod created before
// a failed event publish is counted.
func (r *Reconciler) apply(ctx context.Context, wg *probeletv0.WorkerGroup) (Action, error) {
	logger := log.FromContext(ctx)

	action := Requeue(DefaultRequeue)
	var taskErr error
	if task, ok := Plan(wg); ok {
		logger.Info("Running task", "task", task)
		action, taskErr = r.run(ctx, wg, task)
	}

	if err := observeStatus(ctx, r.reader(), r.Client, wg); err != nil {
		if taskErr != nil {
			logger.Error(err, "Failed to observe status after failed task")
			return Action{}, taskErr
		}
		return Action{}, err
	}
	if taskErr != nil {
		return Action{}, taskErr
	}

	return action, nil
}

func (r *Reconciler) reader() client.Reader {
	if r.Reader != nil {
		return r.Reader
	}
	return r.Client
}

func (r *Reconciler) run(ctx context.Context, wg *probeletv0.WorkerGroup, task Task) (Action, error) {
	switch task {
	case TaskCreateWorker:
		worker, err := NewWorker(wg)
		if err != nil {
			return Action{}, err
		}
		return worker.Create(ctx, Deps{Client: r.Client, Events: r.Events})
	default:
		return Action{}, fmt.Errorf("unknown task %s", task)
	}
}

// cleanup has nothing to tear down: worker pods carry an owner reference and
// are removed by the garbage collector.
func (r *Reconciler) cleanup(ctx context.Context, wg *probeletv0.WorkerGroup) (Action, error) {
	log.FromContext(ctx).Info("Cleaning up WorkerGroup")
	return Requeue(DefaultRequeue), nil
}
