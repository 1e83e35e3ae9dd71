package workergroup

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
)

// FinalizerName guards every WorkerGroup the controller has seen, so that
// cleanup runs before the object disappears.
const FinalizerName = "probelet.io/worker-group"

// Phase is the lifecycle phase of a WorkerGroup.
type Phase int

const (
	// PhaseActive is a WorkerGroup without a deletion timestamp.
	PhaseActive Phase = iota
	// PhaseDeleting is a WorkerGroup marked for deletion.
	PhaseDeleting
)

func (p Phase) String() string {
	if p == PhaseDeleting {
		return "Deleting"
	}
	return "Active"
}

// PhaseOf returns the lifecycle phase of wg.
func PhaseOf(wg *probeletv0.WorkerGroup) Phase {
	if wg.DeletionTimestamp.IsZero() {
		return PhaseActive
	}
	return PhaseDeleting
}

// stepFunc is an apply or cleanup step of the finalizer protocol.
type stepFunc func(ctx context.Context, wg *probeletv0.WorkerGroup) (Action, error)

// finalize runs apply or cleanup for wg depending on its phase:
//
//   - Active without the finalizer: add it, then apply in the same pass.
//   - Active with the finalizer: apply.
//   - Deleting with the finalizer: cleanup, then remove the finalizer once
//     cleanup succeeded.
//   - Deleting without the finalizer: nothing; the object is about to go.
//
// Every error is returned as a *FinalizerError.
func finalize(
	ctx context.Context,
	c client.Client,
	wg *probeletv0.WorkerGroup,
	apply, cleanup stepFunc,
) (Action, error) {
	logger := log.FromContext(ctx)
	guarded := controllerutil.ContainsFinalizer(wg, FinalizerName)

	switch PhaseOf(wg) {
	case PhaseDeleting:
		if !guarded {
			return AwaitChange(), nil
		}

		action, err := cleanup(ctx, wg)
		if err != nil {
			return Action{}, &FinalizerError{Err: err}
		}

		controllerutil.RemoveFinalizer(wg, FinalizerName)
		if err := c.Update(ctx, wg); client.IgnoreNotFound(err) != nil {
			return Action{}, &FinalizerError{Err: &KubeError{
				Message: "failed to remove finalizer",
				Err:     err,
			}}
		}
		logger.Info("Removed finalizer")
		return action, nil

	default:
		if !guarded {
			controllerutil.AddFinalizer(wg, FinalizerName)
			if err := c.Update(ctx, wg); err != nil {
				return Action{}, &FinalizerError{Err: &KubeError{
					Message: "failed to add finalizer",
					Err:     err,
				}}
			}
			logger.Info("Added finalizer")
		}

		action, err := apply(ctx, wg)
		if err != nil {
			return Action{}, &FinalizerError{Err: err}
		}
		return action, nil
	}
}
