package workergroup

import (
	"time"

	"sigs.k8s.io/controller-runtime/pkg/reconcile"
)

// DefaultRequeue is the delay after which every WorkerGroup is reconciled
// again, on success and on error alike.
const DefaultRequeue = 5 * time.Minute

// Action tells the controller when to reconcile a WorkerGroup next. A zero
// RequeueAfter means wait for the next change notification.
type Action = reconcile.Result

// Requeue returns an Action that reconciles again after d.
func Requeue(d time.Duration) Action {
	return Action{RequeueAfter: d}
}

// AwaitChange returns an Action that only reconciles on the next change.
func AwaitChange() Action {
	return Action{}
}
