package workergroup

import probeletv0 "github.com/probelet/probelet-operator/api/v0"

// Task is a corrective step chosen for one reconciliation.
type Task int

const (
	// TaskCreateWorker creates one worker pod for the WorkerGroup.
	TaskCreateWorker Task = iota + 1
)

func (t Task) String() string {
	switch t {
	case TaskCreateWorker:
		return "CreateWorker"
	default:
		return "Unknown"
	}
}

// Plan returns the task needed to move wg toward its desired state, if any.
// A WorkerGroup whose status was never written counts as -1 observed
// instances. At most one task is planned per reconciliation, whatever the
// deficit.
func Plan(wg *probeletv0.WorkerGroup) (Task, bool) {
	if wg.Spec.Replicas > wg.ObservedInstances() {
		return TaskCreateWorker, true
	}
	return 0, false
}
