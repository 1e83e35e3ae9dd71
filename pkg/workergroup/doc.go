// Package workergroup implements the WorkerGroup controller.
//
// A reconciliation fetches the WorkerGroup, runs it through the finalizer
// protocol, plans at most one task, executes it, observes the owned worker
// pods and writes the status. Both the success and the error path requeue
// the WorkerGroup after DefaultRequeue.
package workergroup
