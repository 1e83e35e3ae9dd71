package v0

import "fmt"

// Label and annotation keys stamped on every object created for a WorkerGroup.
const (
	// LabelWorkerGroupName identifies the WorkerGroup that owns an object.
	LabelWorkerGroupName = "probelet.dev/workerGroupName"

	// LabelWorkerName identifies a single worker instance.
	LabelWorkerName = "probelet.dev/workerName"

	// AnnotationOperatorVersion records the operator version that created an object.
	AnnotationOperatorVersion = "probelet.dev/operatorVersion"

	// AnnotationPodSpec holds the JSON encoded PodSpec a worker was created from.
	AnnotationPodSpec = "probelet.dev/podSpec"
)

// OperatorVersion is stamped into AnnotationOperatorVersion. It is set at
// build time with -ldflags "-X github.com/probelet/probelet-operator/api/v0.OperatorVersion=...".
var OperatorVersion = "0.1.0"

// DefaultLabels returns the labels attached to every object the operator
// creates under this WorkerGroup.
func (wg *WorkerGroup) DefaultLabels() map[string]string {
	return map[string]string{
		LabelWorkerGroupName: wg.Name,
	}
}

// DefaultAnnotations returns the annotations attached to every object the
// operator creates under this WorkerGroup.
func (wg *WorkerGroup) DefaultAnnotations() map[string]string {
	return map[string]string{
		AnnotationOperatorVersion: OperatorVersion,
	}
}

// MetricLabel is the value used for the resource label of operator metrics.
func (wg *WorkerGroup) MetricLabel() string {
	return MetricLabelFor(wg.Name)
}

// MetricLabelFor is MetricLabel for a WorkerGroup known only by name.
func MetricLabelFor(name string) string {
	return fmt.Sprintf("worker_group__%s", name)
}

// ObservedInstances returns the number of instances recorded in the status,
// or -1 when the status has never been written.
func (wg *WorkerGroup) ObservedInstances() int32 {
	if wg.Status == nil {
		return -1
	}
	return wg.Status.Instances
}
