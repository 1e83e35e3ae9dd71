package workergroup

import (
	"context"
	"fmt"
	"slices"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
	"github.com/probelet/probelet-operator/pkg/util/metadata"
)

// BuildStatus derives the WorkerGroup status from the worker pods it owns.
// Pods not controlled by wg and pods whose name is not a valid instance name
// are ignored.
func BuildStatus(wg *probeletv0.WorkerGroup, pods []corev1.Pod) *probeletv0.WorkerGroupStatus {
	status := &probeletv0.WorkerGroupStatus{
		InstanceNames:          []probeletv0.WorkerInstanceName{},
		InstancesReportedState: map[probeletv0.WorkerInstanceName]probeletv0.ReportedInstanceState{},
	}

	for i := range pods {
		pod := &pods[i]
		if !metav1.IsControlledBy(pod, wg) {
			continue
		}
		name, err := probeletv0.NewWorkerInstanceName(pod.Name)
		if err != nil {
			continue
		}

		state := reportedState(pod)
		if state.Status == probeletv0.InstanceReady {
			status.ReadyInstances++
		}
		status.InstanceNames = append(status.InstanceNames, name)
		status.InstancesReportedState[name] = state
	}

	slices.Sort(status.InstanceNames)
	status.Instances = int32(len(status.InstanceNames))
	return status
}

func reportedState(pod *corev1.Pod) probeletv0.ReportedInstanceState {
	state := probeletv0.ReportedInstanceState{
		Status:      probeletv0.InstanceNotReady,
		LastUpdated: formatTime(pod.CreationTimestamp),
	}
	for _, cond := range pod.Status.Conditions {
		if cond.Type != corev1.PodReady {
			continue
		}
		if cond.Status == corev1.ConditionTrue {
			state.Status = probeletv0.InstanceReady
		}
		if !cond.LastTransitionTime.IsZero() {
			state.LastUpdated = formatTime(cond.LastTransitionTime)
		}
	}
	return state
}

func formatTime(t metav1.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// observeStatus lists the worker pods of wg through reader and writes the
// derived status through c.
func observeStatus(ctx context.Context, reader client.Reader, c client.Client, wg *probeletv0.WorkerGroup) error {
	logger := log.FromContext(ctx)

	pods := &corev1.PodList{}
	if err := reader.List(ctx, pods,
		client.InNamespace(wg.Namespace),
		metadata.WorkerGroupSelector(wg),
	); err != nil {
		return &KubeError{
			Message: fmt.Sprintf("failed to list worker pods for %s", wg.Name),
			Err:     err,
		}
	}

	orig := wg.DeepCopy()
	wg.Status = BuildStatus(wg, pods.Items)
	if err := c.Status().Patch(ctx, wg, client.MergeFrom(orig)); err != nil {
		return &KubeError{
			Message: fmt.Sprintf("failed to update status for worker group %s", wg.Name),
			Err:     err,
		}
	}

	logger.V(1).Info("Updated status",
		"instances", wg.Status.Instances,
		"readyInstances", wg.Status.ReadyInstances,
	)
	return nil
}
