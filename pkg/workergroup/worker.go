package workergroup

import (
	"context"
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
	"github.com/probelet/probelet-operator/pkg/monitoring"
	"github.com/probelet/probelet-operator/pkg/util/metadata"
)

const (
	// WorkerContainerName is the name of the single container of a worker pod.
	WorkerContainerName = "worker"

	// DeletionGracePeriodSeconds is stamped on every worker pod.
	DeletionGracePeriodSeconds int64 = 30

	// ReasonWorkerCreated is the event reason and action published after a
	// worker pod was created.
	ReasonWorkerCreated = "WorkerCreated"
)

// EventPublisher publishes cluster events about an object.
type EventPublisher interface {
	Publish(ctx context.Context, ev monitoring.Event, regarding, related client.Object) error
}

// Deps are the collaborators a Worker needs to materialize itself.
type Deps struct {
	Client client.Client
	Events EventPublisher
}

// Worker is a single worker instance of a WorkerGroup, materialized as a Pod.
type Worker struct {
	Name  probeletv0.WorkerInstanceName
	Image string
	Owner *probeletv0.WorkerGroup
}

// NewWorker returns the worker for owner. The worker takes the name of its
// WorkerGroup and the image from its Spec.
func NewWorker(owner *probeletv0.WorkerGroup) (Worker, error) {
	name, err := probeletv0.NewWorkerInstanceName(owner.Name)
	if err != nil {
		return Worker{}, fmt.Errorf("invalid worker name: %w", err)
	}
	return Worker{
		Name:  name,
		Image: owner.Spec.Image,
		Owner: owner,
	}, nil
}

// BuildPod creates the Pod for w.
// Returns a deterministic Pod based on the worker and its owner.
func BuildPod(w Worker) (*corev1.Pod, error) {
	spec := corev1.PodSpec{
		Containers: []corev1.Container{
			{
				Name:    WorkerContainerName,
				Image:   w.Image,
				Command: []string{"/bin/sh", "-c"},
				Args:    []string{"sleep infinity"},
			},
		},
		RestartPolicy:                 corev1.RestartPolicyAlways,
		TerminationGracePeriodSeconds: ptr.To(DeletionGracePeriodSeconds),
	}

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pod spec: %w", err)
	}

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      w.Name.String(),
			Namespace: w.Owner.Namespace,
			Labels:    metadata.WorkerLabels(w.Owner, w.Name.String()),
			Annotations: metadata.WorkerAnnotations(w.Owner, map[string]string{
				probeletv0.AnnotationPodSpec: string(specJSON),
			}),
			OwnerReferences: []metav1.OwnerReference{
				*metav1.NewControllerRef(w.Owner, probeletv0.GroupVersion.WithKind(probeletv0.WorkerGroupKind)),
			},
			DeletionGracePeriodSeconds: ptr.To(DeletionGracePeriodSeconds),
		},
		Spec: spec,
	}

	return pod, nil
}

// Create creates the worker pod and publishes a WorkerCreated event for it.
// There is no internal retry; the caller's requeue drives the next attempt.
func (w Worker) Create(ctx context.Context, deps Deps) (Action, error) {
	logger := log.FromContext(ctx)

	ctx, span := monitoring.StartChildSpan(ctx, "Worker.Create")
	defer span.End()

	pod, err := BuildPod(w)
	if err != nil {
		monitoring.RecordSpanError(span, err)
		return Action{}, err
	}

	if err := deps.Client.Create(ctx, pod); err != nil {
		monitoring.RecordSpanError(span, err)
		return Action{}, &KubeError{
			Message: fmt.Sprintf("failed to create worker pod %s", w.Name),
			Err:     err,
		}
	}
	monitoring.RecordWorkerCreated(pod.Namespace)
	logger.Info("Created worker pod", "pod", pod.Name)

	event := monitoring.Event{
		Type:   corev1.EventTypeNormal,
		Reason: ReasonWorkerCreated,
		Note:   "Worker Created",
		Action: ReasonWorkerCreated,
	}
	if err := deps.Events.Publish(ctx, event, pod, w.Owner); err != nil {
		monitoring.RecordSpanError(span, err)
		return Action{}, &KubeError{
			Message: fmt.Sprintf("failed to publish event for worker %s", w.Name),
			Err:     err,
		}
	}

	return Requeue(DefaultRequeue), nil
}
