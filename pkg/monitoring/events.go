package monitoring

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	eventsv1 "k8s.io/api/events/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/clock"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/apiutil"
)

// Event is a single Kubernetes event to publish.
type Event struct {
	// Type is corev1.EventTypeNormal or corev1.EventTypeWarning.
	Type   string
	Reason string
	Note   string
	Action string
}

// EventPublisher creates events.k8s.io/v1 Events through the API client.
//
// Unlike record.EventRecorder, which buffers and drops on failure, Publish
// returns the API error so the caller can fail its reconciliation.
type EventPublisher struct {
	client     client.Client
	controller string
	instance   string
	clock      clock.PassiveClock
}

// NewEventPublisher returns a publisher that reports as controller. instance
// identifies this replica of the controller, usually the pod name.
func NewEventPublisher(c client.Client, controller, instance string) *EventPublisher {
	return &EventPublisher{
		client:     c,
		controller: controller,
		instance:   instance,
		clock:      clock.RealClock{},
	}
}

// Reporter returns the reporting controller name.
func (p *EventPublisher) Reporter() string {
	return p.controller
}

// Publish creates ev in the namespace of regarding. related is optional.
func (p *EventPublisher) Publish(ctx context.Context, ev Event, regarding, related client.Object) error {
	regardingRef, err := p.objectReference(regarding)
	if err != nil {
		return err
	}

	eventType := ev.Type
	if eventType == "" {
		eventType = corev1.EventTypeNormal
	}

	event := &eventsv1.Event{
		ObjectMeta: metav1.ObjectMeta{
			GenerateName: regarding.GetName() + "-",
			Namespace:    regarding.GetNamespace(),
		},
		EventTime:           metav1.NewMicroTime(p.clock.Now()),
		ReportingController: p.controller,
		ReportingInstance:   p.instance,
		Action:              ev.Action,
		Reason:              ev.Reason,
		Note:                ev.Note,
		Type:                eventType,
		Regarding:           *regardingRef,
	}

	if related != nil {
		relatedRef, err := p.objectReference(related)
		if err != nil {
			return err
		}
		event.Related = relatedRef
	}

	if err := p.client.Create(ctx, event); err != nil {
		return fmt.Errorf("creating event %s for %s: %w", ev.Reason, regarding.GetName(), err)
	}
	return nil
}

func (p *EventPublisher) objectReference(obj client.Object) (*corev1.ObjectReference, error) {
	gvk, err := apiutil.GVKForObject(obj, p.client.Scheme())
	if err != nil {
		return nil, fmt.Errorf("building reference to %s: %w", obj.GetName(), err)
	}
	apiVersion, kind := gvk.ToAPIVersionAndKind()
	return &corev1.ObjectReference{
		Kind:       kind,
		APIVersion: apiVersion,
		Name:       obj.GetName(),
		Namespace:  obj.GetNamespace(),
		UID:        obj.GetUID(),
	}, nil
}
