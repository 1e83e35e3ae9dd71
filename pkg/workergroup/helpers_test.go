package workergroup

import (
	"context"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	eventsv1 "k8s.io/api/events/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	clocktesting "k8s.io/utils/clock/testing"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
	"github.com/probelet/probelet-operator/pkg/monitoring"
	"github.com/probelet/probelet-operator/pkg/testutil"
)

var testNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newWorkerGroup(name string, replicas int32, image string) *probeletv0.WorkerGroup {
	return &probeletv0.WorkerGroup{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "default",
			UID:       types.UID(name + "-uid"),
		},
		Spec: probeletv0.WorkerGroupSpec{Replicas: replicas, Image: image},
	}
}

type testEnv struct {
	base       client.Client
	client     client.Client
	reconciler *Reconciler
	diag       *monitoring.Diagnostics
}

// newTestEnv builds a reconciler over a fake client. failures may be nil.
func newTestEnv(t *testing.T, failures *testutil.FailureConfig, objs ...client.Object) *testEnv {
	t.Helper()

	base := fake.NewClientBuilder().
		WithScheme(testutil.NewScheme(t)).
		WithObjects(objs...).
		WithStatusSubresource(&probeletv0.WorkerGroup{}).
		Build()
	c := testutil.NewFakeClientWithFailures(base, failures)

	diag := monitoring.NewDiagnostics(ControllerName, time.Time{})
	r := NewReconciler(c, monitoring.NewEventPublisher(c, ControllerName, "test"), diag)
	r.Clock = clocktesting.NewFakePassiveClock(testNow)

	return &testEnv{base: base, client: c, reconciler: r, diag: diag}
}

func (e *testEnv) pods(t *testing.T) []corev1.Pod {
	t.Helper()
	list := &corev1.PodList{}
	if err := e.base.List(context.Background(), list); err != nil {
		t.Fatalf("List pods: %v", err)
	}
	return list.Items
}

func (e *testEnv) events(t *testing.T) []eventsv1.Event {
	t.Helper()
	list := &eventsv1.EventList{}
	if err := e.base.List(context.Background(), list); err != nil {
		t.Fatalf("List events: %v", err)
	}
	return list.Items
}

func (e *testEnv) workerGroup(t *testing.T, name string) *probeletv0.WorkerGroup {
	t.Helper()
	wg := &probeletv0.WorkerGroup{}
	if err := e.base.Get(context.Background(), types.NamespacedName{Namespace: "default", Name: name}, wg); err != nil {
		t.Fatalf("Get WorkerGroup: %v", err)
	}
	return wg
}

// failureCount reads probelet_reconcile_failures_total from the registry.
func failureCount(t *testing.T, resource, kind string) float64 {
	t.Helper()
	return counterValue(t, "probelet_reconcile_failures_total",
		map[string]string{"resource": resource, "error_kind": kind})
}

// reconcileCount reads probelet_reconcile_total from the registry.
func reconcileCount(t *testing.T, resource string) float64 {
	t.Helper()
	return counterValue(t, "probelet_reconcile_total", map[string]string{"resource": resource})
}

func counterValue(t *testing.T, name string, want map[string]string) float64 {
	t.Helper()
	families, err := metrics.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			matched := true
			for k, v := range want {
				if labels[k] != v {
					matched = false
				}
			}
			if matched {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func clientKey(wg *probeletv0.WorkerGroup) types.NamespacedName {
	return types.NamespacedName{Namespace: wg.Namespace, Name: wg.Name}
}

func request(wg *probeletv0.WorkerGroup) reconcile.Request {
	return reconcile.Request{NamespacedName: clientKey(wg)}
}
