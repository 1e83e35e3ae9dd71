//go:build integration

package workergroup_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	corev1 "k8s.io/api/core/v1"
	eventsv1 "k8s.io/api/events/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
	"github.com/probelet/probelet-operator/pkg/workergroup"
)

var _ = Describe("WorkerGroup controller", func() {
	const (
		timeout  = 30 * time.Second
		interval = 250 * time.Millisecond
	)

	var (
		namespace string
		key       types.NamespacedName
	)

	BeforeEach(func() {
		ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{GenerateName: "probelet-"}}
		Expect(k8sClient.Create(ctx, ns)).To(Succeed())
		namespace = ns.Name
		key = types.NamespacedName{Name: "probes", Namespace: namespace}
	})

	createWorkerGroup := func(replicas int32) *probeletv0.WorkerGroup {
		wg := &probeletv0.WorkerGroup{
			ObjectMeta: metav1.ObjectMeta{Name: key.Name, Namespace: key.Namespace},
			Spec:       probeletv0.WorkerGroupSpec{Replicas: replicas, Image: "nginx"},
		}
		Expect(k8sClient.Create(ctx, wg)).To(Succeed())
		return wg
	}

	workerPods := func() []corev1.Pod {
		pods := &corev1.PodList{}
		Expect(k8sClient.List(ctx, pods,
			client.InNamespace(namespace),
			client.MatchingLabels{probeletv0.LabelWorkerGroupName: key.Name},
		)).To(Succeed())
		return pods.Items
	}

	It("creates one worker pod and reports it in the status", func() {
		wg := createWorkerGroup(1)

		By("waiting for the worker pod")
		Eventually(func() []corev1.Pod { return workerPods() }, timeout, interval).Should(HaveLen(1))

		pod := workerPods()[0]
		Expect(metav1.IsControlledBy(&pod, wg)).To(BeTrue())
		Expect(pod.Spec.Containers).To(HaveLen(1))
		Expect(pod.Spec.Containers[0].Image).To(Equal("nginx"))

		By("waiting for the status")
		Eventually(func(g Gomega) {
			got := &probeletv0.WorkerGroup{}
			g.Expect(k8sClient.Get(ctx, key, got)).To(Succeed())
			g.Expect(got.Status).NotTo(BeNil())
			g.Expect(got.Status.Instances).To(Equal(int32(1)))
			g.Expect(got.Status.ReadyInstances).To(Equal(int32(0)))
			g.Expect(got.Finalizers).To(ContainElement(workergroup.FinalizerName))
		}, timeout, interval).Should(Succeed())

		By("checking no second worker is created")
		Consistently(func() []corev1.Pod { return workerPods() }, 3*time.Second, interval).Should(HaveLen(1))

		By("checking the WorkerCreated event")
		Eventually(func() []string {
			events := &eventsv1.EventList{}
			Expect(k8sClient.List(ctx, events, client.InNamespace(namespace))).To(Succeed())
			var reasons []string
			for _, ev := range events.Items {
				reasons = append(reasons, ev.Reason)
			}
			return reasons
		}, timeout, interval).Should(ContainElement(workergroup.ReasonWorkerCreated))

		Expect(diag.Snapshot().LastEvent).NotTo(BeZero())
	})

	It("creates nothing for a group without replicas", func() {
		createWorkerGroup(0)

		Eventually(func(g Gomega) {
			got := &probeletv0.WorkerGroup{}
			g.Expect(k8sClient.Get(ctx, key, got)).To(Succeed())
			g.Expect(got.Status).NotTo(BeNil())
			g.Expect(got.Status.Instances).To(BeZero())
		}, timeout, interval).Should(Succeed())

		Consistently(func() []corev1.Pod { return workerPods() }, 2*time.Second, interval).Should(BeEmpty())
	})

	It("releases the finalizer when the group is deleted", func() {
		wg := createWorkerGroup(1)

		Eventually(func(g Gomega) {
			got := &probeletv0.WorkerGroup{}
			g.Expect(k8sClient.Get(ctx, key, got)).To(Succeed())
			g.Expect(got.Finalizers).To(ContainElement(workergroup.FinalizerName))
		}, timeout, interval).Should(Succeed())

		Expect(k8sClient.Delete(ctx, wg)).To(Succeed())

		Eventually(func() bool {
			err := k8sClient.Get(ctx, key, &probeletv0.WorkerGroup{})
			return apierrors.IsNotFound(err)
		}, timeout, interval).Should(BeTrue())
	})
})
