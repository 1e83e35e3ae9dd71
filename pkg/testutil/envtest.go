package testutil

import (
	"context"
	"testing"
	"time"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/envtest"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
)

// EnvtestOption is a functional option for configuring envtest setup.
type EnvtestOption func(*envtest.Environment)

// WithCRDs installs the given CRD objects when envtest starts.
func WithCRDs(crds ...*apiextensionsv1.CustomResourceDefinition) EnvtestOption {
	return func(env *envtest.Environment) {
		env.CRDs = append(env.CRDs, crds...)
	}
}

// WithCRDPaths installs the CRD manifests found under paths.
func WithCRDPaths(paths ...string) EnvtestOption {
	return func(env *envtest.Environment) {
		env.CRDDirectoryPaths = append(env.CRDDirectoryPaths, paths...)
		env.ErrorIfCRDPathMissing = true
	}
}

// SetUpEnvtest starts a Kubernetes API server for testing and stops it when
// the test finishes.
//
// This requires the envtest binaries to be available, either through
// KUBEBUILDER_ASSETS or in the default setup-envtest location.
func SetUpEnvtest(t testing.TB, opts ...EnvtestOption) *rest.Config {
	t.Helper()

	testEnv := &envtest.Environment{
		// Increase timeout to handle resource contention when many tests run in parallel
		ControlPlaneStartTimeout: 60 * time.Second,
		ControlPlaneStopTimeout:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(testEnv)
	}

	cfg, err := testEnv.Start()
	if err != nil {
		t.Fatalf("Setting up with envtest failed, %v", err)
	}
	t.Cleanup(cleanEnvtest(t, testEnv))

	return cfg
}

// SetUpClient creates a direct Kubernetes client that bypasses any cache.
//
// Use it to read what is actually stored in the API server, for example to
// assert on objects written by the operator immediately after a reconcile.
func SetUpClient(t testing.TB, cfg *rest.Config, scheme *runtime.Scheme) client.Client {
	t.Helper()

	k8sClient, err := client.New(cfg, client.Options{Scheme: scheme})
	if err != nil {
		t.Fatalf("Failed to setup a Kubernetes client: %v", err)
	}

	return k8sClient
}

// SetUpManager creates a controller-runtime manager for testing.
//
// The manager is created but NOT started; register runnables first and then
// call StartManager.
func SetUpManager(t testing.TB, cfg *rest.Config, scheme *runtime.Scheme) manager.Manager {
	t.Helper()

	mgr, err := ctrl.NewManager(cfg, ctrl.Options{
		Scheme:         scheme,
		LeaderElection: false,
		Metrics: metricsserver.Options{
			BindAddress: "0",
		},
	})
	if err != nil {
		t.Fatalf("Failed to set up manager: %v", err)
	}

	return mgr
}

// StartManager starts the manager in the background using t.Context() and
// waits for its cache to sync. The manager stops when the test finishes.
func StartManager(t testing.TB, mgr manager.Manager) {
	t.Helper()

	_ = startManager(t, t.Context(), mgr)
}

// startManager returns a channel that is closed once the manager goroutine
// has returned.
func startManager(t testing.TB, ctx context.Context, mgr manager.Manager) <-chan struct{} {
	t.Helper()

	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := mgr.Start(ctx); err != nil {
			t.Errorf("Manager failed: %v", err)
		}
	}()

	if !mgr.GetCache().WaitForCacheSync(ctx) {
		t.Fatal("Cache failed to sync")
	}

	return done
}

type envtestStopper interface {
	Stop() error
}

func cleanEnvtest(t testing.TB, testEnv envtestStopper) func() {
	t.Helper()

	return func() {
		if err := testEnv.Stop(); err != nil {
			t.Fatalf("Failed to stop envtest, %v", err)
		}
	}
}
