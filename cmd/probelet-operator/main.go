/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	probeletv0 "github.com/probelet/probelet-operator/api/v0"
	"github.com/probelet/probelet-operator/pkg/config"
	"github.com/probelet/probelet-operator/pkg/monitoring"
	"github.com/probelet/probelet-operator/pkg/server"
	"github.com/probelet/probelet-operator/pkg/workergroup"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(probeletv0.AddToScheme(scheme))
}

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "", "Path to a YAML configuration file.")

	opts := zap.Options{}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.NewLoader().WithConfigFile(configFile).Load()
	if err != nil {
		// The logger is not configured yet.
		ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
		setupLog.Error(err, "unable to load configuration")
		os.Exit(1)
	}

	// Explicit zap flags win over the configuration.
	zapOpts := cfg.ZapOptions()
	flagSet := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { flagSet[f.Name] = true })
	if flagSet["zap-devel"] {
		zapOpts.Development = opts.Development
	}
	if flagSet["zap-log-level"] {
		zapOpts.Level = opts.Level
	}
	zapOpts.Encoder = opts.Encoder
	zapOpts.StacktraceLevel = opts.StacktraceLevel
	zapOpts.TimeEncoder = opts.TimeEncoder
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts)))

	ctx := ctrl.SetupSignalHandler()

	shutdownTracing, err := monitoring.InitTracing(ctx, cfg.Tracing.ServiceName, probeletv0.OperatorVersion)
	if err != nil {
		setupLog.Error(err, "unable to initialize tracing")
		os.Exit(1)
	}

	runErr := run(ctx, cfg)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := shutdownTracing(shutdownCtx); err != nil {
		setupLog.Error(err, "failed to shut down tracing")
	}
	cancel()

	if runErr != nil {
		setupLog.Error(runErr, "problem running operator")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Configuration) error {
	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		// /metrics is served by our own HTTP server.
		Metrics:                 metricsserver.Options{BindAddress: "0"},
		LeaderElection:          cfg.LeaderElection.Enabled,
		LeaderElectionID:        cfg.LeaderElection.ID,
		LeaderElectionNamespace: cfg.LeaderElection.Namespace,
	})
	if err != nil {
		return fmt.Errorf("unable to create manager: %w", err)
	}

	instance := cfg.Controller.ReportingInstance
	if instance == "" {
		instance = reportingInstance()
	}
	diag := monitoring.NewDiagnostics(workergroup.ControllerName, time.Now())

	// The cache is not running yet, so the check goes straight to the API
	// server.
	if err := setupController(ctx, mgr.GetAPIReader(), func() error {
		return workergroup.SetupWithManager(mgr, diag, instance, workergroup.Options{
			MaxConcurrentReconciles: cfg.Controller.MaxConcurrentReconciles,
			ErrorRequeue:            cfg.Controller.ErrorRequeue,
		})
	}); err != nil {
		return err
	}

	srv := server.New(server.Options{
		BindAddress:     cfg.Server.BindAddress,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, diag, metrics.Registry, cacheSynced(mgr))
	if err := mgr.Add(srv); err != nil {
		return fmt.Errorf("unable to add HTTP server: %w", err)
	}

	setupLog.Info("starting manager",
		"version", probeletv0.OperatorVersion,
		"instance", instance,
		"bindAddress", cfg.Server.BindAddress,
		"leaderElection", cfg.LeaderElection.Enabled)
	return mgr.Start(ctx)
}

// setupController registers the controller through setup only once the
// WorkerGroup resource is known to be installed. A missing resource is fatal
// and nothing is subscribed.
func setupController(ctx context.Context, reader client.Reader, setup func() error) error {
	if err := workergroup.CheckInstalled(ctx, reader); err != nil {
		return err
	}
	return setup()
}

// cacheSynced reports ready once the manager's informer caches have synced.
func cacheSynced(mgr manager.Manager) healthz.Checker {
	return func(req *http.Request) error {
		ctx, cancel := context.WithTimeout(req.Context(), time.Second)
		defer cancel()
		if !mgr.GetCache().WaitForCacheSync(ctx) {
			return errors.New("informer caches are not synced")
		}
		return nil
	}
}

// reportingInstance names this replica in published events.
func reportingInstance() string {
	if name := os.Getenv("POD_NAME"); name != "" {
		return name
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "unknown"
}
