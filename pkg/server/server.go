// Package server serves the operator's HTTP endpoints: liveness, readiness,
// diagnostics and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	"github.com/probelet/probelet-operator/pkg/monitoring"
)

// DefaultBindAddress is the listen address of the HTTP server.
const DefaultBindAddress = ":8080"

// Options configures the HTTP server.
type Options struct {
	BindAddress     string
	ShutdownTimeout time.Duration
}

// Server serves /healthz, /readyz, /diagnostics and /metrics. It runs as a
// manager.Runnable on every replica, elected or not.
type Server struct {
	opts   Options
	engine *gin.Engine
}

var _ manager.LeaderElectionRunnable = &Server{}

// New builds the server. ready decides the /readyz answer and may be nil,
// in which case the server is always ready.
func New(
	opts Options,
	diag *monitoring.Diagnostics,
	gatherer prometheus.Gatherer,
	ready healthz.Checker,
) *Server {
	if opts.BindAddress == "" {
		opts.BindAddress = DefaultBindAddress
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if ready == nil {
		ready = healthz.Ping
	}

	// Always release mode; request logging goes through logr instead.
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	h := &handlers{diag: diag, ready: ready}
	engine.GET("/healthz", h.healthz)
	engine.GET("/readyz", h.readyz)
	engine.GET("/diagnostics", h.diagnostics)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
		Timeout:       30 * time.Second,
	})))

	return &Server{opts: opts, engine: engine}
}

// Handler returns the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// NeedLeaderElection is false so probes answer on standby replicas too.
func (s *Server) NeedLeaderElection() bool {
	return false
}

// Start listens on the bind address until ctx is cancelled, then shuts the
// server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	logger := log.FromContext(ctx).WithName("http")

	ln, err := net.Listen("tcp", s.opts.BindAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.BindAddress, err)
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving HTTP", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Log.WithName("http").V(1).Info("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}
