package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/probelet/probelet-operator/pkg/monitoring"
)

var _ = Describe("Server", func() {
	var (
		diag     *monitoring.Diagnostics
		registry *prometheus.Registry
		ready    error
		srv      *Server
		started  time.Time
	)

	BeforeEach(func() {
		started = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		diag = monitoring.NewDiagnostics("probelet-worker-group-controller", started)
		registry = prometheus.NewRegistry()
		counter := prometheus.NewCounter(prometheus.CounterOpts{
			Name: "probelet_test_total",
			Help: "Test counter.",
		})
		registry.MustRegister(counter)
		counter.Inc()
		ready = nil

		srv = New(Options{}, diag, registry, func(*http.Request) error { return ready })
	})

	Describe("GET /healthz", func() {
		It("should answer healthy", func() {
			response := performRequest(srv.Handler(), "/healthz")
			Expect(response.Code).To(Equal(http.StatusOK))

			var body string
			Expect(json.Unmarshal(response.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(Equal("healthy"))
		})
	})

	Describe("GET /readyz", func() {
		It("should return 200 when ready", func() {
			response := performRequest(srv.Handler(), "/readyz")
			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(response.Body.String()).To(ContainSubstring(`"ready"`))
		})

		It("should return 503 with the reason when not ready", func() {
			ready = errors.New("cache not synced")

			response := performRequest(srv.Handler(), "/readyz")
			Expect(response.Code).To(Equal(http.StatusServiceUnavailable))

			var body map[string]string
			Expect(json.Unmarshal(response.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("status", "not ready"))
			Expect(body).To(HaveKeyWithValue("reason", "cache not synced"))
		})
	})

	Describe("GET /diagnostics", func() {
		It("should return the diagnostics snapshot", func() {
			diag.MarkEvent(started.Add(time.Minute))

			response := performRequest(srv.Handler(), "/diagnostics")
			Expect(response.Code).To(Equal(http.StatusOK))

			var snap monitoring.DiagnosticsSnapshot
			Expect(json.Unmarshal(response.Body.Bytes(), &snap)).To(Succeed())
			Expect(snap.Reporter).To(Equal("probelet-worker-group-controller"))
			Expect(snap.LastEvent).To(BeTemporally("==", started.Add(time.Minute)))
		})

		It("should return 503 without diagnostics", func() {
			srv = New(Options{}, nil, registry, nil)
			response := performRequest(srv.Handler(), "/diagnostics")
			Expect(response.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("GET /metrics", func() {
		It("should serve the gatherer in Prometheus text format", func() {
			response := performRequest(srv.Handler(), "/metrics")
			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(response.Body.String()).To(ContainSubstring("probelet_test_total 1"))
		})
	})

	Describe("Start", func() {
		It("should not require leader election", func() {
			Expect(srv.NeedLeaderElection()).To(BeFalse())
		})

		It("should stop cleanly when the context is cancelled", func() {
			srv = New(Options{BindAddress: "127.0.0.1:0"}, diag, registry, nil)
			ctx, cancel := context.WithCancel(context.Background())

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(ctx) }()

			cancel()
			Eventually(errCh, 5*time.Second).Should(Receive(BeNil()))
		})

		It("should fail on an invalid bind address", func() {
			srv = New(Options{BindAddress: "not-an-address"}, diag, registry, nil)
			Expect(srv.Start(context.Background())).To(HaveOccurred())
		})
	})
})
