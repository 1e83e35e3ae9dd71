package monitoring

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	// Point the package-level Tracer at our test provider.
	Tracer = tp.Tracer(tracerName)
	return exporter
}

func TestStartReconcileSpan(t *testing.T) {
	exporter := newTestTracer(t)

	ctx, span := StartReconcileSpan(
		context.Background(),
		"WorkerGroup.Reconcile",
		"probes",
		"default",
		"WorkerGroup",
	)
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Name != "WorkerGroup.Reconcile" {
		t.Errorf("span name = %q, want %q", s.Name, "WorkerGroup.Reconcile")
	}

	wantAttrs := map[string]string{
		"k8s.resource.name": "probes",
		"k8s.namespace":     "default",
		"k8s.resource.kind": "WorkerGroup",
	}
	got := map[string]string{}
	for _, attr := range s.Attributes {
		got[string(attr.Key)] = attr.Value.AsString()
	}
	for key, want := range wantAttrs {
		if got[key] != want {
			t.Errorf("attribute %q = %q, want %q", key, got[key], want)
		}
	}

	if TraceID(ctx) != s.SpanContext.TraceID().String() {
		t.Errorf("TraceID() = %q, want %q", TraceID(ctx), s.SpanContext.TraceID())
	}
}

func TestStartChildSpan(t *testing.T) {
	exporter := newTestTracer(t)

	ctx, parent := StartReconcileSpan(context.Background(), "Parent.Reconcile", "res", "ns", "Kind")
	_, child := StartChildSpan(ctx, "CreateWorker")
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	childSpan, parentSpan := spans[0], spans[1]
	if childSpan.Parent.SpanID() != parentSpan.SpanContext.SpanID() {
		t.Errorf(
			"child parent span ID = %s, want %s",
			childSpan.Parent.SpanID(),
			parentSpan.SpanContext.SpanID(),
		)
	}
	if childSpan.Name != "CreateWorker" {
		t.Errorf("child span name = %q, want %q", childSpan.Name, "CreateWorker")
	}
}

func TestRecordSpanError(t *testing.T) {
	exporter := newTestTracer(t)

	t.Run("records error on span", func(t *testing.T) {
		exporter.Reset()
		_, span := StartReconcileSpan(context.Background(), "Op", "n", "ns", "K")
		RecordSpanError(span, errors.New("something failed"))
		span.End()

		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}

		s := spans[0]
		if s.Status.Code != codes.Error {
			t.Errorf("span status = %v, want Error", s.Status.Code)
		}
		if s.Status.Description != "something failed" {
			t.Errorf("span status description = %q, want %q", s.Status.Description, "something failed")
		}

		foundErrorEvent := false
		for _, event := range s.Events {
			if event.Name == "exception" {
				foundErrorEvent = true
			}
		}
		if !foundErrorEvent {
			t.Error("expected an exception event on the span")
		}
	})

	t.Run("nil error is no-op", func(t *testing.T) {
		exporter.Reset()
		_, span := StartReconcileSpan(context.Background(), "Op", "n", "ns", "K")
		RecordSpanError(span, nil)
		span.End()

		spans := exporter.GetSpans()
		if len(spans) != 1 {
			t.Fatalf("expected 1 span, got %d", len(spans))
		}
		if spans[0].Status.Code == codes.Error {
			t.Error("nil error should not set error status")
		}
	})
}

func TestTraceID_NoSpan(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID() = %q, want empty", got)
	}
}

func TestEnrichLoggerWithTrace(t *testing.T) {
	newTestTracer(t)

	t.Run("adds trace_id and span_id to logger", func(t *testing.T) {
		ctx, span := Tracer.Start(context.Background(), "test-op")
		defer span.End()

		ctx = logr.NewContext(ctx, logr.Discard())
		enrichedCtx := EnrichLoggerWithTrace(ctx)
		if enrichedCtx == ctx {
			t.Error("expected enriched context to differ from original")
		}
	})

	t.Run("noop for invalid span context", func(t *testing.T) {
		ctx := logr.NewContext(context.Background(), logr.Discard())
		if result := EnrichLoggerWithTrace(ctx); result != ctx {
			t.Error("expected unchanged context for invalid span")
		}
	})
}

func TestInitTracing_NoopWhenEndpointUnset(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	shutdown, err := InitTracing(context.Background(), "test-svc", "v0.0.1")
	if err != nil {
		t.Fatalf("InitTracing() returned error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() returned error: %v", err)
	}
}

func TestInitTracing_WithEndpoint(t *testing.T) {
	// The "none" exporter keeps autoexport off the network while still
	// exercising resource creation and provider setup.
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318")
	t.Setenv("OTEL_TRACES_EXPORTER", "none")

	shutdown, err := InitTracing(context.Background(), "test-svc", "v0.0.1")
	if err != nil {
		t.Fatalf("InitTracing() returned error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected non-nil shutdown function")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() returned error: %v", err)
	}
}

func TestInitTracing_ExporterError(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318")
	t.Setenv("OTEL_TRACES_EXPORTER", "invalid-exporter-type")

	shutdown, err := InitTracing(context.Background(), "test-svc", "v0.0.1")
	if err == nil {
		t.Fatal("InitTracing() should have failed with invalid exporter type")
	}
	if shutdown != nil {
		t.Fatal("shutdown function should be nil on error")
	}
}
