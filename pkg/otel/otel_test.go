package otel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(Config{Enabled: false}, zap.NewNop())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	shutdown()
}

func TestGinMiddleware_RecordsServerSpan(t *testing.T) {
	sr := installRecorder(t)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/gravatar", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gravatar", nil))

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans = %d", len(spans))
	}
	if spans[0].Name() != "GET /gravatar" || spans[0].SpanKind() != trace.SpanKindServer {
		t.Fatalf("span = %s %v", spans[0].Name(), spans[0].SpanKind())
	}
	if spans[0].Status().Code != codes.Error {
		t.Fatalf("status = %v", spans[0].Status())
	}
	if w.Header().Get("traceparent") == "" {
		t.Fatalf("expected traceparent response header")
	}
}

func TestMQConsumeSpan_ContinuesUpstreamTrace(t *testing.T) {
	sr := installRecorder(t)

	ctx, parent := StartSpan(context.Background(), "publish")
	headers := map[string]interface{}{}
	otel.GetTextMapPropagator().Inject(ctx, NewMQHeaderCarrier(headers))
	parent.End()

	_, span := MQConsumeSpan(context.Background(), headers, "user.email_changed", "q")
	span.End()

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("spans = %d", len(spans))
	}
	if spans[1].Parent().TraceID() != spans[0].SpanContext().TraceID() {
		t.Fatalf("consumer span not linked to publisher trace")
	}
}

func TestEndClientSpan(t *testing.T) {
	sr := installRecorder(t)

	_, span := ClientSpan(context.Background(), "gravatar.fetch", http.MethodGet, "https://example.com")
	EndClientSpan(span, 0, errors.New("dial tcp: refused"))

	_, span = ClientSpan(context.Background(), "gravatar.fetch", http.MethodGet, "https://example.com")
	EndClientSpan(span, http.StatusNotFound, nil)

	spans := sr.Ended()
	if spans[0].Status().Code != codes.Error || spans[1].Status().Code == codes.Error {
		t.Fatalf("statuses = %v %v", spans[0].Status(), spans[1].Status())
	}
}

func TestMQHeaderCarrier_Bytes(t *testing.T) {
	c := NewMQHeaderCarrier(map[string]interface{}{"traceparent": []byte("abc"), "n": 1})
	if c.Get("traceparent") != "abc" || c.Get("n") != "" || c.Get("missing") != "" {
		t.Fatalf("unexpected carrier values")
	}
	c.Set("tracestate", "x")
	if len(c.Keys()) != 3 {
		t.Fatalf("keys = %v", c.Keys())
	}
}
