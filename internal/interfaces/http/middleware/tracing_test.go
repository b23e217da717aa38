package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	r := okRouter(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "storefront"}))
	w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracingWithConfig_Attributes(t *testing.T) {
	sr := setupTestTracer(t)
	jwtService := newTestJWTService()
	pair, input := newTestTokenPair(t, jwtService, false)

	r := gin.New()
	r.Use(RequestID(), TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "storefront"}), SpanAnnotator())
	r.Use(JWTAuthMiddleware(jwtService))
	r.GET("/api/products/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/api/products/abc", nil)
	req.Header.Set("X-Request-ID", "req-trace-1")
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	serve(r, req)

	span := findSpan(t, sr, "GET /api/products/:id")
	v, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-trace-1", v.AsString())
	v, ok = spanAttr(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, input.UserID.String(), v.AsString())
}

func TestSpanAnnotator(t *testing.T) {
	tests := []struct {
		status          int
		wantError       bool
		wantDescription string
	}{
		{http.StatusOK, false, ""},
		{http.StatusBadRequest, true, "Bad Request"},
		{http.StatusNotFound, true, "Not Found"},
		// set by otelgin when the span ends
		{http.StatusInternalServerError, true, ""},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sr := setupTestTracer(t)
			r := gin.New()
			r.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "storefront"}), SpanAnnotator())
			r.GET("/status", func(c *gin.Context) { c.Status(tt.status) })

			serve(r, httptest.NewRequest(http.MethodGet, "/status", nil))

			span := findSpan(t, sr, "GET /status")
			if tt.wantError {
				assert.Equal(t, codes.Error, span.Status().Code)
				assert.Equal(t, tt.wantDescription, span.Status().Description)
			} else {
				assert.NotEqual(t, codes.Error, span.Status().Code)
			}
		})
	}
}

func TestSpanAnnotator_WithoutSpan(t *testing.T) {
	r := gin.New()
	r.Use(SpanAnnotator())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	assert.Equal(t, http.StatusBadRequest, serve(r, httptest.NewRequest(http.MethodGet, "/test", nil)).Code)
}

func TestTracingWithConfig_SkipPaths(t *testing.T) {
	sr := setupTestTracer(t)
	r := gin.New()
	r.Use(TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "storefront", SkipPaths: []string{"/health"}}), SpanAnnotator())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/products/", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, sr.Ended())

	serve(r, httptest.NewRequest(http.MethodGet, "/api/products/", nil))
	assert.Len(t, sr.Ended(), 1)
}
