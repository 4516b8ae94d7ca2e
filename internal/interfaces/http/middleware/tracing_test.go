package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/posting/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(previous)
	})

	return sr
}

func tracedRouter(status int) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"}), SpanEnricher())
	router.POST("/api/v1/payments", func(c *gin.Context) {
		c.JSON(status, gin.H{})
	})
	return router
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
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestSpanEnricher_AddsRequestAttributes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := setupTestTracer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil)
	req.Header.Set("X-Request-ID", "req-123")
	req.Header.Set(IdempotencyKeyHeader, "pay-key-1")
	w := httptest.NewRecorder()
	tracedRouter(http.StatusCreated).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/api/v1/payments")

	v, ok := spanAttr(spans[0], "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-123", v.AsString())
	v, ok = spanAttr(spans[0], "idempotency_key")
	require.True(t, ok)
	assert.Equal(t, "pay-key-1", v.AsString())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestSpanEnricher_MarksErrorResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, status := range []int{http.StatusUnprocessableEntity, http.StatusInternalServerError} {
		sr := setupTestTracer(t)
		w := httptest.NewRecorder()
		tracedRouter(status).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil))

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code, "status %d", status)
	}
}

func TestIdempotencyKey_StoresKeyInContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	router := gin.New()
	router.Use(IdempotencyKey())
	router.POST("/pay", func(c *gin.Context) {
		seen = logger.GetIdempotencyKey(c.Request.Context())
		c.Status(http.StatusOK)
	})

	long := strings.Repeat("k", MaxRequestIDLength+10)
	req := httptest.NewRequest(http.MethodPost, "/pay", nil)
	req.Header.Set(IdempotencyKeyHeader, long)
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, long[:MaxRequestIDLength], seen)

	seen = "unchanged"
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/pay", nil))
	assert.Equal(t, "", seen)
}
