// Package middleware provides HTTP middleware for the posting API.
package middleware

import (
	"net/http"

	"github.com/erp/posting/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength bounds client-supplied request ids and idempotency keys
// copied into span attributes.
const MaxRequestIDLength = 128

// IdempotencyKeyHeader carries the client key of a payment submission
const IdempotencyKeyHeader = "Idempotency-Key"

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	// ServiceName is the name of the service for trace identification.
	ServiceName string
	// Enabled controls whether tracing is active.
	Enabled bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "posting-engine",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig returns the otelgin middleware, or a pass-through when
// tracing is disabled. Pair it with SpanEnricher.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}

	return otelgin.Middleware(cfg.ServiceName)
}

// SpanEnricher copies request attributes onto the active span and marks
// error responses. It must run after Tracing and RequestID.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := truncate(c.GetString("request_id")); requestID != "" {
				span.SetAttributes(attribute.String("request_id", requestID))
			}
			if key := truncate(c.GetHeader(IdempotencyKeyHeader)); key != "" {
				span.SetAttributes(attribute.String("idempotency_key", key))
			}
		}

		c.Next()

		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			msg := "Client Error"
			if status >= http.StatusInternalServerError {
				msg = "Internal Server Error"
			}
			span.SetStatus(codes.Error, msg)
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}

// IdempotencyKey stores the Idempotency-Key header in the request context so
// posting logs carry it.
func IdempotencyKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := truncate(c.GetHeader(IdempotencyKeyHeader)); key != "" {
			c.Request = c.Request.WithContext(logger.WithIdempotencyKey(c.Request.Context(), key))
		}
		c.Next()
	}
}

func truncate(s string) string {
	if len(s) > MaxRequestIDLength {
		return s[:MaxRequestIDLength]
	}
	return s
}
