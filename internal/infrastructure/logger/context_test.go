package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func contextWithSpan() context.Context {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		SpanID:     trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func fieldMap(entry observer.LoggedEntry) map[string]any {
	return entry.ContextMap()
}

func TestWithContext(t *testing.T) {
	base := zap.NewExample()
	ctx := WithContext(context.Background(), base)

	assert.Same(t, base, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), loggerKey, "not a logger")
	assert.NotNil(t, FromContext(ctx))
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, reqLogger := WithRequestID(context.Background(), zap.New(core), "req-123")
	reqLogger.Info("hello")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Same(t, reqLogger, FromContext(ctx))
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "req-123", fieldMap(recorded.All()[0])["request_id"])
}

func TestWithIdempotencyKey(t *testing.T) {
	ctx := WithIdempotencyKey(context.Background(), "client-key-1")
	assert.Equal(t, "client-key-1", GetIdempotencyKey(ctx))

	empty := context.Background()
	assert.Equal(t, empty, WithIdempotencyKey(empty, ""))
	assert.Empty(t, GetIdempotencyKey(empty))
}

func TestGetTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", GetTraceID(contextWithSpan()))
}

func TestContextLogger_EnrichesWithTraceAndKeys(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx := context.WithValue(contextWithSpan(), requestIDKey, "req-9")
	ctx = WithIdempotencyKey(ctx, "pay-key")
	WithLogger(ctx, zap.New(core)).Info("payment posted")

	require.Len(t, recorded.All(), 1)
	fields := fieldMap(recorded.All()[0])
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", fields["trace_id"])
	assert.Equal(t, "0102030405060708", fields["span_id"])
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "pay-key", fields["idempotency_key"])
}

func TestContextLogger_ScopedLoggerDoesNotRepeatRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-1")
	L(ctx).Info("scoped")

	require.Len(t, recorded.All(), 1)
	count := 0
	for _, f := range recorded.All()[0].Context {
		if f.Key == "request_id" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestContextLogger_EmptyContext(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	cl := WithLogger(context.Background(), zap.New(core))
	cl.Debug("debug")
	cl.Warn("warn")
	cl.Error("error")

	require.Len(t, recorded.All(), 3)
	for _, entry := range recorded.All() {
		assert.Empty(t, entry.Context)
	}
}

func TestContextLogger_With(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	WithLogger(context.Background(), zap.New(core)).
		With(zap.String("order_id", "o-1")).
		Info("order stock posted")

	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "o-1", fieldMap(recorded.All()[0])["order_id"])
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := WithLogger(context.Background(), nil)
	assert.NotPanics(t, func() {
		cl.Info("nothing")
		cl.With(zap.Int("n", 1)).Warn("still nothing")
		_ = cl.Zap()
	})
}
