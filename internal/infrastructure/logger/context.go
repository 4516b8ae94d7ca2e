package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	idempotencyKey
)

// WithContext stores l in ctx for L and FromContext.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records requestID in ctx and stores a child of l tagged
// with it. The child is returned too.
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	scoped := l.With(zap.String("request_id", requestID))
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return WithContext(ctx, scoped), scoped
}

// WithIdempotencyKey records the client key of a payment submission. An
// empty key leaves ctx unchanged.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, idempotencyKey, key)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func GetIdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey).(string)
	return key
}

// GetTraceID returns the trace id of the span in ctx, or "".
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// correlationFields collects the identifiers that tie a log line to its
// posting: trace and span ids, the request id unless the logger already
// carries it, and the client idempotency key.
func correlationFields(ctx context.Context, withRequestID bool) []zap.Field {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" && withRequestID {
		fields = append(fields, zap.String("request_id", id))
	}
	if key := GetIdempotencyKey(ctx); key != "" {
		fields = append(fields, zap.String("idempotency_key", key))
	}
	return fields
}

// ContextLogger writes through a zap logger, adding the correlation
// identifiers found in its context to every entry.
type ContextLogger struct {
	ctx    context.Context
	base   *zap.Logger
	scoped bool // base came from WithRequestID and carries request_id
}

// L logs through the logger stored in ctx.
//
//	logger.L(ctx).Info("payment posted", zap.String("payment_id", id))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, base: FromContext(ctx), scoped: true}
}

// WithLogger logs through l, which need not come from ctx.
func WithLogger(ctx context.Context, l *zap.Logger) *ContextLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ContextLogger{ctx: ctx, base: l}
}

// With returns a child carrying fields.
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, base: cl.base.With(fields...), scoped: cl.scoped}
}

// Zap returns the underlying logger with the correlation fields attached.
func (cl *ContextLogger) Zap() *zap.Logger {
	if fields := correlationFields(cl.ctx, !cl.scoped); len(fields) > 0 {
		return cl.base.With(fields...)
	}
	return cl.base
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) { cl.Zap().Debug(msg, fields...) }
func (cl *ContextLogger) Info(msg string, fields ...zap.Field)  { cl.Zap().Info(msg, fields...) }
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field)  { cl.Zap().Warn(msg, fields...) }
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) { cl.Zap().Error(msg, fields...) }
