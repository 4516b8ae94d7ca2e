package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/posting/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer behind every service span.
const TracerName = "posting-engine"

// AttrRejectionCode carries the domain error code of a rejected posting.
const AttrRejectionCode = attribute.Key("posting.rejection_code")

// StartServiceSpan starts an internal span named "<service>.<method>", for
// example "posting.record_payment", with the given key/value attributes.
// The caller ends it.
func StartServiceSpan(ctx context.Context, service, method string, keyValues ...any) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attributes(keyValues)...),
	)
}

// SetAttributes adds alternating key/value pairs to span. A pair whose key
// is not a string is skipped, as is a trailing key without a value.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span != nil {
		span.SetAttributes(attributes(keyValues)...)
	}
}

// RecordError marks span failed. A domain rejection also records its code
// so rejected postings can be told apart from infrastructure failures.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		span.SetAttributes(AttrRejectionCode.String(de.Code))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent records a named point in span, such as "stock_posted".
func AddEvent(span trace.Span, name string, keyValues ...any) {
	if span != nil {
		span.AddEvent(name, trace.WithAttributes(attributes(keyValues)...))
	}
}

func attributes(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, attributeOf(key, keyValues[i+1]))
		}
	}
	return attrs
}

func attributeOf(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
