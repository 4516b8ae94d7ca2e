package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys on posting metrics.
var (
	AttrOrderKind     = attribute.Key("order_kind")
	AttrDirection     = attribute.Key("payment_direction")
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrOperation     = attribute.Key("operation")
	AttrErrorCode     = attribute.Key("error_code")
)

// PostingDurationBuckets bound posting transaction durations in seconds.
// Postings hold row locks, so the interesting range is short.
var PostingDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// PostingMetrics counts what the posting engine writes and rejects. All
// methods are safe on a nil receiver so callers can run without metrics.
type PostingMetrics struct {
	stockEntries    *Counter
	ledgerEntries   *Counter
	payments        *Counter
	rejected        *Counter
	postingDuration *Histogram
}

// NewPostingMetrics creates the posting counters on the given meter.
func NewPostingMetrics(meter metric.Meter) (*PostingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		pm  PostingMetrics
		err error
	)
	if pm.stockEntries, err = NewCounter(meter,
		"posting_stock_ledger_entries_total",
		"Stock ledger entries written by committed postings",
		"{entries}",
	); err != nil {
		return nil, err
	}
	if pm.ledgerEntries, err = NewCounter(meter,
		"posting_financial_ledger_entries_total",
		"Financial ledger entries written by committed payments",
		"{entries}",
	); err != nil {
		return nil, err
	}
	if pm.payments, err = NewCounter(meter,
		"posting_payments_total",
		"Payments posted against bills and invoices",
		"{payments}",
	); err != nil {
		return nil, err
	}
	if pm.rejected, err = NewCounter(meter,
		"posting_rejected_total",
		"Posting requests rejected or rolled back, by error code",
		"{requests}",
	); err != nil {
		return nil, err
	}
	if pm.postingDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "posting_transaction_duration_seconds",
		Description: "Duration of posting transactions including lock waits",
		Unit:        "s",
		Boundaries:  PostingDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return &pm, nil
}

// RecordStockEntries counts stock ledger entries written for an order kind
// or a manual movement type.
func (m *PostingMetrics) RecordStockEntries(ctx context.Context, kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.stockEntries.Add(ctx, int64(n), AttrOrderKind.String(kind))
}

// RecordLedgerEntries counts financial ledger entries.
func (m *PostingMetrics) RecordLedgerEntries(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ledgerEntries.Add(ctx, int64(n))
}

// RecordPayment counts a committed payment.
func (m *PostingMetrics) RecordPayment(ctx context.Context, direction, method string) {
	if m == nil {
		return
	}
	m.payments.Inc(ctx, AttrDirection.String(direction), AttrPaymentMethod.String(method))
}

// RecordRejected counts a rejected or rolled-back request.
func (m *PostingMetrics) RecordRejected(ctx context.Context, operation, code string) {
	if m == nil {
		return
	}
	m.rejected.Inc(ctx, AttrOperation.String(operation), AttrErrorCode.String(code))
}

// RecordDuration records how long a posting transaction took.
func (m *PostingMetrics) RecordDuration(ctx context.Context, operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.postingDuration.RecordDuration(ctx, d, AttrOperation.String(operation))
}
