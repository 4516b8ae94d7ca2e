package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/erp/posting/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewPostingMetrics_NilMeter(t *testing.T) {
	pm, err := telemetry.NewPostingMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, pm)
}

func TestPostingMetrics_NilReceiver(t *testing.T) {
	var pm *telemetry.PostingMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		pm.RecordStockEntries(ctx, "sales", 2)
		pm.RecordLedgerEntries(ctx, 2)
		pm.RecordPayment(ctx, "customer", "cash")
		pm.RecordRejected(ctx, "record_payment", "OVERPAYMENT")
		pm.RecordDuration(ctx, "record_payment", time.Millisecond)
	})
}

func TestPostingMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("posting")
	pm, err := telemetry.NewPostingMetrics(meter)
	require.NoError(t, err)

	ctx := context.Background()
	pm.RecordStockEntries(ctx, "purchase", 3)
	pm.RecordStockEntries(ctx, "purchase", 0)
	pm.RecordLedgerEntries(ctx, 2)
	pm.RecordPayment(ctx, "vendor", "bank_transfer")
	pm.RecordRejected(ctx, "record_payment", "OVERPAYMENT")
	pm.RecordRejected(ctx, "record_payment", "OVERPAYMENT")
	pm.RecordDuration(ctx, "change_order_status", 5*time.Millisecond)

	data := collect(t, reader)

	stock := data["posting_stock_ledger_entries_total"].(metricdata.Sum[int64])
	require.Len(t, stock.DataPoints, 1)
	assert.Equal(t, int64(3), stock.DataPoints[0].Value)
	kind, _ := stock.DataPoints[0].Attributes.Value(attribute.Key("order_kind"))
	assert.Equal(t, "purchase", kind.AsString())

	ledger := data["posting_financial_ledger_entries_total"].(metricdata.Sum[int64])
	assert.Equal(t, int64(2), ledger.DataPoints[0].Value)

	payments := data["posting_payments_total"].(metricdata.Sum[int64])
	assert.Equal(t, int64(1), payments.DataPoints[0].Value)

	rejected := data["posting_rejected_total"].(metricdata.Sum[int64])
	require.Len(t, rejected.DataPoints, 1)
	assert.Equal(t, int64(2), rejected.DataPoints[0].Value)
	code, _ := rejected.DataPoints[0].Attributes.Value(attribute.Key("error_code"))
	assert.Equal(t, "OVERPAYMENT", code.AsString())

	duration := data["posting_transaction_duration_seconds"].(metricdata.Histogram[float64])
	assert.Equal(t, uint64(1), duration.DataPoints[0].Count)
}
