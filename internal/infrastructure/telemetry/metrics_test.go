package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/erp/posting/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:     false,
		ServiceName: "posting-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))
}

// collect gathers everything recorded on a manual reader
func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestCounterAndHistogram(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	counter, err := telemetry.NewCounter(meter, "test_total", "test counter", "{n}")
	require.NoError(t, err)
	counter.Add(context.Background(), 4)
	counter.Inc(context.Background())

	hist, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:       "test_duration_seconds",
		Unit:       "s",
		Boundaries: telemetry.PostingDurationBuckets,
	})
	require.NoError(t, err)
	hist.RecordDuration(context.Background(), 20*time.Millisecond)

	data := collect(t, reader)

	sum, ok := data["test_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(5), sum.DataPoints[0].Value)

	h, ok := data["test_duration_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, h.DataPoints, 1)
	assert.Equal(t, uint64(1), h.DataPoints[0].Count)
	assert.Equal(t, telemetry.PostingDurationBuckets, h.DataPoints[0].Bounds)
}
