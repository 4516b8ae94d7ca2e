package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const (
	// DefaultExportInterval is how often metrics are pushed when no
	// interval is configured.
	DefaultExportInterval = time.Minute

	providerShutdownTimeout = 10 * time.Second
)

// MetricsConfig configures the OTLP metrics pipeline.
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	Insecure          bool
	ExportInterval    time.Duration
}

// MeterProvider owns the SDK meter provider while metrics are exported.
// Disabled, it hands out meters from the global no-op provider so posting
// code records unconditionally.
type MeterProvider struct {
	sdk *sdkmetric.MeterProvider
	log *zap.Logger
}

// NewMeterProvider starts periodic OTLP export when cfg.Enabled is set.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, log *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{log: log}
	if !cfg.Enabled {
		log.Info("metrics export disabled")
		return mp, nil
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = DefaultExportInterval
	}
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP metrics exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.sdk = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.sdk)
	log.Info("metrics export enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("interval", interval),
	)
	return mp, nil
}

// IsEnabled reports whether metrics leave the process.
func (mp *MeterProvider) IsEnabled() bool {
	return mp.sdk != nil
}

// Meter returns a named meter.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.sdk == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.sdk.Meter(name, opts...)
}

// Shutdown pushes the last interval and stops export.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, providerShutdownTimeout)
	defer cancel()
	if err := mp.sdk.Shutdown(ctx); err != nil {
		mp.log.Error("meter provider shutdown failed", zap.Error(err))
		return fmt.Errorf("shutdown meter provider: %w", err)
	}
	return nil
}

// Counter is a monotonically increasing int64 instrument.
type Counter struct {
	inst metric.Int64Counter
}

// NewCounter registers a counter on meter.
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	inst, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("create counter %s: %w", name, err)
	}
	return &Counter{inst: inst}, nil
}

func (c *Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	c.inst.Add(ctx, n, metric.WithAttributes(attrs...))
}

func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// HistogramOpts describes a float64 histogram. Empty Boundaries keep the
// SDK's default buckets.
type HistogramOpts struct {
	Name        string
	Description string
	Unit        string
	Boundaries  []float64
}

// Histogram records durations in seconds.
type Histogram struct {
	inst metric.Float64Histogram
}

// NewHistogram registers a histogram on meter.
func NewHistogram(meter metric.Meter, o HistogramOpts) (*Histogram, error) {
	opts := []metric.Float64HistogramOption{metric.WithDescription(o.Description), metric.WithUnit(o.Unit)}
	if len(o.Boundaries) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(o.Boundaries...))
	}
	inst, err := meter.Float64Histogram(o.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("create histogram %s: %w", o.Name, err)
	}
	return &Histogram{inst: inst}, nil
}

func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.inst.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}
