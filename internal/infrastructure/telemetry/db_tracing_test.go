package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedModel struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"size:20;uniqueIndex"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedModel{}))
	return db
}

func setupRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, sr
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_Register_Disabled(t *testing.T) {
	db := setupTestDB(t)

	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	require.NoError(t, plugin.Register(db))
	_, registered := db.Plugins["otelgorm"]
	assert.False(t, registered)
}

func TestDBTracingPlugin_Register_Enabled(t *testing.T) {
	db := setupTestDB(t)
	tp, sr := setupRecorder(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "posting.create_product")
	require.NoError(t, db.WithContext(ctx).Create(&tracedModel{Code: "SKU-1"}).Error)
	span.End()

	assert.NotEmpty(t, sr.Ended())
}

func TestDBTracingPlugin_Register_Twice(t *testing.T) {
	db := setupTestDB(t)

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
	require.NoError(t, plugin.Register(db))
	assert.Error(t, plugin.Register(db))
}

func TestAfterQuery_SlowQuery(t *testing.T) {
	db := setupTestDB(t)
	tp, sr := setupRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: 200 * time.Millisecond}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "slow")
	ctx = context.WithValue(ctx, queryStartTimeKey, time.Now().Add(-time.Second))

	var found []tracedModel
	tx := db.WithContext(ctx).Find(&found)
	require.NoError(t, tx.Error)
	plugin.afterQuery(tx)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	var eventNames []string
	for _, e := range ended[0].Events() {
		eventNames = append(eventNames, e.Name)
	}
	assert.Contains(t, eventNames, "slow_query_warning")
	assert.NotEqual(t, codes.Error, ended[0].Status().Code)
}

func TestAfterQuery_UniqueConflictIsNotSpanError(t *testing.T) {
	db := setupTestDB(t)
	tp, sr := setupRecorder(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

	require.NoError(t, db.Create(&tracedModel{Code: "DUP"}).Error)

	ctx, span := tp.Tracer("test").Start(context.Background(), "conflict")
	tx := db.WithContext(ctx).Create(&tracedModel{Code: "DUP"})
	require.ErrorIs(t, tx.Error, gorm.ErrDuplicatedKey)
	plugin.afterQuery(tx)
	span.End()

	ended := sr.Ended()[0]
	assert.Equal(t, codes.Unset, ended.Status().Code)
	require.NotEmpty(t, ended.Events())
	assert.Equal(t, "unique_conflict", ended.Events()[0].Name)
}

func TestAfterQuery_NonRecordingSpan(t *testing.T) {
	db := setupTestDB(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

	tx := db.WithContext(context.Background()).Find(&[]tracedModel{})
	assert.NotPanics(t, func() { plugin.afterQuery(tx) })
}
