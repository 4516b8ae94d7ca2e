package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowSQL is the slow-query threshold used when none is configured.
const DefaultSlowSQL = 200 * time.Millisecond

// GormConfig selects what the SQL logger emits.
type GormConfig struct {
	Level gormlogger.LogLevel
	// SlowThreshold turns statements slower than this into warnings; 0 disables it.
	SlowThreshold time.Duration
}

// GormLogger routes GORM output through zap. Every statement is tagged with
// the request, trace and idempotency key of the posting that issued it, so
// a failed payment can be followed down to its SQL.
type GormLogger struct {
	zl  *zap.Logger
	cfg GormConfig
}

var _ gormlogger.Interface = (*GormLogger)(nil)

// NewGormLogger creates a SQL logger named "gorm" under zl.
func NewGormLogger(zl *zap.Logger, cfg GormConfig) *GormLogger {
	return &GormLogger{zl: zl.Named("gorm"), cfg: cfg}
}

// LogMode returns a copy at the given level.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.cfg.Level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, at gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.cfg.Level < at {
		return
	}
	if ce := l.zl.Check(lvl, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write(correlationFields(ctx, true)...)
	}
}

// Trace logs one executed statement.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.cfg.Level >= gormlogger.Error:
		// misses and unique conflicts are outcomes of posting checks; the
		// caller turns them into domain errors
		if errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			l.zl.Debug("SQL unique conflict", statementFields(ctx, elapsed, fc, zap.Error(err))...)
			return
		}
		l.zl.Error("SQL error", statementFields(ctx, elapsed, fc, zap.Error(err))...)

	case l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold && l.cfg.Level >= gormlogger.Warn:
		l.zl.Warn("slow SQL", statementFields(ctx, elapsed, fc, zap.Duration("threshold", l.cfg.SlowThreshold))...)

	case l.cfg.Level >= gormlogger.Info:
		l.zl.Debug("SQL", statementFields(ctx, elapsed, fc)...)
	}
}

func statementFields(ctx context.Context, elapsed time.Duration, fc func() (string, int64), extra ...zap.Field) []zap.Field {
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	fields = append(fields, correlationFields(ctx, true)...)
	return append(fields, extra...)
}

// MapGormLogLevel maps the application log level to a GORM log level.
// Anything unrecognised logs warnings and errors only.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
