// Package logger builds the zap loggers used across the posting engine and
// carries request correlation (request id, trace id, idempotency key)
// through contexts.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormat is millisecond ISO-8601, so ledger postings from one
// request sort correctly.
const DefaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config selects level, encoding and destination.
type Config struct {
	Level      string // debug | info | warn | error | fatal
	Format     string // json | console
	Output     string // stdout | stderr | file path
	TimeFormat string
}

// New builds a logger from cfg. Every entry carries service when it is set.
// Errors and above include a stack trace.
func New(cfg *Config, service string) (*zap.Logger, error) {
	sink, tty, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(newEncoder(cfg, tty), sink, parseLevel(cfg.Level))

	l := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if service != "" {
		l = l.With(zap.String("service", service))
	}
	return l, nil
}

// parseLevel accepts zap's level names in any case plus "warning". Unknown
// names log at info.
func parseLevel(level string) zapcore.Level {
	level = strings.ToLower(level)
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func newEncoder(cfg *Config, tty bool) zapcore.Encoder {
	layout := cfg.TimeFormat
	if layout == "" {
		layout = DefaultTimeFormat
	}
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(layout)
	ec.EncodeDuration = zapcore.MillisDurationEncoder

	if cfg.Format != "console" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if tty {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

// openOutput resolves the destination. tty reports a standard stream, where
// console output may be colored. A file that cannot be opened is an error.
func openOutput(output string) (ws zapcore.WriteSyncer, tty bool, err error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), true, nil
	case "stderr":
		return zapcore.Lock(os.Stderr), true, nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("open log output %s: %w", output, err)
	}
	return zapcore.AddSync(f), false, nil
}
