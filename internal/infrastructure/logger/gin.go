package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GinMiddleware logs one line per request and installs a request-scoped
// logger in the request context, so handlers and services reach it through
// L(ctx). It expects the request id under the gin key "request_id".
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		scoped := base.With(zap.String("method", req.Method), zap.String("path", req.URL.Path))
		ctx := req.Context()
		if id := c.GetString("request_id"); id != "" {
			ctx, scoped = WithRequestID(ctx, scoped, id)
		} else {
			ctx = WithContext(ctx, scoped)
		}
		c.Request = req.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		ce := scoped.Check(levelForStatus(status), "HTTP Request")
		if ce == nil {
			return
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if req.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", req.URL.RawQuery))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}
		ce.Write(fields...)
	}
}

// levelForStatus logs rejected postings (4xx) at warn and failures at error.
func levelForStatus(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
