package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/brainforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/brainforge-backend/internal/platform/logger"
	"github.com/yungbote/brainforge-backend/internal/platform/requestdata"
)

// RequestLogger writes one line per request after the handler chain ran.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"path", routeOrPath(c),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
		}
		ctx := c.Request.Context()
		if t, ok := ctxutil.TraceFrom(ctx); ok {
			kv = append(kv, t.LogFields()...)
		}
		if uid := requestdata.UserID(ctx); uid != uuid.Nil {
			kv = append(kv, "user_id", uid.String())
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "error", c.Errors.String())
		}
		levelFor(log, status)("HTTP request", kv...)
	}
}

func levelFor(log *logger.Logger, status int) func(string, ...any) {
	switch {
	case status >= 500:
		return log.Error
	case status >= 400:
		return log.Warn
	}
	return log.Info
}

func routeOrPath(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}
