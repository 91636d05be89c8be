package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/brainforge-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxClientIDLen = 128
)

// AttachTraceContext stamps every request with a request id and a trace id.
// An active span's trace id wins over the X-Trace-Id header so log lines
// match exported traces.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := ctxutil.Trace{
			TraceID:   traceIDFor(c),
			RequestID: clientID(c, headerRequestID, uuid.NewString),
		}
		c.Request = c.Request.WithContext(ctxutil.WithTrace(c.Request.Context(), t))
		h := c.Writer.Header()
		h.Set(headerTraceID, t.TraceID)
		h.Set(headerRequestID, t.RequestID)
		c.Next()
	}
}

func traceIDFor(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return clientID(c, headerTraceID, func() string {
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	})
}

// clientID trusts a short client supplied header and otherwise mints one.
func clientID(c *gin.Context, header string, mint func() string) string {
	if id := strings.TrimSpace(c.GetHeader(header)); id != "" && len(id) <= maxClientIDLen {
		return id
	}
	return mint()
}
