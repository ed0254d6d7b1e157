package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-Id"
	ginKey          = "gateway.logger"
)

// Middleware scopes l to the request id (taken from X-Request-Id or minted)
// and stores it on both the gin and request contexts. One summary line is
// written per request; 5xx and handler errors log at error level.
func Middleware(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(headerRequestID, rid)

		rl := l.With("request_id", rid)
		c.Set(ginKey, rl)
		c.Request = c.Request.WithContext(With(c.Request.Context(), rl))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"latency", time.Since(start),
		}

		switch {
		case len(c.Errors) > 0:
			rl.Error("request", append(attrs, "errors", c.Errors.String())...)
		case status >= 500:
			rl.Error("request", attrs...)
		default:
			rl.Info("request", attrs...)
		}
	}
}

// FromGin returns the request logger, or slog.Default outside Middleware.
func FromGin(c *gin.Context) *slog.Logger {
	if l, ok := c.Value(ginKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
