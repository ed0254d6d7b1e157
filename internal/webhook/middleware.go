package webhook

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"carrier-gateway/internal/metrics"
	"carrier-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Signature-Timestamp"

	maxBodyBytes = 1 << 20
)

// RequireSignature rejects requests whose body is not signed with secret.
// On success the body is restored so handlers can parse it as usual.
// Rejections log only the reason, never the payload.
func RequireSignature(secret string, tolerance time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromGin(c)

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			reject(c, "unreadable_body")
			return
		}
		_ = c.Request.Body.Close()

		err = Check(secret, c.GetHeader(HeaderTimestamp), body, c.GetHeader(HeaderSignature), tolerance, time.Now())
		if err != nil {
			log.Warn("webhook rejected", "reason", Reason(err), "path", c.FullPath())
			reject(c, Reason(err))
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func reject(c *gin.Context, reason string) {
	metrics.WebhookRejections.WithLabelValues(reason).Inc()
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
}
