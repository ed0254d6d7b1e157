package main

import (
	"context"
	"net/http"
	"time"

	"carrier-gateway/internal/auth"
	"carrier-gateway/internal/config"
	"carrier-gateway/internal/httpapi"
	"carrier-gateway/internal/telephony"
	"carrier-gateway/internal/webhook"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type deps struct {
	auth       *auth.Manager
	dispatcher httpapi.SMSSender
	correlator httpapi.StatusSink
	calls      interface {
		httpapi.AliasCaller
		telephony.CallFlow
	}

	// ready reports whether backing stores are reachable; nil means always.
	ready func(ctx context.Context) error

	webhookSecret    string
	webhookTolerance time.Duration
	callsCfg         config.CallsConfig
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, d deps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if d.ready != nil {
			if err := d.ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := httpapi.Handlers{SMS: d.dispatcher, Calls: d.calls, Delivery: d.correlator}

	// Carrier webhooks: every one must carry a valid signature.
	signed := webhook.RequireSignature(d.webhookSecret, d.webhookTolerance)
	voice := telephony.VoiceWebhookHandler{Flow: d.calls}
	r.POST("/webhooks/sms/status", signed, h.SMSStatusWebhook)
	r.POST(d.callsCfg.StatusCallbackPath, signed, voice.HandleStatus)
	r.POST(d.callsCfg.ContinuationPath, signed, voice.HandleConnect)

	// internal API used by the messaging application
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(d.auth))
	{
		v1.POST("/sms/send", h.SendSMS)
		v1.POST("/calls/alias", h.StartAliasCall)
	}
}
