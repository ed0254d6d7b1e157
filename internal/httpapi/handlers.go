package httpapi

import (
	"context"
	"errors"
	"net/http"

	"carrier-gateway/internal/auth"
	"carrier-gateway/internal/calls"
	"carrier-gateway/internal/delivery"
	"carrier-gateway/internal/sms"
	"carrier-gateway/internal/telephony"
	"carrier-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
)

type SMSSender interface {
	SendSMS(ctx context.Context, req sms.SendSMSRequest) (sms.Result, error)
}

type AliasCaller interface {
	StartAliasCall(ctx context.Context, req calls.StartRequest) (calls.StartResult, error)
}

type StatusSink interface {
	HandleStatusUpdate(ctx context.Context, p delivery.Payload)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	SMS      SMSSender
	Calls    AliasCaller
	Delivery StatusSink
}

// --- SMS ---

func (h Handlers) SendSMS(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	var req sms.SendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.UserID = userID

	res, err := h.SMS.SendSMS(c.Request.Context(), req)
	if err != nil {
		status, code := smsErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logger.FromGin(c).Error("sms send failed", "err", err)
		}
		c.AbortWithStatusJSON(status, gin.H{"error": code, "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func smsErrorStatus(err error) (int, string) {
	var all *sms.AllProvidersFailedError
	var ce *sms.ConfigurationError
	var te *sms.TransportError
	switch {
	case errors.Is(err, sms.ErrInvalidRequest):
		return http.StatusBadRequest, "InvalidRequest"
	case errors.As(err, &all):
		if all.OnlyConfiguration() {
			return http.StatusInternalServerError, "ConfigurationError"
		}
		return http.StatusBadGateway, "AllProvidersFailed"
	case errors.As(err, &ce):
		return http.StatusInternalServerError, "ConfigurationError"
	case errors.As(err, &te):
		return http.StatusBadGateway, "TransportError"
	default:
		return http.StatusInternalServerError, "Internal"
	}
}

// --- Calls ---

type aliasCallRequest struct {
	To string `json:"to"`
}

func (h Handlers) StartAliasCall(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
		return
	}
	var req aliasCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	res, err := h.Calls.StartAliasCall(c.Request.Context(), calls.StartRequest{UserID: userID, To: req.To})
	if err != nil {
		status := calls.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			logger.FromGin(c).Error("alias call failed", "user_id", userID, "err", err)
		}
		c.AbortWithStatusJSON(status, gin.H{"error": calls.Code(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- Webhooks ---

// SMSStatusWebhook always answers 204 once the signature check passed.
// Carriers redeliver on non-2xx, which would only duplicate the update.
func (h Handlers) SMSStatusWebhook(c *gin.Context) {
	fields, err := telephony.FlattenForm(c.Request)
	if err != nil {
		logger.FromGin(c).Warn("sms status parse failed", "err", err)
		c.Status(http.StatusNoContent)
		return
	}
	h.Delivery.HandleStatusUpdate(c.Request.Context(), delivery.Payload(fields))
	c.Status(http.StatusNoContent)
}
