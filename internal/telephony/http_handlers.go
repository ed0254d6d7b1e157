package telephony

import (
	"context"
	"net/http"

	"carrier-gateway/internal/calls"
	"carrier-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CallFlow is the part of the call orchestrator voice webhooks drive.
type CallFlow interface {
	HandleStatusEvent(ctx context.Context, ev calls.StatusEvent)
	HandleContinuation(ctx context.Context, callSID, answeredBy string, st calls.ContinuationState) (calls.Bridge, error)
}

// VoiceWebhookHandler converts Twilio voice webhooks to orchestrator calls
// and writes TwiML. No call logic lives here.
type VoiceWebhookHandler struct {
	Flow CallFlow
}

// HandleStatus always answers 204; carriers redeliver on anything else.
func (h VoiceWebhookHandler) HandleStatus(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseTwilioStatus(c.Request)
	if err != nil {
		log.Warn("voice status parse failed", "err", err)
		c.Status(http.StatusNoContent)
		return
	}

	h.Flow.HandleStatusEvent(c.Request.Context(), form.ToStatusEvent(c.Query("leg") == "b"))
	c.Status(http.StatusNoContent)
}

// HandleConnect answers the leg A continuation with a bridge or a hangup.
func (h VoiceWebhookHandler) HandleConnect(c *gin.Context) {
	log := logger.FromGin(c)

	st, err := calls.ParseContinuation(c.Request.URL.Query())
	if err != nil {
		log.Warn("continuation params invalid", "err", err)
		writeTwiML(c, HangupTwiML())
		return
	}
	form, err := ParseTwilioStatus(c.Request)
	if err != nil {
		log.Warn("continuation form parse failed", "err", err)
		writeTwiML(c, HangupTwiML())
		return
	}

	bridge, err := h.Flow.HandleContinuation(c.Request.Context(), form.CallSid, form.AnsweredBy, st)
	if err != nil {
		log.Warn("continuation rejected", "call_sid", form.CallSid, "err", err)
		writeTwiML(c, HangupTwiML())
		return
	}

	twiml, err := RenderBridge(bridge)
	if err != nil {
		log.Error("twiml render failed", "err", err)
		writeTwiML(c, HangupTwiML())
		return
	}
	writeTwiML(c, twiml)
}

func writeTwiML(c *gin.Context, body string) {
	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, body)
}
