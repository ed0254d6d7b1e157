package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrier-gateway/internal/delivery"
	"carrier-gateway/internal/metrics"
	"carrier-gateway/pkg/logger"
	"carrier-gateway/pkg/utils"
)

// Recorder stores accepted messages so status webhooks can find them.
type Recorder interface {
	Create(ctx context.Context, m delivery.OutboundMessage) error
}

type SendSMSRequest struct {
	// UserID is the authenticated sender, never taken from the request body.
	UserID    string `json:"-"`
	To        string `json:"to"`
	Text      string `json:"text"`
	ClientRef string `json:"client_ref,omitempty"`
	Preferred string `json:"preferred,omitempty"`
}

// Result is the same shape whichever carrier accepted the message.
type Result struct {
	Provider  string `json:"provider"`
	MessageID string `json:"message_id"`
	To        string `json:"to"`
	ClientRef string `json:"client_ref,omitempty"`
}

// Dispatcher tries adapters one after another and stops at the first that
// accepts the message. Attempts never overlap, so a message is not handed to
// two carriers at once.
type Dispatcher struct {
	reg      *Registry
	recorder Recorder
	now      func() time.Time
}

func NewDispatcher(reg *Registry, recorder Recorder) *Dispatcher {
	return &Dispatcher{reg: reg, recorder: recorder, now: time.Now}
}

func (d *Dispatcher) SendSMS(ctx context.Context, req SendSMSRequest) (Result, error) {
	log := logger.From(ctx)

	to := utils.NormalizePhone(req.To)
	if !utils.IsE164(to) {
		return Result{}, fmt.Errorf("%w: destination must be E.164", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}
	if d.reg.Len() == 0 {
		return Result{}, &ConfigurationError{Provider: "dispatcher", Reason: "no carriers enabled"}
	}

	in := SendRequest{To: to, Text: req.Text, ClientRef: req.ClientRef}
	var failures []Failure

	for _, e := range d.reg.order(strings.ToLower(req.Preferred)) {
		name := e.adapter.Name()

		if !e.breaker.TryAcquire() {
			metrics.SendAttempts.WithLabelValues(name, "skipped").Inc()
			failures = append(failures, Failure{Provider: name, Err: ErrCircuitOpen})
			continue
		}

		rcpt, err := e.adapter.Send(ctx, in)
		if err != nil {
			var ce *ConfigurationError
			if errors.As(err, &ce) {
				e.breaker.Release()
				metrics.SendAttempts.WithLabelValues(name, "config_error").Inc()
				log.Error("sms carrier misconfigured", "provider", name, "reason", ce.Reason)
			} else {
				e.breaker.OnFailure()
				metrics.SendAttempts.WithLabelValues(name, "transport_error").Inc()
				log.Warn("sms carrier send failed, trying next", "provider", name, "err", err)
			}
			failures = append(failures, Failure{Provider: name, Err: err})
			continue
		}

		e.breaker.OnSuccess()
		metrics.SendAttempts.WithLabelValues(name, "ok").Inc()
		d.record(ctx, req.UserID, rcpt, in)

		return Result{
			Provider:  rcpt.Provider,
			MessageID: rcpt.MessageSID,
			To:        to,
			ClientRef: rcpt.ClientRef,
		}, nil
	}

	return Result{}, &AllProvidersFailedError{Failures: failures}
}

// record never fails the send: the carrier already has the message.
func (d *Dispatcher) record(ctx context.Context, userID string, rcpt Receipt, in SendRequest) {
	if d.recorder == nil {
		return
	}
	err := d.recorder.Create(ctx, delivery.OutboundMessage{
		ProviderMessageID: rcpt.MessageSID,
		Provider:          rcpt.Provider,
		UserID:            userID,
		To:                in.To,
		From:              rcpt.From,
		Body:              in.Text,
		ClientRef:         in.ClientRef,
		DeliveryStatus:    delivery.StatusSent,
		CreatedAt:         d.now().UTC(),
	})
	if err != nil {
		logger.From(ctx).Warn("sms record failed", "provider", rcpt.Provider, "sid", rcpt.MessageSID, "err", err)
	}
}
