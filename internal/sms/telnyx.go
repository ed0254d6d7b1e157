package sms

import (
	"context"

	"carrier-gateway/internal/telephony"
)

type TelnyxAdapter struct {
	client *telephony.TelnyxClient
}

func NewTelnyxAdapter(client *telephony.TelnyxClient) *TelnyxAdapter {
	return &TelnyxAdapter{client: client}
}

func (a *TelnyxAdapter) Name() string { return "telnyx" }

func (a *TelnyxAdapter) Send(ctx context.Context, req SendRequest) (Receipt, error) {
	cfg := a.client.Config()
	if cfg.APIKey == "" {
		return Receipt{}, &ConfigurationError{Provider: a.Name(), Reason: "api key required"}
	}

	params := telephony.TelnyxMessageParams{To: req.To, Text: req.Text}
	switch {
	case cfg.MessagingProfileID != "":
		params.MessagingProfileID = cfg.MessagingProfileID
	case cfg.FromNumber != "":
		params.From = cfg.FromNumber
	default:
		return Receipt{}, &ConfigurationError{Provider: a.Name(), Reason: "messaging profile id or from number required"}
	}

	msg, err := a.client.SendMessage(ctx, params)
	if err != nil {
		return Receipt{}, transportError(a.Name(), err)
	}
	return Receipt{Provider: a.Name(), MessageSID: msg.ID, From: msg.From, ClientRef: req.ClientRef}, nil
}
