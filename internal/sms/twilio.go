package sms

import (
	"context"

	"carrier-gateway/internal/telephony"
)

type TwilioAdapter struct {
	client         *telephony.TwilioClient
	statusCallback string
}

// NewTwilioAdapter sends through client. statusCallback is the public URL of
// the delivery status webhook; empty disables it.
func NewTwilioAdapter(client *telephony.TwilioClient, statusCallback string) *TwilioAdapter {
	return &TwilioAdapter{client: client, statusCallback: statusCallback}
}

func (a *TwilioAdapter) Name() string { return "twilio" }

func (a *TwilioAdapter) Send(ctx context.Context, req SendRequest) (Receipt, error) {
	cfg := a.client.Config()
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return Receipt{}, &ConfigurationError{Provider: a.Name(), Reason: "account sid and auth token required"}
	}

	params := telephony.TwilioMessageParams{
		To:             req.To,
		Body:           req.Text,
		StatusCallback: a.statusCallback,
	}
	// exactly one origin; the pooled service wins over a single number
	switch {
	case cfg.MessagingServiceSID != "":
		params.MessagingServiceSID = cfg.MessagingServiceSID
	case cfg.FromNumber != "":
		params.From = cfg.FromNumber
	default:
		return Receipt{}, &ConfigurationError{Provider: a.Name(), Reason: "messaging service sid or from number required"}
	}

	msg, err := a.client.SendMessage(ctx, params)
	if err != nil {
		return Receipt{}, transportError(a.Name(), err)
	}
	return Receipt{Provider: a.Name(), MessageSID: msg.SID, From: msg.From, ClientRef: req.ClientRef}, nil
}
