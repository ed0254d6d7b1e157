package sms

import (
	"context"
	"errors"

	"carrier-gateway/internal/telephony"
)

// SendRequest is the carrier-neutral send input. To is E.164.
type SendRequest struct {
	To        string
	Text      string
	ClientRef string
}

// Receipt is what a carrier hands back when it accepts a message.
type Receipt struct {
	Provider   string
	MessageSID string
	From       string
	ClientRef  string
}

// Adapter sends one message through one carrier. Implementations resolve
// credentials on every call and return *ConfigurationError or *TransportError.
type Adapter interface {
	Name() string
	Send(ctx context.Context, req SendRequest) (Receipt, error)
}

// transportError converts a telephony client error into the sms taxonomy.
func transportError(provider string, err error) error {
	var apiErr *telephony.APIError
	if errors.As(err, &apiErr) {
		return &TransportError{Provider: provider, Err: &ProviderError{
			Status:  apiErr.Status,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Err:     err,
		}}
	}
	return &TransportError{Provider: provider, Err: err}
}
