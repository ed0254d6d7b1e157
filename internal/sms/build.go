package sms

import (
	"fmt"

	"carrier-gateway/internal/config"
	"carrier-gateway/internal/telephony"
)

// BuildRegistry registers the enabled carriers in their configured order.
// statusCallbackURL is handed to carriers that accept a per-message webhook.
func BuildRegistry(cfg config.CarriersConfig, statusCallbackURL string) (*Registry, error) {
	httpClient := telephony.NewHTTPClient(cfg.Timeout)
	bs := BreakerSettings{FailThreshold: cfg.Breaker.FailThreshold, OpenFor: cfg.Breaker.OpenFor}

	reg := NewRegistry()
	for _, name := range cfg.Enabled {
		var a Adapter
		switch name {
		case "twilio":
			a = NewTwilioAdapter(telephony.NewTwilioClient(cfg.Twilio, httpClient), statusCallbackURL)
		case "telnyx":
			a = NewTelnyxAdapter(telephony.NewTelnyxClient(cfg.Telnyx, httpClient))
		case "mock":
			a = MockAdapter{}
		default:
			return nil, fmt.Errorf("sms: unknown carrier %q", name)
		}
		if err := reg.Register(a, bs); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
