package sms

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRequest = errors.New("invalid sms request")
	ErrCircuitOpen    = errors.New("circuit open")
)

// ConfigurationError means a carrier cannot be used as configured, e.g. no
// origin address or no credentials. It is raised per call, never at startup.
type ConfigurationError struct {
	Provider string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("sms: %s misconfigured: %s", e.Provider, e.Reason)
}

// ProviderError is the carrier's own rejection of a request. Err keeps the
// client error it was built from.
type ProviderError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (code %s)", e.Message, e.Code)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// TransportError wraps any failure of the carrier call itself: network,
// timeout or a non-2xx answer (then Err is a *ProviderError).
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sms: %s send failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Failure is one adapter's reason for not sending.
type Failure struct {
	Provider string
	Err      error
}

// AllProvidersFailedError lists every adapter that was tried or skipped.
type AllProvidersFailedError struct {
	Failures []Failure
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Provider, f.Err))
	}
	return "sms: all providers failed: " + strings.Join(parts, "; ")
}

func (e *AllProvidersFailedError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Err)
	}
	return out
}

// OnlyConfiguration reports whether no carrier was reachable at all because
// every failure is a configuration problem.
func (e *AllProvidersFailedError) OnlyConfiguration() bool {
	if len(e.Failures) == 0 {
		return false
	}
	for _, f := range e.Failures {
		var ce *ConfigurationError
		if !errors.As(f.Err, &ce) {
			return false
		}
	}
	return true
}
