package telephony

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrMissingCredentials = errors.New("telephony: missing credentials")

// APIError is a non-2xx answer from a carrier REST API.
type APIError struct {
	Provider string
	Status   int
	Code     string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telephony: %s api status=%d code=%s: %s", e.Provider, e.Status, e.Code, e.Message)
}

// NewHTTPClient returns the client shared by carrier adapters. The timeout
// bounds every carrier call so a stalled carrier cannot hold a request.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
