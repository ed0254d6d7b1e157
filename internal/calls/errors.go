package calls

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidDestination         = errors.New("invalid destination")
	ErrNoAssignedNumber           = errors.New("no assigned number")
	ErrUnverifiedForwardingNumber = errors.New("unverified forwarding number")

	ErrInvalidRequest     = errors.New("invalid call request")
	ErrCarrierUnavailable = errors.New("carrier rejected call")
	ErrNotFound           = errors.New("call session not found")
	ErrUserNotFound       = errors.New("user not found")

	// ErrContinuationRejected means the continuation callback does not match
	// a live session or the caller's identity; leg B is never dialed.
	ErrContinuationRejected = errors.New("continuation rejected")
)

// HTTPStatus maps an orchestrator error to the status the API returns.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidDestination), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoAssignedNumber), errors.Is(err, ErrUnverifiedForwardingNumber):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrCarrierUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ErrContinuationRejected):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine-readable error name used in API responses.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDestination):
		return "InvalidDestination"
	case errors.Is(err, ErrNoAssignedNumber):
		return "NoAssignedNumber"
	case errors.Is(err, ErrUnverifiedForwardingNumber):
		return "UnverifiedForwardingNumber"
	case errors.Is(err, ErrInvalidRequest):
		return "InvalidRequest"
	case errors.Is(err, ErrCarrierUnavailable):
		return "CarrierUnavailable"
	case errors.Is(err, ErrContinuationRejected):
		return "ContinuationRejected"
	default:
		return "Internal"
	}
}
