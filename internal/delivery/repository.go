package delivery

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// MessageStore persists outbound messages and their delivery state.
type MessageStore interface {
	Create(ctx context.Context, m OutboundMessage) error
	// UpdateDeliveryStatus overwrites delivery columns on every row with the
	// given provider message id and returns the owner of each matched row.
	// No owners means no message matched.
	UpdateDeliveryStatus(ctx context.Context, providerMessageID string, u DeliveryUpdate) ([]string, error)
}
