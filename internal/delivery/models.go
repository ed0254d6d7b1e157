package delivery

import (
	"strings"
	"time"
)

// OutboundMessage is one SMS send attempt accepted by a carrier.
// ProviderMessageID is the only key status webhooks correlate on.
type OutboundMessage struct {
	ID                string `json:"id" db:"id"`
	ProviderMessageID string `json:"provider_message_id" db:"provider_message_id"`
	Provider          string `json:"provider" db:"provider"`
	// UserID owns the message; status events are addressed to it.
	UserID string `json:"user_id,omitempty" db:"user_id"`

	To   string `json:"to" db:"to_number"`
	From string `json:"from,omitempty" db:"from_number"`
	Body string `json:"body" db:"body"`

	ClientRef string `json:"client_ref,omitempty" db:"client_ref"`

	DeliveryStatus       DeliveryStatus `json:"delivery_status" db:"delivery_status"`
	DeliveryErrorCode    *string        `json:"delivery_error_code,omitempty" db:"delivery_error_code"`
	DeliveryErrorMessage *string        `json:"delivery_error_message,omitempty" db:"delivery_error_message"`
	DeliveryUpdatedAt    *time.Time     `json:"delivery_updated_at,omitempty" db:"delivery_updated_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type DeliveryStatus string

const (
	StatusQueued      DeliveryStatus = "queued"
	StatusSent        DeliveryStatus = "sent"
	StatusDelivered   DeliveryStatus = "delivered"
	StatusUndelivered DeliveryStatus = "undelivered"
	StatusFailed      DeliveryStatus = "failed"
)

// NormalizeStatus folds carrier status vocabulary into DeliveryStatus.
// ok is false for statuses we do not recognise.
func NormalizeStatus(raw string) (s DeliveryStatus, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "accepted", "scheduled", "queued":
		return StatusQueued, true
	case "sending", "sent":
		return StatusSent, true
	case "delivered", "read":
		return StatusDelivered, true
	case "undelivered", "delivery_unconfirmed":
		return StatusUndelivered, true
	case "failed", "delivery_failed", "sending_failed", "canceled":
		return StatusFailed, true
	default:
		return "", false
	}
}

// DeliveryUpdate is the set of columns a status webhook overwrites.
type DeliveryUpdate struct {
	Status       DeliveryStatus
	ErrorCode    *string
	ErrorMessage *string
	UpdatedAt    time.Time
}
