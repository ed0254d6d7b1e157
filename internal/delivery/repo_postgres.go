package delivery

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresStore assumes the outbound_messages table from migrations/.
// provider_message_id is indexed but not unique: a resend of the same
// carrier id is tolerated and every matching row is updated.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, m OutboundMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	const q = `
INSERT INTO outbound_messages
    (id, provider_message_id, provider, user_id, to_number, from_number, body, client_ref, delivery_status, created_at)
VALUES
    (:id, :provider_message_id, :provider, :user_id, :to_number, :from_number, :body, :client_ref, :delivery_status, :created_at)
`
	_, err := s.db.NamedExecContext(ctx, q, m)
	return err
}

func (s *PostgresStore) UpdateDeliveryStatus(ctx context.Context, providerMessageID string, u DeliveryUpdate) ([]string, error) {
	const q = `
UPDATE outbound_messages
SET delivery_status = $2,
    delivery_error_code = $3,
    delivery_error_message = $4,
    delivery_updated_at = $5
WHERE provider_message_id = $1
RETURNING user_id
`
	var owners []string
	if err := s.db.SelectContext(ctx, &owners, q, providerMessageID, u.Status, u.ErrorCode, u.ErrorMessage, u.UpdatedAt); err != nil {
		return nil, err
	}
	return owners, nil
}

// GetByProviderID is used by the operator CLI to inspect a message.
func (s *PostgresStore) GetByProviderID(ctx context.Context, providerMessageID string) ([]OutboundMessage, error) {
	const q = `
SELECT id, provider_message_id, provider, user_id, to_number, from_number, body, client_ref,
       delivery_status, delivery_error_code, delivery_error_message, delivery_updated_at, created_at
FROM outbound_messages
WHERE provider_message_id = $1
ORDER BY created_at
`
	var out []OutboundMessage
	if err := s.db.SelectContext(ctx, &out, q, providerMessageID); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
