package calls

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// PostgresStore assumes the call_sessions, user_numbers and
// user_forwarding_numbers tables from migrations/.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, sess Session) error {
	const q = `
INSERT INTO call_sessions
    (call_sid, user_id, from_number, to_number, user_forwarding_number, stage,
     machine_detection_result, last_status_event, created_at, updated_at)
VALUES
    (:call_sid, :user_id, :from_number, :to_number, :user_forwarding_number, :stage,
     :machine_detection_result, :last_status_event, :created_at, :updated_at)
`
	_, err := s.db.NamedExecContext(ctx, q, sess)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, callSID string) (Session, error) {
	const q = `
SELECT call_sid, user_id, from_number, to_number, user_forwarding_number, stage,
       machine_detection_result, last_status_event, created_at, updated_at
FROM call_sessions
WHERE call_sid = $1
`
	var sess Session
	if err := s.db.GetContext(ctx, &sess, q, callSID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return sess, nil
}

func (s *PostgresStore) Transition(ctx context.Context, callSID string, from []Stage, u StageUpdate) (bool, error) {
	const q = `
UPDATE call_sessions
SET stage = $2,
    last_status_event = $3,
    machine_detection_result = COALESCE(NULLIF($4, ''), machine_detection_result),
    updated_at = $5
WHERE call_sid = $1 AND stage = ANY($6)
`
	allowed := make([]string, 0, len(from))
	for _, st := range from {
		allowed = append(allowed, string(st))
	}
	res, err := s.db.ExecContext(ctx, q, callSID, u.Stage, u.LastStatusEvent, u.MachineDetectionResult, u.UpdatedAt, allowed)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *PostgresStore) Identity(ctx context.Context, userID string) (Identity, error) {
	id := Identity{UserID: userID}

	const qNumbers = `
SELECT number, assigned_at
FROM user_numbers
WHERE user_id = $1 AND released_at IS NULL
ORDER BY assigned_at
`
	if err := s.db.SelectContext(ctx, &id.AssignedNumbers, qNumbers, userID); err != nil {
		return Identity{}, err
	}

	const qForwarding = `
SELECT forwarding_number
FROM user_forwarding_numbers
WHERE user_id = $1
`
	var fwd sql.NullString
	if err := s.db.GetContext(ctx, &fwd, qForwarding, userID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Identity{}, err
	}
	id.ForwardingNumber = fwd.String
	return id, nil
}
