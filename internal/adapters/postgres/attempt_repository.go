package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// AttemptRepository persists settled submission attempts for audit and
// reconciliation. It stores outcomes only; tokens never reach this layer
// by construction (AttemptRecord has no token field).
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new attempt repository
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const insertAttempt = `
INSERT INTO payment_attempts (
	id, session_id, attempt_id, outcome, transaction_id,
	response_code, response_message, amount_minor, settled_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Record inserts one settled attempt row.
func (r *AttemptRepository) Record(ctx context.Context, rec ports.AttemptRecord) error {
	_, err := r.pool.Exec(ctx, insertAttempt,
		uuid.New(),
		rec.SessionID,
		rec.AttemptID,
		rec.Outcome,
		rec.TransactionID,
		rec.ResponseCode,
		rec.ResponseMessage,
		rec.AmountMinor,
		rec.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment attempt: %w", err)
	}
	return nil
}

// Schema returns the DDL for the payment_attempts table, applied by the
// migrate command.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS payment_attempts (
	id UUID PRIMARY KEY,
	session_id TEXT NOT NULL,
	attempt_id TEXT NOT NULL,
	outcome TEXT NOT NULL,
	transaction_id TEXT NOT NULL DEFAULT '',
	response_code TEXT NOT NULL DEFAULT '',
	response_message TEXT NOT NULL DEFAULT '',
	amount_minor BIGINT NOT NULL,
	settled_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_payment_attempts_session ON payment_attempts (session_id);
`
}
