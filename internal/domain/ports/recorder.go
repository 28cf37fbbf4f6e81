package ports

import (
	"context"
	"time"
)

// AttemptRecord is the audit row persisted when a submission settles.
// It deliberately has no token field; tokens must never be persisted.
type AttemptRecord struct {
	SessionID       string
	AttemptID       string
	Outcome         string // "success", "declined", "system_error"
	TransactionID   string
	ResponseCode    string
	ResponseMessage string
	AmountMinor     int64
	SettledAt       time.Time
}

// AttemptRecorder is an optional audit sink for settled submission attempts.
// Recording failures are logged and swallowed; they never affect the
// user-facing outcome.
type AttemptRecorder interface {
	Record(ctx context.Context, rec AttemptRecord) error
}
