package ports

import (
	"context"
	"encoding/json"
)

// SubmitRequest carries everything the gateway needs for one submission.
// The token is single-use; the core makes at most one Submit call per token.
type SubmitRequest struct {
	Token       string
	AmountMinor int64 // minor currency units (cents)
	FirstName   string
	LastName    string
	Email       string
}

// NormalizedResult is the uniform success/failure shape the core consumes
// regardless of the gateway's native response format. RawResponse is
// diagnostic-only; no schema beyond being serializable may be assumed.
type NormalizedResult struct {
	Success         bool
	TransactionID   string // present iff Success
	ResponseCode    string // present on failure
	ResponseMessage string // present on failure
	RawResponse     json.RawMessage
}

// SubmissionGateway is the boundary to the payment gateway. Submit performs
// no automatic retries, is called at most once per token, and always resolves
// to a result or a descriptive error within the client's timeout — it never
// hangs indefinitely from the core's point of view.
type SubmissionGateway interface {
	Submit(ctx context.Context, req SubmitRequest) (*NormalizedResult, error)
}
