package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// maxResponseBody bounds how much of a gateway response is read.
const maxResponseBody = 1 << 20

// SubmitAdapter implements ports.SubmissionGateway over the gateway's
// HTTP JSON API. It performs no retries: a token is single-use and retry
// policy lives above this boundary.
type SubmitAdapter struct {
	client  *http.Client
	baseURL string
	logger  ports.Logger
}

// NewSubmitAdapter creates a submission client. The http.Client's timeout
// is the guarantee that Submit never hangs from the core's point of view.
func NewSubmitAdapter(baseURL string, client *http.Client, logger ports.Logger) *SubmitAdapter {
	return &SubmitAdapter{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

// submitPayload is the gateway's wire request. The token is opaque and
// must never appear anywhere but this request body.
type submitPayload struct {
	Token     string `json:"token"`
	Amount    int64  `json:"amount"` // minor units
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// submitResponse is the subset of the gateway's response this core
// depends on. Everything else stays in RawResponse.
type submitResponse struct {
	Success         bool   `json:"success"`
	TransactionID   string `json:"transactionId"`
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}

// Submit performs the single gateway call for one token.
func (a *SubmitAdapter) Submit(ctx context.Context, req ports.SubmitRequest) (*ports.NormalizedResult, error) {
	body, err := json.Marshal(submitPayload{
		Token:     req.Token,
		Amount:    req.AmountMinor,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeSubmissionFailed, "encode submit request", err)
	}

	url := a.baseURL + "/v1/payments"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeSubmissionFailed, "build submit request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		a.logger.Error("gateway submit transport failure",
			ports.Int64("amount_minor", req.AmountMinor),
			ports.Err(err))
		return nil, domain.WrapError(domain.ErrorCodeSubmissionFailed, "gateway request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeSubmissionFailed, "read gateway response", err)
	}

	var wire submitResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		a.logger.Error("unparseable gateway response",
			ports.Int("status", resp.StatusCode),
			ports.Err(err))
		return nil, domain.WrapError(domain.ErrorCodeSubmissionBadReply,
			fmt.Sprintf("gateway returned HTTP %d with unparseable body", resp.StatusCode), err)
	}

	result := &ports.NormalizedResult{
		Success:         wire.Success,
		TransactionID:   wire.TransactionID,
		ResponseCode:    wire.ResponseCode,
		ResponseMessage: wire.ResponseMessage,
		RawResponse:     json.RawMessage(raw),
	}

	a.logger.Info("gateway submit resolved",
		ports.Int("status", resp.StatusCode),
		ports.Bool("success", result.Success),
		ports.String("response_code", result.ResponseCode))

	return result, nil
}
