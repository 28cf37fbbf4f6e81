package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorFormatting(t *testing.T) {
	err := NewDomainError(ErrorCodeHandshakeInitFailed, "init failed")
	assert.Equal(t, "HANDSHAKE_INIT_FAILED: init failed", err.Error())

	wrapped := WrapError(ErrorCodeSubmissionFailed, "gateway request", errors.New("connection refused"))
	assert.Equal(t, "SUBMISSION_FAILED: gateway request: connection refused", wrapped.Error())
	assert.Equal(t, "connection refused", wrapped.Unwrap().Error())
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsValidationError(ErrValidationFailed))
	assert.True(t, IsHandshakeError(ErrHandshakeTokenizeFailed))
	assert.True(t, IsSubmissionError(ErrSubmissionDeclined))
	assert.True(t, IsTransportError(ErrOriginRejected))

	assert.False(t, IsValidationError(ErrSubmissionDeclined))
	assert.False(t, IsHandshakeError(ErrValidationFailed))
	assert.False(t, IsSubmissionError(errors.New("plain error")))
	assert.False(t, IsTransportError(nil))
}

func TestErrorCodeThroughWrapping(t *testing.T) {
	inner := WrapError(ErrorCodeTransportUnavailable, "send TOKENIZE", errors.New("closed"))
	outer := fmt.Errorf("pay: %w", inner)

	assert.Equal(t, ErrorCodeTransportUnavailable, GetErrorCode(outer))
	assert.True(t, IsDomainError(outer, ErrorCodeTransportUnavailable))
}

func TestWithDetail(t *testing.T) {
	err := NewDomainError(ErrorCodeSessionInvalidPhase, "invalid phase transition").
		WithDetail("from", "READY").
		WithDetail("to", "SUBMITTING")

	assert.Equal(t, "READY", err.Details["from"])
	assert.Equal(t, "SUBMITTING", err.Details["to"])
}
