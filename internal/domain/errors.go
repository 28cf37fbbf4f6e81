package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Validation errors (VALIDATION_*) — local, pre-tokenization, never
	// reach the network
	ErrorCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmountInvalid ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationMissingField  ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrorCodeValidationEmailInvalid  ErrorCode = "VALIDATION_EMAIL_INVALID"

	// Handshake errors (HANDSHAKE_*) — the capture surface failed to
	// initialize or tokenize; no token was produced
	ErrorCodeHandshakeInitFailed     ErrorCode = "HANDSHAKE_INIT_FAILED"
	ErrorCodeHandshakeTokenizeFailed ErrorCode = "HANDSHAKE_TOKENIZE_FAILED"
	ErrorCodeHandshakeNotReady       ErrorCode = "HANDSHAKE_NOT_READY"

	// Submission errors (SUBMISSION_*) — gateway declined or the backend
	// failed; a fresh token is required to retry
	ErrorCodeSubmissionDeclined ErrorCode = "SUBMISSION_DECLINED"
	ErrorCodeSubmissionFailed   ErrorCode = "SUBMISSION_FAILED"
	ErrorCodeSubmissionBadReply ErrorCode = "SUBMISSION_UNPARSEABLE_RESPONSE"

	// Transport errors (TRANSPORT_*) — channel or network failure with no
	// interpretable payload
	ErrorCodeTransportUnavailable ErrorCode = "TRANSPORT_UNAVAILABLE"
	ErrorCodeTransportRejected    ErrorCode = "TRANSPORT_ORIGIN_REJECTED"

	// Session errors (SESSION_*)
	ErrorCodeSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"
	ErrorCodeSessionInvalidPhase ErrorCode = "SESSION_INVALID_PHASE"
	ErrorCodeSessionBusy         ErrorCode = "SESSION_BUSY"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// IsValidationError checks if an error is a local validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationAmountInvalid ||
		code == ErrorCodeValidationMissingField ||
		code == ErrorCodeValidationEmailInvalid
}

// IsHandshakeError checks if an error came from the capture-surface handshake
func IsHandshakeError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeHandshakeInitFailed ||
		code == ErrorCodeHandshakeTokenizeFailed ||
		code == ErrorCodeHandshakeNotReady
}

// IsSubmissionError checks if an error came from the gateway submission
func IsSubmissionError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeSubmissionDeclined ||
		code == ErrorCodeSubmissionFailed ||
		code == ErrorCodeSubmissionBadReply
}

// IsTransportError checks if an error is a message-channel or network failure
func IsTransportError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeTransportUnavailable ||
		code == ErrorCodeTransportRejected
}

// Structured error instances
var (
	ErrValidationFailed        = NewDomainError(ErrorCodeValidationFailed, "validation failed")
	ErrValidationAmountInvalid = NewDomainError(ErrorCodeValidationAmountInvalid, "invalid amount")

	ErrHandshakeInitFailed     = NewDomainError(ErrorCodeHandshakeInitFailed, "secure fields failed to initialize")
	ErrHandshakeTokenizeFailed = NewDomainError(ErrorCodeHandshakeTokenizeFailed, "tokenization failed")
	ErrHandshakeNotReady       = NewDomainError(ErrorCodeHandshakeNotReady, "secure fields are not ready")

	ErrSubmissionDeclined = NewDomainError(ErrorCodeSubmissionDeclined, "payment declined by gateway")
	ErrSubmissionFailed   = NewDomainError(ErrorCodeSubmissionFailed, "payment submission failed")

	ErrTransportUnavailable = NewDomainError(ErrorCodeTransportUnavailable, "message channel unavailable")
	ErrOriginRejected       = NewDomainError(ErrorCodeTransportRejected, "message origin rejected")

	ErrSessionNotFound     = NewDomainError(ErrorCodeSessionNotFound, "session not found")
	ErrSessionInvalidPhase = NewDomainError(ErrorCodeSessionInvalidPhase, "session is in invalid phase for this operation")
	ErrSessionBusy         = NewDomainError(ErrorCodeSessionBusy, "a payment attempt is already in flight")
)
