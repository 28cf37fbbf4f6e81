package checkout

import (
	"encoding/json"
	"fmt"

	"github.com/kevin07696/checkout-service/internal/domain/ports"
	pkgerrors "github.com/kevin07696/checkout-service/pkg/errors"
)

// OutcomeKind classifies a settled submission into exactly one bucket.
type OutcomeKind string

const (
	OutcomeSuccess     OutcomeKind = "success"
	OutcomeDeclined    OutcomeKind = "declined"
	OutcomeSystemError OutcomeKind = "system_error"
)

const (
	genericDeclineMessage = "Your payment could not be completed. Please try again or use a different payment method."
	genericSystemMessage  = "Something went wrong while processing your payment. Please try again."
)

// Outcome is the reconciler's verdict on one submission attempt.
// UserMessage is always safe to display; Diagnostic carries the defensively
// serialized raw detail and is only surfaced behind a developer toggle.
type Outcome struct {
	Kind          OutcomeKind
	TransactionID string
	Code          string
	UserMessage   string
	Retriable     bool
	Diagnostic    string
}

// Reconcile maps a gateway result or a transport failure into exactly one
// outcome. It never panics and never produces more than one of
// success/declined/system-error, regardless of how malformed the input is.
func Reconcile(result *ports.NormalizedResult, err error) Outcome {
	if err != nil {
		return Outcome{
			Kind:        OutcomeSystemError,
			UserMessage: genericSystemMessage,
			Retriable:   true,
			Diagnostic:  serializeDiagnostic(err),
		}
	}

	if result == nil {
		// Resolved with nothing parseable.
		return Outcome{
			Kind:        OutcomeSystemError,
			UserMessage: genericSystemMessage,
			Retriable:   true,
			Diagnostic:  "gateway resolved with no parseable result",
		}
	}

	if result.Success {
		return Outcome{
			Kind:          OutcomeSuccess,
			TransactionID: result.TransactionID,
			UserMessage:   fmt.Sprintf("Payment successful. Transaction ID: %s", result.TransactionID),
			Diagnostic:    serializeDiagnostic(result.RawResponse),
		}
	}

	return reconcileDecline(result)
}

// reconcileDecline builds the outcome for a non-success result. The code
// table decides the kind: system-class codes (issuer timeout, switch
// malfunction) are system errors, not card declines. Message priority:
// the gateway's human-readable message, then the static code table, then
// a generic fallback. A known code is appended parenthetically.
func reconcileDecline(result *ports.NormalizedResult) Outcome {
	outcome := Outcome{
		Kind:       OutcomeDeclined,
		Code:       result.ResponseCode,
		Diagnostic: serializeDiagnostic(result.RawResponse),
	}

	info, known := LookupResponseCode(result.ResponseCode)
	if known {
		outcome.Retriable = info.IsRetriable
		switch info.Category {
		case pkgerrors.CategorySystemError, pkgerrors.CategoryNetworkError:
			outcome.Kind = OutcomeSystemError
		}
	}

	switch {
	case result.ResponseMessage != "" && result.ResponseCode != "":
		outcome.UserMessage = fmt.Sprintf("%s (%s)", result.ResponseMessage, result.ResponseCode)
	case result.ResponseMessage != "":
		outcome.UserMessage = result.ResponseMessage
	case known:
		outcome.UserMessage = fmt.Sprintf("%s (%s)", info.UserMessage, info.Code)
	default:
		outcome.UserMessage = genericDeclineMessage
	}

	return outcome
}

// serializeDiagnostic renders an arbitrary value for the developer-facing
// diagnostic channel. It must never fail: anything json can't handle falls
// back to fmt formatting.
func serializeDiagnostic(v interface{}) string {
	if v == nil {
		return ""
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if raw, ok := v.(json.RawMessage); ok {
		if len(raw) == 0 {
			return ""
		}
		return string(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
