package checkout

import (
	pkgerrors "github.com/kevin07696/checkout-service/pkg/errors"
)

// ResponseCodeInfo contains detailed information about a gateway response code
type ResponseCodeInfo struct {
	Code               string
	Display            string
	Description        string
	IsRetriable        bool
	RequiresUserAction bool
	Category           pkgerrors.ErrorCategory
	UserMessage        string
}

// Decline/validation code map consulted by the reconciler. Kept separate
// from protocol and state-machine logic so new codes can be added without
// touching either.
var gatewayResponseCodes = map[string]ResponseCodeInfo{
	// Generic declines
	"05": {
		Code:               "05",
		Display:            "DECLINE",
		Description:        "Do not honour",
		IsRetriable:        false,
		RequiresUserAction: true,
		Category:           pkgerrors.CategoryDeclined,
		UserMessage:        "Your card was declined. Please use a different payment method.",
	},
	"D4405": {
		Code:               "D4405",
		Display:            "DO NOT HONOUR",
		Description:        "Issuer declined without a specific reason",
		IsRetriable:        false,
		RequiresUserAction: true,
		Category:           pkgerrors.CategoryDeclined,
		UserMessage:        "Your card was declined. Please use a different payment method.",
	},

	// Insufficient funds
	"51": {
		Code:               "51",
		Display:            "INSUFF FUNDS",
		Description:        "Insufficient funds in account",
		IsRetriable:        true,
		RequiresUserAction: true,
		Category:           pkgerrors.CategoryInsufficientFunds,
		UserMessage:        "Insufficient funds. Please use a different payment method.",
	},
	"D4406": {
		Code:               "D4406",
		Display:            "INSUFF FUNDS",
		Description:        "Insufficient funds in account",
		IsRetriable:        true,
		RequiresUserAction: true,
		Category:           pkgerrors.CategoryInsufficientFunds,
		UserMessage:        "Insufficient funds. Please use a different payment method.",
	},

	// Expired card
	"54": {
		Code:               "54",
		Display:            "EXP CARD",
		Description:        "Expired card",
		IsRetriable:        true,
		RequiresUserAction: true,
		Category:           pkgerrors.CategoryExpiredCard,
		UserMessage:        "Your card has expired. Please use a different payment method.",
	},

	// Invalid card number
	"14": {
		Code:               "14",
		Display:            "INVALID ACCT",
		Description:        "Invalid card number",
		IsRetriable:        false,
		RequiresUserAction: true,
		Category:           pkgerrors.CategoryInvalidCard,
		UserMessage:        "Invalid card number. Please check your card details.",
	},

	// CVV mismatch
	"82": {
		Code:               "82",
		Display:            "CVV ERROR",
		Description:        "CVV verification failed",
		IsRetriable:        true,
		RequiresUserAction: true,
		Category:           pkgerrors.CategoryInvalidCard,
		UserMessage:        "Incorrect security code. Please check the CVV on your card.",
	},

	// Fraud/security
	"59": {
		Code:               "59",
		Display:            "SUSPECTED FRAUD",
		Description:        "Suspected fraud",
		IsRetriable:        false,
		RequiresUserAction: true,
		Category:           pkgerrors.CategoryFraud,
		UserMessage:        "Transaction declined for security reasons. Please contact your bank.",
	},

	// System errors (retriable with a fresh tokenization cycle)
	"91": {
		Code:        "91",
		Display:     "TIMEOUT",
		Description: "Issuer or switch timeout",
		IsRetriable: true,
		Category:    pkgerrors.CategorySystemError,
		UserMessage: "The payment could not be processed right now. Please try again.",
	},
	"96": {
		Code:        "96",
		Display:     "SYSTEM ERROR",
		Description: "System malfunction",
		IsRetriable: true,
		Category:    pkgerrors.CategorySystemError,
		UserMessage: "System error. Please try again in a few moments.",
	},
}

// LookupResponseCode returns the info for a gateway response code.
// Unknown codes return ok=false; the reconciler then falls back to the
// gateway-provided message or a generic one.
func LookupResponseCode(code string) (ResponseCodeInfo, bool) {
	info, ok := gatewayResponseCodes[code]
	return info, ok
}
