package errors

// ErrorCategory classifies gateway outcomes for metrics and the response
// code table. Categories are coarse on purpose: the user-facing message
// comes from the code table, not from the category.
type ErrorCategory string

const (
	CategoryApproved          ErrorCategory = "approved"
	CategoryDeclined          ErrorCategory = "declined"
	CategoryInsufficientFunds ErrorCategory = "insufficient_funds"
	CategoryInvalidCard       ErrorCategory = "invalid_card"
	CategoryExpiredCard       ErrorCategory = "expired_card"
	CategoryFraud             ErrorCategory = "fraud"
	CategorySystemError       ErrorCategory = "system_error"
	CategoryNetworkError      ErrorCategory = "network_error"
	CategoryInvalidRequest    ErrorCategory = "invalid_request"
)
