package checkout

import (
	"regexp"
	"strings"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/shopspring/decimal"
)

// Basic local@domain.tld shape. Deliverability is the gateway's problem;
// this only catches obviously broken input before a tokenize round-trip.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgAmountRequired    = "Amount must be greater than zero"
	msgFirstNameRequired = "First name is required"
	msgLastNameRequired  = "Last name is required"
	msgEmailInvalid      = "A valid email address is required"
)

// ValidateInput checks the customer input against all four pay
// preconditions and returns every violated rule, not just the first.
// An empty slice means the input is valid.
func ValidateInput(input domain.CustomerInput) []string {
	var violations []string

	if !input.Amount.GreaterThan(decimal.Zero) {
		violations = append(violations, msgAmountRequired)
	}
	if strings.TrimSpace(input.FirstName) == "" {
		violations = append(violations, msgFirstNameRequired)
	}
	if strings.TrimSpace(input.LastName) == "" {
		violations = append(violations, msgLastNameRequired)
	}
	if !emailPattern.MatchString(strings.TrimSpace(input.Email)) {
		violations = append(violations, msgEmailInvalid)
	}

	return violations
}

// AggregateViolations joins violated rules into the single user-facing
// message shown when pay is refused locally.
func AggregateViolations(violations []string) string {
	return strings.Join(violations, ". ")
}
