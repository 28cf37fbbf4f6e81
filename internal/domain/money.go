package domain

import (
	"github.com/shopspring/decimal"
)

// MinorUnits converts a dollar amount to integer minor units (cents).
// Conversion rounds half away from zero rather than truncating, so amounts
// like 0.005 become 1 cent instead of silently underbilling.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
