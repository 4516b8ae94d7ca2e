package shared

import "github.com/shopspring/decimal"

// LedgerPrecision is the number of decimal places kept on posted amounts.
const LedgerPrecision int32 = 2

// QuantityPrecision is the number of decimal places stored for quantities,
// unit prices and tax rates.
const QuantityPrecision int32 = 4

// RoundAmount rounds a monetary amount to ledger precision using
// round-half-even.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(LedgerPrecision)
}

// ExceedsScale reports whether d carries significant digits beyond places.
// Trailing zeros do not count: 1.5000 fits in one place.
func ExceedsScale(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Truncate(places))
}

// MinPaymentAmount is the smallest amount a payment may carry.
var MinPaymentAmount = decimal.NewFromFloat(0.01)
