package trade

import "github.com/shopspring/decimal"

// Totals are the derived amounts of an order
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// AggregateTotals sums line totals and taxes. It is a pure fold over the
// items, so repeated calls on unchanged items agree.
func AggregateTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
		tax = tax.Add(item.TaxAmount)
	}
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}
