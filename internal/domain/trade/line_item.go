package trade

import (
	"time"

	"github.com/erp/posting/internal/domain/catalog"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxSnapshot is the tax rule in force when a line was priced
type TaxSnapshot struct {
	RuleID uuid.UUID
	Method catalog.TaxMethod
	Rate   decimal.Decimal
}

// SnapshotOf copies the parts of a rule a line needs
func SnapshotOf(rule *catalog.TaxRule) *TaxSnapshot {
	if rule == nil {
		return nil
	}
	return &TaxSnapshot{RuleID: rule.ID, Method: rule.Method, Rate: rule.Rate}
}

// LineAmounts is the output of the line calculator
type LineAmounts struct {
	LineTotal decimal.Decimal
	TaxAmount decimal.Decimal
}

// CalculateLine computes line total and tax.
// The line total is the exact product of quantity and unit price; only the
// tax is rounded.
func CalculateLine(quantity, unitPrice decimal.Decimal, tax *TaxSnapshot) (LineAmounts, error) {
	if !quantity.IsPositive() {
		return LineAmounts{}, shared.ErrInvalidLineItem.
			WithMessage("quantity must be greater than zero").
			WithDetail("field", "quantity").
			WithDetail("value", quantity.String())
	}
	if unitPrice.IsNegative() {
		return LineAmounts{}, shared.ErrInvalidLineItem.
			WithMessage("unit price cannot be negative").
			WithDetail("field", "unit_price").
			WithDetail("value", unitPrice.String())
	}

	if shared.ExceedsScale(quantity, shared.QuantityPrecision) {
		return LineAmounts{}, shared.ErrInvalidLineItem.
			WithMessage("quantity cannot have more than %d decimal places", shared.QuantityPrecision).
			WithDetail("field", "quantity").
			WithDetail("value", quantity.String())
	}
	if shared.ExceedsScale(unitPrice, shared.QuantityPrecision) {
		return LineAmounts{}, shared.ErrInvalidLineItem.
			WithMessage("unit price cannot have more than %d decimal places", shared.QuantityPrecision).
			WithDetail("field", "unit_price").
			WithDetail("value", unitPrice.String())
	}

	total := quantity.Mul(unitPrice)
	taxAmount := decimal.Zero
	if tax != nil {
		var err error
		taxAmount, err = catalog.ComputeTax(tax.Method, tax.Rate, total)
		if err != nil {
			return LineAmounts{}, err
		}
	}
	return LineAmounts{LineTotal: total, TaxAmount: taxAmount}, nil
}

// LineItem is one product line of an order
type LineItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Position    int
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRuleID   *uuid.UUID
	TaxMethod   catalog.TaxMethod
	TaxRate     decimal.Decimal
	TaxAmount   decimal.Decimal
	LineTotal   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func newLineItem(orderID, productID uuid.UUID, productName string, position int, quantity, unitPrice decimal.Decimal, tax *TaxSnapshot) (*LineItem, error) {
	if productID == uuid.Nil {
		return nil, shared.ErrInvalidLineItem.WithMessage("product is required").WithDetail("field", "product_id")
	}
	now := time.Now()
	item := &LineItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		Position:    position,
		ProductID:   productID,
		ProductName: productName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := item.reprice(quantity, unitPrice, tax); err != nil {
		return nil, err
	}
	return item, nil
}

// reprice validates and applies new amounts; the item is left untouched on error
func (i *LineItem) reprice(quantity, unitPrice decimal.Decimal, tax *TaxSnapshot) error {
	amounts, err := CalculateLine(quantity, unitPrice, tax)
	if err != nil {
		return err
	}
	i.Quantity = quantity
	i.UnitPrice = unitPrice
	i.LineTotal = amounts.LineTotal
	i.TaxAmount = amounts.TaxAmount
	if tax != nil {
		ruleID := tax.RuleID
		i.TaxRuleID = &ruleID
		i.TaxMethod = tax.Method
		i.TaxRate = tax.Rate
	} else {
		i.TaxRuleID = nil
		i.TaxMethod = ""
		i.TaxRate = decimal.Zero
	}
	i.UpdatedAt = time.Now()
	return nil
}

// Tax returns the snapshot the line was priced with, or nil
func (i *LineItem) Tax() *TaxSnapshot {
	if i.TaxRuleID == nil {
		return nil
	}
	return &TaxSnapshot{RuleID: *i.TaxRuleID, Method: i.TaxMethod, Rate: i.TaxRate}
}
