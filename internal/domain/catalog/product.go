package catalog

import (
	"strings"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a stocked item.
// CurrentStock is a projection of the stock ledger and is only changed by
// stock postings.
type Product struct {
	shared.BaseAggregateRoot
	Name          string
	SKU           string
	SalesPrice    decimal.Decimal
	PurchasePrice decimal.Decimal
	SalesTaxID    *uuid.UUID
	PurchaseTaxID *uuid.UUID
	CurrentStock  decimal.Decimal
	MinimumStock  decimal.Decimal
	IsActive      bool
}

// NewProduct creates a new active product with zero stock
func NewProduct(name, sku string, salesPrice, purchasePrice decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if name == "" {
		return nil, shared.ErrValidation.WithMessage("product name cannot be empty").WithDetail("field", "name")
	}
	if sku == "" {
		return nil, shared.ErrValidation.WithMessage("product SKU cannot be empty").WithDetail("field", "sku")
	}
	if salesPrice.IsNegative() || purchasePrice.IsNegative() {
		return nil, shared.ErrValidation.WithMessage("product prices cannot be negative")
	}
	if shared.ExceedsScale(salesPrice, shared.QuantityPrecision) || shared.ExceedsScale(purchasePrice, shared.QuantityPrecision) {
		return nil, shared.ErrValidation.WithMessage("product prices cannot have more than %d decimal places", shared.QuantityPrecision)
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		SKU:               sku,
		SalesPrice:        salesPrice,
		PurchasePrice:     purchasePrice,
		CurrentStock:      decimal.Zero,
		MinimumStock:      decimal.Zero,
		IsActive:          true,
	}, nil
}

// SetDefaultTaxes sets the taxes used when a line does not name one
func (p *Product) SetDefaultTaxes(salesTaxID, purchaseTaxID *uuid.UUID) {
	p.SalesTaxID = salesTaxID
	p.PurchaseTaxID = purchaseTaxID
	p.Touch()
}

// SetMinimumStock sets the low-stock alert threshold
func (p *Product) SetMinimumStock(min decimal.Decimal) error {
	if min.IsNegative() {
		return shared.ErrValidation.WithMessage("minimum stock cannot be negative").WithDetail("field", "minimum_stock")
	}
	if shared.ExceedsScale(min, shared.QuantityPrecision) {
		return shared.ErrValidation.
			WithMessage("minimum stock cannot have more than %d decimal places", shared.QuantityPrecision).
			WithDetail("field", "minimum_stock")
	}
	p.MinimumStock = min
	p.Touch()
	return nil
}

// ApplyStockBalance records the balance of the latest stock ledger entry
func (p *Product) ApplyStockBalance(balance decimal.Decimal) {
	p.CurrentStock = balance
	p.Touch()
	p.IncrementVersion()
}

// IsBelowMinimum reports whether stock is at or under the alert threshold
func (p *Product) IsBelowMinimum() bool {
	return p.CurrentStock.LessThanOrEqual(p.MinimumStock)
}

// Deactivate stops the product from taking part in new postings
func (p *Product) Deactivate() {
	p.IsActive = false
	p.Touch()
}
