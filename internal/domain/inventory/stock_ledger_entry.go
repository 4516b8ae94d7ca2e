package inventory

import (
	"time"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies a stock ledger entry
type MovementType string

const (
	MovementPurchase   MovementType = "purchase"
	MovementSale       MovementType = "sale"
	MovementAdjustment MovementType = "adjustment"
	MovementOpening    MovementType = "opening"
)

// String returns the string representation of MovementType
func (m MovementType) String() string {
	return string(m)
}

// IsValid returns true if the movement type is valid
func (m MovementType) IsValid() bool {
	switch m {
	case MovementPurchase, MovementSale, MovementAdjustment, MovementOpening:
		return true
	}
	return false
}

// checkDelta enforces the sign each movement type may carry
func (m MovementType) checkDelta(delta decimal.Decimal) error {
	switch m {
	case MovementPurchase, MovementOpening:
		if !delta.IsPositive() {
			return shared.ErrValidation.WithMessage("%s movement must increase stock", m)
		}
	case MovementSale:
		if !delta.IsNegative() {
			return shared.ErrValidation.WithMessage("sale movement must decrease stock")
		}
	case MovementAdjustment:
		if delta.IsZero() {
			return shared.ErrValidation.WithMessage("adjustment quantity cannot be zero")
		}
	default:
		return shared.ErrValidation.WithMessage("unknown movement type %q", m)
	}
	return nil
}

// StockLedgerEntry is an append-only stock movement row.
// Sequence increases by one per product, so the entry with the highest
// sequence carries the product's running balance.
type StockLedgerEntry struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	Sequence        int64
	MovementType    MovementType
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TotalValue      decimal.Decimal
	BalanceQuantity decimal.Decimal
	BalanceValue    decimal.Decimal
	Source          shared.SourceRef
	SourceLineID    *uuid.UUID
	ReferenceNumber string
	Notes           string
	TransactionDate time.Time
	CreatedAt       time.Time
}

// Movement describes a stock change to be appended to a product's ledger
type Movement struct {
	ProductID       uuid.UUID
	Type            MovementType
	Delta           decimal.Decimal
	UnitPrice       decimal.Decimal
	Source          shared.SourceRef
	SourceLineID    *uuid.UUID
	ReferenceNumber string
	Notes           string
	TransactionDate time.Time
}

// NextEntry builds the entry that follows prev for the movement.
// A nil prev means the product has no history and starts from zero.
func NextEntry(prev *StockLedgerEntry, m Movement) (*StockLedgerEntry, error) {
	if m.ProductID == uuid.Nil {
		return nil, shared.ErrValidation.WithMessage("product is required")
	}
	if err := m.Type.checkDelta(m.Delta); err != nil {
		return nil, err
	}
	if m.UnitPrice.IsNegative() {
		return nil, shared.ErrValidation.WithMessage("unit price cannot be negative")
	}
	if shared.ExceedsScale(m.Delta, shared.QuantityPrecision) || shared.ExceedsScale(m.UnitPrice, shared.QuantityPrecision) {
		return nil, shared.ErrValidation.
			WithMessage("quantity and unit price cannot have more than %d decimal places", shared.QuantityPrecision).
			WithDetail("quantity", m.Delta.String()).
			WithDetail("unit_price", m.UnitPrice.String())
	}
	if err := m.Source.Validate(); err != nil {
		return nil, err
	}

	balanceQty := decimal.Zero
	balanceValue := decimal.Zero
	var seq int64
	if prev != nil {
		if prev.ProductID != m.ProductID {
			return nil, shared.ErrValidation.WithMessage("previous entry belongs to another product")
		}
		balanceQty = prev.BalanceQuantity
		balanceValue = prev.BalanceValue
		seq = prev.Sequence
	}
	if m.Type == MovementOpening && prev != nil {
		return nil, shared.ErrValidation.WithMessage("opening balance requires an empty stock ledger")
	}

	date := m.TransactionDate
	if date.IsZero() {
		date = time.Now()
	}
	value := m.Delta.Mul(m.UnitPrice)

	return &StockLedgerEntry{
		ID:              uuid.New(),
		ProductID:       m.ProductID,
		Sequence:        seq + 1,
		MovementType:    m.Type,
		Quantity:        m.Delta,
		UnitPrice:       m.UnitPrice,
		TotalValue:      value,
		BalanceQuantity: balanceQty.Add(m.Delta),
		BalanceValue:    balanceValue.Add(value),
		Source:          m.Source,
		SourceLineID:    m.SourceLineID,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		TransactionDate: date,
		CreatedAt:       time.Now(),
	}, nil
}

// Fold replays entries in order and returns the final balance quantity.
// The result must equal the product's current stock.
func Fold(entries []StockLedgerEntry) decimal.Decimal {
	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.Quantity)
	}
	return balance
}
