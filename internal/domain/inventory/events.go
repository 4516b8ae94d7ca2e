package inventory

import (
	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeProductStock is the aggregate type of stock events
const AggregateTypeProductStock = "ProductStock"

// EventTypeStockPosted is raised once per product after a committed posting
const EventTypeStockPosted = "StockPosted"

// StockPostedEvent carries the product balance after a posting
type StockPostedEvent struct {
	shared.BaseDomainEvent
	ProductID       uuid.UUID        `json:"product_id"`
	MovementType    MovementType     `json:"movement_type"`
	Quantity        decimal.Decimal  `json:"quantity"`
	BalanceQuantity decimal.Decimal  `json:"balance_quantity"`
	MinimumStock    decimal.Decimal  `json:"minimum_stock"`
	Source          shared.SourceRef `json:"-"`
}

// NewStockPostedEvent creates a StockPostedEvent for an entry
func NewStockPostedEvent(entry *StockLedgerEntry, minimumStock decimal.Decimal) *StockPostedEvent {
	return &StockPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockPosted, AggregateTypeProductStock, entry.ProductID),
		ProductID:       entry.ProductID,
		MovementType:    entry.MovementType,
		Quantity:        entry.Quantity,
		BalanceQuantity: entry.BalanceQuantity,
		MinimumStock:    minimumStock,
		Source:          entry.Source,
	}
}

// IsLowStock reports whether the balance is at or below the threshold
func (e *StockPostedEvent) IsLowStock() bool {
	return e.BalanceQuantity.LessThanOrEqual(e.MinimumStock)
}
