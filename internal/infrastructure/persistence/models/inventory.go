package models

import (
	"time"

	"github.com/erp/posting/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLedgerEntryModel is the persistence model for a stock ledger row.
// (product_id, sequence) is unique so two postings can never both extend
// the same predecessor; (source_type, source_id, product_id) is unique so
// an order can never post the same product twice.
type StockLedgerEntryModel struct {
	ID              uuid.UUID              `gorm:"type:uuid;primary_key"`
	ProductID       uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_stock_ledger_product_seq,priority:1;uniqueIndex:idx_stock_ledger_source_product,priority:3"`
	Sequence        int64                  `gorm:"not null;uniqueIndex:idx_stock_ledger_product_seq,priority:2"`
	MovementType    inventory.MovementType `gorm:"type:varchar(20);not null;index"`
	Quantity        decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TotalValue      decimal.Decimal        `gorm:"type:decimal(28,8);not null;default:0"`
	BalanceQuantity decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	BalanceValue    decimal.Decimal        `gorm:"type:decimal(28,8);not null"`
	SourceType      string                 `gorm:"type:varchar(30);not null;uniqueIndex:idx_stock_ledger_source_product,priority:1"`
	SourceID        *uuid.UUID             `gorm:"type:uuid;uniqueIndex:idx_stock_ledger_source_product,priority:2"`
	SourceLineID    *uuid.UUID             `gorm:"type:uuid"`
	ReferenceNumber string                 `gorm:"type:varchar(50)"`
	Notes           string                 `gorm:"type:varchar(500)"`
	TransactionDate time.Time              `gorm:"not null;index"`
	CreatedAt       time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLedgerEntryModel) TableName() string {
	return "stock_ledger_entries"
}

// ToDomain converts the persistence model to a domain StockLedgerEntry.
func (m *StockLedgerEntryModel) ToDomain() *inventory.StockLedgerEntry {
	return &inventory.StockLedgerEntry{
		ID:              m.ID,
		ProductID:       m.ProductID,
		Sequence:        m.Sequence,
		MovementType:    m.MovementType,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		TotalValue:      m.TotalValue,
		BalanceQuantity: m.BalanceQuantity,
		BalanceValue:    m.BalanceValue,
		Source:          SourceColumns{SourceType: m.SourceType, SourceID: m.SourceID}.ToDomain(),
		SourceLineID:    m.SourceLineID,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		TransactionDate: m.TransactionDate,
		CreatedAt:       m.CreatedAt,
	}
}

// StockLedgerEntryModelFromDomain creates a persistence model from a domain StockLedgerEntry.
func StockLedgerEntryModelFromDomain(e *inventory.StockLedgerEntry) *StockLedgerEntryModel {
	src := SourceColumnsFromDomain(e.Source)
	return &StockLedgerEntryModel{
		ID:              e.ID,
		ProductID:       e.ProductID,
		Sequence:        e.Sequence,
		MovementType:    e.MovementType,
		Quantity:        e.Quantity,
		UnitPrice:       e.UnitPrice,
		TotalValue:      e.TotalValue,
		BalanceQuantity: e.BalanceQuantity,
		BalanceValue:    e.BalanceValue,
		SourceType:      src.SourceType,
		SourceID:        src.SourceID,
		SourceLineID:    e.SourceLineID,
		ReferenceNumber: e.ReferenceNumber,
		Notes:           e.Notes,
		TransactionDate: e.TransactionDate,
		CreatedAt:       e.CreatedAt,
	}
}
