package inventory

import (
	"context"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
)

// StockLedgerRepository persists stock ledger entries. Entries are never
// updated or deleted.
type StockLedgerRepository interface {
	// FindLatestByProduct returns the entry with the highest sequence for
	// the product, or shared.ErrNotFound when the product has no history
	FindLatestByProduct(ctx context.Context, productID uuid.UUID) (*StockLedgerEntry, error)

	// CountBySource counts entries written for a source document
	CountBySource(ctx context.Context, source shared.SourceRef) (int64, error)

	// Append writes a new entry
	Append(ctx context.Context, entry *StockLedgerEntry) error

	// FindAll lists entries; filters: product_id, movement_type,
	// source_type, source_id, plus the filter date range
	FindAll(ctx context.Context, filter shared.Filter) ([]StockLedgerEntry, int64, error)
}
