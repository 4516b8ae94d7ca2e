package persistence

import (
	"context"

	"github.com/erp/posting/internal/domain/inventory"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockLedgerRepository implements StockLedgerRepository using GORM.
// The table is append-only.
type GormStockLedgerRepository struct {
	db *gorm.DB
}

// NewGormStockLedgerRepository creates a new GormStockLedgerRepository
func NewGormStockLedgerRepository(db *gorm.DB) *GormStockLedgerRepository {
	return &GormStockLedgerRepository{db: db}
}

// FindLatestByProduct returns the product's entry with the highest sequence
func (r *GormStockLedgerRepository) FindLatestByProduct(ctx context.Context, productID uuid.UUID) (*inventory.StockLedgerEntry, error) {
	var model models.StockLedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sequence DESC").
		First(&model).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// CountBySource counts entries written for a source document
func (r *GormStockLedgerRepository) CountBySource(ctx context.Context, source shared.SourceRef) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.StockLedgerEntryModel{}).
		Where("source_type = ?", string(source.Kind))
	if source.ID != nil {
		query = query.Where("source_id = ?", *source.ID)
	} else {
		query = query.Where("source_id IS NULL")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Append writes a new entry. A clash on (product, sequence) or on
// (source, product) means the posting already happened or raced with
// another one, and is reported as a duplicate posting.
func (r *GormStockLedgerRepository) Append(ctx context.Context, entry *inventory.StockLedgerEntry) error {
	model := models.StockLedgerEntryModelFromDomain(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, shared.ErrDuplicatePosting.WithMessage("stock already posted for %s", entry.Source).
			WithDetail("product_id", entry.ProductID.String()))
	}
	return nil
}

// FindAll lists entries; filters: product_id, movement_type, source_type, source_id
func (r *GormStockLedgerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockLedgerEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockLedgerEntryModel{})
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "movement_type":
			query = query.Where("movement_type = ?", value)
		case "source_type":
			query = query.Where("source_type = ?", value)
		case "source_id":
			query = query.Where("source_id = ?", value)
		}
	}
	query = applyDateRange(query, filter, "transaction_date")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entryModels []models.StockLedgerEntryModel
	if err := stockLedgerSort.page(query, filter).Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]inventory.StockLedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, total, nil
}

// Ensure GormStockLedgerRepository implements StockLedgerRepository
var _ inventory.StockLedgerRepository = (*GormStockLedgerRepository)(nil)
