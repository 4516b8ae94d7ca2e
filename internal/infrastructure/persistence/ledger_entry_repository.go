package persistence

import (
	"context"

	"github.com/erp/posting/internal/domain/finance"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM.
// The table is append-only.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Append writes the entries of one posting in a single insert
func (r *GormLedgerEntryRepository) Append(ctx context.Context, entries ...finance.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.LedgerEntryModel, len(entries))
	for i := range entries {
		rows[i] = models.LedgerEntryModelFromDomain(&entries[i])
	}
	if err := r.db.WithContext(ctx).Create(rows).Error; err != nil {
		return translateError(err, shared.ErrDuplicatePosting.WithMessage("ledger already posted for %s", entries[0].Source))
	}
	return nil
}

// CountBySource counts entries written for a source document
func (r *GormLedgerEntryRepository) CountBySource(ctx context.Context, source shared.SourceRef) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
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

// FindAll lists entries; filters: account_id, account_code, entry_type,
// source_type, source_id
func (r *GormLedgerEntryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.LedgerEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{})
	for key, value := range filter.Filters {
		switch key {
		case "account_id":
			query = query.Where("account_id = ?", value)
		case "account_code":
			query = query.Where("account_code = ?", value)
		case "entry_type":
			query = query.Where("entry_type = ?", value)
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

	var entryModels []models.LedgerEntryModel
	if err := ledgerEntrySort.page(query, filter).Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]finance.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, total, nil
}

var _ finance.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
