package persistence

import (
	"context"
	"sort"

	"github.com/erp/posting/internal/domain/finance"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.ChartAccount, error) {
	var model models.ChartAccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindByCode finds an account by its code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*finance.ChartAccount, error) {
	var model models.ChartAccountModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindByCodesForUpdate locks the requested accounts. Rows are locked in code
// order so two postings touching the same accounts cannot deadlock.
func (r *GormAccountRepository) FindByCodesForUpdate(ctx context.Context, codes []string) (map[string]*finance.ChartAccount, error) {
	result := make(map[string]*finance.ChartAccount, len(codes))
	if len(codes) == 0 {
		return result, nil
	}
	sorted := append([]string(nil), codes...)
	sort.Strings(sorted)

	var accountModels []models.ChartAccountModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code IN ?", sorted).
		Order("code ASC").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}
	for i := range accountModels {
		result[accountModels[i].Code] = accountModels[i].ToDomain()
	}
	return result, nil
}

// FindAll lists accounts; filters: account_type, is_active
func (r *GormAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.ChartAccount, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ChartAccountModel{})
	for key, value := range filter.Filters {
		switch key {
		case "account_type":
			query = query.Where("account_type = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accountModels []models.ChartAccountModel
	if err := accountSort.page(query, filter).Find(&accountModels).Error; err != nil {
		return nil, 0, err
	}
	accounts := make([]finance.ChartAccount, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, total, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *finance.ChartAccount) error {
	model := models.ChartAccountModelFromDomain(account)
	return translateError(r.db.WithContext(ctx).Save(model).Error,
		shared.ErrAlreadyExists.WithMessage("account code %s already exists", account.Code))
}

var _ finance.AccountRepository = (*GormAccountRepository)(nil)
