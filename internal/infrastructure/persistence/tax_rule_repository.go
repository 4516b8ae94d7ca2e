package persistence

import (
	"context"

	"github.com/erp/posting/internal/domain/catalog"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaxRuleRepository implements TaxRuleRepository using GORM
type GormTaxRuleRepository struct {
	db *gorm.DB
}

// NewGormTaxRuleRepository creates a new GormTaxRuleRepository
func NewGormTaxRuleRepository(db *gorm.DB) *GormTaxRuleRepository {
	return &GormTaxRuleRepository{db: db}
}

// FindByID finds a tax rule by its ID
func (r *GormTaxRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.TaxRule, error) {
	var model models.TaxRuleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindAll lists tax rules
func (r *GormTaxRuleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.TaxRule, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TaxRuleModel{})
	if v, ok := filter.Filters["is_active"]; ok {
		query = query.Where("is_active = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ruleModels []models.TaxRuleModel
	if err := taxRuleSort.page(query, filter).Find(&ruleModels).Error; err != nil {
		return nil, 0, err
	}
	rules := make([]catalog.TaxRule, len(ruleModels))
	for i := range ruleModels {
		rules[i] = *ruleModels[i].ToDomain()
	}
	return rules, total, nil
}

// Save creates or updates a tax rule
func (r *GormTaxRuleRepository) Save(ctx context.Context, rule *catalog.TaxRule) error {
	return translateError(r.db.WithContext(ctx).Save(models.TaxRuleModelFromDomain(rule)).Error, shared.ErrAlreadyExists)
}

var _ catalog.TaxRuleRepository = (*GormTaxRuleRepository)(nil)
