package catalog

import (
	"context"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate loads the product and holds its row lock until the
	// enclosing transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindAll lists products
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}

// TaxRuleRepository defines the interface for tax rule persistence
type TaxRuleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TaxRule, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]TaxRule, int64, error)
	Save(ctx context.Context, rule *TaxRule) error
}
