package persistence

import (
	"context"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/domain/trade"
	"github.com/erp/posting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
// Purchase and sales orders share one table keyed by kind.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an order with its items and locks the order row
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, nil)
	}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("position ASC").
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an order by kind and number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, kind trade.OrderKind, orderNumber string) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("kind = ? AND order_number = ?", kind, orderNumber).
		First(&model).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindAll lists orders without their items; filters: kind, status, counterparty_id
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	for key, value := range filter.Filters {
		switch key {
		case "kind":
			query = query.Where("kind = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "counterparty_id":
			query = query.Where("counterparty_id = ?", value)
		}
	}
	query = applyDateRange(query, filter, "order_date")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orderModels []models.OrderModel
	if err := orderSort.page(query, filter).Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]trade.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, total, nil
}

// Save creates or updates an order together with its items. Items no longer
// on the order are deleted before the remaining ones are written so a
// product can be removed and added back in one save.
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	db := r.db.WithContext(ctx)
	model := models.OrderModelFromDomain(order)
	if err := db.Omit(clause.Associations).Save(model).Error; err != nil {
		return translateError(err, shared.ErrAlreadyExists.WithMessage("order number %s already exists", order.OrderNumber))
	}

	keep := make([]uuid.UUID, 0, len(order.Items))
	for i := range order.Items {
		keep = append(keep, order.Items[i].ID)
	}
	stale := db.Where("order_id = ?", order.ID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.OrderItemModel{}).Error; err != nil {
		return err
	}

	for i := range order.Items {
		item := models.OrderItemModelFromDomain(&order.Items[i])
		item.OrderID = order.ID
		if err := db.Save(item).Error; err != nil {
			return translateError(err, shared.ErrInvalidLineItem.WithMessage("product already on order").
				WithDetail("line", order.Items[i].Position))
		}
	}
	return nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
