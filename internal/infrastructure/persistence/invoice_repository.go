package persistence

import (
	"context"

	"github.com/erp/posting/internal/domain/finance"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an invoice and locks its row
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindByOrderID finds the invoice raised for an order
func (r *GormInvoiceRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*finance.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindAll lists invoices; filters: kind, status, counterparty_id
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
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
	query = applyDateRange(query, filter, "invoice_date")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoiceModels []models.InvoiceModel
	if err := invoiceSort.page(query, filter).Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}
	invoices := make([]finance.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, total, nil
}

// Save creates or updates an invoice. A second invoice for the same order
// or number is rejected as already existing.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return translateError(r.db.WithContext(ctx).Save(model).Error,
		shared.ErrAlreadyExists.WithMessage("invoice already exists for order %s", invoice.OrderID))
}

var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
