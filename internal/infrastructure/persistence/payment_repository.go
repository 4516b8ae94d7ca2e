package persistence

import (
	"context"

	"github.com/erp/posting/internal/domain/finance"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment. Payments are never updated; a reused payment
// number is a duplicate posting.
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err, shared.ErrDuplicatePosting.WithMessage("payment %s already recorded", payment.PaymentNumber).
			WithDetail("payment_number", payment.PaymentNumber))
	}
	return nil
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a payment by its number
func (r *GormPaymentRepository) FindByNumber(ctx context.Context, number string) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).Where("payment_number = ?", number).First(&model).Error; err != nil {
		return nil, translateError(err, nil)
	}
	return model.ToDomain(), nil
}

// FindByInvoice lists payments applied to a vendor bill or customer invoice
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID, filter shared.Filter) ([]finance.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("vendor_bill_id = ? OR customer_invoice_id = ?", invoiceID, invoiceID)
	query = applyDateRange(query, filter, "payment_date")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var paymentModels []models.PaymentModel
	if err := paymentSort.page(query, filter).Find(&paymentModels).Error; err != nil {
		return nil, 0, err
	}
	payments := make([]finance.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments, total, nil
}

var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
