package models

import (
	"time"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToDomainAggregateRoot converts AggregateModel to a domain BaseAggregateRoot
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

// SourceColumns stores a tagged SourceRef as a discriminator plus a
// nullable document ID.
type SourceColumns struct {
	SourceType string     `gorm:"type:varchar(30);not null"`
	SourceID   *uuid.UUID `gorm:"type:uuid"`
}

// ToDomain converts the columns back to a SourceRef
func (s SourceColumns) ToDomain() shared.SourceRef {
	ref := shared.SourceRef{Kind: shared.SourceKind(s.SourceType)}
	if s.SourceID != nil {
		id := *s.SourceID
		ref.ID = &id
	}
	return ref
}

// SourceColumnsFromDomain flattens a SourceRef
func SourceColumnsFromDomain(ref shared.SourceRef) SourceColumns {
	cols := SourceColumns{SourceType: string(ref.Kind)}
	if ref.ID != nil {
		id := *ref.ID
		cols.SourceID = &id
	}
	return cols
}

// All returns every posting model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&TaxRuleModel{},
		&ProductModel{},
		&OrderModel{},
		&OrderItemModel{},
		&StockLedgerEntryModel{},
		&ChartAccountModel{},
		&InvoiceModel{},
		&PaymentModel{},
		&LedgerEntryModel{},
	}
}
