package models

import (
	"github.com/erp/posting/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	Name          string          `gorm:"type:varchar(200);not null"`
	SKU           string          `gorm:"column:sku;type:varchar(50);not null;uniqueIndex:idx_products_sku"`
	SalesPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalesTaxID    *uuid.UUID      `gorm:"type:uuid"`
	PurchaseTaxID *uuid.UUID      `gorm:"type:uuid"`
	CurrentStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinimumStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		SKU:               m.SKU,
		SalesPrice:        m.SalesPrice,
		PurchasePrice:     m.PurchasePrice,
		SalesTaxID:        m.SalesTaxID,
		PurchaseTaxID:     m.PurchaseTaxID,
		CurrentStock:      m.CurrentStock,
		MinimumStock:      m.MinimumStock,
		IsActive:          m.IsActive,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Name:          p.Name,
		SKU:           p.SKU,
		SalesPrice:    p.SalesPrice,
		PurchasePrice: p.PurchasePrice,
		SalesTaxID:    p.SalesTaxID,
		PurchaseTaxID: p.PurchaseTaxID,
		CurrentStock:  p.CurrentStock,
		MinimumStock:  p.MinimumStock,
		IsActive:      p.IsActive,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// TaxRuleModel is the persistence model for TaxRule.
type TaxRuleModel struct {
	BaseModel
	Name          string                   `gorm:"type:varchar(100);not null"`
	Method        catalog.TaxMethod        `gorm:"type:varchar(20);not null"`
	Rate          decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Applicability catalog.TaxApplicability `gorm:"type:varchar(20);not null;default:'both'"`
	IsActive      bool                     `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (TaxRuleModel) TableName() string {
	return "tax_rules"
}

// ToDomain converts the persistence model to a domain TaxRule.
func (m *TaxRuleModel) ToDomain() *catalog.TaxRule {
	return &catalog.TaxRule{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		Method:        m.Method,
		Rate:          m.Rate,
		Applicability: m.Applicability,
		IsActive:      m.IsActive,
	}
}

// TaxRuleModelFromDomain creates a persistence model from a domain TaxRule.
func TaxRuleModelFromDomain(r *catalog.TaxRule) *TaxRuleModel {
	m := &TaxRuleModel{
		Name:          r.Name,
		Method:        r.Method,
		Rate:          r.Rate,
		Applicability: r.Applicability,
		IsActive:      r.IsActive,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
