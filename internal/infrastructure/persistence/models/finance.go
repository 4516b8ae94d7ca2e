package models

import (
	"time"

	"github.com/erp/posting/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChartAccountModel is the persistence model for a chart-of-accounts entry.
type ChartAccountModel struct {
	AggregateModel
	Code           string              `gorm:"type:varchar(20);not null;uniqueIndex:idx_chart_accounts_code"`
	Name           string              `gorm:"type:varchar(100);not null"`
	AccountType    finance.AccountType `gorm:"type:varchar(20);not null"`
	ParentCategory string              `gorm:"type:varchar(100)"`
	IsActive       bool                `gorm:"not null;default:true"`
	Balance        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ChartAccountModel) TableName() string {
	return "chart_accounts"
}

// ToDomain converts the persistence model to a domain ChartAccount.
func (m *ChartAccountModel) ToDomain() *finance.ChartAccount {
	return &finance.ChartAccount{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		AccountType:       m.AccountType,
		ParentCategory:    m.ParentCategory,
		IsActive:          m.IsActive,
		Balance:           m.Balance,
	}
}

// ChartAccountModelFromDomain creates a persistence model from a domain ChartAccount.
func ChartAccountModelFromDomain(a *finance.ChartAccount) *ChartAccountModel {
	m := &ChartAccountModel{
		Code:           a.Code,
		Name:           a.Name,
		AccountType:    a.AccountType,
		ParentCategory: a.ParentCategory,
		IsActive:       a.IsActive,
		Balance:        a.Balance,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// LedgerEntryModel is the persistence model for a financial ledger row.
// (source_type, source_id, account_id, entry_type) is unique so a payment
// can never be posted twice.
type LedgerEntryModel struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key"`
	AccountID       uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_ledger_entries_source_account,priority:3"`
	AccountCode     string            `gorm:"type:varchar(20);not null;index"`
	EntryType       finance.EntryType `gorm:"type:varchar(10);not null;uniqueIndex:idx_ledger_entries_source_account,priority:4"`
	Amount          decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	BalanceAfter    decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Description     string            `gorm:"type:varchar(500)"`
	SourceType      string            `gorm:"type:varchar(30);not null;uniqueIndex:idx_ledger_entries_source_account,priority:1"`
	SourceID        *uuid.UUID        `gorm:"type:uuid;uniqueIndex:idx_ledger_entries_source_account,priority:2"`
	ReferenceNumber string            `gorm:"type:varchar(50)"`
	TransactionDate time.Time         `gorm:"not null;index"`
	CreatedAt       time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry.
func (m *LedgerEntryModel) ToDomain() *finance.LedgerEntry {
	return &finance.LedgerEntry{
		ID:              m.ID,
		AccountID:       m.AccountID,
		AccountCode:     m.AccountCode,
		EntryType:       m.EntryType,
		Amount:          m.Amount,
		BalanceAfter:    m.BalanceAfter,
		Description:     m.Description,
		Source:          SourceColumns{SourceType: m.SourceType, SourceID: m.SourceID}.ToDomain(),
		ReferenceNumber: m.ReferenceNumber,
		TransactionDate: m.TransactionDate,
		CreatedAt:       m.CreatedAt,
	}
}

// LedgerEntryModelFromDomain creates a persistence model from a domain LedgerEntry.
func LedgerEntryModelFromDomain(e *finance.LedgerEntry) *LedgerEntryModel {
	src := SourceColumnsFromDomain(e.Source)
	return &LedgerEntryModel{
		ID:              e.ID,
		AccountID:       e.AccountID,
		AccountCode:     e.AccountCode,
		EntryType:       e.EntryType,
		Amount:          e.Amount,
		BalanceAfter:    e.BalanceAfter,
		Description:     e.Description,
		SourceType:      src.SourceType,
		SourceID:        src.SourceID,
		ReferenceNumber: e.ReferenceNumber,
		TransactionDate: e.TransactionDate,
		CreatedAt:       e.CreatedAt,
	}
}

// InvoiceModel is the persistence model for vendor bills and customer invoices.
// An order is billed at most once.
type InvoiceModel struct {
	AggregateModel
	Kind             finance.InvoiceKind   `gorm:"type:varchar(20);not null;index"`
	InvoiceNumber    string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_number"`
	OrderID          uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_order"`
	CounterpartyID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	CounterpartyName string                `gorm:"type:varchar(200);not null;default:''"`
	InvoiceDate      time.Time             `gorm:"not null"`
	DueDate          *time.Time
	Subtotal         decimal.Decimal       `gorm:"type:decimal(28,8);not null"`
	TaxAmount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalAmount      decimal.Decimal       `gorm:"type:decimal(28,8);not null"`
	PaidAmount       decimal.Decimal       `gorm:"type:decimal(28,8);not null;default:0"`
	BalanceAmount    decimal.Decimal       `gorm:"type:decimal(28,8);not null"`
	Status           finance.InvoiceStatus `gorm:"type:varchar(20);not null;default:'open';index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *finance.Invoice {
	return &finance.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Kind:              m.Kind,
		InvoiceNumber:     m.InvoiceNumber,
		OrderID:           m.OrderID,
		CounterpartyID:    m.CounterpartyID,
		CounterpartyName:  m.CounterpartyName,
		InvoiceDate:       m.InvoiceDate,
		DueDate:           m.DueDate,
		Subtotal:          m.Subtotal,
		TaxAmount:         m.TaxAmount,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		BalanceAmount:     m.BalanceAmount,
		Status:            m.Status,
	}
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Kind:             inv.Kind,
		InvoiceNumber:    inv.InvoiceNumber,
		OrderID:          inv.OrderID,
		CounterpartyID:   inv.CounterpartyID,
		CounterpartyName: inv.CounterpartyName,
		InvoiceDate:      inv.InvoiceDate,
		DueDate:          inv.DueDate,
		Subtotal:         inv.Subtotal,
		TaxAmount:        inv.TaxAmount,
		TotalAmount:      inv.TotalAmount,
		PaidAmount:       inv.PaidAmount,
		BalanceAmount:    inv.BalanceAmount,
		Status:           inv.Status,
	}
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	return m
}

// PaymentModel is the persistence model for a payment.
type PaymentModel struct {
	BaseModel
	PaymentNumber     string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_payments_number"`
	Direction         finance.PaymentDirection `gorm:"type:varchar(20);not null"`
	VendorBillID      *uuid.UUID               `gorm:"type:uuid;index"`
	CustomerInvoiceID *uuid.UUID               `gorm:"type:uuid;index"`
	Amount            decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Method            finance.PaymentMethod    `gorm:"type:varchar(20);not null"`
	PaymentDate       time.Time                `gorm:"not null"`
	ReferenceNumber   string                   `gorm:"type:varchar(100)"`
	Notes             string                   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseEntity:        m.BaseModel.ToDomain(),
		PaymentNumber:     m.PaymentNumber,
		Direction:         m.Direction,
		VendorBillID:      m.VendorBillID,
		CustomerInvoiceID: m.CustomerInvoiceID,
		Amount:            m.Amount,
		Method:            m.Method,
		PaymentDate:       m.PaymentDate,
		ReferenceNumber:   m.ReferenceNumber,
		Notes:             m.Notes,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		PaymentNumber:     p.PaymentNumber,
		Direction:         p.Direction,
		VendorBillID:      p.VendorBillID,
		CustomerInvoiceID: p.CustomerInvoiceID,
		Amount:            p.Amount,
		Method:            p.Method,
		PaymentDate:       p.PaymentDate,
		ReferenceNumber:   p.ReferenceNumber,
		Notes:             p.Notes,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
