package finance

import (
	"context"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountRepository persists the chart of accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ChartAccount, error)
	FindByCode(ctx context.Context, code string) (*ChartAccount, error)

	// FindByCodesForUpdate loads and row-locks the accounts in code order.
	// Codes that do not exist are absent from the result map.
	FindByCodesForUpdate(ctx context.Context, codes []string) (map[string]*ChartAccount, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]ChartAccount, int64, error)
	Save(ctx context.Context, account *ChartAccount) error
}

// LedgerEntryRepository persists financial ledger entries. Entries are
// never updated or deleted.
type LedgerEntryRepository interface {
	Append(ctx context.Context, entries ...LedgerEntry) error
	CountBySource(ctx context.Context, source shared.SourceRef) (int64, error)

	// FindAll lists entries; filters: account_id, account_code,
	// entry_type, source_type, source_id, plus the filter date range
	FindAll(ctx context.Context, filter shared.Filter) ([]LedgerEntry, int64, error)
}

// InvoiceRepository persists vendor bills and customer invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForUpdate loads and row-locks the invoice
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)

	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Invoice, error)

	// FindAll lists invoices; filters: kind, status, counterparty_id
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, int64, error)
	Save(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository persists payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByNumber(ctx context.Context, number string) (*Payment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID, filter shared.Filter) ([]Payment, int64, error)
}
