package persistence

import (
	"context"
	"time"

	"github.com/erp/posting/internal/application/posting"
	"github.com/erp/posting/internal/domain/catalog"
	"github.com/erp/posting/internal/domain/finance"
	"github.com/erp/posting/internal/domain/inventory"
	"github.com/erp/posting/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of a whole posting.
type GormTransactionScope struct {
	db      *gorm.DB
	timeout time.Duration
}

// ScopeOption configures a GormTransactionScope
type ScopeOption func(*GormTransactionScope)

// WithTransactionTimeout bounds each transaction, including the time spent
// waiting for row locks. Zero means no bound.
func WithTransactionTimeout(d time.Duration) ScopeOption {
	return func(s *GormTransactionScope) {
		s.timeout = d
	}
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, opts ...ScopeOption) *GormTransactionScope {
	s := &GormTransactionScope{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos posting.TransactionalRepositories) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// Repositories returns repositories bound to the base connection for reads.
func (s *GormTransactionScope) Repositories() posting.TransactionalRepositories {
	return &gormTransactionalRepositories{tx: s.db}
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Orders returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Orders() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// Products returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// TaxRules returns the tax rule repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TaxRules() catalog.TaxRuleRepository {
	return NewGormTaxRuleRepository(r.tx)
}

// StockLedger returns the stock ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StockLedger() inventory.StockLedgerRepository {
	return NewGormStockLedgerRepository(r.tx)
}

// Accounts returns the chart of accounts repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Accounts() finance.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// LedgerEntries returns the financial ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LedgerEntries() finance.LedgerEntryRepository {
	return NewGormLedgerEntryRepository(r.tx)
}

// Invoices returns the invoice repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Invoices() finance.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// Payments returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ posting.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ posting.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
