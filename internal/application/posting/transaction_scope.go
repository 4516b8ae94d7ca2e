package posting

import (
	"context"

	"github.com/erp/posting/internal/domain/catalog"
	"github.com/erp/posting/internal/domain/finance"
	"github.com/erp/posting/internal/domain/inventory"
	"github.com/erp/posting/internal/domain/trade"
)

// TransactionScope provides transactional access to the posting repositories.
// When a function is executed within a transaction scope, every repository
// operation is part of the same database transaction and is committed or
// rolled back atomically. A posting either writes all of its ledger rows and
// balance updates or none of them.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error

	// Repositories returns repositories bound to the base connection.
	// They are used by read-only queries and must not be used to post.
	Repositories() TransactionalRepositories
}

// TransactionalRepositories provides access to all posting repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Aggregate boundary notes:
//   - Orders: the Order aggregate with its line items. Line items are saved
//     with the order and have no repository of their own.
//   - Products: stock projections are only changed by the stock poster.
//   - StockLedger and LedgerEntries: append-only.
//   - Accounts: running balances are only changed by the financial poster.
type TransactionalRepositories interface {
	Orders() trade.OrderRepository
	Products() catalog.ProductRepository
	TaxRules() catalog.TaxRuleRepository
	StockLedger() inventory.StockLedgerRepository
	Accounts() finance.AccountRepository
	LedgerEntries() finance.LedgerEntryRepository
	Invoices() finance.InvoiceRepository
	Payments() finance.PaymentRepository
}
