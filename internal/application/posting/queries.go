package posting

import (
	"context"
	"errors"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QueryService is the read side offered to reports and dashboards.
// Everything it returns is derived from the ledgers; it never writes.
type QueryService struct {
	scope TransactionScope
}

// NewQueryService creates a new QueryService
func NewQueryService(scope TransactionScope) *QueryService {
	return &QueryService{scope: scope}
}

// ListStockLedger lists stock ledger entries in posting order
func (s *QueryService) ListStockLedger(ctx context.Context, f StockLedgerFilter) (*shared.Paginated[StockLedgerEntryResponse], error) {
	filter := pageFilter(f.Page, f.PageSize, "sequence", "asc")
	filter.From, filter.To = f.FromDate, f.ToDate
	if f.ProductID != nil {
		filter.Filters["product_id"] = *f.ProductID
	}
	if f.MovementType != "" {
		filter.Filters["movement_type"] = f.MovementType
	}
	if f.SourceType != "" {
		filter.Filters["source_type"] = f.SourceType
	}
	if f.SourceID != nil {
		filter.Filters["source_id"] = *f.SourceID
	}

	entries, total, err := s.scope.Repositories().StockLedger().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]StockLedgerEntryResponse, len(entries))
	for i := range entries {
		items[i] = ToStockLedgerEntryResponse(&entries[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.Limit())
	return &page, nil
}

// ListFinancialLedger lists financial ledger entries
func (s *QueryService) ListFinancialLedger(ctx context.Context, f FinancialLedgerFilter) (*shared.Paginated[LedgerEntryResponse], error) {
	filter := pageFilter(f.Page, f.PageSize, "created_at", "asc")
	filter.From, filter.To = f.FromDate, f.ToDate
	if f.AccountID != nil {
		filter.Filters["account_id"] = *f.AccountID
	}
	if f.AccountCode != "" {
		filter.Filters["account_code"] = f.AccountCode
	}
	if f.EntryType != "" {
		filter.Filters["entry_type"] = f.EntryType
	}
	if f.SourceType != "" {
		filter.Filters["source_type"] = f.SourceType
	}
	if f.SourceID != nil {
		filter.Filters["source_id"] = *f.SourceID
	}

	entries, total, err := s.scope.Repositories().LedgerEntries().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		items[i] = ToLedgerEntryResponse(&entries[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.Limit())
	return &page, nil
}

// GetProductStock reports the stock projection of a product together with
// the balance of its latest ledger entry
func (s *QueryService) GetProductStock(ctx context.Context, productID uuid.UUID) (*ProductStockResponse, error) {
	repos := s.scope.Repositories()
	product, err := repos.Products().FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	resp := &ProductStockResponse{
		ProductID:     product.ID,
		SKU:           product.SKU,
		CurrentStock:  product.CurrentStock,
		MinimumStock:  product.MinimumStock,
		LedgerBalance: decimal.Zero,
		IsLowStock:    product.IsBelowMinimum(),
	}
	latest, err := repos.StockLedger().FindLatestByProduct(ctx, productID)
	switch {
	case err == nil:
		resp.LedgerBalance = latest.BalanceQuantity
		resp.LedgerSequence = latest.Sequence
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	resp.InSync = resp.LedgerBalance.Equal(product.CurrentStock)
	return resp, nil
}

// ListProducts lists products with their current stock
func (s *QueryService) ListProducts(ctx context.Context, page, pageSize int) (*shared.Paginated[ProductResponse], error) {
	filter := pageFilter(page, pageSize, "sku", "asc")
	products, total, err := s.scope.Repositories().Products().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.Limit())
	return &result, nil
}

// ListOrders lists orders without their lines
func (s *QueryService) ListOrders(ctx context.Context, f OrderListFilter) (*shared.Paginated[OrderResponse], error) {
	filter := pageFilter(f.Page, f.PageSize, "created_at", "desc")
	if f.Kind != "" {
		filter.Filters["kind"] = f.Kind
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	if f.CounterpartyID != nil {
		filter.Filters["counterparty_id"] = *f.CounterpartyID
	}

	orders, total, err := s.scope.Repositories().Orders().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.Limit())
	return &page, nil
}

// GetInvoice returns a bill or invoice with its current balance
func (s *QueryService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.scope.Repositories().Invoices().FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// ListInvoicePayments lists the payments applied to a bill or invoice
func (s *QueryService) ListInvoicePayments(ctx context.Context, invoiceID uuid.UUID, page, pageSize int) (*shared.Paginated[PaymentResponse], error) {
	repos := s.scope.Repositories()
	if _, err := repos.Invoices().FindByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	filter := pageFilter(page, pageSize, "payment_date", "asc")
	payments, total, err := repos.Payments().FindByInvoice(ctx, invoiceID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]PaymentResponse, len(payments))
	for i := range payments {
		items[i] = ToPaymentResponse(&payments[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.Limit())
	return &result, nil
}

// ListAccounts lists the chart of accounts with running balances
func (s *QueryService) ListAccounts(ctx context.Context, page, pageSize int) (*shared.Paginated[AccountResponse], error) {
	filter := pageFilter(page, pageSize, "code", "asc")
	accounts, total, err := s.scope.Repositories().Accounts().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]AccountResponse, len(accounts))
	for i := range accounts {
		items[i] = ToAccountResponse(&accounts[i])
	}
	result := shared.NewPaginated(items, total, filter.Page, filter.Limit())
	return &result, nil
}

func pageFilter(page, pageSize int, orderBy, orderDir string) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.OrderBy = orderBy
	filter.OrderDir = orderDir
	return filter
}
