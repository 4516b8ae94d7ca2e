package handler

import (
	"context"

	"github.com/erp/posting/internal/application/posting"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
)

// PostingService is the write side of the posting engine
type PostingService interface {
	CreateOrder(ctx context.Context, req posting.CreateOrderRequest) (*posting.OrderResponse, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*posting.OrderResponse, error)
	UpdateOrderHeader(ctx context.Context, orderID uuid.UUID, req posting.UpdateOrderHeaderRequest) (*posting.OrderResponse, error)
	AddLineItem(ctx context.Context, orderID uuid.UUID, req posting.AddLineItemRequest) (*posting.OrderResponse, error)
	UpdateLineItem(ctx context.Context, orderID, itemID uuid.UUID, req posting.UpdateLineItemRequest) (*posting.OrderResponse, error)
	RemoveLineItem(ctx context.Context, orderID, itemID uuid.UUID) (*posting.OrderResponse, error)
	ChangeOrderStatus(ctx context.Context, orderID uuid.UUID, req posting.ChangeOrderStatusRequest) (*posting.OrderResponse, error)
	RecordPayment(ctx context.Context, req posting.RecordPaymentRequest, idempotencyKey string) (*posting.PaymentPostingResponse, error)
	CreateInvoiceFromOrder(ctx context.Context, req posting.CreateInvoiceRequest) (*posting.InvoiceResponse, error)
	RecordStockMovement(ctx context.Context, req posting.RecordStockMovementRequest) (*posting.StockLedgerEntryResponse, error)
}

// QueryService is the read-only side consumed by reports and dashboards
type QueryService interface {
	ListStockLedger(ctx context.Context, f posting.StockLedgerFilter) (*shared.Paginated[posting.StockLedgerEntryResponse], error)
	ListFinancialLedger(ctx context.Context, f posting.FinancialLedgerFilter) (*shared.Paginated[posting.LedgerEntryResponse], error)
	GetProductStock(ctx context.Context, productID uuid.UUID) (*posting.ProductStockResponse, error)
	ListProducts(ctx context.Context, page, pageSize int) (*shared.Paginated[posting.ProductResponse], error)
	ListOrders(ctx context.Context, f posting.OrderListFilter) (*shared.Paginated[posting.OrderResponse], error)
	GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*posting.InvoiceResponse, error)
	ListInvoicePayments(ctx context.Context, invoiceID uuid.UUID, page, pageSize int) (*shared.Paginated[posting.PaymentResponse], error)
	ListAccounts(ctx context.Context, page, pageSize int) (*shared.Paginated[posting.AccountResponse], error)
}

// ProvisioningService creates the catalog and chart of accounts
type ProvisioningService interface {
	CreateProduct(ctx context.Context, req posting.CreateProductRequest) (*posting.ProductResponse, error)
	DeactivateProduct(ctx context.Context, productID uuid.UUID) (*posting.ProductResponse, error)
	CreateTaxRule(ctx context.Context, req posting.CreateTaxRuleRequest) (*posting.TaxRuleResponse, error)
	ProvisionAccount(ctx context.Context, req posting.ProvisionAccountRequest) (*posting.AccountResponse, error)
}

var (
	_ PostingService      = (*posting.Coordinator)(nil)
	_ QueryService        = (*posting.QueryService)(nil)
	_ ProvisioningService = (*posting.ProvisioningService)(nil)
)

// PageQuery is the common page/page_size query
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}
