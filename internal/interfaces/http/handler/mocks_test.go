package handler

import (
	"context"

	"github.com/erp/posting/internal/application/posting"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPostingService implements PostingService for testing
type MockPostingService struct {
	mock.Mock
}

func (m *MockPostingService) CreateOrder(ctx context.Context, req posting.CreateOrderRequest) (*posting.OrderResponse, error) {
	args := m.Called(ctx, req)
	return orderResult(args)
}

func (m *MockPostingService) GetOrder(ctx context.Context, orderID uuid.UUID) (*posting.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	return orderResult(args)
}

func (m *MockPostingService) UpdateOrderHeader(ctx context.Context, orderID uuid.UUID, req posting.UpdateOrderHeaderRequest) (*posting.OrderResponse, error) {
	args := m.Called(ctx, orderID, req)
	return orderResult(args)
}

func (m *MockPostingService) AddLineItem(ctx context.Context, orderID uuid.UUID, req posting.AddLineItemRequest) (*posting.OrderResponse, error) {
	args := m.Called(ctx, orderID, req)
	return orderResult(args)
}

func (m *MockPostingService) UpdateLineItem(ctx context.Context, orderID, itemID uuid.UUID, req posting.UpdateLineItemRequest) (*posting.OrderResponse, error) {
	args := m.Called(ctx, orderID, itemID, req)
	return orderResult(args)
}

func (m *MockPostingService) RemoveLineItem(ctx context.Context, orderID, itemID uuid.UUID) (*posting.OrderResponse, error) {
	args := m.Called(ctx, orderID, itemID)
	return orderResult(args)
}

func (m *MockPostingService) ChangeOrderStatus(ctx context.Context, orderID uuid.UUID, req posting.ChangeOrderStatusRequest) (*posting.OrderResponse, error) {
	args := m.Called(ctx, orderID, req)
	return orderResult(args)
}

func (m *MockPostingService) RecordPayment(ctx context.Context, req posting.RecordPaymentRequest, idempotencyKey string) (*posting.PaymentPostingResponse, error) {
	args := m.Called(ctx, req, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.PaymentPostingResponse), args.Error(1)
}

func (m *MockPostingService) CreateInvoiceFromOrder(ctx context.Context, req posting.CreateInvoiceRequest) (*posting.InvoiceResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.InvoiceResponse), args.Error(1)
}

func (m *MockPostingService) RecordStockMovement(ctx context.Context, req posting.RecordStockMovementRequest) (*posting.StockLedgerEntryResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.StockLedgerEntryResponse), args.Error(1)
}

func orderResult(args mock.Arguments) (*posting.OrderResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.OrderResponse), args.Error(1)
}

// MockQueryService implements QueryService for testing
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) ListStockLedger(ctx context.Context, f posting.StockLedgerFilter) (*shared.Paginated[posting.StockLedgerEntryResponse], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[posting.StockLedgerEntryResponse]), args.Error(1)
}

func (m *MockQueryService) ListFinancialLedger(ctx context.Context, f posting.FinancialLedgerFilter) (*shared.Paginated[posting.LedgerEntryResponse], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[posting.LedgerEntryResponse]), args.Error(1)
}

func (m *MockQueryService) GetProductStock(ctx context.Context, productID uuid.UUID) (*posting.ProductStockResponse, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.ProductStockResponse), args.Error(1)
}

func (m *MockQueryService) ListProducts(ctx context.Context, page, pageSize int) (*shared.Paginated[posting.ProductResponse], error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[posting.ProductResponse]), args.Error(1)
}

func (m *MockQueryService) ListOrders(ctx context.Context, f posting.OrderListFilter) (*shared.Paginated[posting.OrderResponse], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[posting.OrderResponse]), args.Error(1)
}

func (m *MockQueryService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*posting.InvoiceResponse, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.InvoiceResponse), args.Error(1)
}

func (m *MockQueryService) ListInvoicePayments(ctx context.Context, invoiceID uuid.UUID, page, pageSize int) (*shared.Paginated[posting.PaymentResponse], error) {
	args := m.Called(ctx, invoiceID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[posting.PaymentResponse]), args.Error(1)
}

func (m *MockQueryService) ListAccounts(ctx context.Context, page, pageSize int) (*shared.Paginated[posting.AccountResponse], error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[posting.AccountResponse]), args.Error(1)
}

// MockProvisioningService implements ProvisioningService for testing
type MockProvisioningService struct {
	mock.Mock
}

func (m *MockProvisioningService) CreateProduct(ctx context.Context, req posting.CreateProductRequest) (*posting.ProductResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.ProductResponse), args.Error(1)
}

func (m *MockProvisioningService) DeactivateProduct(ctx context.Context, productID uuid.UUID) (*posting.ProductResponse, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.ProductResponse), args.Error(1)
}

func (m *MockProvisioningService) CreateTaxRule(ctx context.Context, req posting.CreateTaxRuleRequest) (*posting.TaxRuleResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.TaxRuleResponse), args.Error(1)
}

func (m *MockProvisioningService) ProvisionAccount(ctx context.Context, req posting.ProvisionAccountRequest) (*posting.AccountResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posting.AccountResponse), args.Error(1)
}

var (
	_ PostingService      = (*MockPostingService)(nil)
	_ QueryService        = (*MockQueryService)(nil)
	_ ProvisioningService = (*MockProvisioningService)(nil)
)
