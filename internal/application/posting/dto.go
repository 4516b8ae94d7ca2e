package posting

import (
	"time"

	"github.com/erp/posting/internal/domain/catalog"
	"github.com/erp/posting/internal/domain/finance"
	"github.com/erp/posting/internal/domain/inventory"
	"github.com/erp/posting/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Order requests =====================

// CreateOrderRequest represents a request to open a draft order
type CreateOrderRequest struct {
	Kind             trade.OrderKind `json:"kind" binding:"required,oneof=purchase sales"`
	OrderNumber      string          `json:"order_number" binding:"required,min=1,max=50"`
	CounterpartyID   uuid.UUID       `json:"counterparty_id" binding:"required"`
	CounterpartyName string          `json:"counterparty_name" binding:"max=200"`
	OrderDate        *time.Time      `json:"order_date"`
	Notes            string          `json:"notes" binding:"max=2000"`
}

// UpdateOrderHeaderRequest changes an order's own mutable fields
type UpdateOrderHeaderRequest struct {
	CounterpartyName string     `json:"counterparty_name" binding:"max=200"`
	OrderDate        *time.Time `json:"order_date"`
	Notes            string     `json:"notes" binding:"max=2000"`
}

// AddLineItemRequest adds a product line to a draft order.
// UnitPrice defaults to the product's price for the order side; TaxRuleID
// defaults to the product's tax for the order side.
type AddLineItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required,decimal_gt0,decimal_scale=4"`
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"omitempty,decimal_gte0,decimal_scale=4"`
	TaxRuleID *uuid.UUID       `json:"tax_rule_id"`
}

// UpdateLineItemRequest reprices a line. Nil fields keep their value;
// ClearTax removes the line's tax.
type UpdateLineItemRequest struct {
	Quantity  *decimal.Decimal `json:"quantity" binding:"omitempty,decimal_gt0,decimal_scale=4"`
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"omitempty,decimal_gte0,decimal_scale=4"`
	TaxRuleID *uuid.UUID       `json:"tax_rule_id"`
	ClearTax  bool             `json:"clear_tax"`
}

// ChangeOrderStatusRequest asks for an order status transition
type ChangeOrderStatusRequest struct {
	Status trade.OrderStatus `json:"status" binding:"required"`
	Reason string            `json:"reason" binding:"max=500"`
}

// OrderListFilter defines filtering options for order list queries
type OrderListFilter struct {
	Kind           string     `form:"kind" binding:"omitempty,oneof=purchase sales"`
	Status         string     `form:"status"`
	CounterpartyID *uuid.UUID `form:"counterparty_id"`
	Page           int        `form:"page" binding:"omitempty,min=1"`
	PageSize       int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ===================== Payment and invoice requests =====================

// RecordPaymentRequest submits a payment against exactly one bill or invoice
type RecordPaymentRequest struct {
	PaymentNumber     string                   `json:"payment_number" binding:"max=50"`
	Direction         finance.PaymentDirection `json:"direction" binding:"required,oneof=vendor customer"`
	VendorBillID      *uuid.UUID               `json:"vendor_bill_id"`
	CustomerInvoiceID *uuid.UUID               `json:"customer_invoice_id"`
	Amount            decimal.Decimal          `json:"amount" binding:"required,decimal_gt0,decimal_scale=2"`
	Method            finance.PaymentMethod    `json:"method"`
	PaymentDate       *time.Time               `json:"payment_date"`
	ReferenceNumber   string                   `json:"reference_number" binding:"max=100"`
	Notes             string                   `json:"notes" binding:"max=2000"`
}

// CreateInvoiceRequest bills a confirmed order
type CreateInvoiceRequest struct {
	OrderID       uuid.UUID  `json:"order_id" binding:"required"`
	InvoiceNumber string     `json:"invoice_number" binding:"required,min=1,max=50"`
	InvoiceDate   *time.Time `json:"invoice_date"`
	DueDate       *time.Time `json:"due_date"`
}

// ===================== Stock requests =====================

// RecordStockMovementRequest records a manual adjustment or opening balance
type RecordStockMovementRequest struct {
	ProductID     uuid.UUID              `json:"product_id" binding:"required"`
	MovementType  inventory.MovementType `json:"movement_type" binding:"required,oneof=adjustment opening"`
	QuantityDelta decimal.Decimal        `json:"quantity_delta" binding:"required,decimal_scale=4"`
	UnitPrice     decimal.Decimal        `json:"unit_price" binding:"decimal_gte0,decimal_scale=4"`
	Notes         string                 `json:"notes" binding:"max=500"`
}

// StockLedgerFilter defines filtering options for stock ledger queries
type StockLedgerFilter struct {
	ProductID    *uuid.UUID `form:"product_id"`
	MovementType string     `form:"movement_type"`
	SourceType   string     `form:"source_type"`
	SourceID     *uuid.UUID `form:"source_id"`
	FromDate     *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate       *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// FinancialLedgerFilter defines filtering options for financial ledger queries
type FinancialLedgerFilter struct {
	AccountID   *uuid.UUID `form:"account_id"`
	AccountCode string     `form:"account_code"`
	EntryType   string     `form:"entry_type" binding:"omitempty,oneof=debit credit"`
	SourceType  string     `form:"source_type"`
	SourceID    *uuid.UUID `form:"source_id"`
	FromDate    *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate      *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ===================== Provisioning requests =====================

// CreateProductRequest provisions a product
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	SKU           string          `json:"sku" binding:"required,min=1,max=50"`
	SalesPrice    decimal.Decimal `json:"sales_price" binding:"decimal_gte0,decimal_scale=4"`
	PurchasePrice decimal.Decimal `json:"purchase_price" binding:"decimal_gte0,decimal_scale=4"`
	SalesTaxID    *uuid.UUID      `json:"sales_tax_id"`
	PurchaseTaxID *uuid.UUID      `json:"purchase_tax_id"`
	MinimumStock  decimal.Decimal `json:"minimum_stock" binding:"decimal_gte0,decimal_scale=4"`
}

// CreateTaxRuleRequest provisions a tax rule
type CreateTaxRuleRequest struct {
	Name          string                   `json:"name" binding:"required,min=1,max=100"`
	Method        catalog.TaxMethod        `json:"method" binding:"required,oneof=percentage fixed"`
	Rate          decimal.Decimal          `json:"rate"`
	Applicability catalog.TaxApplicability `json:"applicability" binding:"omitempty,oneof=sales purchase both"`
}

// ProvisionAccountRequest provisions a chart-of-accounts entry
type ProvisionAccountRequest struct {
	Code           string              `json:"code" binding:"required,min=1,max=20"`
	Name           string              `json:"name" binding:"required,min=1,max=100"`
	AccountType    finance.AccountType `json:"account_type" binding:"required,oneof=asset liability equity income expense"`
	ParentCategory string              `json:"parent_category" binding:"max=100"`
}

// ===================== Responses =====================

// LineItemResponse represents an order line in API responses
type LineItemResponse struct {
	ID          uuid.UUID         `json:"id"`
	Position    int               `json:"position"`
	ProductID   uuid.UUID         `json:"product_id"`
	ProductName string            `json:"product_name"`
	Quantity    decimal.Decimal   `json:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	TaxRuleID   *uuid.UUID        `json:"tax_rule_id,omitempty"`
	TaxMethod   catalog.TaxMethod `json:"tax_method,omitempty"`
	TaxRate     decimal.Decimal   `json:"tax_rate"`
	TaxAmount   decimal.Decimal   `json:"tax_amount"`
	LineTotal   decimal.Decimal   `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID               uuid.UUID          `json:"id"`
	Kind             trade.OrderKind    `json:"kind"`
	OrderNumber      string             `json:"order_number"`
	CounterpartyID   uuid.UUID          `json:"counterparty_id"`
	CounterpartyName string             `json:"counterparty_name"`
	OrderDate        time.Time          `json:"order_date"`
	Status           trade.OrderStatus  `json:"status"`
	Items            []LineItemResponse `json:"items"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	TaxAmount        decimal.Decimal    `json:"tax_amount"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	Notes            string             `json:"notes,omitempty"`
	StockPostedAt    *time.Time         `json:"stock_posted_at,omitempty"`
	ConfirmedAt      *time.Time         `json:"confirmed_at,omitempty"`
	FulfilledAt      *time.Time         `json:"fulfilled_at,omitempty"`
	CancelledAt      *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason     string             `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Version          int                `json:"version"`
}

// ToOrderResponse converts an order to its response
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]LineItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = LineItemResponse{
			ID:          item.ID,
			Position:    item.Position,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRuleID:   item.TaxRuleID,
			TaxMethod:   item.TaxMethod,
			TaxRate:     item.TaxRate,
			TaxAmount:   item.TaxAmount,
			LineTotal:   item.LineTotal,
		}
	}
	return OrderResponse{
		ID:               o.ID,
		Kind:             o.Kind,
		OrderNumber:      o.OrderNumber,
		CounterpartyID:   o.CounterpartyID,
		CounterpartyName: o.CounterpartyName,
		OrderDate:        o.OrderDate,
		Status:           o.Status,
		Items:            items,
		Subtotal:         o.Subtotal,
		TaxAmount:        o.TaxAmount,
		TotalAmount:      o.TotalAmount,
		Notes:            o.Notes,
		StockPostedAt:    o.StockPostedAt,
		ConfirmedAt:      o.ConfirmedAt,
		FulfilledAt:      o.FulfilledAt,
		CancelledAt:      o.CancelledAt,
		CancelReason:     o.CancelReason,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
}

// StockLedgerEntryResponse represents a stock ledger row
type StockLedgerEntryResponse struct {
	ID              uuid.UUID              `json:"id"`
	ProductID       uuid.UUID              `json:"product_id"`
	Sequence        int64                  `json:"sequence"`
	MovementType    inventory.MovementType `json:"movement_type"`
	Quantity        decimal.Decimal        `json:"quantity"`
	UnitPrice       decimal.Decimal        `json:"unit_price"`
	TotalValue      decimal.Decimal        `json:"total_value"`
	BalanceQuantity decimal.Decimal        `json:"balance_quantity"`
	BalanceValue    decimal.Decimal        `json:"balance_value"`
	SourceType      string                 `json:"source_type"`
	SourceID        *uuid.UUID             `json:"source_id,omitempty"`
	SourceLineID    *uuid.UUID             `json:"source_line_id,omitempty"`
	ReferenceNumber string                 `json:"reference_number,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	TransactionDate time.Time              `json:"transaction_date"`
	CreatedAt       time.Time              `json:"created_at"`
}

// ToStockLedgerEntryResponse converts a stock ledger entry to its response
func ToStockLedgerEntryResponse(e *inventory.StockLedgerEntry) StockLedgerEntryResponse {
	return StockLedgerEntryResponse{
		ID:              e.ID,
		ProductID:       e.ProductID,
		Sequence:        e.Sequence,
		MovementType:    e.MovementType,
		Quantity:        e.Quantity,
		UnitPrice:       e.UnitPrice,
		TotalValue:      e.TotalValue,
		BalanceQuantity: e.BalanceQuantity,
		BalanceValue:    e.BalanceValue,
		SourceType:      e.Source.Kind.String(),
		SourceID:        e.Source.ID,
		SourceLineID:    e.SourceLineID,
		ReferenceNumber: e.ReferenceNumber,
		Notes:           e.Notes,
		TransactionDate: e.TransactionDate,
		CreatedAt:       e.CreatedAt,
	}
}

// LedgerEntryResponse represents a financial ledger row
type LedgerEntryResponse struct {
	ID              uuid.UUID         `json:"id"`
	AccountID       uuid.UUID         `json:"account_id"`
	AccountCode     string            `json:"account_code"`
	EntryType       finance.EntryType `json:"entry_type"`
	Amount          decimal.Decimal   `json:"amount"`
	BalanceAfter    decimal.Decimal   `json:"balance_after"`
	Description     string            `json:"description"`
	SourceType      string            `json:"source_type"`
	SourceID        *uuid.UUID        `json:"source_id,omitempty"`
	ReferenceNumber string            `json:"reference_number,omitempty"`
	TransactionDate time.Time         `json:"transaction_date"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ToLedgerEntryResponse converts a financial ledger entry to its response
func ToLedgerEntryResponse(e *finance.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:              e.ID,
		AccountID:       e.AccountID,
		AccountCode:     e.AccountCode,
		EntryType:       e.EntryType,
		Amount:          e.Amount,
		BalanceAfter:    e.BalanceAfter,
		Description:     e.Description,
		SourceType:      e.Source.Kind.String(),
		SourceID:        e.Source.ID,
		ReferenceNumber: e.ReferenceNumber,
		TransactionDate: e.TransactionDate,
		CreatedAt:       e.CreatedAt,
	}
}

// InvoiceResponse represents a vendor bill or customer invoice
type InvoiceResponse struct {
	ID               uuid.UUID             `json:"id"`
	Kind             finance.InvoiceKind   `json:"kind"`
	InvoiceNumber    string                `json:"invoice_number"`
	OrderID          uuid.UUID             `json:"order_id"`
	CounterpartyID   uuid.UUID             `json:"counterparty_id"`
	CounterpartyName string                `json:"counterparty_name"`
	InvoiceDate      time.Time             `json:"invoice_date"`
	DueDate          *time.Time            `json:"due_date,omitempty"`
	Subtotal         decimal.Decimal       `json:"subtotal"`
	TaxAmount        decimal.Decimal       `json:"tax_amount"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	PaidAmount       decimal.Decimal       `json:"paid_amount"`
	BalanceAmount    decimal.Decimal       `json:"balance_amount"`
	Status           finance.InvoiceStatus `json:"status"`
	Version          int                   `json:"version"`
}

// ToInvoiceResponse converts an invoice to its response
func ToInvoiceResponse(inv *finance.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:               inv.ID,
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
		Version:          inv.Version,
	}
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID                uuid.UUID                `json:"id"`
	PaymentNumber     string                   `json:"payment_number"`
	Direction         finance.PaymentDirection `json:"direction"`
	VendorBillID      *uuid.UUID               `json:"vendor_bill_id,omitempty"`
	CustomerInvoiceID *uuid.UUID               `json:"customer_invoice_id,omitempty"`
	Amount            decimal.Decimal          `json:"amount"`
	Method            finance.PaymentMethod    `json:"method"`
	PaymentDate       time.Time                `json:"payment_date"`
	ReferenceNumber   string                   `json:"reference_number,omitempty"`
	Notes             string                   `json:"notes,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
}

// ToPaymentResponse converts a payment to its response
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID,
		PaymentNumber:     p.PaymentNumber,
		Direction:         p.Direction,
		VendorBillID:      p.VendorBillID,
		CustomerInvoiceID: p.CustomerInvoiceID,
		Amount:            p.Amount,
		Method:            p.Method,
		PaymentDate:       p.PaymentDate,
		ReferenceNumber:   p.ReferenceNumber,
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt,
	}
}

// PaymentPostingResponse is returned after a payment has been posted
type PaymentPostingResponse struct {
	Payment PaymentResponse       `json:"payment"`
	Invoice InvoiceResponse       `json:"invoice"`
	Entries []LedgerEntryResponse `json:"entries"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	SalesPrice    decimal.Decimal `json:"sales_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalesTaxID    *uuid.UUID      `json:"sales_tax_id,omitempty"`
	PurchaseTaxID *uuid.UUID      `json:"purchase_tax_id,omitempty"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinimumStock  decimal.Decimal `json:"minimum_stock"`
	IsActive      bool            `json:"is_active"`
	Version       int             `json:"version"`
}

// ToProductResponse converts a product to its response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		SalesPrice:    p.SalesPrice,
		PurchasePrice: p.PurchasePrice,
		SalesTaxID:    p.SalesTaxID,
		PurchaseTaxID: p.PurchaseTaxID,
		CurrentStock:  p.CurrentStock,
		MinimumStock:  p.MinimumStock,
		IsActive:      p.IsActive,
		Version:       p.Version,
	}
}

// ProductStockResponse reports a product's stock projection next to the
// balance of its latest ledger entry; InSync is false on divergence
type ProductStockResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	SKU            string          `json:"sku"`
	CurrentStock   decimal.Decimal `json:"current_stock"`
	MinimumStock   decimal.Decimal `json:"minimum_stock"`
	LedgerBalance  decimal.Decimal `json:"ledger_balance"`
	LedgerSequence int64           `json:"ledger_sequence"`
	InSync         bool            `json:"in_sync"`
	IsLowStock     bool            `json:"is_low_stock"`
}

// TaxRuleResponse represents a tax rule in API responses
type TaxRuleResponse struct {
	ID            uuid.UUID                `json:"id"`
	Name          string                   `json:"name"`
	Method        catalog.TaxMethod        `json:"method"`
	Rate          decimal.Decimal          `json:"rate"`
	Applicability catalog.TaxApplicability `json:"applicability"`
	IsActive      bool                     `json:"is_active"`
}

// ToTaxRuleResponse converts a tax rule to its response
func ToTaxRuleResponse(r *catalog.TaxRule) TaxRuleResponse {
	return TaxRuleResponse{
		ID:            r.ID,
		Name:          r.Name,
		Method:        r.Method,
		Rate:          r.Rate,
		Applicability: r.Applicability,
		IsActive:      r.IsActive,
	}
}

// AccountResponse represents a chart-of-accounts entry
type AccountResponse struct {
	ID             uuid.UUID           `json:"id"`
	Code           string              `json:"code"`
	Name           string              `json:"name"`
	AccountType    finance.AccountType `json:"account_type"`
	ParentCategory string              `json:"parent_category,omitempty"`
	IsActive       bool                `json:"is_active"`
	Balance        decimal.Decimal     `json:"balance"`
}

// ToAccountResponse converts an account to its response
func ToAccountResponse(a *finance.ChartAccount) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Code:           a.Code,
		Name:           a.Name,
		AccountType:    a.AccountType,
		ParentCategory: a.ParentCategory,
		IsActive:       a.IsActive,
		Balance:        a.Balance,
	}
}
