package finance

import (
	"strings"
	"time"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceKind distinguishes vendor bills from customer invoices
type InvoiceKind string

const (
	InvoiceKindVendorBill      InvoiceKind = "vendor_bill"
	InvoiceKindCustomerInvoice InvoiceKind = "customer_invoice"
)

// IsValid checks if the kind is valid
func (k InvoiceKind) IsValid() bool {
	return k == InvoiceKindVendorBill || k == InvoiceKindCustomerInvoice
}

// PaymentDirection returns the payment direction that settles this kind
func (k InvoiceKind) PaymentDirection() PaymentDirection {
	if k == InvoiceKindVendorBill {
		return PaymentDirectionVendor
	}
	return PaymentDirectionCustomer
}

// InvoiceStatus represents the settlement state of a bill or invoice
type InvoiceStatus string

const (
	InvoiceStatusOpen          InvoiceStatus = "open"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
)

// IsValid checks if the status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusOpen, InvoiceStatusPartiallyPaid, InvoiceStatusPaid:
		return true
	}
	return false
}

// Invoice is a vendor bill or customer invoice.
// Totals are copied from the originating order at creation, rounded to
// ledger precision and frozen; PaidAmount and BalanceAmount change only
// through ApplyPayment.
type Invoice struct {
	shared.BaseAggregateRoot
	Kind             InvoiceKind
	InvoiceNumber    string
	OrderID          uuid.UUID
	CounterpartyID   uuid.UUID
	CounterpartyName string
	InvoiceDate      time.Time
	DueDate          *time.Time
	Subtotal         decimal.Decimal
	TaxAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	PaidAmount       decimal.Decimal
	BalanceAmount    decimal.Decimal
	Status           InvoiceStatus
}

// NewInvoiceFromOrder bills a confirmed order
func NewInvoiceFromOrder(order *trade.Order, invoiceNumber string, invoiceDate time.Time, dueDate *time.Time) (*Invoice, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, shared.ErrValidation.WithMessage("invoice number cannot be empty").WithDetail("field", "invoice_number")
	}
	switch order.Status {
	case trade.OrderStatusConfirmed, trade.OrderStatusPartiallyFulfilled, trade.OrderStatusFulfilled:
	default:
		return nil, shared.ErrInvalidState.
			WithMessage("cannot invoice an order in %s status", order.Status).
			WithDetail("order_id", order.ID.String())
	}
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}
	if dueDate != nil && dueDate.Before(invoiceDate) {
		return nil, shared.ErrValidation.WithMessage("due date cannot precede invoice date").WithDetail("field", "due_date")
	}

	kind := InvoiceKindCustomerInvoice
	if order.Kind == trade.OrderKindPurchase {
		kind = InvoiceKindVendorBill
	}

	// payments settle whole cents, so the bill is issued at ledger precision
	subtotal := shared.RoundAmount(order.Subtotal)
	tax := shared.RoundAmount(order.TaxAmount)
	total := subtotal.Add(tax)

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		InvoiceNumber:     invoiceNumber,
		OrderID:           order.ID,
		CounterpartyID:    order.CounterpartyID,
		CounterpartyName:  order.CounterpartyName,
		InvoiceDate:       invoiceDate,
		DueDate:           dueDate,
		Subtotal:          subtotal,
		TaxAmount:         tax,
		TotalAmount:       total,
		PaidAmount:        decimal.Zero,
		BalanceAmount:     total,
		Status:            InvoiceStatusOpen,
	}
	if inv.TotalAmount.IsZero() {
		inv.Status = InvoiceStatusPaid
	}
	return inv, nil
}

// ApplyPayment adds amount to the paid total. Amounts above the current
// balance are rejected and leave the invoice unchanged.
func (i *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.ErrValidation.WithMessage("payment amount must be positive").WithDetail("field", "amount")
	}
	if amount.GreaterThan(i.BalanceAmount) {
		return shared.ErrOverpayment.
			WithMessage("payment %s exceeds outstanding balance %s", amount.String(), i.BalanceAmount.String()).
			WithDetail("amount", amount.String()).
			WithDetail("balance", i.BalanceAmount.String())
	}

	i.PaidAmount = i.PaidAmount.Add(amount)
	i.BalanceAmount = i.TotalAmount.Sub(i.PaidAmount)
	if i.BalanceAmount.IsZero() {
		i.Status = InvoiceStatusPaid
	} else {
		i.Status = InvoiceStatusPartiallyPaid
	}
	i.Touch()
	i.IncrementVersion()
	return nil
}

// SourceRef returns the ledger reference of the originating order
func (i *Invoice) SourceRef() shared.SourceRef {
	if i.Kind == InvoiceKindVendorBill {
		return shared.PurchaseOrderRef(i.OrderID)
	}
	return shared.SalesOrderRef(i.OrderID)
}
