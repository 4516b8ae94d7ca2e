package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentDirection tells whether money goes to a vendor or comes from a customer
type PaymentDirection string

const (
	PaymentDirectionVendor   PaymentDirection = "vendor"
	PaymentDirectionCustomer PaymentDirection = "customer"
)

// IsValid checks if the direction is valid
func (d PaymentDirection) IsValid() bool {
	return d == PaymentDirectionVendor || d == PaymentDirectionCustomer
}

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque,
		PaymentMethodCreditCard, PaymentMethodUPI, PaymentMethodOther:
		return true
	}
	return false
}

// Payment settles exactly one vendor bill or customer invoice
type Payment struct {
	shared.BaseEntity
	PaymentNumber     string
	Direction         PaymentDirection
	VendorBillID      *uuid.UUID
	CustomerInvoiceID *uuid.UUID
	Amount            decimal.Decimal
	Method            PaymentMethod
	PaymentDate       time.Time
	ReferenceNumber   string
	Notes             string
}

// PaymentInput carries the fields of a new payment
type PaymentInput struct {
	PaymentNumber     string
	Direction         PaymentDirection
	VendorBillID      *uuid.UUID
	CustomerInvoiceID *uuid.UUID
	Amount            decimal.Decimal
	Method            PaymentMethod
	PaymentDate       time.Time
	ReferenceNumber   string
	Notes             string
}

// NewPayment validates the target exclusivity rule and the amount
func NewPayment(in PaymentInput) (*Payment, error) {
	hasBill := in.VendorBillID != nil && *in.VendorBillID != uuid.Nil
	hasInvoice := in.CustomerInvoiceID != nil && *in.CustomerInvoiceID != uuid.Nil
	if hasBill == hasInvoice {
		return nil, shared.ErrAmbiguousPaymentTarget
	}
	if !in.Direction.IsValid() {
		return nil, shared.ErrAmbiguousPaymentTarget.WithMessage("unknown payment direction %q", in.Direction)
	}
	if (in.Direction == PaymentDirectionVendor) != hasBill {
		return nil, shared.ErrAmbiguousPaymentTarget.
			WithMessage("%s payment cannot settle that target", in.Direction).
			WithDetail("direction", string(in.Direction))
	}
	if in.Amount.LessThan(shared.MinPaymentAmount) {
		return nil, shared.ErrValidation.
			WithMessage("payment amount must be at least %s", shared.MinPaymentAmount.StringFixed(2)).
			WithDetail("field", "amount")
	}
	if shared.ExceedsScale(in.Amount, shared.LedgerPrecision) {
		return nil, shared.ErrValidation.
			WithMessage("payment amount cannot have more than %d decimal places", shared.LedgerPrecision).
			WithDetail("field", "amount")
	}
	if in.Method == "" {
		in.Method = PaymentMethodCash
	}
	if !in.Method.IsValid() {
		return nil, shared.ErrValidation.WithMessage("unknown payment method %q", in.Method).WithDetail("field", "method")
	}

	p := &Payment{
		BaseEntity:      shared.NewBaseEntity(),
		PaymentNumber:   strings.TrimSpace(in.PaymentNumber),
		Direction:       in.Direction,
		Amount:          in.Amount,
		Method:          in.Method,
		PaymentDate:     in.PaymentDate,
		ReferenceNumber: in.ReferenceNumber,
		Notes:           in.Notes,
	}
	if hasBill {
		id := *in.VendorBillID
		p.VendorBillID = &id
	} else {
		id := *in.CustomerInvoiceID
		p.CustomerInvoiceID = &id
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = p.CreatedAt
	}
	if p.PaymentNumber == "" {
		p.PaymentNumber = fmt.Sprintf("PAY-%s-%s", p.PaymentDate.Format("20060102"), p.ID.String()[:8])
	}
	return p, nil
}

// TargetID returns the bill or invoice this payment settles
func (p *Payment) TargetID() uuid.UUID {
	if p.VendorBillID != nil {
		return *p.VendorBillID
	}
	return *p.CustomerInvoiceID
}

// TargetKind returns the kind of document this payment settles
func (p *Payment) TargetKind() InvoiceKind {
	if p.VendorBillID != nil {
		return InvoiceKindVendorBill
	}
	return InvoiceKindCustomerInvoice
}

// SourceRef returns the ledger reference to this payment
func (p *Payment) SourceRef() shared.SourceRef {
	return shared.PaymentRef(p.ID)
}
