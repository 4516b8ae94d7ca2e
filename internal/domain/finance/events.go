package finance

import (
	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate and event type constants
const (
	AggregateTypeInvoice = "Invoice"

	EventTypePaymentRecorded = "PaymentRecorded"
)

// PaymentRecordedEvent is raised after a payment has been posted and applied
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID        `json:"payment_id"`
	PaymentNumber string           `json:"payment_number"`
	Direction     PaymentDirection `json:"direction"`
	InvoiceID     uuid.UUID        `json:"invoice_id"`
	Amount        decimal.Decimal  `json:"amount"`
	BalanceAmount decimal.Decimal  `json:"balance_amount"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment, inv *Invoice) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeInvoice, inv.ID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		Direction:       p.Direction,
		InvoiceID:       inv.ID,
		Amount:          p.Amount,
		BalanceAmount:   inv.BalanceAmount,
	}
}
