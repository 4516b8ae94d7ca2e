package trade

import (
	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type of orders
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderConfirmed     = "OrderConfirmed"
)

// OrderStatusChangedEvent is raised on every accepted transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Kind        OrderKind   `json:"kind"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
}

// NewOrderStatusChangedEvent creates an OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Kind:            o.Kind,
		From:            from,
		To:              o.Status,
	}
}

// OrderConfirmedEvent is raised when an order leaves draft
type OrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Kind        OrderKind       `json:"kind"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderConfirmedEvent creates an OrderConfirmedEvent
func NewOrderConfirmedEvent(o *Order) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderConfirmed, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Kind:            o.Kind,
		ItemCount:       len(o.Items),
		TotalAmount:     o.TotalAmount,
	}
}
