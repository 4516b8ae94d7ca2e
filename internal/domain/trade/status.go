package trade

import "github.com/erp/posting/internal/domain/shared"

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusDraft              OrderStatus = "draft"
	OrderStatusConfirmed          OrderStatus = "confirmed"
	OrderStatusPartiallyFulfilled OrderStatus = "partially_fulfilled"
	OrderStatusFulfilled          OrderStatus = "fulfilled"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusPartiallyFulfilled,
		OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFulfilled || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusPartiallyFulfilled || target == OrderStatusFulfilled || target == OrderStatusCancelled
	case OrderStatusPartiallyFulfilled:
		return target == OrderStatusFulfilled
	case OrderStatusFulfilled, OrderStatusCancelled:
		return false
	}
	return false
}

// OrderKind distinguishes purchase orders from sales orders.
// Both share one structure and differ in stock direction.
type OrderKind string

const (
	OrderKindPurchase OrderKind = "purchase"
	OrderKindSales    OrderKind = "sales"
)

// IsValid checks if the kind is known
func (k OrderKind) IsValid() bool {
	return k == OrderKindPurchase || k == OrderKindSales
}

// SourceKind maps the order kind to the ledger source discriminator
func (k OrderKind) SourceKind() shared.SourceKind {
	if k == OrderKindPurchase {
		return shared.SourcePurchaseOrder
	}
	return shared.SourceSalesOrder
}
