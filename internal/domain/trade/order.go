package trade

import (
	"errors"
	"strings"
	"time"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a purchase or sales order aggregate.
// Subtotal, TaxAmount and TotalAmount are derived from Items and are
// recomputed after every mutation of the order or its lines.
type Order struct {
	shared.BaseAggregateRoot
	Kind             OrderKind
	OrderNumber      string
	CounterpartyID   uuid.UUID
	CounterpartyName string
	OrderDate        time.Time
	Status           OrderStatus
	Items            []LineItem
	Subtotal         decimal.Decimal
	TaxAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	Notes            string
	StockPostedAt    *time.Time
	ConfirmedAt      *time.Time
	FulfilledAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string
}

// NewOrder creates a new draft order with zero totals
func NewOrder(kind OrderKind, orderNumber string, counterpartyID uuid.UUID, counterpartyName string, orderDate time.Time) (*Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if !kind.IsValid() {
		return nil, shared.ErrValidation.WithMessage("unknown order kind %q", kind).WithDetail("field", "kind")
	}
	if orderNumber == "" {
		return nil, shared.ErrValidation.WithMessage("order number cannot be empty").WithDetail("field", "order_number")
	}
	if len(orderNumber) > 50 {
		return nil, shared.ErrValidation.WithMessage("order number cannot exceed 50 characters").WithDetail("field", "order_number")
	}
	if counterpartyID == uuid.Nil {
		return nil, shared.ErrValidation.WithMessage("counterparty is required").WithDetail("field", "counterparty_id")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		OrderNumber:       orderNumber,
		CounterpartyID:    counterpartyID,
		CounterpartyName:  counterpartyName,
		OrderDate:         orderDate,
		Status:            OrderStatusDraft,
		Items:             make([]LineItem, 0),
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		TotalAmount:       decimal.Zero,
	}, nil
}

// SourceRef returns the ledger reference to this order
func (o *Order) SourceRef() shared.SourceRef {
	id := o.ID
	return shared.SourceRef{Kind: o.Kind.SourceKind(), ID: &id}
}

// StockDelta returns the signed stock movement for a line quantity:
// positive for purchases, negative for sales.
func (o *Order) StockDelta(quantity decimal.Decimal) decimal.Decimal {
	if o.Kind == OrderKindSales {
		return quantity.Neg()
	}
	return quantity
}

// IsStockPosted reports whether stock entries were written for this order
func (o *Order) IsStockPosted() bool {
	return o.StockPostedAt != nil
}

func (o *Order) ensureEditable() error {
	if o.Status != OrderStatusDraft {
		return shared.ErrInvalidState.
			WithMessage("cannot modify items of an order in %s status", o.Status).
			WithDetail("status", o.Status.String())
	}
	return nil
}

// AddItem appends a priced line. A product may appear at most once.
func (o *Order) AddItem(productID uuid.UUID, productName string, quantity, unitPrice decimal.Decimal, tax *TaxSnapshot) (*LineItem, error) {
	if err := o.ensureEditable(); err != nil {
		return nil, err
	}
	if existing := o.GetItemByProduct(productID); existing != nil {
		return nil, shared.ErrInvalidLineItem.
			WithMessage("product already has a line on this order").
			WithDetail("product_id", productID.String()).
			WithDetail("line", existing.Position)
	}

	item, err := newLineItem(o.ID, productID, productName, o.nextPosition(), quantity, unitPrice, tax)
	if err != nil {
		return nil, withLine(err, o.nextPosition())
	}

	o.Items = append(o.Items, *item)
	o.afterMutation()
	return &o.Items[len(o.Items)-1], nil
}

// UpdateItem reprices an existing line
func (o *Order) UpdateItem(itemID uuid.UUID, quantity, unitPrice decimal.Decimal, tax *TaxSnapshot) (*LineItem, error) {
	if err := o.ensureEditable(); err != nil {
		return nil, err
	}
	item := o.GetItem(itemID)
	if item == nil {
		return nil, shared.ErrNotFound.WithMessage("line item not found").WithDetail("item_id", itemID.String())
	}
	if err := item.reprice(quantity, unitPrice, tax); err != nil {
		return nil, withLine(err, item.Position)
	}
	o.afterMutation()
	return item, nil
}

// RemoveItem deletes a line
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if err := o.ensureEditable(); err != nil {
		return err
	}
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.afterMutation()
			return nil
		}
	}
	return shared.ErrNotFound.WithMessage("line item not found").WithDetail("item_id", itemID.String())
}

// UpdateHeader changes the order's own mutable fields
func (o *Order) UpdateHeader(counterpartyName string, orderDate time.Time, notes string) error {
	if o.Status.IsTerminal() {
		return shared.ErrInvalidState.WithMessage("cannot modify an order in %s status", o.Status)
	}
	if counterpartyName != "" {
		o.CounterpartyName = counterpartyName
	}
	if !orderDate.IsZero() {
		o.OrderDate = orderDate
	}
	o.Notes = notes
	o.afterMutation()
	return nil
}

// RecomputeTotals writes the aggregated line amounts back to the order
func (o *Order) RecomputeTotals() Totals {
	totals := AggregateTotals(o.Items)
	o.Subtotal = totals.Subtotal
	o.TaxAmount = totals.TaxAmount
	o.TotalAmount = totals.Total
	return totals
}

func (o *Order) afterMutation() {
	o.RecomputeTotals()
	o.Touch()
	o.IncrementVersion()
}

// TransitionTo moves the order to target.
// It returns true when the transition requires stock posting, which is
// only the case for draft to confirmed.
func (o *Order) TransitionTo(target OrderStatus, reason string) (bool, error) {
	if !target.IsValid() {
		return false, shared.ErrInvalidStatusTransition.
			WithMessage("unknown order status %q", target).
			WithDetail("to", string(target))
	}
	if !o.Status.CanTransitionTo(target) {
		return false, shared.ErrInvalidStatusTransition.
			WithMessage("cannot move order from %s to %s", o.Status, target).
			WithDetail("from", o.Status.String()).
			WithDetail("to", target.String())
	}

	postStock := false
	now := time.Now()
	switch target {
	case OrderStatusConfirmed:
		if len(o.Items) == 0 {
			return false, shared.ErrValidation.WithMessage("cannot confirm an order without line items")
		}
		if o.IsStockPosted() {
			return false, shared.ErrDuplicatePosting.
				WithMessage("stock for order %s has already been posted", o.OrderNumber).
				WithDetail("order_id", o.ID.String())
		}
		o.RecomputeTotals()
		o.ConfirmedAt = &now
		postStock = true
	case OrderStatusFulfilled:
		o.FulfilledAt = &now
	case OrderStatusCancelled:
		o.CancelledAt = &now
		o.CancelReason = reason
	}

	from := o.Status
	o.Status = target
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	if target == OrderStatusConfirmed {
		o.AddDomainEvent(NewOrderConfirmedEvent(o))
	}
	return postStock, nil
}

// MarkStockPosted records that stock entries exist for this order
func (o *Order) MarkStockPosted(at time.Time) error {
	if o.IsStockPosted() {
		return shared.ErrDuplicatePosting.
			WithMessage("stock for order %s has already been posted", o.OrderNumber).
			WithDetail("order_id", o.ID.String())
	}
	o.StockPostedAt = &at
	return nil
}

// GetItem returns the line with the given ID, or nil
func (o *Order) GetItem(itemID uuid.UUID) *LineItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// GetItemByProduct returns the line for a product, or nil
func (o *Order) GetItemByProduct(productID uuid.UUID) *LineItem {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of lines
func (o *Order) ItemCount() int {
	return len(o.Items)
}

func (o *Order) nextPosition() int {
	max := 0
	for _, item := range o.Items {
		if item.Position > max {
			max = item.Position
		}
	}
	return max + 1
}

// withLine attaches the failing line position to a domain error
func withLine(err error, position int) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.WithDetail("line", position)
	}
	return err
}
