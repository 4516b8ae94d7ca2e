package models

import (
	"time"

	"github.com/erp/posting/internal/domain/catalog"
	"github.com/erp/posting/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
// Purchase and sales orders share the table and are told apart by Kind.
type OrderModel struct {
	AggregateModel
	Kind             trade.OrderKind   `gorm:"type:varchar(20);not null;uniqueIndex:idx_orders_kind_number,priority:1"`
	OrderNumber      string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_orders_kind_number,priority:2"`
	CounterpartyID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	CounterpartyName string            `gorm:"type:varchar(200);not null;default:''"`
	OrderDate        time.Time         `gorm:"not null"`
	Status           trade.OrderStatus `gorm:"type:varchar(30);not null;default:'draft';index"`
	Items            []OrderItemModel  `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal         decimal.Decimal   `gorm:"type:decimal(28,8);not null;default:0"`
	TaxAmount        decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount      decimal.Decimal   `gorm:"type:decimal(28,8);not null;default:0"`
	Notes            string            `gorm:"type:text"`
	StockPostedAt    *time.Time
	ConfirmedAt      *time.Time
	FulfilledAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	order := &trade.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Kind:              m.Kind,
		OrderNumber:       m.OrderNumber,
		CounterpartyID:    m.CounterpartyID,
		CounterpartyName:  m.CounterpartyName,
		OrderDate:         m.OrderDate,
		Status:            m.Status,
		Subtotal:          m.Subtotal,
		TaxAmount:         m.TaxAmount,
		TotalAmount:       m.TotalAmount,
		Notes:             m.Notes,
		StockPostedAt:     m.StockPostedAt,
		ConfirmedAt:       m.ConfirmedAt,
		FulfilledAt:       m.FulfilledAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Items:             make([]trade.LineItem, len(m.Items)),
	}
	for i := range m.Items {
		order.Items[i] = *m.Items[i].ToDomain()
	}
	return order
}

// OrderModelFromDomain creates a persistence model from a domain Order.
// Items are converted separately by the repository.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{
		Kind:             o.Kind,
		OrderNumber:      o.OrderNumber,
		CounterpartyID:   o.CounterpartyID,
		CounterpartyName: o.CounterpartyName,
		OrderDate:        o.OrderDate,
		Status:           o.Status,
		Subtotal:         o.Subtotal,
		TaxAmount:        o.TaxAmount,
		TotalAmount:      o.TotalAmount,
		Notes:            o.Notes,
		StockPostedAt:    o.StockPostedAt,
		ConfirmedAt:      o.ConfirmedAt,
		FulfilledAt:      o.FulfilledAt,
		CancelledAt:      o.CancelledAt,
		CancelReason:     o.CancelReason,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// OrderItemModel is the persistence model for an order line.
// A product appears at most once per order.
type OrderItemModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_order_items_order_product,priority:1"`
	Position    int               `gorm:"not null"`
	ProductID   uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_order_items_order_product,priority:2"`
	ProductName string            `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	TaxRuleID   *uuid.UUID        `gorm:"type:uuid"`
	TaxMethod   catalog.TaxMethod `gorm:"type:varchar(20);not null;default:''"`
	TaxRate     decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount   decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal   decimal.Decimal   `gorm:"type:decimal(28,8);not null"`
	CreatedAt   time.Time         `gorm:"not null"`
	UpdatedAt   time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *OrderItemModel) ToDomain() *trade.LineItem {
	return &trade.LineItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		Position:    m.Position,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TaxRuleID:   m.TaxRuleID,
		TaxMethod:   m.TaxMethod,
		TaxRate:     m.TaxRate,
		TaxAmount:   m.TaxAmount,
		LineTotal:   m.LineTotal,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain LineItem.
func OrderItemModelFromDomain(item *trade.LineItem) *OrderItemModel {
	return &OrderItemModel{
		ID:          item.ID,
		OrderID:     item.OrderID,
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
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
