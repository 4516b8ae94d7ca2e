package trade

import (
	"context"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate finds an order with its items and holds the order
	// row lock until the enclosing transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByNumber finds an order by kind and number
	FindByNumber(ctx context.Context, kind OrderKind, orderNumber string) (*Order, error)

	// FindAll lists orders; filters: kind, status, counterparty_id
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)

	// Save creates or updates an order together with its items
	Save(ctx context.Context, order *Order) error
}
