package posting

import (
	"context"
	"fmt"

	"github.com/erp/posting/internal/domain/inventory"
	"github.com/erp/posting/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockHandler handles StockPosted events and warns when a product's
// stock is at or below its minimum threshold
type LowStockHandler struct {
	logger *zap.Logger
}

// NewLowStockHandler creates a new handler for stock posted events
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockPosted}
}

// Handle processes a StockPostedEvent
func (h *LowStockHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	posted, ok := event.(*inventory.StockPostedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockPosted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockPosted, event.EventType())
	}
	if !posted.IsLowStock() {
		return nil
	}

	alertType := "low_stock"
	if !posted.BalanceQuantity.IsPositive() {
		alertType = "out_of_stock"
	}
	h.logger.Warn("stock at or below minimum",
		zap.String("alert_type", alertType),
		zap.String("product_id", posted.ProductID.String()),
		zap.String("movement_type", posted.MovementType.String()),
		zap.String("balance_quantity", posted.BalanceQuantity.String()),
		zap.String("minimum_stock", posted.MinimumStock.String()),
		zap.String("source", posted.Source.String()),
	)
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
