package posting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/erp/posting/internal/domain/catalog"
	"github.com/erp/posting/internal/domain/inventory"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockPoster appends stock ledger entries and keeps Product.CurrentStock
// equal to the balance of each product's latest entry.
// It runs inside a caller-owned transaction and never commits on its own.
type StockPoster struct {
	logger *zap.Logger
}

// NewStockPoster creates a new StockPoster
func NewStockPoster(logger *zap.Logger) *StockPoster {
	return &StockPoster{logger: logger}
}

// StockPosting is the outcome of a committed-to-be stock posting
type StockPosting struct {
	Entries []*inventory.StockLedgerEntry
	Events  []shared.DomainEvent
}

// PostOrder writes one stock ledger entry per line of a confirmed order, in
// line order. It refuses to post an order twice, whether the order carries
// the posted flag or ledger rows already reference it.
func (p *StockPoster) PostOrder(ctx context.Context, repos TransactionalRepositories, order *trade.Order, at time.Time) (*StockPosting, error) {
	source := order.SourceRef()
	if order.IsStockPosted() {
		return nil, shared.ErrDuplicatePosting.
			WithMessage("stock for order %s has already been posted", order.OrderNumber).
			WithDetail("order_id", order.ID.String())
	}
	existing, err := repos.StockLedger().CountBySource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to count stock entries for %s: %w", source, err)
	}
	if existing > 0 {
		return nil, shared.ErrDuplicatePosting.
			WithMessage("order %s already has %d stock entries", order.OrderNumber, existing).
			WithDetail("order_id", order.ID.String())
	}

	items := make([]trade.LineItem, len(order.Items))
	copy(items, order.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	products, err := p.lockProducts(ctx, repos, items)
	if err != nil {
		return nil, err
	}

	movement := inventory.MovementPurchase
	if order.Kind == trade.OrderKindSales {
		movement = inventory.MovementSale
	}

	result := &StockPosting{}
	for _, item := range items {
		product := products[item.ProductID]
		lineID := item.ID
		entry, err := p.append(ctx, repos, product, inventory.Movement{
			ProductID:       item.ProductID,
			Type:            movement,
			Delta:           order.StockDelta(item.Quantity),
			UnitPrice:       item.UnitPrice,
			Source:          source,
			SourceLineID:    &lineID,
			ReferenceNumber: order.OrderNumber,
			TransactionDate: order.OrderDate,
		})
		if err != nil {
			return nil, lineFailure(err, item)
		}
		result.Entries = append(result.Entries, entry)
		result.Events = append(result.Events, inventory.NewStockPostedEvent(entry, product.MinimumStock))
	}

	if err := order.MarkStockPosted(at); err != nil {
		return nil, err
	}
	return result, nil
}

// PostMovement writes a manual adjustment or opening balance for one
// product under the same product lock as order postings.
func (p *StockPoster) PostMovement(ctx context.Context, repos TransactionalRepositories, m inventory.Movement) (*StockPosting, error) {
	if m.Type != inventory.MovementAdjustment && m.Type != inventory.MovementOpening {
		return nil, shared.ErrValidation.
			WithMessage("movement type %q cannot be recorded manually", m.Type).
			WithDetail("field", "movement_type")
	}
	product, err := repos.Products().FindByIDForUpdate(ctx, m.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrStockPostingFailed.
				WithMessage("product %s not found", m.ProductID).
				WithDetail("product_id", m.ProductID.String())
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.ErrStockPostingFailed.
			WithMessage("product %s is inactive", product.SKU).
			WithDetail("product_id", product.ID.String())
	}
	if m.Type == inventory.MovementAdjustment && product.CurrentStock.Add(m.Delta).IsNegative() {
		return nil, shared.ErrValidation.
			WithMessage("adjustment would drive stock of %s below zero", product.SKU).
			WithDetail("field", "quantity").
			WithDetail("current_stock", product.CurrentStock.String())
	}
	m.Source = shared.ManualRef()

	entry, err := p.append(ctx, repos, product, m)
	if err != nil {
		return nil, err
	}
	return &StockPosting{
		Entries: []*inventory.StockLedgerEntry{entry},
		Events:  []shared.DomainEvent{inventory.NewStockPostedEvent(entry, product.MinimumStock)},
	}, nil
}

// lockProducts loads every product of the order with a row lock. Locks are
// taken in product ID order so that two orders sharing products cannot
// deadlock; the first offending line in line order is reported.
func (p *StockPoster) lockProducts(ctx context.Context, repos TransactionalRepositories, items []trade.LineItem) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	products := make(map[uuid.UUID]*catalog.Product, len(ids))
	for _, id := range ids {
		product, err := repos.Products().FindByIDForUpdate(ctx, id)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if product != nil {
			products[id] = product
		}
	}

	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, shared.ErrStockPostingFailed.
				WithMessage("line %d: product %s not found", item.Position, item.ProductID).
				WithDetail("line", item.Position).
				WithDetail("product_id", item.ProductID.String())
		}
		if !product.IsActive {
			return nil, shared.ErrStockPostingFailed.
				WithMessage("line %d: product %s is inactive", item.Position, product.SKU).
				WithDetail("line", item.Position).
				WithDetail("product_id", item.ProductID.String())
		}
	}
	return products, nil
}

// append reads the latest entry of the locked product, writes its successor
// and moves the product's stock projection to the new balance.
func (p *StockPoster) append(ctx context.Context, repos TransactionalRepositories, product *catalog.Product, m inventory.Movement) (*inventory.StockLedgerEntry, error) {
	prev, err := repos.StockLedger().FindLatestByProduct(ctx, product.ID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to read stock ledger of product %s: %w", product.ID, err)
		}
		prev = nil
	}

	last := decimal.Zero
	if prev != nil {
		last = prev.BalanceQuantity
	}
	if !last.Equal(product.CurrentStock) {
		p.logger.Error("stock projection diverged from ledger",
			zap.String("product_id", product.ID.String()),
			zap.String("ledger_balance", last.String()),
			zap.String("current_stock", product.CurrentStock.String()),
		)
		return nil, shared.ErrStockPostingFailed.
			WithMessage("stock of product %s does not match its ledger", product.SKU).
			WithDetail("product_id", product.ID.String())
	}

	entry, err := inventory.NextEntry(prev, m)
	if err != nil {
		return nil, err
	}
	if err := repos.StockLedger().Append(ctx, entry); err != nil {
		return nil, err
	}

	product.ApplyStockBalance(entry.BalanceQuantity)
	if err := repos.Products().Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product %s: %w", product.ID, err)
	}
	return entry, nil
}

// lineFailure turns an error raised while posting a line into a
// StockPostingFailed that names the line, unless it already is a more
// specific posting error.
func lineFailure(err error, item trade.LineItem) error {
	if errors.Is(err, shared.ErrDuplicatePosting) || errors.Is(err, shared.ErrStockPostingFailed) {
		return err
	}
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return err
	}
	return shared.ErrStockPostingFailed.
		WithMessage("line %d: %s", item.Position, de.Message).
		WithDetail("line", item.Position).
		WithDetail("product_id", item.ProductID.String())
}
