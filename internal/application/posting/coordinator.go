package posting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/posting/internal/domain/catalog"
	"github.com/erp/posting/internal/domain/finance"
	"github.com/erp/posting/internal/domain/inventory"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/domain/trade"
	"github.com/erp/posting/internal/infrastructure/logger"
	"github.com/erp/posting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const spanService = "posting"

// Coordinator is the single entry point for every request that changes an
// order, records a payment or moves stock. Each command runs in one
// transaction; domain events are published only after it commits.
type Coordinator struct {
	scope          TransactionScope
	stock          *StockPoster
	financial      *FinancialPoster
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	eventPublisher shared.EventPublisher
	metrics        *telemetry.PostingMetrics
	logger         *zap.Logger
}

// CoordinatorOption is a functional option for configuring Coordinator
type CoordinatorOption func(*Coordinator)

// WithIdempotencyStore enables Idempotency-Key handling on payment submissions
func WithIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) CoordinatorOption {
	return func(c *Coordinator) {
		c.idempotency = store
		c.idempotencyCfg = cfg
	}
}

// WithEventPublisher sets the publisher used after commit
func WithEventPublisher(publisher shared.EventPublisher) CoordinatorOption {
	return func(c *Coordinator) {
		c.eventPublisher = publisher
	}
}

// WithPostingMetrics sets the posting metrics collector
func WithPostingMetrics(metrics *telemetry.PostingMetrics) CoordinatorOption {
	return func(c *Coordinator) {
		c.metrics = metrics
	}
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(scope TransactionScope, accounts finance.WellKnownAccounts, logger *zap.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		scope:          scope,
		stock:          NewStockPoster(logger),
		financial:      NewFinancialPoster(accounts, logger),
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ===================== Orders =====================

// CreateOrder opens a draft order with zero totals
func (c *Coordinator) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "create_order")
	defer span.End()

	var orderDate time.Time
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	order, err := trade.NewOrder(req.Kind, req.OrderNumber, req.CounterpartyID, req.CounterpartyName, orderDate)
	if err != nil {
		return nil, c.reject(ctx, span, "create_order", err)
	}
	order.Notes = req.Notes

	err = c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.Orders().FindByNumber(ctx, order.Kind, order.OrderNumber)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.ErrAlreadyExists.
				WithMessage("%s order %s already exists", order.Kind, order.OrderNumber).
				WithDetail("order_number", order.OrderNumber)
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, c.reject(ctx, span, "create_order", err)
	}

	telemetry.SetAttributes(span, "order_id", order.ID.String(), "kind", string(order.Kind))
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetOrder returns an order with its lines
func (c *Coordinator) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := c.scope.Repositories().Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// UpdateOrderHeader changes the order's own fields and recomputes totals
func (c *Coordinator) UpdateOrderHeader(ctx context.Context, orderID uuid.UUID, req UpdateOrderHeaderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "update_order_header")
	defer span.End()

	var orderDate time.Time
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	order, err := c.mutateOrder(ctx, orderID, func(_ TransactionalRepositories, order *trade.Order) error {
		return order.UpdateHeader(req.CounterpartyName, orderDate, req.Notes)
	})
	if err != nil {
		return nil, c.reject(ctx, span, "update_order_header", err)
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// AddLineItem prices a new line and recomputes the order totals
func (c *Coordinator) AddLineItem(ctx context.Context, orderID uuid.UUID, req AddLineItemRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "add_line_item")
	defer span.End()
	telemetry.SetAttributes(span, "order_id", orderID.String(), "product_id", req.ProductID.String())

	order, err := c.mutateOrder(ctx, orderID, func(repos TransactionalRepositories, order *trade.Order) error {
		product, err := c.lineProduct(ctx, repos, req.ProductID)
		if err != nil {
			return err
		}
		taxID := req.TaxRuleID
		if taxID == nil {
			taxID = defaultTaxID(order.Kind, product)
		}
		tax, err := c.resolveTax(ctx, repos, order.Kind, taxID)
		if err != nil {
			return err
		}
		unitPrice := product.SalesPrice
		if order.Kind == trade.OrderKindPurchase {
			unitPrice = product.PurchasePrice
		}
		if req.UnitPrice != nil {
			unitPrice = *req.UnitPrice
		}
		_, err = order.AddItem(product.ID, product.Name, req.Quantity, unitPrice, tax)
		return err
	})
	if err != nil {
		return nil, c.reject(ctx, span, "add_line_item", err)
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// UpdateLineItem reprices an existing line and recomputes the order totals
func (c *Coordinator) UpdateLineItem(ctx context.Context, orderID, itemID uuid.UUID, req UpdateLineItemRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "update_line_item")
	defer span.End()
	telemetry.SetAttributes(span, "order_id", orderID.String(), "item_id", itemID.String())

	order, err := c.mutateOrder(ctx, orderID, func(repos TransactionalRepositories, order *trade.Order) error {
		item := order.GetItem(itemID)
		if item == nil {
			return shared.ErrNotFound.WithMessage("line item not found").WithDetail("item_id", itemID.String())
		}
		quantity, unitPrice := item.Quantity, item.UnitPrice
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			unitPrice = *req.UnitPrice
		}
		tax := item.Tax()
		switch {
		case req.ClearTax:
			tax = nil
		case req.TaxRuleID != nil:
			resolved, err := c.resolveTax(ctx, repos, order.Kind, req.TaxRuleID)
			if err != nil {
				return err
			}
			tax = resolved
		}
		_, err := order.UpdateItem(itemID, quantity, unitPrice, tax)
		return err
	})
	if err != nil {
		return nil, c.reject(ctx, span, "update_line_item", err)
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// RemoveLineItem deletes a line and recomputes the order totals
func (c *Coordinator) RemoveLineItem(ctx context.Context, orderID, itemID uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "remove_line_item")
	defer span.End()

	order, err := c.mutateOrder(ctx, orderID, func(_ TransactionalRepositories, order *trade.Order) error {
		return order.RemoveItem(itemID)
	})
	if err != nil {
		return nil, c.reject(ctx, span, "remove_line_item", err)
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ChangeOrderStatus performs a status transition. Moving a draft order to
// confirmed posts its stock in the same transaction; every other accepted
// transition only changes status.
func (c *Coordinator) ChangeOrderStatus(ctx context.Context, orderID uuid.UUID, req ChangeOrderStatusRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "change_order_status")
	defer span.End()
	start := time.Now()
	defer func() { c.metrics.RecordDuration(ctx, "change_order_status", time.Since(start)) }()
	telemetry.SetAttributes(span, "order_id", orderID.String(), "target_status", req.Status.String())

	var (
		order   *trade.Order
		posting *StockPosting
	)
	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		postStock, err := order.TransitionTo(req.Status, req.Reason)
		if err != nil {
			return err
		}
		if postStock {
			posting, err = c.stock.PostOrder(ctx, repos, order, time.Now())
			if err != nil {
				return err
			}
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		logger.WithLogger(ctx, c.logger).Error("order status change rolled back",
			zap.String("order_id", orderID.String()),
			zap.String("target_status", req.Status.String()),
			zap.Error(err),
		)
		return nil, c.reject(ctx, span, "change_order_status", err)
	}

	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if posting != nil {
		events = append(events, posting.Events...)
		c.metrics.RecordStockEntries(ctx, string(order.Kind), len(posting.Entries))
		telemetry.AddEvent(span, "stock_posted", "entries", len(posting.Entries))
		logger.WithLogger(ctx, c.logger).Info("order stock posted",
			zap.String("order_id", order.ID.String()),
			zap.String("order_number", order.OrderNumber),
			zap.String("kind", string(order.Kind)),
			zap.Int("entries", len(posting.Entries)),
		)
	}
	c.publish(ctx, events...)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// ===================== Payments =====================

// RecordPayment posts a payment against a vendor bill or customer invoice.
// A non-empty idempotencyKey is claimed before posting; a key that was
// already claimed is rejected. A submission rejected by a business rule
// releases its key; an infrastructure failure keeps it, since the outcome
// of the commit is unknown.
func (c *Coordinator) RecordPayment(ctx context.Context, req RecordPaymentRequest, idempotencyKey string) (*PaymentPostingResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "record_payment")
	defer span.End()
	start := time.Now()
	defer func() { c.metrics.RecordDuration(ctx, "record_payment", time.Since(start)) }()
	telemetry.SetAttributes(span, "direction", string(req.Direction), "amount", req.Amount.String())

	var paymentDate time.Time
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	payment, err := finance.NewPayment(finance.PaymentInput{
		PaymentNumber:     req.PaymentNumber,
		Direction:         req.Direction,
		VendorBillID:      req.VendorBillID,
		CustomerInvoiceID: req.CustomerInvoiceID,
		Amount:            req.Amount,
		Method:            req.Method,
		PaymentDate:       paymentDate,
		ReferenceNumber:   req.ReferenceNumber,
		Notes:             req.Notes,
	})
	if err != nil {
		return nil, c.reject(ctx, span, "record_payment", err)
	}

	ctx = logger.WithIdempotencyKey(ctx, idempotencyKey)
	key, err := c.claimKey(ctx, idempotencyKey)
	if err != nil {
		return nil, c.reject(ctx, span, "record_payment", err)
	}

	var posting *FinancialPosting
	err = c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		posting, err = c.financial.PostPayment(ctx, repos, payment)
		return err
	})
	if err != nil {
		// a domain rejection always rolls back; any other failure may have
		// reached COMMIT, so the key stays claimed
		var de *shared.DomainError
		if errors.As(err, &de) {
			c.releaseKey(ctx, key)
		}
		logger.WithLogger(ctx, c.logger).Error("payment posting failed",
			zap.String("payment_number", payment.PaymentNumber),
			zap.String("target_id", payment.TargetID().String()),
			zap.Error(err),
		)
		return nil, c.reject(ctx, span, "record_payment", err)
	}

	events := posting.Invoice.GetDomainEvents()
	posting.Invoice.ClearDomainEvents()
	c.publish(ctx, events...)
	c.metrics.RecordLedgerEntries(ctx, len(posting.Entries))
	c.metrics.RecordPayment(ctx, string(payment.Direction), string(payment.Method))
	logger.WithLogger(ctx, c.logger).Info("payment posted",
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("invoice_id", posting.Invoice.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("balance", posting.Invoice.BalanceAmount.String()),
	)

	entries := make([]LedgerEntryResponse, len(posting.Entries))
	for i := range posting.Entries {
		entries[i] = ToLedgerEntryResponse(&posting.Entries[i])
	}
	return &PaymentPostingResponse{
		Payment: ToPaymentResponse(payment),
		Invoice: ToInvoiceResponse(posting.Invoice),
		Entries: entries,
	}, nil
}

// CreateInvoiceFromOrder bills a confirmed order. An order is billed at
// most once; the invoice copies and freezes the order totals.
func (c *Coordinator) CreateInvoiceFromOrder(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "create_invoice")
	defer span.End()
	telemetry.SetAttributes(span, "order_id", req.OrderID.String())

	var invoiceDate time.Time
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}
	var invoice *finance.Invoice
	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}
		existing, err := repos.Invoices().FindByOrderID(ctx, order.ID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.ErrAlreadyExists.
				WithMessage("order %s is already billed by %s", order.OrderNumber, existing.InvoiceNumber).
				WithDetail("invoice_id", existing.ID.String())
		}
		invoice, err = finance.NewInvoiceFromOrder(order, req.InvoiceNumber, invoiceDate, req.DueDate)
		if err != nil {
			return err
		}
		return repos.Invoices().Save(ctx, invoice)
	})
	if err != nil {
		return nil, c.reject(ctx, span, "create_invoice", err)
	}
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// ===================== Stock =====================

// RecordStockMovement posts a manual adjustment or opening balance
func (c *Coordinator) RecordStockMovement(ctx context.Context, req RecordStockMovementRequest) (*StockLedgerEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "record_stock_movement")
	defer span.End()
	telemetry.SetAttributes(span, "product_id", req.ProductID.String(), "movement_type", req.MovementType.String())

	var posting *StockPosting
	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		posting, err = c.stock.PostMovement(ctx, repos, inventory.Movement{
			ProductID:       req.ProductID,
			Type:            req.MovementType,
			Delta:           req.QuantityDelta,
			UnitPrice:       req.UnitPrice,
			Notes:           req.Notes,
			TransactionDate: time.Now(),
		})
		return err
	})
	if err != nil {
		return nil, c.reject(ctx, span, "record_stock_movement", err)
	}

	c.publish(ctx, posting.Events...)
	c.metrics.RecordStockEntries(ctx, req.MovementType.String(), len(posting.Entries))
	resp := ToStockLedgerEntryResponse(posting.Entries[0])
	return &resp, nil
}

// ===================== helpers =====================

// mutateOrder loads the locked order, applies fn and saves it, all in one
// transaction. Totals are recomputed by the order itself after every
// mutation; nothing here posts to a ledger.
func (c *Coordinator) mutateOrder(ctx context.Context, orderID uuid.UUID, fn func(TransactionalRepositories, *trade.Order) error) (*trade.Order, error) {
	var order *trade.Order
	err := c.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := fn(repos, order); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (c *Coordinator) lineProduct(ctx context.Context, repos TransactionalRepositories, productID uuid.UUID) (*catalog.Product, error) {
	product, err := repos.Products().FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidLineItem.
				WithMessage("product %s not found", productID).
				WithDetail("product_id", productID.String())
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, shared.ErrInvalidLineItem.
			WithMessage("product %s is inactive", product.SKU).
			WithDetail("product_id", productID.String())
	}
	return product, nil
}

// resolveTax loads an active tax rule applicable to the order side.
// A nil ID means the line is untaxed.
func (c *Coordinator) resolveTax(ctx context.Context, repos TransactionalRepositories, kind trade.OrderKind, taxID *uuid.UUID) (*trade.TaxSnapshot, error) {
	if taxID == nil {
		return nil, nil
	}
	rule, err := repos.TaxRules().FindByID(ctx, *taxID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidTaxConfiguration.
				WithMessage("tax rule %s not found", *taxID).
				WithDetail("tax_rule_id", taxID.String())
		}
		return nil, err
	}
	if !rule.IsActive {
		return nil, shared.ErrInvalidTaxConfiguration.
			WithMessage("tax rule %s is inactive", rule.Name).
			WithDetail("tax_rule_id", rule.ID.String())
	}
	applicable := rule.AppliesToSales()
	if kind == trade.OrderKindPurchase {
		applicable = rule.AppliesToPurchases()
	}
	if !applicable {
		return nil, shared.ErrInvalidTaxConfiguration.
			WithMessage("tax rule %s does not apply to %s orders", rule.Name, kind).
			WithDetail("tax_rule_id", rule.ID.String())
	}
	return trade.SnapshotOf(rule), nil
}

func defaultTaxID(kind trade.OrderKind, product *catalog.Product) *uuid.UUID {
	if kind == trade.OrderKindPurchase {
		return product.PurchaseTaxID
	}
	return product.SalesTaxID
}

func (c *Coordinator) claimKey(ctx context.Context, key string) (string, error) {
	if key == "" || c.idempotency == nil || !c.idempotencyCfg.Enabled {
		return "", nil
	}
	key = "payment:" + key
	claimed, err := c.idempotency.MarkProcessed(ctx, key, c.idempotencyCfg.TTL)
	if err != nil {
		return "", fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if !claimed {
		return "", shared.ErrDuplicatePosting.
			WithMessage("a payment with this idempotency key has already been submitted").
			WithDetail("idempotency_key", key)
	}
	return key, nil
}

func (c *Coordinator) releaseKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := c.idempotency.Release(ctx, key); err != nil {
		c.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

// publish hands committed events to the bus. Handler failures are logged
// and never undo a committed posting.
func (c *Coordinator) publish(ctx context.Context, events ...shared.DomainEvent) {
	if c.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := c.eventPublisher.Publish(ctx, events...); err != nil {
		c.logger.Warn("failed to publish domain events", zap.Int("events", len(events)), zap.Error(err))
	}
}

func (c *Coordinator) reject(ctx context.Context, span trace.Span, operation string, err error) error {
	telemetry.RecordError(span, err)
	var de *shared.DomainError
	if errors.As(err, &de) {
		c.metrics.RecordRejected(ctx, operation, de.Code)
	}
	return err
}
