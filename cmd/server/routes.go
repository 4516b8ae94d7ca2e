package main

import (
	"github.com/erp/posting/internal/infrastructure/config"
	"github.com/erp/posting/internal/infrastructure/logger"
	"github.com/erp/posting/internal/infrastructure/telemetry"
	"github.com/erp/posting/internal/interfaces/http/handler"
	"github.com/erp/posting/internal/interfaces/http/middleware"
	"github.com/erp/posting/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type serverDeps struct {
	cfg          *config.Config
	log          *zap.Logger
	meters       *telemetry.MeterProvider
	db           handler.Pinger
	posting      handler.PostingService
	queries      handler.QueryService
	provisioning handler.ProvisioningService
}

// newEngine builds the gin engine with the middleware chain and every
// posting route mounted under /api/v1
func newEngine(deps serverDeps) (*gin.Engine, error) {
	if deps.cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(deps.cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(deps.log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: deps.cfg.Telemetry.ServiceName,
			Enabled:     deps.cfg.Telemetry.Enabled,
		}),
		middleware.SpanEnricher(),
		logger.GinMiddleware(deps.log),
		middleware.Secure(),
		middleware.BodyLimit(deps.cfg.HTTP.MaxBodySize),
	)
	if deps.meters != nil {
		engine.Use(middleware.HTTPMetrics(deps.meters))
	}

	systemHandler := handler.NewSystemHandler(deps.cfg.App.Name, version, deps.db)
	engine.GET("/health", systemHandler.Health)

	orderHandler := handler.NewOrderHandler(deps.posting, deps.queries)
	paymentHandler := handler.NewPaymentHandler(deps.posting, deps.queries)
	ledgerHandler := handler.NewLedgerHandler(deps.posting, deps.queries)
	provisioningHandler := handler.NewProvisioningHandler(deps.provisioning, deps.queries)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/:id", orderHandler.Get)
	orderRoutes.PUT("/:id", orderHandler.UpdateHeader)
	orderRoutes.POST("/:id/items", orderHandler.AddItem)
	orderRoutes.PUT("/:id/items/:item_id", orderHandler.UpdateItem)
	orderRoutes.DELETE("/:id/items/:item_id", orderHandler.RemoveItem)
	orderRoutes.POST("/:id/status", orderHandler.ChangeStatus)

	invoiceRoutes := router.NewDomainGroup("invoices", "/invoices")
	invoiceRoutes.POST("", paymentHandler.CreateInvoice)
	invoiceRoutes.GET("/:id", paymentHandler.GetInvoice)
	invoiceRoutes.GET("/:id/payments", paymentHandler.ListInvoicePayments)

	paymentRoutes := router.NewDomainGroup("payments", "/payments").Use(middleware.IdempotencyKey())
	paymentRoutes.POST("", paymentHandler.RecordPayment)

	stockRoutes := router.NewDomainGroup("stock", "/stock")
	stockRoutes.POST("/movements", ledgerHandler.RecordMovement)
	stockRoutes.GET("/ledger", ledgerHandler.ListStockLedger)

	productRoutes := router.NewDomainGroup("products", "/products")
	productRoutes.POST("", provisioningHandler.CreateProduct)
	productRoutes.GET("", provisioningHandler.ListProducts)
	productRoutes.POST("/:id/deactivate", provisioningHandler.DeactivateProduct)
	productRoutes.GET("/:id/stock", ledgerHandler.GetProductStock)

	taxRoutes := router.NewDomainGroup("tax-rules", "/tax-rules")
	taxRoutes.POST("", provisioningHandler.CreateTaxRule)

	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.GET("/entries", ledgerHandler.ListFinancialLedger)
	ledgerRoutes.POST("/accounts", provisioningHandler.ProvisionAccount)
	ledgerRoutes.GET("/accounts", provisioningHandler.ListAccounts)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/health", systemHandler.Health)

	r.Register(orderRoutes).
		Register(invoiceRoutes).
		Register(paymentRoutes).
		Register(stockRoutes).
		Register(productRoutes).
		Register(taxRoutes).
		Register(ledgerRoutes).
		Register(systemRoutes)
	r.Setup()

	for _, rt := range r.Routes() {
		deps.log.Debug("Route mounted",
			zap.String("group", rt.Group),
			zap.String("method", rt.Method),
			zap.String("path", rt.Path),
		)
	}

	return engine, nil
}
