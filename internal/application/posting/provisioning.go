package posting

import (
	"context"
	"errors"

	"github.com/erp/posting/internal/domain/catalog"
	"github.com/erp/posting/internal/domain/finance"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProvisioningService creates the reference data postings depend on:
// products, tax rules and chart-of-accounts entries. Posting paths never
// create any of these on their own.
type ProvisioningService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewProvisioningService creates a new ProvisioningService
func NewProvisioningService(scope TransactionScope, logger *zap.Logger) *ProvisioningService {
	return &ProvisioningService{scope: scope, logger: logger}
}

// CreateProduct provisions a product with zero stock
func (s *ProvisioningService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "provisioning", "create_product")
	defer span.End()

	product, err := catalog.NewProduct(req.Name, req.SKU, req.SalesPrice, req.PurchasePrice)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := product.SetMinimumStock(req.MinimumStock); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.Products().FindBySKU(ctx, product.SKU)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.ErrAlreadyExists.
				WithMessage("product with SKU %s already exists", product.SKU).
				WithDetail("sku", product.SKU)
		}
		for _, id := range []*uuid.UUID{req.SalesTaxID, req.PurchaseTaxID} {
			if id == nil {
				continue
			}
			if _, err := repos.TaxRules().FindByID(ctx, *id); err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.ErrInvalidTaxConfiguration.
						WithMessage("tax rule %s not found", *id).
						WithDetail("tax_rule_id", id.String())
				}
				return err
			}
		}
		product.SetDefaultTaxes(req.SalesTaxID, req.PurchaseTaxID)
		return repos.Products().Save(ctx, product)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("product provisioned", zap.String("product_id", product.ID.String()), zap.String("sku", product.SKU))
	resp := ToProductResponse(product)
	return &resp, nil
}

// DeactivateProduct stops a product from taking part in new postings.
// Confirming an order that still references it fails atomically.
func (s *ProvisioningService) DeactivateProduct(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	var product *catalog.Product
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.Products().FindByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		product.Deactivate()
		return repos.Products().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// CreateTaxRule provisions an immutable tax rule
func (s *ProvisioningService) CreateTaxRule(ctx context.Context, req CreateTaxRuleRequest) (*TaxRuleResponse, error) {
	rule, err := catalog.NewTaxRule(req.Name, req.Method, req.Rate, req.Applicability)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.TaxRules().Save(ctx, rule)
	})
	if err != nil {
		return nil, err
	}
	resp := ToTaxRuleResponse(rule)
	return &resp, nil
}

// ProvisionAccount adds an account to the chart of accounts. This is the
// only way the cash, payable and receivable accounts come into existence.
func (s *ProvisioningService) ProvisionAccount(ctx context.Context, req ProvisionAccountRequest) (*AccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "provisioning", "provision_account")
	defer span.End()

	account, err := finance.NewChartAccount(req.Code, req.Name, req.AccountType, req.ParentCategory)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.Accounts().FindByCode(ctx, account.Code)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.ErrAlreadyExists.
				WithMessage("account %s already exists", account.Code).
				WithDetail("code", account.Code)
		}
		return repos.Accounts().Save(ctx, account)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("ledger account provisioned",
		zap.String("account_id", account.ID.String()),
		zap.String("code", account.Code),
		zap.String("account_type", string(account.AccountType)),
	)
	resp := ToAccountResponse(account)
	return &resp, nil
}
