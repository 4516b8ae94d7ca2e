package catalog

import (
	"strings"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TaxMethod is how a tax rule turns a base amount into a tax amount
type TaxMethod string

const (
	TaxMethodPercentage TaxMethod = "percentage"
	TaxMethodFixed      TaxMethod = "fixed"
)

// IsValid checks if the tax method is valid
func (m TaxMethod) IsValid() bool {
	switch m {
	case TaxMethodPercentage, TaxMethodFixed:
		return true
	}
	return false
}

// TaxApplicability restricts the side of trade a rule may be used on
type TaxApplicability string

const (
	TaxApplicableSales    TaxApplicability = "sales"
	TaxApplicablePurchase TaxApplicability = "purchase"
	TaxApplicableBoth     TaxApplicability = "both"
)

// IsValid checks if the applicability is valid
func (a TaxApplicability) IsValid() bool {
	switch a {
	case TaxApplicableSales, TaxApplicablePurchase, TaxApplicableBoth:
		return true
	}
	return false
}

// TaxRule maps a base amount to a tax amount.
// Rules are immutable once created; order lines copy the method and rate
// so that history is never rewritten.
type TaxRule struct {
	shared.BaseEntity
	Name          string
	Method        TaxMethod
	Rate          decimal.Decimal
	Applicability TaxApplicability
	IsActive      bool
}

// NewTaxRule creates a new active tax rule
func NewTaxRule(name string, method TaxMethod, rate decimal.Decimal, applicability TaxApplicability) (*TaxRule, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrValidation.WithMessage("tax rule name cannot be empty").WithDetail("field", "name")
	}
	if applicability == "" {
		applicability = TaxApplicableBoth
	}
	if !applicability.IsValid() {
		return nil, shared.ErrInvalidTaxConfiguration.WithMessage("unknown tax applicability %q", applicability)
	}
	if err := ValidateTax(method, rate); err != nil {
		return nil, err
	}
	return &TaxRule{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		Method:        method,
		Rate:          rate,
		Applicability: applicability,
		IsActive:      true,
	}, nil
}

// ValidateTax checks a method and rate pair
func ValidateTax(method TaxMethod, rate decimal.Decimal) error {
	if !method.IsValid() {
		return shared.ErrInvalidTaxConfiguration.WithMessage("unknown tax method %q", method)
	}
	if rate.IsNegative() {
		return shared.ErrInvalidTaxConfiguration.
			WithMessage("tax rate cannot be negative").
			WithDetail("rate", rate.String())
	}
	// a fixed rate is itself the tax amount
	places := shared.QuantityPrecision
	if method == TaxMethodFixed {
		places = shared.LedgerPrecision
	}
	if shared.ExceedsScale(rate, places) {
		return shared.ErrInvalidTaxConfiguration.
			WithMessage("%s tax rate cannot have more than %d decimal places", method, places).
			WithDetail("rate", rate.String())
	}
	return nil
}

// ComputeTax returns the tax due on base for the given method and rate.
// Percentage taxes are rounded half-even to ledger precision; fixed taxes
// are the rate itself regardless of base.
func ComputeTax(method TaxMethod, rate, base decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateTax(method, rate); err != nil {
		return decimal.Zero, err
	}
	if method == TaxMethodFixed {
		return rate, nil
	}
	return shared.RoundAmount(base.Mul(rate).Div(hundred)), nil
}

// Compute returns the tax due on base under this rule
func (r *TaxRule) Compute(base decimal.Decimal) (decimal.Decimal, error) {
	return ComputeTax(r.Method, r.Rate, base)
}

// AppliesToSales reports whether the rule may be used on sales lines
func (r *TaxRule) AppliesToSales() bool {
	return r.Applicability == TaxApplicableSales || r.Applicability == TaxApplicableBoth
}

// AppliesToPurchases reports whether the rule may be used on purchase lines
func (r *TaxRule) AppliesToPurchases() bool {
	return r.Applicability == TaxApplicablePurchase || r.Applicability == TaxApplicableBoth
}

// Deactivate prevents the rule from being used on new lines
func (r *TaxRule) Deactivate() {
	r.IsActive = false
	r.Touch()
}
