package finance

import (
	"strings"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AccountType is the chart-of-accounts classification
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// IsDebitNormal reports whether debits increase the account balance
func (t AccountType) IsDebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// ChartAccount is one account of the chart of accounts.
// Balance is the running balance on the account's normal side and always
// equals BalanceAfter of its latest ledger entry.
type ChartAccount struct {
	shared.BaseAggregateRoot
	Code           string
	Name           string
	AccountType    AccountType
	ParentCategory string
	IsActive       bool
	Balance        decimal.Decimal
}

// NewChartAccount provisions a new active account with zero balance
func NewChartAccount(code, name string, accountType AccountType, parentCategory string) (*ChartAccount, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.ErrValidation.WithMessage("account code cannot be empty").WithDetail("field", "code")
	}
	if len(code) > 20 {
		return nil, shared.ErrValidation.WithMessage("account code cannot exceed 20 characters").WithDetail("field", "code")
	}
	if name == "" {
		return nil, shared.ErrValidation.WithMessage("account name cannot be empty").WithDetail("field", "name")
	}
	if !accountType.IsValid() {
		return nil, shared.ErrValidation.WithMessage("unknown account type %q", accountType).WithDetail("field", "account_type")
	}
	return &ChartAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		AccountType:       accountType,
		ParentCategory:    parentCategory,
		IsActive:          true,
		Balance:           decimal.Zero,
	}, nil
}

// apply moves the balance for one entry and returns the new balance
func (a *ChartAccount) apply(entryType EntryType, amount decimal.Decimal) decimal.Decimal {
	increases := (entryType == EntryTypeDebit) == a.AccountType.IsDebitNormal()
	if increases {
		a.Balance = a.Balance.Add(amount)
	} else {
		a.Balance = a.Balance.Sub(amount)
	}
	a.Touch()
	a.IncrementVersion()
	return a.Balance
}

// Deactivate retires the account; postings against it then fail
func (a *ChartAccount) Deactivate() {
	a.IsActive = false
	a.Touch()
}

// WellKnownAccounts names the accounts payments post against
type WellKnownAccounts struct {
	Cash       string
	Payable    string
	Receivable string
}

// DefaultWellKnownAccounts returns the conventional account codes
func DefaultWellKnownAccounts() WellKnownAccounts {
	return WellKnownAccounts{
		Cash:       "CASH001",
		Payable:    "AP001",
		Receivable: "AR001",
	}
}

// ForDirection returns the debit and credit account codes of a payment.
// Vendor payments settle a liability: debit payable, credit cash.
// Customer payments collect a receivable: debit cash, credit receivable.
func (w WellKnownAccounts) ForDirection(direction PaymentDirection) (debit, credit string) {
	if direction == PaymentDirectionVendor {
		return w.Payable, w.Cash
	}
	return w.Cash, w.Receivable
}
