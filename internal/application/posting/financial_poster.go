package posting

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/erp/posting/internal/domain/finance"
	"github.com/erp/posting/internal/domain/shared"
	"go.uber.org/zap"
)

// FinancialPoster turns a payment into a balanced pair of ledger entries
// and applies it to the bill or invoice it settles.
// It runs inside a caller-owned transaction and never commits on its own.
type FinancialPoster struct {
	accounts finance.WellKnownAccounts
	logger   *zap.Logger
}

// NewFinancialPoster creates a new FinancialPoster
func NewFinancialPoster(accounts finance.WellKnownAccounts, logger *zap.Logger) *FinancialPoster {
	return &FinancialPoster{accounts: accounts, logger: logger}
}

// FinancialPosting is the outcome of a payment posting
type FinancialPosting struct {
	Payment *finance.Payment
	Invoice *finance.Invoice
	Entries []finance.LedgerEntry
}

// PostPayment validates the payment against its target, writes both ledger
// entries and applies the amount to the target's paid total.
func (p *FinancialPoster) PostPayment(ctx context.Context, repos TransactionalRepositories, payment *finance.Payment) (*FinancialPosting, error) {
	if existing, err := repos.Payments().FindByNumber(ctx, payment.PaymentNumber); err == nil && existing != nil {
		return nil, shared.ErrDuplicatePosting.
			WithMessage("payment %s has already been recorded", payment.PaymentNumber).
			WithDetail("payment_number", payment.PaymentNumber)
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	invoice, err := repos.Invoices().FindByIDForUpdate(ctx, payment.TargetID())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.
				WithMessage("%s %s not found", payment.TargetKind(), payment.TargetID()).
				WithDetail("target_id", payment.TargetID().String())
		}
		return nil, err
	}
	if invoice.Kind != payment.TargetKind() {
		return nil, shared.ErrAmbiguousPaymentTarget.
			WithMessage("document %s is a %s, not a %s", invoice.InvoiceNumber, invoice.Kind, payment.TargetKind()).
			WithDetail("target_id", invoice.ID.String())
	}
	if err := invoice.ApplyPayment(payment.Amount); err != nil {
		return nil, err
	}

	debitCode, creditCode := p.accounts.ForDirection(payment.Direction)
	accounts, err := p.lockAccounts(ctx, repos, debitCode, creditCode)
	if err != nil {
		return nil, err
	}
	debit, credit := accounts[debitCode], accounts[creditCode]

	entries, err := finance.PostBalancedPair(debit, credit, finance.Posting{
		Amount:          payment.Amount,
		Description:     fmt.Sprintf("Payment %s for %s %s", payment.PaymentNumber, invoice.Kind, invoice.InvoiceNumber),
		Source:          payment.SourceRef(),
		ReferenceNumber: payment.PaymentNumber,
		TransactionDate: payment.PaymentDate,
	})
	if err != nil {
		return nil, err
	}
	if !finance.IsBalanced(entries) {
		return nil, fmt.Errorf("unbalanced posting for payment %s", payment.PaymentNumber)
	}

	if err := repos.Payments().Create(ctx, payment); err != nil {
		return nil, err
	}
	if err := repos.LedgerEntries().Append(ctx, entries...); err != nil {
		return nil, err
	}
	for _, acct := range []*finance.ChartAccount{debit, credit} {
		if err := repos.Accounts().Save(ctx, acct); err != nil {
			return nil, fmt.Errorf("failed to save account %s: %w", acct.Code, err)
		}
	}
	invoice.AddDomainEvent(finance.NewPaymentRecordedEvent(payment, invoice))
	if err := repos.Invoices().Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save %s %s: %w", invoice.Kind, invoice.InvoiceNumber, err)
	}

	return &FinancialPosting{Payment: payment, Invoice: invoice, Entries: entries}, nil
}

// lockAccounts row-locks the accounts in code order and fails fast when one
// of them has not been provisioned.
func (p *FinancialPoster) lockAccounts(ctx context.Context, repos TransactionalRepositories, codes ...string) (map[string]*finance.ChartAccount, error) {
	sorted := append([]string(nil), codes...)
	sort.Strings(sorted)

	accounts, err := repos.Accounts().FindByCodesForUpdate(ctx, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to lock ledger accounts: %w", err)
	}
	for _, code := range sorted {
		if _, ok := accounts[code]; !ok {
			p.logger.Error("ledger account not provisioned", zap.String("account_code", code))
			return nil, shared.ErrMissingLedgerAccount.
				WithMessage("ledger account %s is not provisioned", code).
				WithDetail("account_code", code)
		}
	}
	return accounts, nil
}
