package finance

import (
	"time"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the side of a ledger entry
type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	return t == EntryTypeDebit || t == EntryTypeCredit
}

// LedgerEntry is an append-only financial ledger row
type LedgerEntry struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	AccountCode     string
	EntryType       EntryType
	Amount          decimal.Decimal
	BalanceAfter    decimal.Decimal
	Description     string
	Source          shared.SourceRef
	ReferenceNumber string
	TransactionDate time.Time
	CreatedAt       time.Time
}

// Posting describes one balanced financial event
type Posting struct {
	Amount          decimal.Decimal
	Description     string
	Source          shared.SourceRef
	ReferenceNumber string
	TransactionDate time.Time
}

// PostBalancedPair debits one account and credits another with the same
// amount, updating both running balances. Neither account is changed on
// error.
func PostBalancedPair(debit, credit *ChartAccount, p Posting) ([]LedgerEntry, error) {
	if debit == nil || credit == nil {
		return nil, shared.ErrMissingLedgerAccount
	}
	if debit.ID == credit.ID {
		return nil, shared.ErrValidation.WithMessage("debit and credit accounts must differ")
	}
	for _, acct := range []*ChartAccount{debit, credit} {
		if !acct.IsActive {
			return nil, shared.ErrMissingLedgerAccount.
				WithMessage("ledger account %s is inactive", acct.Code).
				WithDetail("account_code", acct.Code)
		}
	}
	amount := shared.RoundAmount(p.Amount)
	if !amount.IsPositive() {
		return nil, shared.ErrValidation.WithMessage("posting amount must be positive")
	}
	if err := p.Source.Validate(); err != nil {
		return nil, err
	}
	date := p.TransactionDate
	if date.IsZero() {
		date = time.Now()
	}

	now := time.Now()
	newEntry := func(acct *ChartAccount, entryType EntryType) LedgerEntry {
		return LedgerEntry{
			ID:              uuid.New(),
			AccountID:       acct.ID,
			AccountCode:     acct.Code,
			EntryType:       entryType,
			Amount:          amount,
			BalanceAfter:    acct.apply(entryType, amount),
			Description:     p.Description,
			Source:          p.Source,
			ReferenceNumber: p.ReferenceNumber,
			TransactionDate: date,
			CreatedAt:       now,
		}
	}
	return []LedgerEntry{
		newEntry(debit, EntryTypeDebit),
		newEntry(credit, EntryTypeCredit),
	}, nil
}

// IsBalanced reports whether debits equal credits across entries
func IsBalanced(entries []LedgerEntry) bool {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, e := range entries {
		if e.EntryType == EntryTypeDebit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits.Equal(credits)
}
