package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T, code string, accountType AccountType) *ChartAccount {
	t.Helper()
	acct, err := NewChartAccount(code, code+" account", accountType, "")
	require.NoError(t, err)
	return acct
}

func TestNewChartAccount(t *testing.T) {
	acct, err := NewChartAccount(" cash001 ", "Cash", AccountTypeAsset, "Current Assets")
	require.NoError(t, err)
	assert.Equal(t, "CASH001", acct.Code)
	assert.True(t, acct.IsActive)
	assert.True(t, acct.Balance.IsZero())

	_, err = NewChartAccount("X", "X", AccountType("bogus"), "")
	assert.True(t, errors.Is(err, shared.ErrValidation))
	_, err = NewChartAccount("", "X", AccountTypeAsset, "")
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestWellKnownAccounts_ForDirection(t *testing.T) {
	w := DefaultWellKnownAccounts()

	debit, credit := w.ForDirection(PaymentDirectionVendor)
	assert.Equal(t, "AP001", debit)
	assert.Equal(t, "CASH001", credit)

	debit, credit = w.ForDirection(PaymentDirectionCustomer)
	assert.Equal(t, "CASH001", debit)
	assert.Equal(t, "AR001", credit)
}

func TestPostBalancedPair(t *testing.T) {
	t.Run("customer payment debits cash and credits receivable", func(t *testing.T) {
		cash := newTestAccount(t, "CASH001", AccountTypeAsset)
		ar := newTestAccount(t, "AR001", AccountTypeAsset)
		ar.Balance = decimal.RequireFromString("472.00")

		entries, err := PostBalancedPair(cash, ar, Posting{
			Amount:          decimal.RequireFromString("472.00"),
			Description:     "Customer payment",
			Source:          shared.PaymentRef(uuid.New()),
			TransactionDate: time.Now(),
		})
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, EntryTypeDebit, entries[0].EntryType)
		assert.Equal(t, cash.ID, entries[0].AccountID)
		assert.Equal(t, EntryTypeCredit, entries[1].EntryType)
		assert.Equal(t, ar.ID, entries[1].AccountID)
		assert.True(t, entries[0].Amount.Equal(entries[1].Amount))
		assert.True(t, entries[0].TransactionDate.Equal(entries[1].TransactionDate))
		assert.True(t, IsBalanced(entries))

		assert.True(t, cash.Balance.Equal(decimal.RequireFromString("472.00")))
		assert.True(t, ar.Balance.IsZero())
		assert.True(t, entries[0].BalanceAfter.Equal(cash.Balance))
		assert.True(t, entries[1].BalanceAfter.Equal(ar.Balance))
	})

	t.Run("vendor payment reduces payable and cash", func(t *testing.T) {
		ap := newTestAccount(t, "AP001", AccountTypeLiability)
		ap.Balance = decimal.NewFromInt(500)
		cash := newTestAccount(t, "CASH001", AccountTypeAsset)
		cash.Balance = decimal.NewFromInt(1000)

		entries, err := PostBalancedPair(ap, cash, Posting{
			Amount: decimal.NewFromInt(200),
			Source: shared.PaymentRef(uuid.New()),
		})
		require.NoError(t, err)
		assert.True(t, IsBalanced(entries))
		assert.True(t, ap.Balance.Equal(decimal.NewFromInt(300)))
		assert.True(t, cash.Balance.Equal(decimal.NewFromInt(800)))
	})

	t.Run("inactive account is treated as missing", func(t *testing.T) {
		cash := newTestAccount(t, "CASH001", AccountTypeAsset)
		ar := newTestAccount(t, "AR001", AccountTypeAsset)
		ar.Deactivate()

		_, err := PostBalancedPair(cash, ar, Posting{Amount: decimal.NewFromInt(1), Source: shared.PaymentRef(uuid.New())})
		assert.True(t, errors.Is(err, shared.ErrMissingLedgerAccount))
		assert.True(t, cash.Balance.IsZero())
	})

	t.Run("nil account is missing", func(t *testing.T) {
		cash := newTestAccount(t, "CASH001", AccountTypeAsset)
		_, err := PostBalancedPair(cash, nil, Posting{Amount: decimal.NewFromInt(1), Source: shared.PaymentRef(uuid.New())})
		assert.True(t, errors.Is(err, shared.ErrMissingLedgerAccount))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		cash := newTestAccount(t, "CASH001", AccountTypeAsset)
		ar := newTestAccount(t, "AR001", AccountTypeAsset)
		_, err := PostBalancedPair(cash, ar, Posting{Amount: decimal.Zero, Source: shared.PaymentRef(uuid.New())})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}
