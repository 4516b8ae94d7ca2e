package inventory

import (
	"errors"
	"testing"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchase(productID uuid.UUID, qty, price int64) Movement {
	return Movement{
		ProductID: productID,
		Type:      MovementPurchase,
		Delta:     decimal.NewFromInt(qty),
		UnitPrice: decimal.NewFromInt(price),
		Source:    shared.PurchaseOrderRef(uuid.New()),
	}
}

func TestNextEntry(t *testing.T) {
	productID := uuid.New()

	t.Run("first entry starts from zero", func(t *testing.T) {
		entry, err := NextEntry(nil, purchase(productID, 10, 5))
		require.NoError(t, err)
		assert.Equal(t, int64(1), entry.Sequence)
		assert.True(t, entry.BalanceQuantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, entry.BalanceValue.Equal(decimal.NewFromInt(50)))
		assert.True(t, entry.TotalValue.Equal(decimal.NewFromInt(50)))
		assert.False(t, entry.TransactionDate.IsZero())
	})

	t.Run("purchase adds to previous balance", func(t *testing.T) {
		prev, err := NextEntry(nil, purchase(productID, 10, 5))
		require.NoError(t, err)
		next, err := NextEntry(prev, purchase(productID, 5, 6))
		require.NoError(t, err)
		assert.Equal(t, int64(2), next.Sequence)
		assert.True(t, next.BalanceQuantity.Equal(decimal.NewFromInt(15)))
		assert.True(t, next.BalanceValue.Equal(decimal.NewFromInt(80)))
	})

	t.Run("sale subtracts quantity and value", func(t *testing.T) {
		prev, err := NextEntry(nil, purchase(productID, 10, 5))
		require.NoError(t, err)
		sale := Movement{
			ProductID: productID,
			Type:      MovementSale,
			Delta:     decimal.NewFromInt(-4),
			UnitPrice: decimal.NewFromInt(8),
			Source:    shared.SalesOrderRef(uuid.New()),
		}
		next, err := NextEntry(prev, sale)
		require.NoError(t, err)
		assert.True(t, next.BalanceQuantity.Equal(decimal.NewFromInt(6)))
		assert.True(t, next.TotalValue.Equal(decimal.NewFromInt(-32)))
		assert.True(t, next.BalanceValue.Equal(decimal.NewFromInt(18)))
	})

	t.Run("sign must match movement type", func(t *testing.T) {
		m := purchase(productID, -1, 5)
		_, err := NextEntry(nil, m)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		m = Movement{ProductID: productID, Type: MovementSale, Delta: decimal.NewFromInt(1), Source: shared.SalesOrderRef(uuid.New())}
		_, err = NextEntry(nil, m)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		m = Movement{ProductID: productID, Type: MovementAdjustment, Delta: decimal.Zero, Source: shared.ManualRef()}
		_, err = NextEntry(nil, m)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("opening only on empty ledger", func(t *testing.T) {
		opening := Movement{ProductID: productID, Type: MovementOpening, Delta: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(2), Source: shared.ManualRef()}
		first, err := NextEntry(nil, opening)
		require.NoError(t, err)
		_, err = NextEntry(first, opening)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("source must carry an id", func(t *testing.T) {
		m := purchase(productID, 1, 1)
		m.Source = shared.SourceRef{Kind: shared.SourcePurchaseOrder}
		_, err := NextEntry(nil, m)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects quantities the ledger cannot store", func(t *testing.T) {
		m := purchase(productID, 1, 1)
		m.Delta = decimal.RequireFromString("1.00001")
		_, err := NextEntry(nil, m)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		m = purchase(productID, 1, 1)
		m.UnitPrice = decimal.RequireFromString("0.00005")
		_, err = NextEntry(nil, m)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		m.UnitPrice = decimal.RequireFromString("0.0005")
		entry, err := NextEntry(nil, m)
		require.NoError(t, err)
		assert.True(t, entry.BalanceValue.Equal(decimal.RequireFromString("0.0005")))
	})

	t.Run("rejects history of another product", func(t *testing.T) {
		prev, err := NextEntry(nil, purchase(uuid.New(), 1, 1))
		require.NoError(t, err)
		_, err = NextEntry(prev, purchase(productID, 1, 1))
		assert.Error(t, err)
	})
}

func TestRunningBalanceMatchesFold(t *testing.T) {
	productID := uuid.New()
	purchases := []int64{5, 7, 11, 13}
	sales := []int64{2, 3, 4}

	var entries []StockLedgerEntry
	var prev *StockLedgerEntry
	for _, q := range purchases {
		e, err := NextEntry(prev, purchase(productID, q, 1))
		require.NoError(t, err)
		entries = append(entries, *e)
		prev = e
	}
	for _, q := range sales {
		e, err := NextEntry(prev, Movement{
			ProductID: productID,
			Type:      MovementSale,
			Delta:     decimal.NewFromInt(-q),
			UnitPrice: decimal.NewFromInt(1),
			Source:    shared.SalesOrderRef(uuid.New()),
		})
		require.NoError(t, err)
		entries = append(entries, *e)
		prev = e
	}

	want := decimal.NewFromInt(5 + 7 + 11 + 13 - 2 - 3 - 4)
	assert.True(t, prev.BalanceQuantity.Equal(want))
	assert.True(t, Fold(entries).Equal(want))
}

func TestStockPostedEvent_IsLowStock(t *testing.T) {
	entry, err := NextEntry(nil, purchase(uuid.New(), 3, 1))
	require.NoError(t, err)
	assert.True(t, NewStockPostedEvent(entry, decimal.NewFromInt(3)).IsLowStock())
	assert.False(t, NewStockPostedEvent(entry, decimal.NewFromInt(2)).IsLowStock())
}
