package catalog

import (
	"errors"
	"testing"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("normalises SKU and starts empty", func(t *testing.T) {
		p, err := NewProduct("Widget", " wid-1 ", decimal.NewFromInt(100), decimal.NewFromInt(80))
		require.NoError(t, err)
		assert.Equal(t, "WID-1", p.SKU)
		assert.True(t, p.CurrentStock.IsZero())
		assert.True(t, p.IsActive)
		assert.Equal(t, 1, p.Version)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct("Widget", "W", decimal.NewFromInt(-1), decimal.Zero)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects prices beyond four places", func(t *testing.T) {
		_, err := NewProduct("Widget", "W", decimal.RequireFromString("9.99999"), decimal.Zero)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects empty sku", func(t *testing.T) {
		_, err := NewProduct("Widget", "", decimal.Zero, decimal.Zero)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestProduct_StockProjection(t *testing.T) {
	p, err := NewProduct("Widget", "W", decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, p.SetMinimumStock(decimal.NewFromInt(5)))

	p.ApplyStockBalance(decimal.NewFromInt(15))
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(15)))
	assert.False(t, p.IsBelowMinimum())
	assert.Equal(t, 2, p.Version)

	p.ApplyStockBalance(decimal.NewFromInt(5))
	assert.True(t, p.IsBelowMinimum())

	assert.Error(t, p.SetMinimumStock(decimal.NewFromInt(-1)))
}
