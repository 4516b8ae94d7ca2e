package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedOrder(t *testing.T, kind trade.OrderKind, qty, price string) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(kind, "ORD-1", uuid.New(), "Acme", time.Now())
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Widget", decimal.RequireFromString(qty), decimal.RequireFromString(price), nil)
	require.NoError(t, err)
	_, err = order.TransitionTo(trade.OrderStatusConfirmed, "")
	require.NoError(t, err)
	return order
}

func TestNewInvoiceFromOrder(t *testing.T) {
	t.Run("sales order becomes customer invoice", func(t *testing.T) {
		order := confirmedOrder(t, trade.OrderKindSales, "4", "118")
		inv, err := NewInvoiceFromOrder(order, "INV-1", time.Time{}, nil)
		require.NoError(t, err)
		assert.Equal(t, InvoiceKindCustomerInvoice, inv.Kind)
		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(472)))
		assert.True(t, inv.BalanceAmount.Equal(inv.TotalAmount))
		assert.Equal(t, InvoiceStatusOpen, inv.Status)
		assert.Equal(t, shared.SourceSalesOrder, inv.SourceRef().Kind)
	})

	t.Run("purchase order becomes vendor bill", func(t *testing.T) {
		order := confirmedOrder(t, trade.OrderKindPurchase, "1", "10")
		inv, err := NewInvoiceFromOrder(order, "BILL-1", time.Now(), nil)
		require.NoError(t, err)
		assert.Equal(t, InvoiceKindVendorBill, inv.Kind)
		assert.Equal(t, PaymentDirectionVendor, inv.Kind.PaymentDirection())
	})

	t.Run("draft order cannot be invoiced", func(t *testing.T) {
		order, err := trade.NewOrder(trade.OrderKindSales, "ORD-2", uuid.New(), "Acme", time.Now())
		require.NoError(t, err)
		_, err = NewInvoiceFromOrder(order, "INV-2", time.Now(), nil)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("sub-cent order totals are billed at ledger precision", func(t *testing.T) {
		cases := []struct {
			qty, price, total string
		}{
			{"1.5", "3.335", "5.00"},  // 5.0025
			{"1.5", "3.339", "5.01"},  // 5.0085
			{"0.5", "0.025", "0.01"},  // 0.0125
			{"2", "1.0025", "2.00"},   // 2.005 rounds to even
			{"0.0001", "0.0001", "0"}, // 0.00000001
		}
		for _, tc := range cases {
			order := confirmedOrder(t, trade.OrderKindSales, tc.qty, tc.price)
			inv, err := NewInvoiceFromOrder(order, "INV-R", time.Now(), nil)
			require.NoError(t, err)
			want := decimal.RequireFromString(tc.total)
			assert.True(t, inv.TotalAmount.Equal(want), "%s x %s: want %s, got %s", tc.qty, tc.price, want, inv.TotalAmount)
			assert.True(t, inv.BalanceAmount.Equal(want))
			assert.False(t, shared.ExceedsScale(inv.TotalAmount, shared.LedgerPrecision))
		}
	})

	t.Run("totals are frozen copies", func(t *testing.T) {
		order := confirmedOrder(t, trade.OrderKindSales, "1", "100")
		inv, err := NewInvoiceFromOrder(order, "INV-3", time.Now(), nil)
		require.NoError(t, err)
		order.TotalAmount = decimal.NewFromInt(999)
		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(100)))
	})
}

func TestInvoice_ApplyPayment(t *testing.T) {
	newInvoice := func(t *testing.T) *Invoice {
		order := confirmedOrder(t, trade.OrderKindSales, "4", "118")
		inv, err := NewInvoiceFromOrder(order, "INV-1", time.Now(), nil)
		require.NoError(t, err)
		return inv
	}

	t.Run("payment equal to balance settles invoice", func(t *testing.T) {
		inv := newInvoice(t)
		require.NoError(t, inv.ApplyPayment(decimal.RequireFromString("472.00")))
		assert.True(t, inv.BalanceAmount.IsZero())
		assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(472)))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("partial payments accumulate", func(t *testing.T) {
		inv := newInvoice(t)
		require.NoError(t, inv.ApplyPayment(decimal.NewFromInt(72)))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
		require.NoError(t, inv.ApplyPayment(decimal.NewFromInt(400)))
		assert.True(t, inv.BalanceAmount.IsZero())
		assert.True(t, inv.BalanceAmount.Equal(inv.TotalAmount.Sub(inv.PaidAmount)))
	})

	t.Run("overpayment leaves invoice unchanged", func(t *testing.T) {
		inv := newInvoice(t)
		err := inv.ApplyPayment(decimal.RequireFromString("472.01"))
		assert.True(t, errors.Is(err, shared.ErrOverpayment))
		assert.Contains(t, err.Error(), "exceeds outstanding balance 472")
		assert.True(t, inv.PaidAmount.IsZero())
		assert.True(t, inv.BalanceAmount.Equal(decimal.NewFromInt(472)))
		assert.Equal(t, InvoiceStatusOpen, inv.Status)
	})

	t.Run("any payment on a settled invoice overpays", func(t *testing.T) {
		inv := newInvoice(t)
		require.NoError(t, inv.ApplyPayment(decimal.NewFromInt(472)))
		err := inv.ApplyPayment(decimal.RequireFromString("0.01"))
		assert.True(t, errors.Is(err, shared.ErrOverpayment))
	})
}
