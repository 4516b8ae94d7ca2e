package finance

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	billID := uuid.New()
	invoiceID := uuid.New()
	valid := func() PaymentInput {
		return PaymentInput{
			Direction:         PaymentDirectionCustomer,
			CustomerInvoiceID: &invoiceID,
			Amount:            decimal.RequireFromString("472.00"),
			Method:            PaymentMethodBankTransfer,
			PaymentDate:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	t.Run("customer payment", func(t *testing.T) {
		p, err := NewPayment(valid())
		require.NoError(t, err)
		assert.Equal(t, invoiceID, p.TargetID())
		assert.Equal(t, InvoiceKindCustomerInvoice, p.TargetKind())
		assert.True(t, strings.HasPrefix(p.PaymentNumber, "PAY-20240301-"))
		assert.Equal(t, shared.SourcePayment, p.SourceRef().Kind)
	})

	t.Run("both targets is ambiguous", func(t *testing.T) {
		in := valid()
		in.VendorBillID = &billID
		_, err := NewPayment(in)
		assert.True(t, errors.Is(err, shared.ErrAmbiguousPaymentTarget))
	})

	t.Run("no target is ambiguous", func(t *testing.T) {
		in := valid()
		in.CustomerInvoiceID = nil
		_, err := NewPayment(in)
		assert.True(t, errors.Is(err, shared.ErrAmbiguousPaymentTarget))
	})

	t.Run("direction must match target", func(t *testing.T) {
		in := valid()
		in.Direction = PaymentDirectionVendor
		_, err := NewPayment(in)
		assert.True(t, errors.Is(err, shared.ErrAmbiguousPaymentTarget))
	})

	t.Run("amount below minimum", func(t *testing.T) {
		in := valid()
		in.Amount = decimal.RequireFromString("0.001")
		_, err := NewPayment(in)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("unknown method", func(t *testing.T) {
		in := valid()
		in.Method = PaymentMethod("barter")
		_, err := NewPayment(in)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("method defaults to cash", func(t *testing.T) {
		in := valid()
		in.Method = ""
		p, err := NewPayment(in)
		require.NoError(t, err)
		assert.Equal(t, PaymentMethodCash, p.Method)
	})
}
