package trade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		isValid bool
	}{
		{OrderStatusDraft, true},
		{OrderStatusConfirmed, true},
		{OrderStatusPartiallyFulfilled, true},
		{OrderStatusFulfilled, true},
		{OrderStatusCancelled, true},
		{OrderStatus("DRAFT"), false},
		{OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		canTrans bool
	}{
		// From draft
		{OrderStatusDraft, OrderStatusConfirmed, true},
		{OrderStatusDraft, OrderStatusCancelled, true},
		{OrderStatusDraft, OrderStatusPartiallyFulfilled, false},
		{OrderStatusDraft, OrderStatusFulfilled, false},
		{OrderStatusDraft, OrderStatusDraft, false},
		// From confirmed
		{OrderStatusConfirmed, OrderStatusConfirmed, false},
		{OrderStatusConfirmed, OrderStatusPartiallyFulfilled, true},
		{OrderStatusConfirmed, OrderStatusFulfilled, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusDraft, false},
		// From partially_fulfilled
		{OrderStatusPartiallyFulfilled, OrderStatusFulfilled, true},
		{OrderStatusPartiallyFulfilled, OrderStatusCancelled, false},
		{OrderStatusPartiallyFulfilled, OrderStatusConfirmed, false},
		// Terminal
		{OrderStatusFulfilled, OrderStatusCancelled, false},
		{OrderStatusFulfilled, OrderStatusConfirmed, false},
		{OrderStatusCancelled, OrderStatusDraft, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderKind_SourceKind(t *testing.T) {
	assert.Equal(t, "purchase_order", OrderKindPurchase.SourceKind().String())
	assert.Equal(t, "sales_order", OrderKindSales.SourceKind().String())
	assert.False(t, OrderKind("transfer").IsValid())
}
