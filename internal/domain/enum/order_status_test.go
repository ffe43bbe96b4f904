package enum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusAwaitingPayment, true},
		{OrderStatusPending, OrderStatusRejected, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusConfirmed, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusAwaitingPayment, OrderStatusPendingConfirmation, true},
		{OrderStatusAwaitingPayment, OrderStatusCancelled, true},
		{OrderStatusAwaitingPayment, OrderStatusRejected, true},
		{OrderStatusPendingConfirmation, OrderStatusConfirmed, true},
		{OrderStatusPendingConfirmation, OrderStatusRejected, true},
		{OrderStatusPendingConfirmation, OrderStatusCancelled, false},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusConfirmed, OrderStatusRejected, false},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusPreparing, OrderStatusPending, false},
		{OrderStatusReady, OrderStatusDelivered, true},
		// no edge leaves a terminal state
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusRejected, OrderStatusDelivered, false},
		{OrderStatusCancelled, OrderStatusDelivered, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusDelivered, OrderStatusRejected, OrderStatusCancelled} {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
		assert.Empty(t, s.Transitions())
	}
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusAwaitingPayment, OrderStatusPendingConfirmation,
		OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady,
	} {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
	}
}

func TestOrderStatusDeliveredUnreachableFromTerminals(t *testing.T) {
	// Walk the whole table: delivered must only be reachable from ready.
	for from := range orderTransitions {
		if from.CanTransitionTo(OrderStatusDelivered) {
			require.Equal(t, OrderStatusReady, from)
		}
	}
}

func TestOrderStatusScan(t *testing.T) {
	var s OrderStatus
	require.NoError(t, s.Scan("preparing"))
	assert.Equal(t, OrderStatusPreparing, s)

	require.NoError(t, s.Scan([]byte("delivered")))
	assert.Equal(t, OrderStatusDelivered, s)

	assert.Error(t, s.Scan(42))
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, PaymentStatusAwaitingPayment.CanTransitionTo(PaymentStatusPendingConfirmation))
	assert.True(t, PaymentStatusPendingConfirmation.CanTransitionTo(PaymentStatusConfirmed))
	assert.True(t, PaymentStatusPendingConfirmation.CanTransitionTo(PaymentStatusRejected))
	assert.False(t, PaymentStatusConfirmed.CanTransitionTo(PaymentStatusRejected))
	assert.False(t, PaymentStatusRejected.CanTransitionTo(PaymentStatusConfirmed))
	assert.False(t, PaymentStatusAwaitingPayment.CanTransitionTo(PaymentStatusConfirmed))
}
