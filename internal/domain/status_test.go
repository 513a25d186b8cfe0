package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo_HappyPath(t *testing.T) {
	assert.True(t, CanTransitionTo(OrderStatusPending, OrderStatusPaid))
	assert.True(t, CanTransitionTo(OrderStatusPaid, OrderStatusShipped))
	assert.True(t, CanTransitionTo(OrderStatusShipped, OrderStatusDelivered))
}

func TestCanTransitionTo_CancelFromAnyNonTerminal(t *testing.T) {
	assert.True(t, CanTransitionTo(OrderStatusPending, OrderStatusCancelled))
	assert.True(t, CanTransitionTo(OrderStatusPaid, OrderStatusCancelled))
	assert.True(t, CanTransitionTo(OrderStatusShipped, OrderStatusCancelled))
}

func TestCanTransitionTo_TerminalStatesNeverReopen(t *testing.T) {
	for _, next := range []OrderStatus{
		OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled,
	} {
		assert.False(t, CanTransitionTo(OrderStatusDelivered, next), "DELIVERED -> %s", next)
		assert.False(t, CanTransitionTo(OrderStatusCancelled, next), "CANCELLED -> %s", next)
	}
}

func TestCanTransitionTo_NoSkipping(t *testing.T) {
	assert.False(t, CanTransitionTo(OrderStatusPending, OrderStatusShipped))
	assert.False(t, CanTransitionTo(OrderStatusPending, OrderStatusDelivered))
	assert.False(t, CanTransitionTo(OrderStatusShipped, OrderStatusPaid))
}

func TestPaymentStatusFromGateway(t *testing.T) {
	assert.Equal(t, PaymentStatusApproved, PaymentStatusFromGateway("APPROVED"))
	assert.Equal(t, PaymentStatusDeclined, PaymentStatusFromGateway("DECLINED"))
	assert.Equal(t, PaymentStatusDeclined, PaymentStatusFromGateway("ERROR"))
	assert.Equal(t, PaymentStatusDeclined, PaymentStatusFromGateway("voided"))
	assert.Equal(t, PaymentStatusPending, PaymentStatusFromGateway("PENDING"))
	assert.Equal(t, PaymentStatusPending, PaymentStatusFromGateway("something-new"))
}
