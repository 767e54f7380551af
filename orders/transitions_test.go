package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EcoPlate/storefront-engine/domain"
)

func TestNextStatus_TransitionTable(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.OrderStatus
		delivery bool
		action   Action
		want     domain.OrderStatus
		wantErr  bool
	}{
		{name: "pending accept", status: domain.OrderStatusPending, action: ActionAccept, want: domain.OrderStatusConfirmed},
		{name: "pending decline", status: domain.OrderStatusPending, action: ActionDecline, want: domain.OrderStatusCancelled},
		{name: "confirmed start preparing", status: domain.OrderStatusConfirmed, action: ActionStartPreparing, want: domain.OrderStatusPreparing},
		{name: "preparing mark ready", status: domain.OrderStatusPreparing, action: ActionMarkReady, want: domain.OrderStatusReady},
		{name: "ready hand off delivery", status: domain.OrderStatusReady, delivery: true, action: ActionHandOff, want: domain.OrderStatusDelivered},
		{name: "ready hand off pickup", status: domain.OrderStatusReady, action: ActionHandOff, want: domain.OrderStatusPickedUp},
		{name: "pending mark ready rejected", status: domain.OrderStatusPending, action: ActionMarkReady, wantErr: true},
		{name: "confirmed accept rejected", status: domain.OrderStatusConfirmed, action: ActionAccept, wantErr: true},
		{name: "cancelled decline rejected", status: domain.OrderStatusCancelled, action: ActionDecline, wantErr: true},
		{name: "delivered hand off rejected", status: domain.OrderStatusDelivered, action: ActionHandOff, wantErr: true},
		{name: "preparing hand off rejected", status: domain.OrderStatusPreparing, action: ActionHandOff, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := domain.Order{Status: tt.status, IsDelivery: tt.delivery}
			got, err := nextStatus(order, tt.action)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrIllegalTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionsFor_PerState(t *testing.T) {
	assert.Equal(t,
		[]Action{ActionDecline, ActionAccept},
		ActionsFor(domain.Order{Status: domain.OrderStatusPending}))

	assert.Equal(t,
		[]Action{ActionStartPreparing},
		ActionsFor(domain.Order{Status: domain.OrderStatusConfirmed}))

	assert.Equal(t,
		[]Action{ActionMarkReady},
		ActionsFor(domain.Order{Status: domain.OrderStatusPreparing}))

	assert.Equal(t,
		[]Action{ActionHandOff, ActionRefund},
		ActionsFor(domain.Order{Status: domain.OrderStatusReady}))
}

func TestActionsFor_CancelledHasNoActions(t *testing.T) {
	assert.Empty(t, ActionsFor(domain.Order{Status: domain.OrderStatusCancelled}))
}

func TestActionsFor_RefundOnlyUntilRefunded(t *testing.T) {
	delivered := domain.Order{Status: domain.OrderStatusDelivered, PaymentStatus: domain.PaymentStatusPaid}
	assert.Equal(t, []Action{ActionRefund}, ActionsFor(delivered))

	delivered.PaymentStatus = domain.PaymentStatusRefunded
	assert.Empty(t, ActionsFor(delivered))
}

func TestActionsFor_NoRefundBeforeReady(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusConfirmed,
		domain.OrderStatusPreparing,
	} {
		assert.NotContains(t, ActionsFor(domain.Order{Status: status}), ActionRefund)
	}
}
