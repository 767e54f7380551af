// Package orders drives the client's view of the order lifecycle: the
// status transition table, the repository facade over the commerce API,
// and the paginated order list. The client never flips a status
// optimistically; local state changes only after the server confirms.
package orders

import (
	"fmt"

	"github.com/EcoPlate/storefront-engine/domain"
	"github.com/EcoPlate/storefront-engine/transport"
)

// Action is one store-owner command on an order. Every action maps to a
// single explicit transition; nothing auto-advances.
type Action string

const (
	ActionAccept         Action = "accept"
	ActionDecline        Action = "decline"
	ActionStartPreparing Action = "start_preparing"
	ActionMarkReady      Action = "mark_ready"
	ActionHandOff        Action = "hand_off"
	ActionRefund         Action = "refund"
)

// ActionsFor lists the actions a store owner may take on the order in its
// current state. Cancelled and handed-off orders have no status actions
// left; refund shows up alongside once the order is ready or handed off
// and the payment has not been refunded yet.
func ActionsFor(o domain.Order) []Action {
	var actions []Action
	switch o.Status {
	case domain.OrderStatusPending:
		actions = append(actions, ActionDecline, ActionAccept)
	case domain.OrderStatusConfirmed:
		actions = append(actions, ActionStartPreparing)
	case domain.OrderStatusPreparing:
		actions = append(actions, ActionMarkReady)
	case domain.OrderStatusReady:
		actions = append(actions, ActionHandOff)
	}
	if canRefund(o) {
		actions = append(actions, ActionRefund)
	}
	return actions
}

// canRefund allows exactly one refund, and only once the order reached
// READY or was handed off. Refund flips the payment status, never the
// delivery status.
func canRefund(o domain.Order) bool {
	switch o.Status {
	case domain.OrderStatusReady, domain.OrderStatusPickedUp, domain.OrderStatusDelivered:
		return !o.IsRefunded()
	}
	return false
}

// nextStatus validates the action against the order's current state and
// returns the status to request from the server. Illegal combinations are
// rejected here, before any network round trip.
func nextStatus(o domain.Order, action Action) (domain.OrderStatus, error) {
	switch action {
	case ActionAccept:
		if o.Status == domain.OrderStatusPending {
			return domain.OrderStatusConfirmed, nil
		}
	case ActionDecline:
		if o.Status == domain.OrderStatusPending {
			return domain.OrderStatusCancelled, nil
		}
	case ActionStartPreparing:
		if o.Status == domain.OrderStatusConfirmed {
			return domain.OrderStatusPreparing, nil
		}
	case ActionMarkReady:
		if o.Status == domain.OrderStatusPreparing {
			return domain.OrderStatusReady, nil
		}
	case ActionHandOff:
		if o.Status == domain.OrderStatusReady {
			if o.IsDelivery {
				return domain.OrderStatusDelivered, nil
			}
			return domain.OrderStatusPickedUp, nil
		}
	}
	return "", &transport.ValidationError{
		Message: fmt.Sprintf("cannot %s an order in status %s", action, o.Status),
		Err:     domain.ErrIllegalTransition,
	}
}

// alreadyRefunded and notRefundable are the refund counterparts of the
// nextStatus rejection: user-facing text on top of the domain sentinel.
func alreadyRefunded() error {
	return &transport.ValidationError{
		Message: "order has already been refunded",
		Err:     domain.ErrAlreadyRefunded,
	}
}

func notRefundable(o domain.Order) error {
	return &transport.ValidationError{
		Message: fmt.Sprintf("cannot refund an order in status %s", o.Status),
		Err:     domain.ErrIllegalTransition,
	}
}
