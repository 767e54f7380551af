package orders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/EcoPlate/storefront-engine/config"
	"github.com/EcoPlate/storefront-engine/domain"
	"github.com/EcoPlate/storefront-engine/pkg/logger"
	"github.com/EcoPlate/storefront-engine/resource"
	"github.com/EcoPlate/storefront-engine/transport"
)

// CartSource is the slice of the cart aggregator checkout needs: read one
// store's group and drop it locally after the server accepted the order.
type CartSource interface {
	GroupFor(storeID string) (domain.CartStoreGroup, bool)
	ResetStore(storeID string)
}

// Service is the order repository facade. Every operation emits a
// Resource sequence; transitions are validated against the locally-known
// order before any network call, and the in-memory list is patched in
// place on server acknowledgment instead of reloading.
type Service struct {
	client  transport.Client
	list    *ListController
	cart    CartSource
	timeout time.Duration
	log     *logger.Logger
}

func NewService(client transport.Client, list *ListController, cart CartSource, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{
		client:  client,
		list:    list,
		cart:    cart,
		timeout: cfg.RequestTimeout,
		log:     log,
	}
}

// List exposes the paginated order list controller.
func (s *Service) List() *ListController { return s.list }

// Checkout turns one store's cart group into an order. The request
// carries a client-generated idempotency key so resubmitting after a
// transport failure cannot create a duplicate order. The group is cleared
// from the cart only after the server confirms.
func (s *Service) Checkout(ctx context.Context, storeID, notes string) <-chan resource.State[domain.Order] {
	group, ok := s.cart.GroupFor(storeID)
	if !ok || len(group.Lines) == 0 {
		return resource.Reject[domain.Order](&transport.ValidationError{
			Message: "nothing to check out for this store",
			Err:     domain.ErrEmptyCartGroup,
		})
	}
	req := transport.CheckoutRequest{
		IdempotencyKey: uuid.NewString(),
		StoreID:        storeID,
		Items:          group.Lines,
		CustomerNotes:  notes,
	}
	return resource.Go(ctx, func(ctx context.Context) (domain.Order, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		order, err := s.client.Checkout(callCtx, req)
		if err != nil {
			return domain.Order{}, err
		}
		// the server consumed the cart group; reset it locally only
		s.cart.ResetStore(storeID)
		return *order, nil
	})
}

// GetOrder fetches a single order.
func (s *Service) GetOrder(ctx context.Context, id string) <-chan resource.State[domain.Order] {
	return resource.Go(ctx, func(ctx context.Context) (domain.Order, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		order, err := s.client.GetOrder(callCtx, id)
		if err != nil {
			return domain.Order{}, err
		}
		return *order, nil
	})
}

func (s *Service) AcceptOrder(ctx context.Context, orderID string) <-chan resource.State[domain.Order] {
	return s.Transition(ctx, orderID, ActionAccept, "")
}

func (s *Service) DeclineOrder(ctx context.Context, orderID string) <-chan resource.State[domain.Order] {
	return s.Transition(ctx, orderID, ActionDecline, "")
}

func (s *Service) StartPreparing(ctx context.Context, orderID string) <-chan resource.State[domain.Order] {
	return s.Transition(ctx, orderID, ActionStartPreparing, "")
}

func (s *Service) MarkReady(ctx context.Context, orderID string) <-chan resource.State[domain.Order] {
	return s.Transition(ctx, orderID, ActionMarkReady, "")
}

// HandOff completes the order: DELIVERED for delivery orders, PICKED_UP
// for pickup orders.
func (s *Service) HandOff(ctx context.Context, orderID string) <-chan resource.State[domain.Order] {
	return s.Transition(ctx, orderID, ActionHandOff, "")
}

// Transition requests one status change. When the order is known locally
// the action is validated synchronously and illegal combinations are
// rejected without touching the network; the local status stays unchanged
// until the server acknowledges.
func (s *Service) Transition(ctx context.Context, orderID string, action Action, notes string) <-chan resource.State[domain.Order] {
	if order, ok := s.list.Find(orderID); ok {
		if _, err := nextStatus(order, action); err != nil {
			return resource.Reject[domain.Order](err)
		}
	}
	return resource.Go(ctx, func(ctx context.Context) (domain.Order, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		order, ok := s.list.Find(orderID)
		if !ok {
			fetched, err := s.client.GetOrder(callCtx, orderID)
			if err != nil {
				return domain.Order{}, err
			}
			order = *fetched
		}
		next, err := nextStatus(order, action)
		if err != nil {
			return domain.Order{}, err
		}

		updated, err := s.client.UpdateOrderStatus(callCtx, orderID, next, notes)
		if err != nil {
			return domain.Order{}, err
		}
		s.list.Patch(*updated)
		s.log.InfoContext(ctx, "order transitioned", "order_id", orderID, "action", string(action), "status", updated.Status.String())
		return *updated, nil
	})
}

// RefundOrder flips the payment status to refunded. A second refund on
// the same order is rejected client-side, before any request is made.
func (s *Service) RefundOrder(ctx context.Context, orderID, reason string) <-chan resource.State[domain.Order] {
	if order, ok := s.list.Find(orderID); ok {
		if order.IsRefunded() {
			return resource.Reject[domain.Order](alreadyRefunded())
		}
		if !canRefund(order) {
			return resource.Reject[domain.Order](notRefundable(order))
		}
	}
	return resource.Go(ctx, func(ctx context.Context) (domain.Order, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		if order, ok := s.list.Find(orderID); !ok {
			fetched, err := s.client.GetOrder(callCtx, orderID)
			if err != nil {
				return domain.Order{}, err
			}
			order = *fetched
			if order.IsRefunded() {
				return domain.Order{}, alreadyRefunded()
			}
			if !canRefund(order) {
				return domain.Order{}, notRefundable(order)
			}
		}

		updated, err := s.client.RefundOrder(callCtx, orderID, reason)
		if err != nil {
			return domain.Order{}, err
		}
		s.list.Patch(*updated)
		return *updated, nil
	})
}
