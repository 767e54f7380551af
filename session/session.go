// Package session assembles one signed-in user's engine: a cart
// aggregator, the order facade, and the order-list controller, built once
// at session start and torn down at sign-out. Nothing here is a process
// singleton; consumers receive the instances by injection.
package session

import (
	"context"
	"fmt"

	"github.com/EcoPlate/storefront-engine/cart"
	"github.com/EcoPlate/storefront-engine/config"
	"github.com/EcoPlate/storefront-engine/domain"
	"github.com/EcoPlate/storefront-engine/orders"
	"github.com/EcoPlate/storefront-engine/pkg/logger"
	"github.com/EcoPlate/storefront-engine/transport"
)

// IdentityProvider is the read-only slice of the auth layer the engine
// needs.
type IdentityProvider interface {
	IsAuthenticated() bool
	UserID() string
	Role() string
}

type Session struct {
	Cart      *cart.Aggregator
	Orders    *orders.Service
	OrderList *orders.ListController

	client   transport.Client
	identity IdentityProvider
	log      *logger.Logger
}

// New wires a session for the current user. It fails when nobody is
// signed in; the engine has no anonymous mode.
func New(cfg *config.Config, client transport.Client, identity IdentityProvider, log *logger.Logger) (*Session, error) {
	if !identity.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	aggregator := cart.New(cfg, log, cart.WithSyncer(client))
	list := orders.NewListController(client, cfg, log)
	service := orders.NewService(client, list, aggregator, cfg, log)

	return &Session{
		Cart:      aggregator,
		Orders:    service,
		OrderList: list,
		client:    client,
		identity:  identity,
		log:       log,
	}, nil
}

// UserID reports the signed-in user the session was built for.
func (s *Session) UserID() string { return s.identity.UserID() }

// SignOut empties the local cart and asks the backend to drop the server
// copy. The local teardown always happens; a failed server call is
// reported but leaves the session signed out regardless.
func (s *Session) SignOut(ctx context.Context) error {
	s.Cart.Reset()

	if err := s.client.ClearCart(ctx); err != nil {
		s.log.WarnContext(ctx, "server cart clear failed on sign-out", "user_id", s.identity.UserID(), "error", err)
		return fmt.Errorf("sign-out completed locally, server cart clear failed: %w", err)
	}
	return nil
}
