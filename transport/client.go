// Package transport is the narrow commerce-API client the engine consumes.
// It translates HTTP outcomes into the engine's error taxonomy; everything
// above it deals in domain types only.
package transport

import (
	"context"

	"github.com/EcoPlate/storefront-engine/domain"
)

// CartItemPayload mirrors one cart line plus its originating store for the
// server-side cart endpoints.
type CartItemPayload struct {
	Store domain.StoreInfo `json:"store"`
	Line  domain.CartLine  `json:"line"`
}

// CheckoutRequest converts one store's cart group into an order. The
// idempotency key is client-generated so a resubmitted checkout cannot
// create a duplicate order.
type CheckoutRequest struct {
	IdempotencyKey string            `json:"idempotency_key"`
	StoreID        string            `json:"store_id"`
	Items          []domain.CartLine `json:"items"`
	CustomerNotes  string            `json:"customer_notes,omitempty"`
}

// OrderPage is one page of the paginated order listing.
type OrderPage struct {
	Orders     []domain.Order `json:"orders"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

type Client interface {
	AddCartItem(ctx context.Context, item CartItemPayload) error
	UpdateCartItem(ctx context.Context, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, productID string) error
	ClearCart(ctx context.Context) error

	Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error)
	ListOrders(ctx context.Context, page, limit int, status domain.OrderStatus) (*OrderPage, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, notes string) (*domain.Order, error)
	RefundOrder(ctx context.Context, id string, reason string) (*domain.Order, error)
}
