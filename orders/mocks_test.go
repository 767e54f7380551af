package orders

import (
	"context"
	"sync"

	"github.com/EcoPlate/storefront-engine/domain"
	"github.com/EcoPlate/storefront-engine/transport"
)

// mockClient implements transport.Client with pluggable behavior per
// operation and call counters for asserting that calls did (not) happen.
type mockClient struct {
	mu sync.Mutex

	listFn     func(ctx context.Context, page, limit int, status domain.OrderStatus) (*transport.OrderPage, error)
	getFn      func(ctx context.Context, id string) (*domain.Order, error)
	updateFn   func(ctx context.Context, id string, status domain.OrderStatus, notes string) (*domain.Order, error)
	refundFn   func(ctx context.Context, id, reason string) (*domain.Order, error)
	checkoutFn func(ctx context.Context, req transport.CheckoutRequest) (*domain.Order, error)

	listCalls     int
	getCalls      int
	updateCalls   int
	refundCalls   int
	checkoutCalls int
}

func (m *mockClient) AddCartItem(context.Context, transport.CartItemPayload) error { return nil }
func (m *mockClient) UpdateCartItem(context.Context, string, int) error            { return nil }
func (m *mockClient) RemoveCartItem(context.Context, string) error                 { return nil }
func (m *mockClient) ClearCart(context.Context) error                              { return nil }

func (m *mockClient) ListOrders(ctx context.Context, page, limit int, status domain.OrderStatus) (*transport.OrderPage, error) {
	m.mu.Lock()
	m.listCalls++
	fn := m.listFn
	m.mu.Unlock()
	if fn == nil {
		return &transport.OrderPage{Page: page, TotalPages: page}, nil
	}
	return fn(ctx, page, limit, status)
}

func (m *mockClient) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	m.getCalls++
	fn := m.getFn
	m.mu.Unlock()
	if fn == nil {
		return nil, domain.ErrOrderNotFound
	}
	return fn(ctx, id)
}

func (m *mockClient) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, notes string) (*domain.Order, error) {
	m.mu.Lock()
	m.updateCalls++
	fn := m.updateFn
	m.mu.Unlock()
	if fn == nil {
		return &domain.Order{ID: id, Status: status, CustomerNotes: notes}, nil
	}
	return fn(ctx, id, status, notes)
}

func (m *mockClient) RefundOrder(ctx context.Context, id, reason string) (*domain.Order, error) {
	m.mu.Lock()
	m.refundCalls++
	fn := m.refundFn
	m.mu.Unlock()
	if fn == nil {
		return &domain.Order{ID: id, PaymentStatus: domain.PaymentStatusRefunded}, nil
	}
	return fn(ctx, id, reason)
}

func (m *mockClient) Checkout(ctx context.Context, req transport.CheckoutRequest) (*domain.Order, error) {
	m.mu.Lock()
	m.checkoutCalls++
	fn := m.checkoutFn
	m.mu.Unlock()
	if fn == nil {
		return &domain.Order{ID: "o-new", StoreID: req.StoreID, Status: domain.OrderStatusPending}, nil
	}
	return fn(ctx, req)
}

func (m *mockClient) counts() (list, get, update, refund, checkout int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls, m.getCalls, m.updateCalls, m.refundCalls, m.checkoutCalls
}

// mockCart is a minimal CartSource for checkout tests.
type mockCart struct {
	mu      sync.Mutex
	group   domain.CartStoreGroup
	hasIt   bool
	cleared []string
}

func (m *mockCart) GroupFor(storeID string) (domain.CartStoreGroup, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasIt || m.group.StoreID != storeID {
		return domain.CartStoreGroup{}, false
	}
	return m.group, true
}

func (m *mockCart) ResetStore(storeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, storeID)
}
