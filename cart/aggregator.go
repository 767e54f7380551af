// Package cart holds the local, authoritative cart model: line items
// grouped per store, with quantity merging, group pruning and derived
// totals. Mutations are synchronous and never fail; invalid input degrades
// to a no-op. The backend cart endpoints are mirrored best-effort off the
// caller's goroutine and never influence local state.
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/EcoPlate/storefront-engine/config"
	"github.com/EcoPlate/storefront-engine/domain"
	"github.com/EcoPlate/storefront-engine/observe"
	"github.com/EcoPlate/storefront-engine/pkg/logger"
	"github.com/EcoPlate/storefront-engine/transport"
)

// Snapshot is the immutable view handed to observers. Totals and the item
// count are recomputed from the line data on every mutation, never kept as
// independent counters.
type Snapshot struct {
	Groups     []domain.CartStoreGroup
	ItemCount  int
	GrandTotal float64
}

// Syncer mirrors local cart mutations to the backend. transport.Client
// satisfies it.
type Syncer interface {
	AddCartItem(ctx context.Context, item transport.CartItemPayload) error
	UpdateCartItem(ctx context.Context, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, productID string) error
	ClearCart(ctx context.Context) error
}

// Aggregator is one session's cart. A single logical owner performs
// mutations; the mutex keeps concurrent readers of the snapshot safe.
type Aggregator struct {
	mu     sync.Mutex
	groups []domain.CartStoreGroup

	value  *observe.Value[Snapshot]
	syncer Syncer
	log    *logger.Logger

	defaultFee  float64
	defaultETA  string
	syncTimeout time.Duration
}

type Option func(*Aggregator)

// WithSyncer enables best-effort mirroring of mutations to the backend.
func WithSyncer(s Syncer) Option {
	return func(a *Aggregator) { a.syncer = s }
}

func New(cfg *config.Config, log *logger.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		value:       observe.NewValue(Snapshot{}),
		log:         log,
		defaultFee:  cfg.DefaultDeliveryFee,
		defaultETA:  cfg.DefaultDeliveryETA,
		syncTimeout: cfg.RequestTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddItem merges a line into the store's group. Same product in the same
// store adds quantities together; a missing group is created. Lines
// without a store id or product id, or with a quantity below one, are
// dropped: the engine requires a stable store id at every call site.
func (a *Aggregator) AddItem(store domain.StoreInfo, line domain.CartLine) {
	if store.ID == "" || line.ProductID == "" || line.Quantity < 1 {
		return
	}

	a.mu.Lock()
	idx := a.groupIndex(store.ID)
	if idx < 0 {
		fee := store.DeliveryFee
		if fee == 0 {
			fee = a.defaultFee
		}
		eta := store.DeliveryETA
		if eta == "" {
			eta = a.defaultETA
		}
		a.groups = append(a.groups, domain.CartStoreGroup{
			StoreID:     store.ID,
			StoreName:   store.Name,
			StoreImage:  store.ImageURL,
			DeliveryFee: fee,
			DeliveryETA: eta,
			Lines:       []domain.CartLine{line},
		})
	} else {
		group := &a.groups[idx]
		merged := false
		for i := range group.Lines {
			if group.Lines[i].ProductID == line.ProductID {
				group.Lines[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			group.Lines = append(group.Lines, line)
		}
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.value.Set(snap)

	a.mirror("add item", func(ctx context.Context) error {
		return a.syncer.AddCartItem(ctx, transport.CartItemPayload{Store: store, Line: line})
	})
}

// UpdateQuantity sets a line's quantity to an absolute value. A quantity
// of zero or less removes the line, and removing the last line removes the
// whole group. Unknown store or product ids are no-ops, so stale UI
// callbacks cannot corrupt the cart.
func (a *Aggregator) UpdateQuantity(storeID, productID string, quantity int) {
	a.mu.Lock()
	changed := false
	idx := a.groupIndex(storeID)
	if idx >= 0 {
		group := &a.groups[idx]
		for i := range group.Lines {
			if group.Lines[i].ProductID != productID {
				continue
			}
			if quantity <= 0 {
				group.Lines = append(group.Lines[:i], group.Lines[i+1:]...)
				if len(group.Lines) == 0 {
					a.groups = append(a.groups[:idx], a.groups[idx+1:]...)
				}
			} else {
				group.Lines[i].Quantity = quantity
			}
			changed = true
			break
		}
	}
	var snap Snapshot
	if changed {
		snap = a.snapshotLocked()
	}
	a.mu.Unlock()

	if !changed {
		return
	}
	a.value.Set(snap)
	if quantity <= 0 {
		a.mirror("remove item", func(ctx context.Context) error {
			return a.syncer.RemoveCartItem(ctx, productID)
		})
		return
	}
	a.mirror("update quantity", func(ctx context.Context) error {
		return a.syncer.UpdateCartItem(ctx, productID, quantity)
	})
}

// RemoveItem drops a line entirely, regardless of its quantity.
func (a *Aggregator) RemoveItem(storeID, productID string) {
	a.UpdateQuantity(storeID, productID, 0)
}

// ClearStore removes the store's whole group.
func (a *Aggregator) ClearStore(storeID string) {
	a.mu.Lock()
	idx := a.groupIndex(storeID)
	var removed []domain.CartLine
	if idx >= 0 {
		removed = a.groups[idx].Lines
		a.groups = append(a.groups[:idx], a.groups[idx+1:]...)
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()
	if len(removed) > 0 {
		a.value.Set(snap)
	}

	for _, line := range removed {
		productID := line.ProductID
		a.mirror("clear store", func(ctx context.Context) error {
			return a.syncer.RemoveCartItem(ctx, productID)
		})
	}
}

// ClearAll empties the cart.
func (a *Aggregator) ClearAll() {
	a.mu.Lock()
	cleared := len(a.groups) > 0
	a.groups = nil
	a.mu.Unlock()
	if !cleared {
		return
	}
	a.value.Set(Snapshot{})
	a.mirror("clear cart", func(ctx context.Context) error {
		return a.syncer.ClearCart(ctx)
	})
}

// ResetStore drops the store's group locally without mirroring the
// removals. Used after checkout, where the server already consumed the
// group and a DELETE per line would race the order it just created.
func (a *Aggregator) ResetStore(storeID string) {
	a.mu.Lock()
	idx := a.groupIndex(storeID)
	removed := idx >= 0
	if removed {
		a.groups = append(a.groups[:idx], a.groups[idx+1:]...)
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()
	if removed {
		a.value.Set(snap)
	}
}

// Reset empties the cart locally without mirroring to the backend. Used
// at session teardown, where the caller owns the server-side clear.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	cleared := len(a.groups) > 0
	a.groups = nil
	a.mu.Unlock()
	if cleared {
		a.value.Set(Snapshot{})
	}
}

// TotalForStore is the store group's line total plus its delivery fee,
// zero when the store has no group.
func (a *Aggregator) TotalForStore(storeID string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if idx := a.groupIndex(storeID); idx >= 0 {
		return a.groups[idx].Total()
	}
	return 0
}

func (a *Aggregator) GrandTotal() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var sum float64
	for _, g := range a.groups {
		sum += g.Total()
	}
	return sum
}

func (a *Aggregator) ItemCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	var n int
	for _, g := range a.groups {
		n += g.ItemCount()
	}
	return n
}

// GroupFor returns a copy of the store's group, used by checkout.
func (a *Aggregator) GroupFor(storeID string) (domain.CartStoreGroup, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if idx := a.groupIndex(storeID); idx >= 0 {
		return copyGroup(a.groups[idx]), true
	}
	return domain.CartStoreGroup{}, false
}

func (a *Aggregator) Snapshot() Snapshot {
	return a.value.Get()
}

// Subscribe registers fn for snapshot updates; the returned func cancels
// the subscription.
func (a *Aggregator) Subscribe(fn func(Snapshot)) func() {
	return a.value.Subscribe(fn)
}

func (a *Aggregator) groupIndex(storeID string) int {
	for i := range a.groups {
		if a.groups[i].StoreID == storeID {
			return i
		}
	}
	return -1
}

// snapshotLocked recomputes the snapshot from the line data. Caller holds
// a.mu; the swap into the observable happens after the lock is released so
// subscriber callbacks can read the aggregator freely.
func (a *Aggregator) snapshotLocked() Snapshot {
	snap := Snapshot{Groups: make([]domain.CartStoreGroup, 0, len(a.groups))}
	for _, g := range a.groups {
		snap.Groups = append(snap.Groups, copyGroup(g))
		snap.ItemCount += g.ItemCount()
		snap.GrandTotal += g.Total()
	}
	return snap
}

func copyGroup(g domain.CartStoreGroup) domain.CartStoreGroup {
	out := g
	out.Lines = make([]domain.CartLine, len(g.Lines))
	copy(out.Lines, g.Lines)
	return out
}

// mirror runs one backend call off the caller's goroutine. Failures are
// logged and dropped: the local cart is authoritative.
func (a *Aggregator) mirror(op string, call func(context.Context) error) {
	if a.syncer == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.syncTimeout)
		defer cancel()
		if err := call(ctx); err != nil {
			a.log.WarnContext(ctx, "cart sync failed", "op", op, "error", err)
		}
	}()
}
