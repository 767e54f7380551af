package orders

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

// ListSnapshot is the observable order-list state a screen renders from.
// Err is set when page 1 failed (the list is empty then); PageErr flags a
// failed later page while the already-loaded items stay visible.
type ListSnapshot struct {
	Orders     []domain.Order
	Filter     domain.OrderStatus
	HasMore    bool
	Loading    bool
	Refreshing bool
	Err        error
	PageErr    error
}

// ListController tracks the pagination cursor for the order list:
// 1-based page, has-more flag, active status filter. Loads run off the
// caller's goroutine; a generation token dropped onto every fetch lets the
// controller discard responses that a newer filter reset has superseded.
type ListController struct {
	mu sync.Mutex

	client   transport.Client
	pageSize int
	timeout  time.Duration
	log      *logger.Logger
	value    *observe.Value[ListSnapshot]

	orders     []domain.Order
	page       int
	hasMore    bool
	filter     domain.OrderStatus
	inFlight   bool
	refreshing bool
	generation uint64
	seq        uint64
}

func NewListController(client transport.Client, cfg *config.Config, log *logger.Logger) *ListController {
	return &ListController{
		client:   client,
		pageSize: cfg.PageSize,
		timeout:  cfg.RequestTimeout,
		log:      log,
		value:    observe.NewValue(ListSnapshot{HasMore: true}),
		page:     1,
		hasMore:  true,
	}
}

func (c *ListController) Snapshot() ListSnapshot {
	return c.value.Get()
}

func (c *ListController) Subscribe(fn func(ListSnapshot)) func() {
	return c.value.Subscribe(fn)
}

// Load starts the initial page-1 fetch.
func (c *ListController) Load(ctx context.Context) {
	c.load(ctx, true, false)
}

// Refresh reloads from page 1. It differs from Load only by the
// Refreshing flag, so the UI can show a pull-to-refresh affordance
// instead of the full spinner.
func (c *ListController) Refresh(ctx context.Context) {
	c.load(ctx, true, true)
}

// SetFilter switches the status filter and always resets to page 1. Any
// in-flight load of the previous filter is superseded and its response
// will be dropped when it arrives.
func (c *ListController) SetFilter(ctx context.Context, filter domain.OrderStatus) {
	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()
	c.load(ctx, true, false)
}

// LoadNextPage fetches the next page and appends it. It is a no-op while
// a load is outstanding or when the server reported no further pages,
// which keeps fast repeated scroll triggers from double-fetching a page.
func (c *ListController) LoadNextPage(ctx context.Context) {
	c.mu.Lock()
	if c.inFlight || !c.hasMore {
		c.mu.Unlock()
		return
	}
	c.page++
	c.mu.Unlock()
	c.load(ctx, false, false)
}

func (c *ListController) load(ctx context.Context, reset, refreshing bool) {
	c.mu.Lock()
	if reset {
		c.generation++
		c.page = 1
		c.orders = nil
		c.hasMore = true
	}
	c.inFlight = true
	c.refreshing = refreshing
	gen := c.generation
	page := c.page
	filter := c.filter
	snap := c.snapshotLocked()
	seq := c.nextSeqLocked()
	c.mu.Unlock()
	c.value.SetAt(seq, snap)

	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		result, err := c.client.ListOrders(fetchCtx, page, c.pageSize, filter)

		c.mu.Lock()
		if gen != c.generation {
			// superseded by a newer reset; that load owns the state now
			c.mu.Unlock()
			return
		}
		c.inFlight = false
		c.refreshing = false

		var out ListSnapshot
		if err != nil {
			if page == 1 {
				c.orders = nil
				out = c.snapshotLocked()
				out.Err = err
			} else {
				// keep loaded pages; step back so a retry refetches this page
				c.page--
				out = c.snapshotLocked()
				out.PageErr = err
			}
			seq := c.nextSeqLocked()
			c.mu.Unlock()
			c.log.WarnContext(ctx, "order list load failed", "page", page, "error", err)
			c.value.SetAt(seq, out)
			return
		}

		if page == 1 {
			c.orders = result.Orders
		} else {
			merged := make([]domain.Order, 0, len(c.orders)+len(result.Orders))
			merged = append(merged, c.orders...)
			merged = append(merged, result.Orders...)
			c.orders = merged
		}
		c.hasMore = page < result.TotalPages
		out = c.snapshotLocked()
		seq := c.nextSeqLocked()
		c.mu.Unlock()
		c.value.SetAt(seq, out)
	}()
}

// Patch replaces the order with the same id, swapping the whole backing
// slice so observers never see a half-applied update. Orders not present
// in the list are ignored.
func (c *ListController) Patch(order domain.Order) {
	c.mu.Lock()
	replaced := false
	orders := make([]domain.Order, len(c.orders))
	copy(orders, c.orders)
	for i := range orders {
		if orders[i].ID == order.ID {
			orders[i] = order
			replaced = true
			break
		}
	}
	var snap ListSnapshot
	var seq uint64
	if replaced {
		c.orders = orders
		snap = c.snapshotLocked()
		seq = c.nextSeqLocked()
	}
	c.mu.Unlock()
	if replaced {
		c.value.SetAt(seq, snap)
	}
}

// Find returns the locally-known copy of an order, if the list holds one.
func (c *ListController) Find(id string) (domain.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range c.orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

// nextSeqLocked hands out the publication order for a snapshot computed
// under c.mu. The observable rejects out-of-order publications, so a
// goroutine that computed its snapshot first but got descheduled before
// publishing cannot overwrite a newer one. Caller holds c.mu.
func (c *ListController) nextSeqLocked() uint64 {
	c.seq++
	return c.seq
}

// snapshotLocked builds the observable state from the accumulated pages.
// Caller holds c.mu; the publication happens after unlock.
func (c *ListController) snapshotLocked() ListSnapshot {
	orders := make([]domain.Order, len(c.orders))
	copy(orders, c.orders)
	return ListSnapshot{
		Orders:     orders,
		Filter:     c.filter,
		HasMore:    c.hasMore,
		Loading:    c.inFlight,
		Refreshing: c.refreshing,
	}
}
