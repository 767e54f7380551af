package domain

import "time"

// CartLine is one product instance inside a store's cart group. UnitPrice is
// the current (post-discount) price; OriginalUnitPrice, when set, carries the
// pre-discount price for strike-through display.
type CartLine struct {
	ProductID         string     `json:"product_id"`
	Name              string     `json:"name"`
	UnitPrice         float64    `json:"unit_price"`
	OriginalUnitPrice *float64   `json:"original_unit_price,omitempty"`
	Quantity          int        `json:"quantity"`
	ImageURL          string     `json:"image_url,omitempty"`
	IsEcoFriendly     bool       `json:"is_eco_friendly"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
}

// StoreInfo identifies the store a line is added from. ID must be the
// store's canonical id; lines without one are dropped by the aggregator.
type StoreInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"image_url,omitempty"`
	DeliveryFee float64 `json:"delivery_fee"`
	DeliveryETA string  `json:"delivery_eta,omitempty"`
}

// CartStoreGroup is one store's slice of the cart. Lines keep insertion
// order; a group with no lines must not exist in the aggregate.
type CartStoreGroup struct {
	StoreID     string     `json:"store_id"`
	StoreName   string     `json:"store_name"`
	StoreImage  string     `json:"store_image,omitempty"`
	DeliveryFee float64    `json:"delivery_fee"`
	DeliveryETA string     `json:"delivery_eta,omitempty"`
	Lines       []CartLine `json:"lines"`
}

// Subtotal is the sum of line unit prices times quantities, without the
// delivery fee.
func (g CartStoreGroup) Subtotal() float64 {
	var sum float64
	for _, l := range g.Lines {
		sum += l.UnitPrice * float64(l.Quantity)
	}
	return sum
}

// Total is the group subtotal plus the group's delivery fee.
func (g CartStoreGroup) Total() float64 {
	return g.Subtotal() + g.DeliveryFee
}

// ItemCount is the sum of line quantities in the group.
func (g CartStoreGroup) ItemCount() int {
	var n int
	for _, l := range g.Lines {
		n += l.Quantity
	}
	return n
}
