package test

import (
	"context"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CatalogStub serves offers from a fixed price list.
type CatalogStub struct {
	Known map[int64]model.VariantOffer
	Err   error
	// OnOffers runs before each lookup returns.
	OnOffers func()
}

// NewCatalogStub builds a catalog from offers.
func NewCatalogStub(offers ...model.VariantOffer) *CatalogStub {
	c := &CatalogStub{Known: map[int64]model.VariantOffer{}}
	for _, o := range offers {
		c.Known[o.VariantID] = o
	}
	return c
}

// Offers returns the known offers among variantIDs.
func (c *CatalogStub) Offers(_ context.Context, variantIDs []int64) (map[int64]model.VariantOffer, error) {
	if c.OnOffers != nil {
		c.OnOffers()
	}
	if c.Err != nil {
		return nil, c.Err
	}
	out := make(map[int64]model.VariantOffer, len(variantIDs))
	for _, id := range variantIDs {
		if o, ok := c.Known[id]; ok {
			out[id] = o
		}
	}
	return out, nil
}

// Offer builds a catalog offer priced at price.
func Offer(variantID int64, price string) model.VariantOffer {
	return model.VariantOffer{
		VariantID:  variantID,
		ProductID:  variantID * 10,
		CategoryID: 1,
		BrandID:    1,
		Price:      decimal.RequireFromString(price),
		Snapshot:   model.VariantSnapshot{Name: "variant", SKU: "SKU"},
	}
}

// CartStub keeps carts in memory.
type CartStub struct {
	mu        sync.Mutex
	carts     map[int64][]model.CartLine
	RemoveErr error
}

// NewCartStub creates an empty cart store.
func NewCartStub() *CartStub {
	return &CartStub{carts: map[int64][]model.CartLine{}}
}

// Cart returns a copy of buyer's lines.
func (c *CartStub) Cart(_ context.Context, buyerID int64) (*model.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &model.Cart{BuyerID: buyerID, Lines: slices.Clone(c.carts[buyerID])}, nil
}

// AddLine appends line to buyer's cart.
func (c *CartStub) AddLine(_ context.Context, buyerID int64, line model.CartLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.carts[buyerID] = append(c.carts[buyerID], line)
	return nil
}

// RemoveLines subtracts lines from buyer's cart unless RemoveErr is set.
func (c *CartStub) RemoveLines(_ context.Context, buyerID int64, lines []model.CartLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.RemoveErr != nil {
		return c.RemoveErr
	}
	take := map[int64]int{}
	for _, line := range lines {
		take[line.VariantID] += line.Quantity
	}
	kept := c.carts[buyerID][:0]
	for _, line := range c.carts[buyerID] {
		if qty := take[line.VariantID]; qty > 0 {
			take[line.VariantID] = qty - line.Quantity
			line.Quantity -= qty
			if line.Quantity <= 0 {
				continue
			}
		}
		kept = append(kept, line)
	}
	c.carts[buyerID] = kept
	return nil
}

// Lines returns the number of lines in buyer's cart.
func (c *CartStub) Lines(buyerID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.carts[buyerID])
}

// NotifierStub records enqueued notifications.
type NotifierStub struct {
	mu     sync.Mutex
	events []model.Notification
	Drop   bool
}

// Enqueue records n and reports whether it was accepted.
func (n *NotifierStub) Enqueue(note model.Notification) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Drop {
		return false
	}
	n.events = append(n.events, note)
	return true
}

// Events returns the event types recorded so far.
func (n *NotifierStub) Events() []model.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.EventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Event)
	}
	return out
}

// Notifications returns copies of recorded notifications.
func (n *NotifierStub) Notifications() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.events)
}
