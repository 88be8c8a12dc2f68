package model

import (
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// FulfillmentStatus is the per-line progress indicator.
type FulfillmentStatus string

const (
	FulfillmentPending   FulfillmentStatus = "pending"
	FulfillmentConfirmed FulfillmentStatus = "confirmed"
	FulfillmentPacked    FulfillmentStatus = "packed"
	FulfillmentShipped   FulfillmentStatus = "shipped"
	FulfillmentDelivered FulfillmentStatus = "delivered"
	FulfillmentCancelled FulfillmentStatus = "cancelled"
)

// Shipping may skip the packed step at line level.
var itemTransitions = map[FulfillmentStatus][]FulfillmentStatus{
	FulfillmentPending:   {FulfillmentConfirmed, FulfillmentCancelled},
	FulfillmentConfirmed: {FulfillmentPacked, FulfillmentShipped, FulfillmentCancelled},
	FulfillmentPacked:    {FulfillmentShipped, FulfillmentCancelled},
	FulfillmentShipped:   {FulfillmentDelivered, FulfillmentCancelled},
}

// Terminal reports whether the line can no longer change.
func (s FulfillmentStatus) Terminal() bool {
	return s == FulfillmentDelivered || s == FulfillmentCancelled
}

// rank orders active states along the fulfilment path.
func (s FulfillmentStatus) rank() int {
	switch s {
	case FulfillmentPending:
		return 0
	case FulfillmentConfirmed:
		return 1
	case FulfillmentPacked:
		return 2
	case FulfillmentShipped:
		return 3
	case FulfillmentDelivered:
		return 4
	}
	return -1
}

// AtLeast reports whether s has progressed to other or beyond.
func (s FulfillmentStatus) AtLeast(other FulfillmentStatus) bool {
	return s != FulfillmentCancelled && s.rank() >= other.rank()
}

// CheckTransition validates moving from s to next.
func (s FulfillmentStatus) CheckTransition(next FulfillmentStatus) error {
	if s == next {
		return &domainErrors.TransitionError{From: string(s), To: string(next), Err: domainErrors.ErrAlreadyInState}
	}
	for _, allowed := range itemTransitions[s] {
		if allowed == next {
			return nil
		}
	}
	return &domainErrors.TransitionError{From: string(s), To: string(next), Err: domainErrors.ErrInvalidTransition}
}

// VariantAttribute is a display attribute such as size or colour.
type VariantAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// VariantSnapshot freezes the purchased variant's display data.
type VariantSnapshot struct {
	Name       string             `json:"name"`
	SKU        string             `json:"sku,omitempty"`
	ImageURL   string             `json:"image_url,omitempty"`
	Attributes []VariantAttribute `json:"attributes,omitempty"`
}

// OrderItem is a line within an order.
type OrderItem struct {
	ID              int64
	OrderID         int64
	VariantID       int64
	ProductID       int64
	Quantity        int
	Price           decimal.Decimal
	DiscountedPrice decimal.NullDecimal
	FinalPrice      decimal.Decimal
	Snapshot        VariantSnapshot
	Status          FulfillmentStatus
	TrackingRef     string
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	ReturnDeadline  time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UnitPrice is the discounted price when present, otherwise the list price.
func (i *OrderItem) UnitPrice() decimal.Decimal {
	if i.DiscountedPrice.Valid {
		return i.DiscountedPrice.Decimal
	}
	return i.Price
}

// ComputeFinalPrice sets the line total from unit price and quantity.
func (i *OrderItem) ComputeFinalPrice() {
	i.FinalPrice = RoundMoney(i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity))))
}

// Transition moves the line to next, stamping shipped/delivered times.
func (i *OrderItem) Transition(next FulfillmentStatus, at time.Time) error {
	if err := i.Status.CheckTransition(next); err != nil {
		return err
	}
	switch next {
	case FulfillmentShipped:
		shippedAt := at
		i.ShippedAt = &shippedAt
	case FulfillmentDelivered:
		deliveredAt := at
		i.DeliveredAt = &deliveredAt
	}
	i.Status = next
	i.UpdatedAt = at
	return nil
}
