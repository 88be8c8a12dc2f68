package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// OrderStatus describes the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusPacked, OrderStatusCancelled},
	OrderStatusPacked:  {OrderStatusShipped},
	OrderStatusShipped: {OrderStatusDelivered},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusPacked,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusDelivered
}

// Cancellable reports whether an order in s may be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusPaid
}

// CheckTransition validates moving from s to next.
func (s OrderStatus) CheckTransition(next OrderStatus) error {
	if s == next {
		return &domainErrors.TransitionError{From: string(s), To: string(next), Err: domainErrors.ErrAlreadyInState}
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return nil
		}
	}
	return &domainErrors.TransitionError{From: string(s), To: string(next), Err: domainErrors.ErrInvalidTransition}
}

// PaymentStatus tracks payment progress for orders and payment records.
// Orders only use pending, complete and failed.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusComplete          PaymentStatus = "complete"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// Refundable reports whether a payment in s can be refunded against.
func (s PaymentStatus) Refundable() bool {
	return s == PaymentStatusComplete || s == PaymentStatusRefunded || s == PaymentStatusPartiallyRefunded
}

// Order is a purchase commitment created from a cart.
type Order struct {
	ID                 int64
	Number             string
	BuyerID            int64
	ShippingAddressID  int64
	BillingAddressID   int64
	Currency           string
	Subtotal           decimal.Decimal
	CouponDiscount     decimal.Decimal
	Tax                decimal.Decimal
	Total              decimal.Decimal
	CouponID           *int64
	Status             OrderStatus
	PaymentStatus      PaymentStatus
	History            StatusHistory
	CancellationReason string
	CancelledBy        *int64
	CancelledAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
	Items              []OrderItem
}

// RecalculateTotal sets total = subtotal - discount + tax.
func (o *Order) RecalculateTotal() {
	o.Total = RoundMoney(o.Subtotal.Sub(o.CouponDiscount).Add(o.Tax))
}

// Transition moves the order to next and records it in the history.
func (o *Order) Transition(next OrderStatus, at time.Time, note string) error {
	if err := o.Status.CheckTransition(next); err != nil {
		return err
	}
	if err := o.History.Append(next, at, note); err != nil {
		return err
	}
	o.Status = next
	o.UpdatedAt = at
	return nil
}

// MarkCancelled records cancellation metadata.
func (o *Order) MarkCancelled(reason string, actor Actor, at time.Time) error {
	if err := o.Transition(OrderStatusCancelled, at, fmt.Sprintf("cancelled by %s: %s", actor, reason)); err != nil {
		return err
	}
	id := actor.ID
	cancelledAt := at
	o.CancellationReason = reason
	o.CancelledBy = &id
	o.CancelledAt = &cancelledAt
	return nil
}

// Archived reports whether the order was soft-deleted.
func (o *Order) Archived() bool {
	return o.DeletedAt != nil
}

// CancelResult reports a committed cancellation. RefundErr carries the
// failure of the follow-up refund request, which never undoes the
// cancellation.
type CancelResult struct {
	Order     *Order
	Refund    *PaymentRefund
	RefundErr error
}
