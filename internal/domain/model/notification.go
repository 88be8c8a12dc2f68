package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names an outbound notification.
type EventType string

const (
	EventOrderConfirmed  EventType = "order.confirmed"
	EventStatusChanged   EventType = "order.status_changed"
	EventOrderCancelled  EventType = "order.cancelled"
	EventItemShipped     EventType = "order.item_shipped"
	EventRefundRequested EventType = "order.refund_requested"
)

// Notification is the payload handed to the notification channel.
type Notification struct {
	ID          uuid.UUID       `json:"id"`
	Event       EventType       `json:"event"`
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	BuyerID     int64           `json:"buyer_id"`
	Status      OrderStatus     `json:"status"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	Note        string          `json:"note,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// NewNotification builds a notification describing order's current state.
func NewNotification(event EventType, order *Order, note string, at time.Time) Notification {
	return Notification{
		ID:          uuid.New(),
		Event:       event,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		BuyerID:     order.BuyerID,
		Status:      order.Status,
		Total:       order.Total,
		Currency:    order.Currency,
		Note:        note,
		OccurredAt:  at.UTC(),
	}
}
