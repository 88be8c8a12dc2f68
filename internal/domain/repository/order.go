package repository

import (
	"context"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// NextNumber allocates the next date-sequenced order number for day.
	NextNumber(ctx context.Context, day time.Time) (string, error)
	Create(ctx context.Context, order *model.Order) error
	// GetForUpdate loads a live order and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error)
	CountByBuyer(ctx context.Context, buyerID int64) (int, error)
	Update(ctx context.Context, order *model.Order) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}

// OrderItemRepository describes persistence operations with order lines.
type OrderItemRepository interface {
	Create(ctx context.Context, item *model.OrderItem) error
	ListByOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	GetForUpdate(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error)
	Update(ctx context.Context, item *model.OrderItem) error
}
