package repository

import "context"

// Tx groups repositories bound to a single database transaction.
type Tx interface {
	Orders() OrderRepository
	Items() OrderItemRepository
	Inventory() InventoryRepository
	Coupons() CouponRepository
	Payments() PaymentRepository
	Users() UserRepository
}

// Transactor runs fn inside a transaction, committing when fn returns nil
// and rolling back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
