package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// CartFacade exposes the buyer's cart.
type CartFacade interface {
	Cart(ctx context.Context, buyerID int64) (*model.Cart, error)
	AddCartLine(ctx context.Context, buyerID int64, line model.CartLine) error
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, req model.CheckoutRequest) (*model.Order, error)
	Order(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error)
	Orders(ctx context.Context, buyerID int64) ([]model.Order, error)
	ArchiveOrder(ctx context.Context, orderID int64, actor model.Actor) error
	TransitionOrder(ctx context.Context, orderID int64, next model.OrderStatus, actor model.Actor) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID int64, reason string, actor model.Actor) (*model.CancelResult, error)
}

// FulfillmentFacade moves order items through fulfillment.
type FulfillmentFacade interface {
	ConfirmItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error)
	PackItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error)
	ShipItem(ctx context.Context, orderID, itemID int64, trackingRef string) (*model.OrderItem, error)
	DeliverItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error)
	CancelItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error)
}

// PaymentFacade records payment results and refunds.
type PaymentFacade interface {
	RecordPayment(ctx context.Context, orderID int64, result model.PaymentResult) (*model.Payment, error)
	Refund(ctx context.Context, orderID int64, amount decimal.Decimal, reason string, actor model.Actor) (*model.PaymentRefund, error)
	UpdateRefundStatus(ctx context.Context, refundID int64, next model.RefundStatus) (*model.PaymentRefund, error)
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	middleware.TokenParser
	CartFacade
	OrderFacade
	FulfillmentFacade
	PaymentFacade
}
