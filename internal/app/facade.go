package app

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/usecase"
)

// StorefrontFacade exposes the order engine to the HTTP layer.
type StorefrontFacade struct {
	tokens       pkgAuth.Strategy
	carts        *usecase.CartUseCase
	checkout     *usecase.CheckoutUseCase
	orders       *usecase.OrderUseCase
	states       *usecase.OrderStateMachine
	cancellation *usecase.CancellationUseCase
	fulfillment  *usecase.FulfillmentUseCase
	payments     *usecase.PaymentUseCase
	refunds      *usecase.RefundUseCase
}

// FacadeParams lists the use cases behind StorefrontFacade.
type FacadeParams struct {
	fx.In

	Tokens       pkgAuth.Strategy
	Carts        *usecase.CartUseCase
	Checkout     *usecase.CheckoutUseCase
	Orders       *usecase.OrderUseCase
	States       *usecase.OrderStateMachine
	Cancellation *usecase.CancellationUseCase
	Fulfillment  *usecase.FulfillmentUseCase
	Payments     *usecase.PaymentUseCase
	Refunds      *usecase.RefundUseCase
}

// NewStorefrontFacade constructs StorefrontFacade.
func NewStorefrontFacade(p FacadeParams) *StorefrontFacade {
	return &StorefrontFacade{
		tokens:       p.Tokens,
		carts:        p.Carts,
		checkout:     p.Checkout,
		orders:       p.Orders,
		states:       p.States,
		cancellation: p.Cancellation,
		fulfillment:  p.Fulfillment,
		payments:     p.Payments,
		refunds:      p.Refunds,
	}
}

func (f *StorefrontFacade) ParseToken(token string) (model.Actor, error) {
	return f.tokens.ParseToken(token)
}

func (f *StorefrontFacade) Cart(ctx context.Context, buyerID int64) (*model.Cart, error) {
	return f.carts.Cart(ctx, buyerID)
}

func (f *StorefrontFacade) AddCartLine(ctx context.Context, buyerID int64, line model.CartLine) error {
	return f.carts.AddLine(ctx, buyerID, line)
}

func (f *StorefrontFacade) CreateOrder(ctx context.Context, req model.CheckoutRequest) (*model.Order, error) {
	return f.checkout.CreateOrder(ctx, req)
}

func (f *StorefrontFacade) Order(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error) {
	return f.orders.Get(ctx, orderID, actor)
}

func (f *StorefrontFacade) Orders(ctx context.Context, buyerID int64) ([]model.Order, error) {
	return f.orders.ListByBuyer(ctx, buyerID)
}

func (f *StorefrontFacade) ArchiveOrder(ctx context.Context, orderID int64, actor model.Actor) error {
	return f.orders.Archive(ctx, orderID, actor)
}

func (f *StorefrontFacade) TransitionOrder(ctx context.Context, orderID int64, next model.OrderStatus, actor model.Actor) (*model.Order, error) {
	return f.states.Transition(ctx, orderID, next, actor)
}

func (f *StorefrontFacade) CancelOrder(ctx context.Context, orderID int64, reason string, actor model.Actor) (*model.CancelResult, error) {
	return f.cancellation.CancelOrder(ctx, orderID, reason, actor)
}

func (f *StorefrontFacade) ConfirmItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return f.fulfillment.ConfirmItem(ctx, orderID, itemID)
}

func (f *StorefrontFacade) PackItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return f.fulfillment.PackItem(ctx, orderID, itemID)
}

func (f *StorefrontFacade) ShipItem(ctx context.Context, orderID, itemID int64, trackingRef string) (*model.OrderItem, error) {
	return f.fulfillment.ShipItem(ctx, orderID, itemID, trackingRef)
}

func (f *StorefrontFacade) DeliverItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return f.fulfillment.DeliverItem(ctx, orderID, itemID)
}

func (f *StorefrontFacade) CancelItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return f.fulfillment.CancelItem(ctx, orderID, itemID)
}

func (f *StorefrontFacade) RecordPayment(ctx context.Context, orderID int64, result model.PaymentResult) (*model.Payment, error) {
	return f.payments.RecordPayment(ctx, orderID, result)
}

func (f *StorefrontFacade) Refund(ctx context.Context, orderID int64, amount decimal.Decimal, reason string, actor model.Actor) (*model.PaymentRefund, error) {
	return f.refunds.Refund(ctx, orderID, amount, reason, actor)
}

func (f *StorefrontFacade) UpdateRefundStatus(ctx context.Context, refundID int64, next model.RefundStatus) (*model.PaymentRefund, error) {
	return f.refunds.UpdateRefundStatus(ctx, refundID, next)
}
