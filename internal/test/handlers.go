package test

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CartFacadeStub simulates cart operations.
type CartFacadeStub struct {
	CartFn    func(context.Context, int64) (*model.Cart, error)
	AddLineFn func(context.Context, int64, model.CartLine) error
}

// Cart returns an empty cart unless overridden.
func (s CartFacadeStub) Cart(ctx context.Context, buyerID int64) (*model.Cart, error) {
	if s.CartFn != nil {
		return s.CartFn(ctx, buyerID)
	}
	return &model.Cart{BuyerID: buyerID}, nil
}

// AddCartLine accepts every line unless overridden.
func (s CartFacadeStub) AddCartLine(ctx context.Context, buyerID int64, line model.CartLine) error {
	if s.AddLineFn != nil {
		return s.AddLineFn(ctx, buyerID, line)
	}
	return nil
}

// OrderFacadeStub simulates order operations.
type OrderFacadeStub struct {
	CreateFn     func(context.Context, model.CheckoutRequest) (*model.Order, error)
	OrderFn      func(context.Context, int64, model.Actor) (*model.Order, error)
	OrdersFn     func(context.Context, int64) ([]model.Order, error)
	ArchiveFn    func(context.Context, int64, model.Actor) error
	TransitionFn func(context.Context, int64, model.OrderStatus, model.Actor) (*model.Order, error)
	CancelFn     func(context.Context, int64, string, model.Actor) (*model.CancelResult, error)
}

// CreateOrder returns a pending order for req unless overridden.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, req model.CheckoutRequest) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return &model.Order{ID: 1, BuyerID: req.BuyerID, Status: model.OrderStatusPending}, nil
}

// Order returns a pending order unless overridden.
func (s OrderFacadeStub) Order(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID, actor)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusPending}, nil
}

// Orders returns no orders unless overridden.
func (s OrderFacadeStub) Orders(ctx context.Context, buyerID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, buyerID)
	}
	return nil, nil
}

// ArchiveOrder succeeds unless overridden.
func (s OrderFacadeStub) ArchiveOrder(ctx context.Context, orderID int64, actor model.Actor) error {
	if s.ArchiveFn != nil {
		return s.ArchiveFn(ctx, orderID, actor)
	}
	return nil
}

// TransitionOrder returns the order in next unless overridden.
func (s OrderFacadeStub) TransitionOrder(ctx context.Context, orderID int64, next model.OrderStatus, actor model.Actor) (*model.Order, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, orderID, next, actor)
	}
	return &model.Order{ID: orderID, Status: next}, nil
}

// CancelOrder returns a cancelled order unless overridden.
func (s OrderFacadeStub) CancelOrder(ctx context.Context, orderID int64, reason string, actor model.Actor) (*model.CancelResult, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID, reason, actor)
	}
	return &model.CancelResult{Order: &model.Order{ID: orderID, Status: model.OrderStatusCancelled, CancellationReason: reason}}, nil
}

// FulfillmentFacadeStub simulates item transitions. ItemFn receives the
// requested target status.
type FulfillmentFacadeStub struct {
	ItemFn func(ctx context.Context, orderID, itemID int64, next model.FulfillmentStatus, trackingRef string) (*model.OrderItem, error)
}

func (s FulfillmentFacadeStub) item(ctx context.Context, orderID, itemID int64, next model.FulfillmentStatus, trackingRef string) (*model.OrderItem, error) {
	if s.ItemFn != nil {
		return s.ItemFn(ctx, orderID, itemID, next, trackingRef)
	}
	return &model.OrderItem{ID: itemID, OrderID: orderID, Status: next, TrackingRef: trackingRef}, nil
}

// ConfirmItem simulates item confirmation.
func (s FulfillmentFacadeStub) ConfirmItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return s.item(ctx, orderID, itemID, model.FulfillmentConfirmed, "")
}

// PackItem simulates packing.
func (s FulfillmentFacadeStub) PackItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return s.item(ctx, orderID, itemID, model.FulfillmentPacked, "")
}

// ShipItem simulates shipping.
func (s FulfillmentFacadeStub) ShipItem(ctx context.Context, orderID, itemID int64, trackingRef string) (*model.OrderItem, error) {
	return s.item(ctx, orderID, itemID, model.FulfillmentShipped, trackingRef)
}

// DeliverItem simulates delivery.
func (s FulfillmentFacadeStub) DeliverItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return s.item(ctx, orderID, itemID, model.FulfillmentDelivered, "")
}

// CancelItem simulates item cancellation.
func (s FulfillmentFacadeStub) CancelItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return s.item(ctx, orderID, itemID, model.FulfillmentCancelled, "")
}

// PaymentFacadeStub simulates payment and refund operations.
type PaymentFacadeStub struct {
	RecordFn       func(context.Context, int64, model.PaymentResult) (*model.Payment, error)
	RefundFn       func(context.Context, int64, decimal.Decimal, string, model.Actor) (*model.PaymentRefund, error)
	RefundStatusFn func(context.Context, int64, model.RefundStatus) (*model.PaymentRefund, error)
}

// RecordPayment echoes result unless overridden.
func (s PaymentFacadeStub) RecordPayment(ctx context.Context, orderID int64, result model.PaymentResult) (*model.Payment, error) {
	if s.RecordFn != nil {
		return s.RecordFn(ctx, orderID, result)
	}
	return &model.Payment{ID: 1, OrderID: orderID, Reference: result.Reference, Amount: result.Amount, Status: result.Status}, nil
}

// Refund returns a pending refund unless overridden.
func (s PaymentFacadeStub) Refund(ctx context.Context, orderID int64, amount decimal.Decimal, reason string, actor model.Actor) (*model.PaymentRefund, error) {
	if s.RefundFn != nil {
		return s.RefundFn(ctx, orderID, amount, reason, actor)
	}
	return &model.PaymentRefund{ID: 1, OrderID: orderID, Amount: amount, Reason: reason, Status: model.RefundPending, RequestedBy: actor.ID}, nil
}

// UpdateRefundStatus returns the refund in next unless overridden.
func (s PaymentFacadeStub) UpdateRefundStatus(ctx context.Context, refundID int64, next model.RefundStatus) (*model.PaymentRefund, error) {
	if s.RefundStatusFn != nil {
		return s.RefundStatusFn(ctx, refundID, next)
	}
	return &model.PaymentRefund{ID: refundID, Status: next}, nil
}

// StorefrontFacadeStub aggregates facade dependencies for HTTP layer tests.
type StorefrontFacadeStub struct {
	TokenParserStub
	CartFacadeStub
	OrderFacadeStub
	FulfillmentFacadeStub
	PaymentFacadeStub
}
