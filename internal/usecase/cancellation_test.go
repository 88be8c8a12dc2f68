package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/test"
)

func TestCancelOrderPendingRestoresStock(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "10.00", 5)
	f.stock(2, "20.00", 5)
	f.addToCart(t, 1, 2)
	f.addToCart(t, 2, 3)
	order := f.placeOrder(t, "")

	result, err := f.cancellation.CancelOrder(context.Background(), order.ID, "  ordered the wrong size  ", buyer())
	require.NoError(t, err)
	require.Nil(t, result.Refund)
	require.NoError(t, result.RefundErr)

	cancelled := result.Order
	require.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	require.Equal(t, "ordered the wrong size", cancelled.CancellationReason)
	require.NotNil(t, cancelled.CancelledBy)
	require.Equal(t, buyerID, *cancelled.CancelledBy)
	require.NotNil(t, cancelled.CancelledAt)

	last, ok := cancelled.History.Last()
	require.True(t, ok)
	require.Equal(t, model.OrderStatusCancelled, last.Status)
	require.Equal(t, "cancelled by buyer:7: ordered the wrong size", last.Note)

	for _, id := range []int64{1, 2} {
		v := f.store.Variant(id)
		require.Equal(t, 5, v.StockQuantity)
		require.Zero(t, v.ReservedQuantity)
	}
	stored, _ := f.store.Order(order.ID)
	for _, item := range stored.Items {
		require.Equal(t, model.FulfillmentCancelled, item.Status)
	}
	require.Contains(t, f.notifier.Events(), model.EventOrderCancelled)
}

func TestCancelOrderValidation(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)
	ctx := context.Background()

	_, err := f.cancellation.CancelOrder(ctx, order.ID, "   too short  ", buyer())
	require.ErrorIs(t, err, domainErrors.ErrReasonTooShort)

	_, err = f.cancellation.CancelOrder(ctx, 999, test.RandomReason(MinCancellationReason), buyer())
	require.ErrorIs(t, err, domainErrors.ErrNotFound)

	stranger := model.Actor{ID: buyerID + 1, Role: model.ActorBuyer}
	_, err = f.cancellation.CancelOrder(ctx, order.ID, test.RandomReason(MinCancellationReason), stranger)
	require.ErrorIs(t, err, domainErrors.ErrNotFound)

	for _, next := range []model.OrderStatus{model.OrderStatusPacked, model.OrderStatusShipped} {
		_, err = f.states.Transition(ctx, order.ID, next, staff())
		require.NoError(t, err)
	}
	_, err = f.cancellation.CancelOrder(ctx, order.ID, test.RandomReason(MinCancellationReason), buyer())
	require.ErrorIs(t, err, domainErrors.ErrNotCancellable)
	require.Equal(t, 2, f.store.Variant(1).ReservedQuantity)

	_, err = f.states.Transition(ctx, order.ID, model.OrderStatusDelivered, staff())
	require.NoError(t, err)
	_, err = f.cancellation.CancelOrder(ctx, order.ID, test.RandomReason(MinCancellationReason), buyer())
	require.ErrorIs(t, err, domainErrors.ErrNotCancellable)
}

func TestCancelOrderTwiceIsNotCancellable(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "10.00", 5)
	f.addToCart(t, 1, 1)
	order := f.placeOrder(t, "")
	ctx := context.Background()

	_, err := f.cancellation.CancelOrder(ctx, order.ID, "found it cheaper elsewhere", buyer())
	require.NoError(t, err)
	_, err = f.cancellation.CancelOrder(ctx, order.ID, "found it cheaper elsewhere", buyer())
	require.ErrorIs(t, err, domainErrors.ErrNotCancellable)
	require.Equal(t, 5, f.store.Variant(1).StockQuantity)
}

func TestCancelPaidOrderRequestsRefund(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)

	result, err := f.cancellation.CancelOrder(context.Background(), order.ID, "delivery would be too slow", staff())
	require.NoError(t, err)
	require.NoError(t, result.RefundErr)
	require.NotNil(t, result.Refund)
	require.Equal(t, model.RefundPending, result.Refund.Status)
	require.True(t, result.Refund.Amount.Equal(order.Total))

	refunds := f.store.Refunds(order.ID)
	require.Len(t, refunds, 1)
	require.Equal(t, int64(100), refunds[0].RequestedBy)
	require.Equal(t, model.PaymentStatusRefunded, f.store.Payment(refunds[0].PaymentID).Status)
	require.Contains(t, f.notifier.Events(), model.EventRefundRequested)
}

func TestCancelPartiallyRefundedOrderRefundsRemainder(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)
	ctx := context.Background()

	first, err := f.refunds.Refund(ctx, order.ID, dec("10.00"), "one item damaged", staff())
	require.NoError(t, err)

	result, err := f.cancellation.CancelOrder(ctx, order.ID, "delivery would be too slow", staff())
	require.NoError(t, err)
	require.NoError(t, result.RefundErr)
	require.NotNil(t, result.Refund)
	require.Equal(t, "35.50", result.Refund.Amount.StringFixed(2))
	require.Equal(t, first.PaymentID, result.Refund.PaymentID)

	require.Len(t, f.store.Refunds(order.ID), 2)
	require.Equal(t, model.PaymentStatusRefunded, f.store.Payment(first.PaymentID).Status)
}

func TestCancelFullyRefundedOrderRequestsNothing(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)
	ctx := context.Background()

	_, err := f.refunds.Refund(ctx, order.ID, order.Total, "goodwill refund", staff())
	require.NoError(t, err)

	result, err := f.cancellation.CancelOrder(ctx, order.ID, "delivery would be too slow", staff())
	require.NoError(t, err)
	require.NoError(t, result.RefundErr)
	require.Nil(t, result.Refund)
	require.Len(t, f.store.Refunds(order.ID), 1)
}

func TestCancelPaidOrderRefundFailureKeepsCancellation(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)
	f.store.FailOn = map[string]error{"payments.create_refund": errors.New("ledger offline")}

	result, err := f.cancellation.CancelOrder(context.Background(), order.ID, "delivery would be too slow", staff())
	require.NoError(t, err)
	require.ErrorContains(t, result.RefundErr, "ledger offline")
	require.Nil(t, result.Refund)

	stored, _ := f.store.Order(order.ID)
	require.Equal(t, model.OrderStatusCancelled, stored.Status)
	require.Empty(t, f.store.Refunds(order.ID))
}

func TestCancelOrderReleaseFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)
	f.store.FailOn = map[string]error{"inventory.release": errors.New("lock timeout")}

	_, err := f.cancellation.CancelOrder(context.Background(), order.ID, "delivery would be too slow", staff())
	require.ErrorContains(t, err, "lock timeout")

	stored, _ := f.store.Order(order.ID)
	require.Equal(t, model.OrderStatusPaid, stored.Status)
	for _, item := range stored.Items {
		require.Equal(t, model.FulfillmentPending, item.Status)
	}
}

func TestCancelOrderRestoresReservationsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("cancel restores counters", prop.ForAll(
		func(stock, qty1, qty2 int) bool {
			f := newFixture(t)
			f.stock(1, "3.00", stock)
			f.stock(2, "4.00", stock)
			_ = f.carts.AddLine(context.Background(), buyerID, model.CartLine{VariantID: 1, Quantity: qty1})
			_ = f.carts.AddLine(context.Background(), buyerID, model.CartLine{VariantID: 2, Quantity: qty2})

			order, err := f.checkout.CreateOrder(context.Background(), model.CheckoutRequest{
				BuyerID: buyerID, ShippingAddressID: shippingID, BillingAddressID: billingID,
			})
			if err != nil {
				return errors.Is(err, domainErrors.ErrInsufficientStock) &&
					f.store.Variant(1).StockQuantity == stock && f.store.Variant(2).StockQuantity == stock
			}
			if _, err := f.cancellation.CancelOrder(context.Background(), order.ID, test.RandomReason(MinCancellationReason), buyer()); err != nil {
				return false
			}
			v1, v2 := f.store.Variant(1), f.store.Variant(2)
			return v1.StockQuantity == stock && v1.ReservedQuantity == 0 &&
				v2.StockQuantity == stock && v2.ReservedQuantity == 0
		},
		gen.IntRange(0, 20),
		gen.IntRange(1, 10),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}
