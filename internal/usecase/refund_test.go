package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestRefundValidation(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)
	ctx := context.Background()

	for _, amount := range []string{"0", "-5.00", "0.001"} {
		_, err := f.refunds.Refund(ctx, order.ID, dec(amount), "damaged", staff())
		require.ErrorIs(t, err, domainErrors.ErrInvalidAmount, amount)
	}

	_, err := f.refunds.Refund(ctx, order.ID, order.Total.Add(decimal.NewFromInt(1)), "damaged", staff())
	require.ErrorIs(t, err, domainErrors.ErrInvalidAmount)

	_, err = f.refunds.Refund(ctx, 999, dec("1.00"), "damaged", staff())
	require.ErrorIs(t, err, domainErrors.ErrNotFound)
	require.Empty(t, f.store.Refunds(order.ID))
}

func TestRefundRequiresCapturedPayment(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "10.00", 5)
	f.addToCart(t, 1, 1)
	order := f.placeOrder(t, "")

	_, err := f.refunds.Refund(context.Background(), order.ID, dec("5.00"), "damaged", staff())
	require.ErrorIs(t, err, domainErrors.ErrNoPaymentFound)

	_, err = f.payments.RecordPayment(context.Background(), order.ID, model.PaymentResult{
		Reference: "pay-failed", Amount: order.Total, Status: model.PaymentStatusFailed,
	})
	require.NoError(t, err)
	_, err = f.refunds.Refund(context.Background(), order.ID, dec("5.00"), "damaged", staff())
	require.ErrorIs(t, err, domainErrors.ErrNoPaymentFound)
}

func TestRefundPartialThenFull(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)
	ctx := context.Background()
	require.Equal(t, "45.50", order.Total.StringFixed(2))

	first, err := f.refunds.Refund(ctx, order.ID, dec("10.00"), "  one item damaged ", staff())
	require.NoError(t, err)
	require.Equal(t, model.RefundPending, first.Status)
	require.Equal(t, "one item damaged", first.Reason)
	require.Equal(t, "USD", first.Currency)
	require.Equal(t, model.PaymentStatusPartiallyRefunded, f.store.Payment(first.PaymentID).Status)

	second, err := f.refunds.Refund(ctx, order.ID, dec("35.50"), "rest of the order", staff())
	require.NoError(t, err)
	require.NotEqual(t, first.Reference, second.Reference)
	require.Equal(t, first.PaymentID, second.PaymentID)
	require.Equal(t, model.PaymentStatusRefunded, f.store.Payment(first.PaymentID).Status)

	_, err = f.refunds.Refund(ctx, order.ID, dec("0.01"), "one cent too many", staff())
	require.ErrorIs(t, err, domainErrors.ErrInvalidAmount)
	require.Len(t, f.store.Refunds(order.ID), 2)

	events := f.notifier.Events()
	require.Equal(t, model.EventRefundRequested, events[len(events)-1])
}

func TestUpdateRefundStatus(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)
	ctx := context.Background()

	refund, err := f.refunds.Refund(ctx, order.ID, dec("10.00"), "damaged", staff())
	require.NoError(t, err)

	_, err = f.refunds.UpdateRefundStatus(ctx, refund.ID, model.RefundCompleted)
	require.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
	_, err = f.refunds.UpdateRefundStatus(ctx, refund.ID, model.RefundPending)
	require.ErrorIs(t, err, domainErrors.ErrAlreadyInState)

	updated, err := f.refunds.UpdateRefundStatus(ctx, refund.ID, model.RefundProcessing)
	require.NoError(t, err)
	require.Equal(t, model.RefundProcessing, updated.Status)
	require.Equal(t, model.PaymentStatusPartiallyRefunded, f.store.Payment(refund.PaymentID).Status)

	updated, err = f.refunds.UpdateRefundStatus(ctx, refund.ID, model.RefundFailed)
	require.NoError(t, err)
	require.Equal(t, model.RefundFailed, updated.Status)
	require.Equal(t, model.PaymentStatusComplete, f.store.Payment(refund.PaymentID).Status)

	_, err = f.refunds.UpdateRefundStatus(ctx, refund.ID, model.RefundProcessing)
	require.ErrorIs(t, err, domainErrors.ErrInvalidTransition)

	_, err = f.refunds.UpdateRefundStatus(ctx, 999, model.RefundProcessing)
	require.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestCancelledRefundFreesRefundableAmount(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)
	ctx := context.Background()

	full, err := f.refunds.Refund(ctx, order.ID, order.Total, "wrong address", staff())
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusRefunded, f.store.Payment(full.PaymentID).Status)

	_, err = f.refunds.UpdateRefundStatus(ctx, full.ID, model.RefundCancelled)
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusComplete, f.store.Payment(full.PaymentID).Status)

	_, err = f.refunds.Refund(ctx, order.ID, dec("20.00"), "partial after all", staff())
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusPartiallyRefunded, f.store.Payment(full.PaymentID).Status)
}
