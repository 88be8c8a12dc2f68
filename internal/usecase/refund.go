package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// RefundUseCase records refund requests against captured payments. The
// gateway call is made downstream from the stored refund rows.
type RefundUseCase struct {
	tx       repository.Transactor
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewRefundUseCase constructs RefundUseCase.
func NewRefundUseCase(tx repository.Transactor, notifier Notifier, logger *slog.Logger) *RefundUseCase {
	return &RefundUseCase{tx: tx, notifier: notifier, logger: logger, now: time.Now}
}

// Refund creates a pending refund of amount for order. Cumulative refunds
// never exceed the order total.
func (u *RefundUseCase) Refund(ctx context.Context, orderID int64, amount decimal.Decimal, reason string, actor model.Actor) (*model.PaymentRefund, error) {
	amount = model.RoundMoney(amount)
	if !amount.IsPositive() {
		return nil, domainErrors.ErrInvalidAmount
	}
	return u.request(ctx, orderID, reason, actor, func(order *model.Order, refunded decimal.Decimal) (decimal.Decimal, error) {
		if amount.GreaterThan(order.Total) {
			return decimal.Zero, fmt.Errorf("%w: %s exceeds order total %s", domainErrors.ErrInvalidAmount,
				amount.StringFixed(model.MoneyPlaces), order.Total.StringFixed(model.MoneyPlaces))
		}
		if cumulative := refunded.Add(amount); cumulative.GreaterThan(order.Total) {
			return decimal.Zero, fmt.Errorf("%w: refunds would reach %s of %s", domainErrors.ErrInvalidAmount,
				cumulative.StringFixed(model.MoneyPlaces), order.Total.StringFixed(model.MoneyPlaces))
		}
		return amount, nil
	})
}

// RefundRemainder requests whatever part of the order total has not been
// refunded yet. It returns a nil refund when nothing is left.
func (u *RefundUseCase) RefundRemainder(ctx context.Context, orderID int64, reason string, actor model.Actor) (*model.PaymentRefund, error) {
	return u.request(ctx, orderID, reason, actor, func(order *model.Order, refunded decimal.Decimal) (decimal.Decimal, error) {
		return order.Total.Sub(refunded), nil
	})
}

// refundAmount decides the amount to refund given the locked order and the
// amount already counted against its payment. A non-positive amount means
// there is nothing to request.
type refundAmount func(order *model.Order, refunded decimal.Decimal) (decimal.Decimal, error)

func (u *RefundUseCase) request(ctx context.Context, orderID int64, reason string, actor model.Actor, decide refundAmount) (*model.PaymentRefund, error) {
	var (
		refund *model.PaymentRefund
		out    outbox
	)
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		payment, err := tx.Payments().LatestRefundable(ctx, orderID)
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrNoPaymentFound
		}
		if err != nil {
			return err
		}

		refunded, err := tx.Payments().RefundedTotal(ctx, payment.ID)
		if err != nil {
			return err
		}
		amount, err := decide(order, refunded)
		if err != nil {
			return err
		}
		amount = model.RoundMoney(amount)
		if !amount.IsPositive() {
			return nil
		}
		cumulative := refunded.Add(amount)

		now := u.now()
		refund = &model.PaymentRefund{
			Reference:   uuid.New(),
			PaymentID:   payment.ID,
			OrderID:     orderID,
			Amount:      amount,
			Currency:    payment.Currency,
			Reason:      strings.TrimSpace(reason),
			Status:      model.RefundPending,
			RequestedBy: actor.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Payments().CreateRefund(ctx, refund); err != nil {
			return err
		}

		status := model.PaymentStatusPartiallyRefunded
		if cumulative.GreaterThanOrEqual(payment.Amount) {
			status = model.PaymentStatusRefunded
		}
		if err := tx.Payments().UpdateStatus(ctx, payment.ID, status); err != nil {
			return err
		}

		out.add(model.NewNotification(model.EventRefundRequested, order, refund.Reference.String(), now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, nil
	}

	u.logger.Info("refund requested",
		slog.Int64("order_id", orderID),
		slog.String("reference", refund.Reference.String()),
		slog.String("amount", refund.Amount.StringFixed(model.MoneyPlaces)),
		slog.String("actor", actor.String()),
	)
	out.flush(u.notifier, u.logger)
	return refund, nil
}

// UpdateRefundStatus advances a refund reported on by the payment subsystem.
// A refund that ends failed or cancelled no longer counts against the
// payment, whose status is recomputed.
func (u *RefundUseCase) UpdateRefundStatus(ctx context.Context, refundID int64, next model.RefundStatus) (*model.PaymentRefund, error) {
	var refund *model.PaymentRefund
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		refund, err = tx.Payments().GetRefundForUpdate(ctx, refundID)
		if err != nil {
			return err
		}
		if err := refund.Status.CheckTransition(next); err != nil {
			return err
		}

		refund.Status = next
		refund.UpdatedAt = u.now()
		if err := tx.Payments().UpdateRefundStatus(ctx, refund); err != nil {
			return err
		}
		if next.Counts() {
			return nil
		}
		return u.restorePaymentStatus(ctx, tx, refund)
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("refund status changed",
		slog.Int64("refund_id", refundID),
		slog.String("status", string(next)),
	)
	return refund, nil
}

func (u *RefundUseCase) restorePaymentStatus(ctx context.Context, tx repository.Tx, refund *model.PaymentRefund) error {
	payment, err := tx.Payments().LatestRefundable(ctx, refund.OrderID)
	if err != nil {
		return err
	}
	if payment.ID != refund.PaymentID {
		return nil
	}

	refunded, err := tx.Payments().RefundedTotal(ctx, payment.ID)
	if err != nil {
		return err
	}
	status := model.PaymentStatusComplete
	switch {
	case refunded.GreaterThanOrEqual(payment.Amount):
		status = model.PaymentStatusRefunded
	case refunded.IsPositive():
		status = model.PaymentStatusPartiallyRefunded
	}
	if status == payment.Status {
		return nil
	}
	return tx.Payments().UpdateStatus(ctx, payment.ID, status)
}
