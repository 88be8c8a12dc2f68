package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// PaymentUseCase records payment results against orders.
type PaymentUseCase struct {
	tx       repository.Transactor
	states   *OrderStateMachine
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(tx repository.Transactor, states *OrderStateMachine, notifier Notifier, logger *slog.Logger) *PaymentUseCase {
	return &PaymentUseCase{tx: tx, states: states, notifier: notifier, logger: logger, now: time.Now}
}

// RecordPayment stores result for order. A complete payment marks the order
// paid when it is still pending.
func (u *PaymentUseCase) RecordPayment(ctx context.Context, orderID int64, result model.PaymentResult) (*model.Payment, error) {
	result.Reference = strings.TrimSpace(result.Reference)
	result.Amount = model.RoundMoney(result.Amount)
	if result.Reference == "" || !result.Amount.IsPositive() {
		return nil, domainErrors.ErrInvalidAmount
	}
	switch result.Status {
	case model.PaymentStatusPending, model.PaymentStatusComplete, model.PaymentStatusFailed:
	default:
		return nil, fmt.Errorf("%w: payment status %q", domainErrors.ErrInvalidTransition, result.Status)
	}

	var (
		payment *model.Payment
		out     outbox
	)
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == model.OrderStatusCancelled {
			return domainErrors.ErrOrderCancelled
		}

		now := u.now()
		payment = &model.Payment{
			OrderID:   orderID,
			Reference: result.Reference,
			Amount:    result.Amount,
			Currency:  order.Currency,
			Status:    result.Status,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return err
		}

		switch result.Status {
		case model.PaymentStatusComplete:
			order.PaymentStatus = model.PaymentStatusComplete
			order.UpdatedAt = now
			if order.Status == model.OrderStatusPending {
				if err := u.states.apply(order, model.OrderStatusPaid, "payment "+payment.Reference+" captured", &out); err != nil {
					return err
				}
			}
		case model.PaymentStatusFailed:
			if order.PaymentStatus != model.PaymentStatusPending {
				return nil
			}
			order.PaymentStatus = model.PaymentStatusFailed
			order.UpdatedAt = now
		default:
			return nil
		}
		return tx.Orders().Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("payment recorded",
		slog.Int64("order_id", orderID),
		slog.String("reference", payment.Reference),
		slog.String("status", string(payment.Status)),
	)
	out.flush(u.notifier, u.logger)
	return payment, nil
}
