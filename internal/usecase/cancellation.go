package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// MinCancellationReason is the minimum length of a trimmed cancellation reason.
const MinCancellationReason = 10

// CancellationUseCase cancels orders and returns their stock.
type CancellationUseCase struct {
	tx        repository.Transactor
	inventory *InventoryUseCase
	refunds   *RefundUseCase
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewCancellationUseCase constructs CancellationUseCase.
func NewCancellationUseCase(
	tx repository.Transactor,
	inventory *InventoryUseCase,
	refunds *RefundUseCase,
	notifier Notifier,
	logger *slog.Logger,
) *CancellationUseCase {
	return &CancellationUseCase{
		tx:        tx,
		inventory: inventory,
		refunds:   refunds,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// CancelOrder cancels a pending or paid order on behalf of actor.
func (u *CancellationUseCase) CancelOrder(ctx context.Context, orderID int64, reason string, actor model.Actor) (*model.CancelResult, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < MinCancellationReason {
		return nil, domainErrors.ErrReasonTooShort
	}

	var (
		order *model.Order
		out   outbox
	)
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		order, err = tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !visibleTo(order, actor) {
			return domainErrors.ErrNotFound
		}
		if !order.Status.Cancellable() {
			return domainErrors.ErrNotCancellable
		}

		items, err := tx.Items().ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		now := u.now()
		for i := range items {
			item := &items[i]
			if item.Status == model.FulfillmentCancelled {
				continue
			}
			if _, err := u.inventory.Release(ctx, tx, item.VariantID, item.Quantity); err != nil {
				return err
			}
			if err := item.Transition(model.FulfillmentCancelled, now); err != nil {
				return err
			}
			if err := tx.Items().Update(ctx, item); err != nil {
				return err
			}
		}
		order.Items = items

		if err := order.MarkCancelled(reason, actor, now); err != nil {
			return err
		}
		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}

		out.add(model.NewNotification(model.EventOrderCancelled, order, reason, now))
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("order cancelled",
		slog.Int64("order_id", order.ID),
		slog.String("actor", actor.String()),
	)
	out.flush(u.notifier, u.logger)

	result := &model.CancelResult{Order: order}
	if order.PaymentStatus == model.PaymentStatusComplete && order.Total.IsPositive() {
		result.Refund, result.RefundErr = u.refunds.RefundRemainder(ctx, order.ID, "order cancelled: "+reason, actor)
		switch {
		case errors.Is(result.RefundErr, domainErrors.ErrNoPaymentFound):
			result.RefundErr = nil
		case result.RefundErr != nil:
			u.logger.Error("refund after cancellation failed",
				slog.Int64("order_id", order.ID),
				slog.String("error", result.RefundErr.Error()),
			)
		}
	}
	return result, nil
}
