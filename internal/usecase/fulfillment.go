package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// FulfillmentUseCase drives per-item fulfillment transitions.
type FulfillmentUseCase struct {
	tx        repository.Transactor
	inventory *InventoryUseCase
	states    *OrderStateMachine
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewFulfillmentUseCase constructs FulfillmentUseCase.
func NewFulfillmentUseCase(
	tx repository.Transactor,
	inventory *InventoryUseCase,
	states *OrderStateMachine,
	notifier Notifier,
	logger *slog.Logger,
) *FulfillmentUseCase {
	return &FulfillmentUseCase{
		tx:        tx,
		inventory: inventory,
		states:    states,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// ConfirmItem confirms item while its order is pending or paid.
func (u *FulfillmentUseCase) ConfirmItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return u.run(ctx, orderID, itemID, model.FulfillmentConfirmed, func(order *model.Order, _ *model.OrderItem) error {
		if order.Status != model.OrderStatusPending && order.Status != model.OrderStatusPaid {
			return &domainErrors.TransitionError{
				From: string(order.Status),
				To:   string(model.FulfillmentConfirmed),
				Err:  domainErrors.ErrInvalidTransition,
			}
		}
		return nil
	}, nil)
}

// PackItem marks a confirmed item as packed.
func (u *FulfillmentUseCase) PackItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return u.run(ctx, orderID, itemID, model.FulfillmentPacked, nil, nil)
}

// ShipItem marks item shipped under trackingRef. Only items of a paid order
// leave the warehouse.
func (u *FulfillmentUseCase) ShipItem(ctx context.Context, orderID, itemID int64, trackingRef string) (*model.OrderItem, error) {
	trackingRef = strings.TrimSpace(trackingRef)
	if trackingRef == "" {
		return nil, domainErrors.ErrTrackingRequired
	}
	return u.run(ctx, orderID, itemID, model.FulfillmentShipped, func(order *model.Order, item *model.OrderItem) error {
		switch order.Status {
		case model.OrderStatusPaid, model.OrderStatusPacked, model.OrderStatusShipped:
		default:
			return &domainErrors.TransitionError{
				From: string(order.Status),
				To:   string(model.FulfillmentShipped),
				Err:  domainErrors.ErrInvalidTransition,
			}
		}
		item.TrackingRef = trackingRef
		return nil
	}, nil)
}

// DeliverItem marks a shipped item as delivered.
func (u *FulfillmentUseCase) DeliverItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return u.run(ctx, orderID, itemID, model.FulfillmentDelivered, nil, nil)
}

// CancelItem releases the item's reservation and cancels the item. The
// order itself is not cancelled.
func (u *FulfillmentUseCase) CancelItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	return u.run(ctx, orderID, itemID, model.FulfillmentCancelled, nil,
		func(ctx context.Context, tx repository.Tx, item *model.OrderItem) error {
			_, err := u.inventory.Release(ctx, tx, item.VariantID, item.Quantity)
			return err
		})
}

func (u *FulfillmentUseCase) run(
	ctx context.Context,
	orderID, itemID int64,
	next model.FulfillmentStatus,
	guard func(order *model.Order, item *model.OrderItem) error,
	effect func(ctx context.Context, tx repository.Tx, item *model.OrderItem) error,
) (*model.OrderItem, error) {
	var (
		item *model.OrderItem
		out  outbox
	)
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == model.OrderStatusCancelled {
			return domainErrors.ErrOrderCancelled
		}

		item, err = tx.Items().GetForUpdate(ctx, orderID, itemID)
		if err != nil {
			return err
		}
		if err := item.Status.CheckTransition(next); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(order, item); err != nil {
				return err
			}
		}
		if effect != nil {
			if err := effect(ctx, tx, item); err != nil {
				return err
			}
		}

		if err := item.Transition(next, u.now()); err != nil {
			return err
		}
		if err := tx.Items().Update(ctx, item); err != nil {
			return err
		}
		if next == model.FulfillmentShipped {
			out.add(model.NewNotification(model.EventItemShipped, order, item.TrackingRef, u.now()))
		}

		items, err := tx.Items().ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		changed, err := u.states.Sync(order, items, &out)
		if err != nil {
			return err
		}
		if changed {
			return tx.Orders().Update(ctx, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("order item status changed",
		slog.Int64("order_id", orderID),
		slog.Int64("item_id", itemID),
		slog.String("status", string(next)),
	)
	out.flush(u.notifier, u.logger)
	return item, nil
}
