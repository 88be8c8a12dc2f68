package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const syncNote = "derived from item fulfillment"

// OrderStateMachine applies order status transitions and keeps the order
// status in step with its items.
type OrderStateMachine struct {
	tx       repository.Transactor
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderStateMachine constructs OrderStateMachine.
func NewOrderStateMachine(tx repository.Transactor, notifier Notifier, logger *slog.Logger) *OrderStateMachine {
	return &OrderStateMachine{tx: tx, notifier: notifier, logger: logger, now: time.Now}
}

// Transition moves order to next. Cancellation carries a reason and stock
// release, so it goes through CancellationUseCase instead.
func (m *OrderStateMachine) Transition(ctx context.Context, orderID int64, next model.OrderStatus, actor model.Actor) (*model.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domainErrors.ErrInvalidTransition, next)
	}

	var (
		order *model.Order
		out   outbox
	)
	err := m.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		order, err = tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.Status.CheckTransition(next); err != nil {
			return err
		}
		if next == model.OrderStatusCancelled {
			return &domainErrors.TransitionError{From: string(order.Status), To: string(next), Err: domainErrors.ErrInvalidTransition}
		}
		if err := m.apply(order, next, fmt.Sprintf("set by %s", actor), &out); err != nil {
			return err
		}
		return tx.Orders().Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	out.flush(m.notifier, m.logger)
	return order, nil
}

// apply performs one transition on the in-memory order and queues the
// status notification.
func (m *OrderStateMachine) apply(order *model.Order, next model.OrderStatus, note string, out *outbox) error {
	at := m.now()
	if err := order.Transition(next, at, note); err != nil {
		return err
	}
	m.logger.Info("order status changed",
		slog.Int64("order_id", order.ID),
		slog.String("status", string(next)),
	)
	out.add(model.NewNotification(model.EventStatusChanged, order, note, at))
	return nil
}

// Sync derives the order status from its active items and walks the order
// through every intermediate transition. It reports whether order changed.
func (m *OrderStateMachine) Sync(order *model.Order, items []model.OrderItem, out *outbox) (bool, error) {
	changed := false
	for {
		next, ok := derivedStatus(order.Status, items)
		if !ok {
			return changed, nil
		}
		if err := m.apply(order, next, syncNote, out); err != nil {
			return changed, err
		}
		changed = true
	}
}

// derivedStatus returns the next order status implied by item progress.
// Cancelled items do not take part. When every item is cancelled the order
// is left alone.
func derivedStatus(current model.OrderStatus, items []model.OrderItem) (model.OrderStatus, bool) {
	active := 0
	anyShipped, allPacked, allDelivered := false, true, true
	for _, item := range items {
		if item.Status == model.FulfillmentCancelled {
			continue
		}
		active++
		if item.Status.AtLeast(model.FulfillmentShipped) {
			anyShipped = true
		}
		if !item.Status.AtLeast(model.FulfillmentPacked) {
			allPacked = false
		}
		if item.Status != model.FulfillmentDelivered {
			allDelivered = false
		}
	}
	if active == 0 {
		return "", false
	}

	switch current {
	case model.OrderStatusPaid:
		if anyShipped || allPacked {
			return model.OrderStatusPacked, true
		}
	case model.OrderStatusPacked:
		if anyShipped {
			return model.OrderStatusShipped, true
		}
	case model.OrderStatusShipped:
		if allDelivered {
			return model.OrderStatusDelivered, true
		}
	}
	return "", false
}
