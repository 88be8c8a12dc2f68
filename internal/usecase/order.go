package usecase

import (
	"context"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// OrderUseCase serves order reads and archival.
type OrderUseCase struct {
	tx     repository.Transactor
	logger *slog.Logger
	now    func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(tx repository.Transactor, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{tx: tx, logger: logger, now: time.Now}
}

// Get returns order with its items. Buyers only see their own orders.
func (u *OrderUseCase) Get(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error) {
	var order *model.Order
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		order, err = tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !visibleTo(order, actor) {
			return domainErrors.ErrNotFound
		}
		order.Items, err = tx.Items().ListByOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListByBuyer returns buyer's orders, newest first, without items.
func (u *OrderUseCase) ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	var orders []model.Order
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		orders, err = tx.Orders().ListByBuyer(ctx, buyerID)
		return err
	})
	return orders, err
}

// Archive soft-deletes a delivered or cancelled order.
func (u *OrderUseCase) Archive(ctx context.Context, orderID int64, actor model.Actor) error {
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !visibleTo(order, actor) {
			return domainErrors.ErrNotFound
		}
		if !order.Status.Terminal() {
			return domainErrors.ErrNotArchivable
		}
		return tx.Orders().SoftDelete(ctx, orderID, u.now())
	})
	if err != nil {
		return err
	}

	u.logger.Info("order archived",
		slog.Int64("order_id", orderID),
		slog.String("actor", actor.String()),
	)
	return nil
}

func visibleTo(order *model.Order, actor model.Actor) bool {
	return actor.Role != model.ActorBuyer || order.BuyerID == actor.ID
}
