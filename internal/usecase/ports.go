package usecase

import (
	"context"
	"log/slog"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CatalogProvider resolves current prices and display data for variants.
type CatalogProvider interface {
	Offers(ctx context.Context, variantIDs []int64) (map[int64]model.VariantOffer, error)
}

// CartProvider stores the buyer's pending cart lines.
type CartProvider interface {
	Cart(ctx context.Context, buyerID int64) (*model.Cart, error)
	AddLine(ctx context.Context, buyerID int64, line model.CartLine) error
	// RemoveLines subtracts checked-out lines, keeping anything added since.
	RemoveLines(ctx context.Context, buyerID int64, lines []model.CartLine) error
}

// Notifier accepts notifications without blocking. It reports false when
// the notification was dropped.
type Notifier interface {
	Enqueue(n model.Notification) bool
}

// outbox collects notifications produced inside a transaction so they are
// dispatched only after commit.
type outbox struct {
	pending []model.Notification
}

func (o *outbox) add(n model.Notification) {
	o.pending = append(o.pending, n)
}

func (o *outbox) flush(notifier Notifier, logger *slog.Logger) {
	for _, n := range o.pending {
		if !notifier.Enqueue(n) {
			logger.Warn("notification not dispatched",
				slog.String("event", string(n.Event)),
				slog.Int64("order_id", n.OrderID),
			)
		}
	}
	o.pending = nil
}
