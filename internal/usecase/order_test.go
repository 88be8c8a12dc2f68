package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestOrderGetVisibility(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)
	ctx := context.Background()

	got, err := f.orders.Get(ctx, order.ID, buyer())
	require.NoError(t, err)
	require.Equal(t, order.Number, got.Number)
	require.Len(t, got.Items, 2)

	_, err = f.orders.Get(ctx, order.ID, model.Actor{ID: 8, Role: model.ActorBuyer})
	require.ErrorIs(t, err, domainErrors.ErrNotFound)

	got, err = f.orders.Get(ctx, order.ID, staff())
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)

	_, err = f.orders.Get(ctx, 999, staff())
	require.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestOrderListByBuyer(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "3.00", 10)
	f.addToCart(t, 1, 1)
	first := f.placeOrder(t, "")
	f.addToCart(t, 1, 2)
	second := f.placeOrder(t, "")

	orders, err := f.orders.ListByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, second.ID, orders[0].ID)
	require.Equal(t, first.ID, orders[1].ID)

	orders, err = f.orders.ListByBuyer(context.Background(), 8)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestOrderArchive(t *testing.T) {
	f := newFixture(t)
	order := f.paidOrder(t)
	ctx := context.Background()

	err := f.orders.Archive(ctx, order.ID, buyer())
	require.ErrorIs(t, err, domainErrors.ErrNotArchivable)

	err = f.orders.Archive(ctx, order.ID, model.Actor{ID: 8, Role: model.ActorBuyer})
	require.ErrorIs(t, err, domainErrors.ErrNotFound)

	_, err = f.cancellation.CancelOrder(ctx, order.ID, "duplicate order by mistake", buyer())
	require.NoError(t, err)
	require.NoError(t, f.orders.Archive(ctx, order.ID, buyer()))

	_, err = f.orders.Get(ctx, order.ID, buyer())
	require.ErrorIs(t, err, domainErrors.ErrNotFound)
	orders, err := f.orders.ListByBuyer(ctx, buyerID)
	require.NoError(t, err)
	require.Empty(t, orders)

	err = f.orders.Archive(ctx, order.ID, buyer())
	require.ErrorIs(t, err, domainErrors.ErrNotFound)
}
