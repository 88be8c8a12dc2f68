package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/test"
)

const (
	buyerID    int64 = 7
	shippingID int64 = 11
	billingID  int64 = 12
)

type fixture struct {
	store    *test.MemoryStore
	catalog  *test.CatalogStub
	carts    *test.CartStub
	notifier *test.NotifierStub
	now      time.Time

	inventory    *InventoryUseCase
	states       *OrderStateMachine
	checkout     *CheckoutUseCase
	fulfillment  *FulfillmentUseCase
	refunds      *RefundUseCase
	cancellation *CancellationUseCase
	payments     *PaymentUseCase
	orders       *OrderUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	f := &fixture{
		store:    test.NewMemoryStore(),
		catalog:  test.NewCatalogStub(),
		carts:    test.NewCartStub(),
		notifier: &test.NotifierStub{},
		now:      time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	cfg := &config.Config{Currency: "USD", ReturnWindow: 30 * 24 * time.Hour}

	f.inventory = NewInventoryUseCase(logger)
	f.states = NewOrderStateMachine(f.store, f.notifier, logger)
	f.states.now = clock
	f.checkout = NewCheckoutUseCase(CheckoutParams{
		Tx:        f.store,
		Catalog:   f.catalog,
		Carts:     f.carts,
		Discounts: NewDiscountEngine(),
		Inventory: f.inventory,
		Notifier:  f.notifier,
		Config:    cfg,
		Logger:    logger,
	})
	f.checkout.now = clock
	f.fulfillment = NewFulfillmentUseCase(f.store, f.inventory, f.states, f.notifier, logger)
	f.fulfillment.now = clock
	f.refunds = NewRefundUseCase(f.store, f.notifier, logger)
	f.refunds.now = clock
	f.cancellation = NewCancellationUseCase(f.store, f.inventory, f.refunds, f.notifier, logger)
	f.cancellation.now = clock
	f.payments = NewPaymentUseCase(f.store, f.states, f.notifier, logger)
	f.payments.now = clock
	f.orders = NewOrderUseCase(f.store, logger)
	f.orders.now = clock

	f.store.SeedBuyer(buyerID, f.now.Add(-24*time.Hour))
	return f
}

// stock registers a variant priced at price with the given stock.
func (f *fixture) stock(variantID int64, price string, stock int) {
	f.catalog.Known[variantID] = test.Offer(variantID, price)
	f.store.SeedVariant(variantID, stock, 0, 2)
}

func (f *fixture) addToCart(t *testing.T, variantID int64, qty int) {
	t.Helper()
	require.NoError(t, f.carts.AddLine(context.Background(), buyerID, model.CartLine{VariantID: variantID, Quantity: qty}))
}

func (f *fixture) placeOrder(t *testing.T, coupon string) *model.Order {
	t.Helper()
	order, err := f.checkout.CreateOrder(context.Background(), model.CheckoutRequest{
		BuyerID:           buyerID,
		ShippingAddressID: shippingID,
		BillingAddressID:  billingID,
		CouponCode:        coupon,
	})
	require.NoError(t, err)
	return order
}

// paidOrder places an order for two units of variant 1 and one of variant 2
// and records a complete payment for it.
func (f *fixture) paidOrder(t *testing.T) *model.Order {
	t.Helper()
	f.stock(1, "20.00", 10)
	f.stock(2, "5.50", 10)
	f.addToCart(t, 1, 2)
	f.addToCart(t, 2, 1)
	order := f.placeOrder(t, "")

	_, err := f.payments.RecordPayment(context.Background(), order.ID, model.PaymentResult{
		Reference: "pay-" + order.Number,
		Amount:    order.Total,
		Status:    model.PaymentStatusComplete,
	})
	require.NoError(t, err)

	stored, ok := f.store.Order(order.ID)
	require.True(t, ok)
	return &stored
}

func buyer() model.Actor {
	return model.Actor{ID: buyerID, Role: model.ActorBuyer}
}

func staff() model.Actor {
	return model.Actor{ID: 100, Role: model.ActorStaff}
}
