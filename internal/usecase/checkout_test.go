package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestCheckoutCreateOrder(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "100.00", 10)
	discounted := f.catalog.Known[1]
	discounted.DiscountedPrice = decimal.NewNullDecimal(dec("80.00"))
	f.catalog.Known[1] = discounted
	f.stock(2, "50.00", 5)
	f.addToCart(t, 1, 2)
	f.addToCart(t, 2, 1)

	order := f.placeOrder(t, "")

	require.Equal(t, "ORD-20261018-000001", order.Number)
	require.Equal(t, model.OrderStatusPending, order.Status)
	require.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	require.True(t, order.Subtotal.Equal(dec("210.00")))
	require.True(t, order.Total.Equal(dec("210.00")))
	require.True(t, order.CouponDiscount.IsZero())
	require.Equal(t, "USD", order.Currency)
	require.Len(t, order.Items, 2)
	require.True(t, order.Items[0].FinalPrice.Equal(dec("160.00")))
	require.Equal(t, f.now.Add(30*24*time.Hour), order.Items[0].ReturnDeadline)
	require.Equal(t, model.FulfillmentPending, order.Items[1].Status)
	require.Equal(t, "variant", order.Items[1].Snapshot.Name)

	v1 := f.store.Variant(1)
	require.Equal(t, 8, v1.StockQuantity)
	require.Equal(t, 2, v1.ReservedQuantity)
	v2 := f.store.Variant(2)
	require.Equal(t, 4, v2.StockQuantity)
	require.Equal(t, 1, v2.ReservedQuantity)

	require.Zero(t, f.carts.Lines(buyerID))
	require.Equal(t, []model.EventType{model.EventOrderConfirmed}, f.notifier.Events())

	stored, ok := f.store.Order(order.ID)
	require.True(t, ok)
	require.Equal(t, 1, stored.History.Len())

	f.addToCart(t, 2, 1)
	second := f.placeOrder(t, "")
	require.Equal(t, "ORD-20261018-000002", second.Number)
}

func TestCheckoutValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.checkout.CreateOrder(ctx, model.CheckoutRequest{BuyerID: buyerID, ShippingAddressID: shippingID})
	require.ErrorIs(t, err, domainErrors.ErrAddressRequired)

	_, err = f.checkout.CreateOrder(ctx, model.CheckoutRequest{BuyerID: buyerID, ShippingAddressID: shippingID, BillingAddressID: billingID})
	require.ErrorIs(t, err, domainErrors.ErrEmptyCart)

	f.addToCart(t, 42, 1)
	_, err = f.checkout.CreateOrder(ctx, model.CheckoutRequest{BuyerID: buyerID, ShippingAddressID: shippingID, BillingAddressID: billingID})
	require.ErrorIs(t, err, domainErrors.ErrNotFound)

	f.catalog.Err = errors.New("catalog unavailable")
	_, err = f.checkout.CreateOrder(ctx, model.CheckoutRequest{BuyerID: buyerID, ShippingAddressID: shippingID, BillingAddressID: billingID})
	require.ErrorContains(t, err, "catalog unavailable")
	require.Zero(t, f.store.OrderCount())
}

func TestCheckoutInsufficientStockIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "10.00", 5)
	f.stock(2, "10.00", 1)
	f.addToCart(t, 1, 2)
	f.addToCart(t, 2, 3)

	_, err := f.checkout.CreateOrder(context.Background(), model.CheckoutRequest{
		BuyerID: buyerID, ShippingAddressID: shippingID, BillingAddressID: billingID,
	})
	require.ErrorIs(t, err, domainErrors.ErrInsufficientStock)
	var stockErr *domainErrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 1, stockErr.Line)
	require.Equal(t, int64(2), stockErr.VariantID)
	require.Equal(t, 1, stockErr.Available)

	require.Zero(t, f.store.OrderCount())
	require.Zero(t, f.store.ItemCount())
	v1 := f.store.Variant(1)
	require.Equal(t, 5, v1.StockQuantity)
	require.Zero(t, v1.ReservedQuantity)
	require.Equal(t, 2, f.carts.Lines(buyerID))
	require.Empty(t, f.notifier.Events())
}

func TestCheckoutItemFailureRollsBackReservations(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "10.00", 5)
	f.addToCart(t, 1, 2)
	f.store.FailOn = map[string]error{"items.create": errors.New("disk full")}

	_, err := f.checkout.CreateOrder(context.Background(), model.CheckoutRequest{
		BuyerID: buyerID, ShippingAddressID: shippingID, BillingAddressID: billingID,
	})
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, 5, f.store.Variant(1).StockQuantity)
	require.Zero(t, f.store.OrderCount())
}

func TestCheckoutConcurrentLastUnit(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "10.00", 1)
	const buyers = 2
	for i := int64(1); i <= buyers; i++ {
		f.store.SeedBuyer(100+i, f.now)
		require.NoError(t, f.carts.AddLine(context.Background(), 100+i, model.CartLine{VariantID: 1, Quantity: 1}))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		shortage int
	)
	for i := int64(1); i <= buyers; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.checkout.CreateOrder(context.Background(), model.CheckoutRequest{
				BuyerID: id, ShippingAddressID: shippingID, BillingAddressID: billingID,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, domainErrors.ErrInsufficientStock):
				shortage++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(100 + i)
	}
	wg.Wait()

	require.Equal(t, 1, success)
	require.Equal(t, 1, shortage)
	v := f.store.Variant(1)
	require.Zero(t, v.StockQuantity)
	require.Equal(t, 1, v.ReservedQuantity)
	require.True(t, v.OutOfStock)
	require.False(t, v.IsAvailable)
}

func TestCheckoutCoupon(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "250.00", 10)
	couponID := f.store.SeedCoupon(model.Coupon{
		Code:       "SAVE10",
		Type:       model.CouponPercentage,
		Value:      dec("10"),
		ValidFrom:  f.now.Add(-72 * time.Hour),
		ValidUntil: f.now.Add(72 * time.Hour),
		Active:     true,
		MaxUses:    intPtr(5),
	})
	f.addToCart(t, 1, 2)

	order := f.placeOrder(t, "save10")
	require.True(t, order.CouponDiscount.Equal(dec("50.00")))
	require.True(t, order.Total.Equal(dec("450.00")))
	require.NotNil(t, order.CouponID)
	require.Equal(t, couponID, *order.CouponID)

	usages := f.store.CouponUsages(couponID)
	require.Len(t, usages, 1)
	require.True(t, usages[0].DiscountAmount.Equal(dec("50")))
	require.True(t, usages[0].OrderAmount.Equal(dec("500")))
	require.Equal(t, order.ID, usages[0].OrderID)
	require.Equal(t, len(usages), f.store.Coupon(couponID).CurrentUses)
}

func TestCheckoutCouponSkippedWhenIneligible(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "300.00", 10)
	couponID := f.store.SeedCoupon(model.Coupon{
		Code:       "OLD",
		Type:       model.CouponFixedAmount,
		Value:      dec("1000"),
		ValidFrom:  f.now.Add(-72 * time.Hour),
		ValidUntil: f.now.Add(-time.Hour),
		Active:     true,
	})
	f.addToCart(t, 1, 1)

	order := f.placeOrder(t, "OLD")
	require.True(t, order.CouponDiscount.IsZero())
	require.True(t, order.Total.Equal(dec("300.00")))
	require.Nil(t, order.CouponID)
	require.Empty(t, f.store.CouponUsages(couponID))
	require.Zero(t, f.store.Coupon(couponID).CurrentUses)

	f.addToCart(t, 1, 1)
	order = f.placeOrder(t, "MISSING")
	require.True(t, order.Total.Equal(dec("300.00")))
}

func TestCheckoutFixedCouponCappedAtSubtotal(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "300.00", 10)
	f.store.SeedCoupon(model.Coupon{
		Code:       "BIG",
		Type:       model.CouponFixedAmount,
		Value:      dec("1000"),
		ValidFrom:  f.now.Add(-72 * time.Hour),
		ValidUntil: f.now.Add(72 * time.Hour),
		Active:     true,
	})
	f.addToCart(t, 1, 1)

	order := f.placeOrder(t, "BIG")
	require.True(t, order.CouponDiscount.Equal(dec("300.00")))
	require.True(t, order.Total.IsZero())
}

func TestCheckoutCouponMinimumNotMetIsFatal(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "10.00", 10)
	couponID := f.store.SeedCoupon(model.Coupon{
		Code:           "MIN100",
		Type:           model.CouponPercentage,
		Value:          dec("10"),
		MinOrderAmount: decimal.NewNullDecimal(dec("100")),
		ValidFrom:      f.now.Add(-72 * time.Hour),
		ValidUntil:     f.now.Add(72 * time.Hour),
		Active:         true,
	})
	f.addToCart(t, 1, 2)

	_, err := f.checkout.CreateOrder(context.Background(), model.CheckoutRequest{
		BuyerID: buyerID, ShippingAddressID: shippingID, BillingAddressID: billingID, CouponCode: "MIN100",
	})
	require.ErrorIs(t, err, domainErrors.ErrCouponMinimumNotMet)
	require.Zero(t, f.store.OrderCount())
	require.Equal(t, 10, f.store.Variant(1).StockQuantity)
	require.Zero(t, f.store.Coupon(couponID).CurrentUses)
}

func TestCheckoutCouponUsageRolledBackWithOrder(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "100.00", 1)
	couponID := f.store.SeedCoupon(model.Coupon{
		Code:       "SAVE10",
		Type:       model.CouponPercentage,
		Value:      dec("10"),
		ValidFrom:  f.now.Add(-72 * time.Hour),
		ValidUntil: f.now.Add(72 * time.Hour),
		Active:     true,
	})
	f.addToCart(t, 1, 2)

	_, err := f.checkout.CreateOrder(context.Background(), model.CheckoutRequest{
		BuyerID: buyerID, ShippingAddressID: shippingID, BillingAddressID: billingID, CouponCode: "SAVE10",
	})
	require.ErrorIs(t, err, domainErrors.ErrInsufficientStock)
	require.Empty(t, f.store.CouponUsages(couponID))
	require.Zero(t, f.store.Coupon(couponID).CurrentUses)
}

func TestCheckoutFirstOrderCoupon(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "100.00", 10)
	f.store.SeedCoupon(model.Coupon{
		Code:           "WELCOME",
		Type:           model.CouponFixedAmount,
		Value:          dec("15"),
		ValidFrom:      f.now.Add(-72 * time.Hour),
		ValidUntil:     f.now.Add(72 * time.Hour),
		Active:         true,
		FirstOrderOnly: true,
	})

	f.addToCart(t, 1, 1)
	first := f.placeOrder(t, "WELCOME")
	require.True(t, first.Total.Equal(dec("85.00")))

	f.addToCart(t, 1, 1)
	second := f.placeOrder(t, "WELCOME")
	require.True(t, second.Total.Equal(dec("100.00")))
}

func TestCheckoutCartCleanupFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "10.00", 10)
	f.addToCart(t, 1, 1)
	f.carts.RemoveErr = errors.New("redis down")
	f.notifier.Drop = true

	order := f.placeOrder(t, "")
	require.NotZero(t, order.ID)
	require.Equal(t, 1, f.carts.Lines(buyerID))
	require.Equal(t, 9, f.store.Variant(1).StockQuantity)
}

func TestCheckoutKeepsLinesAddedDuringCheckout(t *testing.T) {
	f := newFixture(t)
	f.stock(1, "10.00", 10)
	f.stock(2, "4.00", 10)
	f.addToCart(t, 1, 2)
	f.catalog.OnOffers = func() {
		f.catalog.OnOffers = nil
		f.addToCart(t, 2, 1)
	}

	order := f.placeOrder(t, "")
	require.Len(t, order.Items, 1)

	cart, err := f.carts.Cart(context.Background(), buyerID)
	require.NoError(t, err)
	require.Equal(t, []model.CartLine{{VariantID: 2, Quantity: 1}}, cart.Lines)
	require.Zero(t, f.store.Variant(2).ReservedQuantity)
}
