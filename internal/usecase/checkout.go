package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const orderPlacedNote = "order placed"

// CheckoutParams lists CheckoutUseCase dependencies.
type CheckoutParams struct {
	fx.In

	Tx        repository.Transactor
	Catalog   CatalogProvider
	Carts     CartProvider
	Discounts *DiscountEngine
	Inventory *InventoryUseCase
	Notifier  Notifier
	Config    *config.Config
	Logger    *slog.Logger
}

// CheckoutUseCase turns a buyer's cart into a pending order.
type CheckoutUseCase struct {
	tx           repository.Transactor
	catalog      CatalogProvider
	carts        CartProvider
	discounts    *DiscountEngine
	inventory    *InventoryUseCase
	notifier     Notifier
	logger       *slog.Logger
	currency     string
	returnWindow time.Duration
	now          func() time.Time
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(p CheckoutParams) *CheckoutUseCase {
	return &CheckoutUseCase{
		tx:           p.Tx,
		catalog:      p.Catalog,
		carts:        p.Carts,
		discounts:    p.Discounts,
		inventory:    p.Inventory,
		notifier:     p.Notifier,
		logger:       p.Logger,
		currency:     p.Config.Currency,
		returnWindow: p.Config.ReturnWindow,
		now:          time.Now,
	}
}

type pricedLine struct {
	line  model.CartLine
	offer model.VariantOffer
}

// CreateOrder places an order for the buyer's cart. Order, coupon usage,
// items and reservations are written in one transaction: any failure leaves
// nothing behind. The checked-out lines are removed from the cart and the
// confirmation queued after commit.
func (u *CheckoutUseCase) CreateOrder(ctx context.Context, in model.CheckoutRequest) (*model.Order, error) {
	if in.ShippingAddressID <= 0 || in.BillingAddressID <= 0 {
		return nil, domainErrors.ErrAddressRequired
	}

	cart, err := u.carts.Cart(ctx, in.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.Empty() {
		return nil, domainErrors.ErrEmptyCart
	}

	lines, subtotal, err := u.price(ctx, cart)
	if err != nil {
		return nil, err
	}

	var (
		order *model.Order
		out   outbox
	)
	err = u.tx.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		now := u.now()

		priorOrders, err := tx.Orders().CountByBuyer(ctx, in.BuyerID)
		if err != nil {
			return err
		}

		order, err = u.createPending(ctx, tx, in, subtotal, now)
		if err != nil {
			return err
		}

		if code := strings.TrimSpace(in.CouponCode); code != "" {
			if err := u.applyCoupon(ctx, tx, order, code, lines, priorOrders, now); err != nil {
				return err
			}
		}

		order.Items = make([]model.OrderItem, 0, len(lines))
		for i, pl := range lines {
			if _, err := u.inventory.Reserve(ctx, tx, i, pl.line.VariantID, pl.line.Quantity); err != nil {
				return err
			}
			item := model.OrderItem{
				OrderID:         order.ID,
				VariantID:       pl.line.VariantID,
				ProductID:       pl.offer.ProductID,
				Quantity:        pl.line.Quantity,
				Price:           pl.offer.Price,
				DiscountedPrice: pl.offer.DiscountedPrice,
				Snapshot:        pl.offer.Snapshot,
				Status:          model.FulfillmentPending,
				ReturnDeadline:  order.CreatedAt.Add(u.returnWindow),
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			item.ComputeFinalPrice()
			if err := tx.Items().Create(ctx, &item); err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}

		out.add(model.NewNotification(model.EventOrderConfirmed, order, orderPlacedNote, now))
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("order created",
		slog.Int64("order_id", order.ID),
		slog.String("number", order.Number),
		slog.Int64("buyer_id", order.BuyerID),
		slog.String("total", order.Total.StringFixed(model.MoneyPlaces)),
	)

	if err := u.carts.RemoveLines(ctx, in.BuyerID, cart.Lines); err != nil {
		u.logger.Error("failed to remove checked-out cart lines",
			slog.Int64("buyer_id", in.BuyerID),
			slog.String("error", err.Error()),
		)
	}
	out.flush(u.notifier, u.logger)
	return order, nil
}

func (u *CheckoutUseCase) price(ctx context.Context, cart *model.Cart) ([]pricedLine, decimal.Decimal, error) {
	ids := make([]int64, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if line.Quantity <= 0 {
			return nil, decimal.Zero, domainErrors.ErrInvalidQuantity
		}
		ids = append(ids, line.VariantID)
	}

	offers, err := u.catalog.Offers(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("load offers: %w", err)
	}

	lines := make([]pricedLine, 0, len(cart.Lines))
	subtotal := decimal.Zero
	for i, line := range cart.Lines {
		offer, ok := offers[line.VariantID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("line %d variant %d: %w", i, line.VariantID, domainErrors.ErrNotFound)
		}
		subtotal = subtotal.Add(offer.EffectivePrice().Mul(decimal.NewFromInt(int64(line.Quantity))))
		lines = append(lines, pricedLine{line: line, offer: offer})
	}

	subtotal = model.RoundMoney(subtotal)
	if !subtotal.IsPositive() {
		return nil, decimal.Zero, domainErrors.ErrInvalidAmount
	}
	return lines, subtotal, nil
}

func (u *CheckoutUseCase) createPending(ctx context.Context, tx repository.Tx, in model.CheckoutRequest, subtotal decimal.Decimal, now time.Time) (*model.Order, error) {
	number, err := tx.Orders().NextNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		Number:            number,
		BuyerID:           in.BuyerID,
		ShippingAddressID: in.ShippingAddressID,
		BillingAddressID:  in.BillingAddressID,
		Currency:          u.currency,
		Subtotal:          subtotal,
		CouponDiscount:    decimal.Zero,
		Tax:               decimal.Zero,
		Status:            model.OrderStatusPending,
		PaymentStatus:     model.PaymentStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	order.RecalculateTotal()
	if err := order.History.Append(model.OrderStatusPending, now, orderPlacedNote); err != nil {
		return nil, err
	}
	if err := tx.Orders().Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// applyCoupon evaluates code against order. Only a missed minimum order
// amount fails checkout; any other coupon problem drops the coupon.
func (u *CheckoutUseCase) applyCoupon(
	ctx context.Context,
	tx repository.Tx,
	order *model.Order,
	code string,
	lines []pricedLine,
	priorOrders int,
	now time.Time,
) error {
	coupon, err := tx.Coupons().GetByCode(ctx, code)
	if errors.Is(err, domainErrors.ErrNotFound) {
		u.skipCoupon(order, code, err)
		return nil
	}
	if err != nil {
		return err
	}

	buyer, err := tx.Users().GetBuyer(ctx, order.BuyerID)
	if err != nil {
		return err
	}
	usages, err := tx.Coupons().CountUsages(ctx, coupon.ID, order.BuyerID)
	if err != nil {
		return err
	}

	couponLines := make([]CouponLine, 0, len(lines))
	for _, pl := range lines {
		couponLines = append(couponLines, CouponLine{
			ProductID:  pl.offer.ProductID,
			CategoryID: pl.offer.CategoryID,
			BrandID:    pl.offer.BrandID,
			UnitPrice:  pl.offer.EffectivePrice(),
			Quantity:   pl.line.Quantity,
		})
	}

	check := CouponCheck{
		Buyer:       *buyer,
		PriorOrders: priorOrders,
		UserUsages:  usages,
		Subtotal:    order.Subtotal,
		Lines:       couponLines,
		Now:         now,
	}
	if err := u.discounts.CheckEligibility(coupon, check); err != nil {
		if skippableCoupon(err) {
			u.skipCoupon(order, code, err)
			return nil
		}
		return err
	}

	discount := u.discounts.CalculateDiscount(coupon, order.Subtotal, couponLines...)
	usage := &model.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         order.BuyerID,
		OrderID:        order.ID,
		DiscountAmount: discount,
		OrderAmount:    order.Subtotal,
		CreatedAt:      now,
	}
	if err := tx.Coupons().RecordUsage(ctx, usage); err != nil {
		if errors.Is(err, domainErrors.ErrCouponExhausted) {
			u.skipCoupon(order, code, err)
			return nil
		}
		return err
	}

	couponID := coupon.ID
	order.CouponID = &couponID
	order.CouponDiscount = discount
	order.RecalculateTotal()
	return tx.Orders().Update(ctx, order)
}

func (u *CheckoutUseCase) skipCoupon(order *model.Order, code string, reason error) {
	u.logger.Info("coupon skipped",
		slog.Int64("buyer_id", order.BuyerID),
		slog.String("code", code),
		slog.String("reason", reason.Error()),
	)
}
