package usecase

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var hundred = decimal.NewFromInt(100)

// CouponLine is the catalog classification of one order line.
type CouponLine struct {
	ProductID  int64
	CategoryID int64
	BrandID    int64
	UnitPrice  decimal.Decimal
	Quantity   int
}

// CouponCheck carries everything eligibility depends on.
type CouponCheck struct {
	Buyer       model.Buyer
	PriorOrders int
	UserUsages  int
	Subtotal    decimal.Decimal
	Lines       []CouponLine
	Now         time.Time
}

// DiscountStrategy computes the raw discount for coupon types without a
// built-in formula. The engine clamps and rounds the result.
type DiscountStrategy func(coupon *model.Coupon, subtotal decimal.Decimal, lines []CouponLine) decimal.Decimal

// DiscountEngine evaluates coupon eligibility and discount amounts.
type DiscountEngine struct {
	strategies map[model.CouponType]DiscountStrategy
}

// NewDiscountEngine constructs DiscountEngine with the default strategies.
func NewDiscountEngine() *DiscountEngine {
	return &DiscountEngine{strategies: map[model.CouponType]DiscountStrategy{
		model.CouponFreeShipping: FreeShippingDiscount,
		model.CouponBuyOneGetOne: BuyOneGetOneDiscount,
	}}
}

// WithStrategy registers strategy for coupon type t.
func (e *DiscountEngine) WithStrategy(t model.CouponType, strategy DiscountStrategy) *DiscountEngine {
	e.strategies[t] = strategy
	return e
}

// CheckEligibility runs the eligibility rules in order and returns the first
// failed rule's error.
func (e *DiscountEngine) CheckEligibility(coupon *model.Coupon, check CouponCheck) error {
	switch {
	case !coupon.Active:
		return domainErrors.ErrCouponInactive
	case check.Now.Before(coupon.ValidFrom):
		return domainErrors.ErrCouponNotStarted
	case check.Now.After(coupon.ValidUntil):
		return domainErrors.ErrCouponExpired
	case coupon.UsageCapReached():
		return domainErrors.ErrCouponExhausted
	}

	if coupon.NewUsersOnly && check.Buyer.CreatedAt.Before(coupon.ValidFrom) {
		return domainErrors.ErrCouponNewUsersOnly
	}

	if coupon.FirstOrderOnly && check.PriorOrders > 0 {
		return domainErrors.ErrCouponFirstOrderOnly
	}

	rules := coupon.Rules
	if !rules.AllowedUsers.Empty() && !rules.AllowedUsers.Has(check.Buyer.ID) {
		return domainErrors.ErrCouponUserNotAllowed
	}
	if rules.ExcludedUsers.Has(check.Buyer.ID) {
		return domainErrors.ErrCouponUserNotAllowed
	}

	if coupon.MaxUsesPerUser != nil && check.UserUsages >= *coupon.MaxUsesPerUser {
		return domainErrors.ErrCouponUserLimit
	}

	if coupon.MinOrderAmount.Valid && check.Subtotal.LessThan(coupon.MinOrderAmount.Decimal) {
		return domainErrors.ErrCouponMinimumNotMet
	}

	if !appliesToLines(rules, check.Lines) {
		return domainErrors.ErrCouponNotApplicable
	}

	return nil
}

// IsEligible is the boolean form of CheckEligibility.
func (e *DiscountEngine) IsEligible(coupon *model.Coupon, check CouponCheck) bool {
	return e.CheckEligibility(coupon, check) == nil
}

// CalculateDiscount returns the discount for subtotal, clamped to
// [0, subtotal] and to the coupon cap, rounded half-up to cents.
func (e *DiscountEngine) CalculateDiscount(coupon *model.Coupon, subtotal decimal.Decimal, lines ...CouponLine) decimal.Decimal {
	var raw decimal.Decimal
	switch coupon.Type {
	case model.CouponPercentage:
		raw = subtotal.Mul(coupon.Value).Div(hundred)
	case model.CouponFixedAmount:
		raw = decimal.Min(coupon.Value, subtotal)
	default:
		if strategy, ok := e.strategies[coupon.Type]; ok {
			raw = strategy(coupon, subtotal, lines)
		}
	}

	if raw.IsNegative() {
		raw = decimal.Zero
	}
	if raw.GreaterThan(subtotal) {
		raw = subtotal
	}
	if coupon.MaxDiscount.Valid && raw.GreaterThan(coupon.MaxDiscount.Decimal) {
		raw = coupon.MaxDiscount.Decimal
	}
	return model.RoundMoney(raw)
}

// FreeShippingDiscount yields no reduction of the goods subtotal. Shipping
// charges are settled outside the order totals.
func FreeShippingDiscount(*model.Coupon, decimal.Decimal, []CouponLine) decimal.Decimal {
	return decimal.Zero
}

// BuyOneGetOneDiscount makes every second unit of each line free.
func BuyOneGetOneDiscount(_ *model.Coupon, _ decimal.Decimal, lines []CouponLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		free := int64(line.Quantity / 2)
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(free)))
	}
	return total
}

func appliesToLines(rules model.CouponRules, lines []CouponLine) bool {
	if !rules.Categories.Empty() || !rules.Products.Empty() || !rules.Brands.Empty() {
		matched := false
		for _, line := range lines {
			if rules.Categories.Has(line.CategoryID) || rules.Products.Has(line.ProductID) || rules.Brands.Has(line.BrandID) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, line := range lines {
		if rules.ExcludedCategories.Has(line.CategoryID) ||
			rules.ExcludedProducts.Has(line.ProductID) ||
			rules.ExcludedBrands.Has(line.BrandID) {
			return false
		}
	}
	return true
}

// skippableCoupon reports coupon failures that leave checkout unaffected.
func skippableCoupon(err error) bool {
	return err != nil && !errors.Is(err, domainErrors.ErrCouponMinimumNotMet)
}
