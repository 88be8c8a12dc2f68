package model

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// CouponType selects how a coupon's discount is computed.
type CouponType string

const (
	CouponPercentage   CouponType = "percentage"
	CouponFixedAmount  CouponType = "fixed_amount"
	CouponFreeShipping CouponType = "free_shipping"
	CouponBuyOneGetOne CouponType = "buy_one_get_one"
)

// IDSet is a set of identifiers stored as a JSON array.
type IDSet map[int64]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Empty reports whether the set has no members.
func (s IDSet) Empty() bool {
	return len(s) == 0
}

// Sorted returns members in ascending order.
func (s IDSet) Sorted() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array; null yields an empty set.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// CouponRules groups the inclusion and exclusion lists of a coupon.
type CouponRules struct {
	Categories         IDSet `json:"categories"`
	Products           IDSet `json:"products"`
	Brands             IDSet `json:"brands"`
	AllowedUsers       IDSet `json:"allowed_users"`
	ExcludedCategories IDSet `json:"excluded_categories"`
	ExcludedProducts   IDSet `json:"excluded_products"`
	ExcludedBrands     IDSet `json:"excluded_brands"`
	ExcludedUsers      IDSet `json:"excluded_users"`
}

// Coupon is a discount rule.
type Coupon struct {
	ID             int64
	Code           string
	Type           CouponType
	Value          decimal.Decimal
	MaxDiscount    decimal.NullDecimal
	MinOrderAmount decimal.NullDecimal
	ValidFrom      time.Time
	ValidUntil     time.Time
	Active         bool
	MaxUses        *int
	MaxUsesPerUser *int
	CurrentUses    int
	NewUsersOnly   bool
	FirstOrderOnly bool
	Rules          CouponRules
}

// UsageCapReached reports whether the global cap is exhausted.
func (c *Coupon) UsageCapReached() bool {
	return c.MaxUses != nil && c.CurrentUses >= *c.MaxUses
}

// CouponUsage is the immutable ledger record of one coupon application.
type CouponUsage struct {
	ID             int64
	CouponID       int64
	UserID         int64
	OrderID        int64
	DiscountAmount decimal.Decimal
	OrderAmount    decimal.Decimal
	CreatedAt      time.Time
}
