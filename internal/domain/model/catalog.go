package model

import "github.com/shopspring/decimal"

// VariantOffer is the catalog's current pricing and display data for a variant.
type VariantOffer struct {
	VariantID       int64
	ProductID       int64
	CategoryID      int64
	BrandID         int64
	Price           decimal.Decimal
	DiscountedPrice decimal.NullDecimal
	Snapshot        VariantSnapshot
}

// EffectivePrice is the discounted price when present, else the list price.
func (o VariantOffer) EffectivePrice() decimal.Decimal {
	if o.DiscountedPrice.Valid {
		return o.DiscountedPrice.Decimal
	}
	return o.Price
}
