package model

import "github.com/shopspring/decimal"

// MoneyPlaces is the currency precision used for every stored amount.
const MoneyPlaces = 2

// RoundMoney rounds half-up (away from zero) to currency precision.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// FromCents converts minor units to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -MoneyPlaces)
}

// ToCents converts an amount to minor units after rounding.
func ToCents(d decimal.Decimal) int64 {
	return RoundMoney(d).Shift(MoneyPlaces).IntPart()
}

// NullableCents converts an optional amount to optional minor units.
func NullableCents(d decimal.NullDecimal) *int64 {
	if !d.Valid {
		return nil
	}
	c := ToCents(d.Decimal)
	return &c
}

// NullFromCents converts optional minor units to an optional amount.
func NullFromCents(cents *int64) decimal.NullDecimal {
	if cents == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(FromCents(*cents))
}

// FormatMoney renders d with exactly two decimal places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}
