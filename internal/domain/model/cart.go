package model

// CartLine is a (variant, quantity) pair in a buyer's cart.
type CartLine struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

// Cart is the ordered list of lines a buyer intends to purchase.
type Cart struct {
	BuyerID int64
	Lines   []CartLine
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return c == nil || len(c.Lines) == 0
}

// CheckoutRequest asks to turn a buyer's cart into an order.
type CheckoutRequest struct {
	BuyerID           int64
	ShippingAddressID int64
	BillingAddressID  int64
	CouponCode        string
}
