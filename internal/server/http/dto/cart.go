package dto

// CartLineRequest adds a variant to the buyer's cart.
type CartLineRequest struct {
	VariantID int64 `json:"variant_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// CartLineResponse is a single cart line.
type CartLineResponse struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

// CartResponse lists the buyer's cart lines in insertion order.
type CartResponse struct {
	Lines []CartLineResponse `json:"lines"`
}
