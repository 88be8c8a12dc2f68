package dto

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// InsufficientStockResponse names the cart line that could not be reserved.
type InsufficientStockResponse struct {
	Error     string `json:"error"`
	Line      int    `json:"line"`
	VariantID int64  `json:"variant_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}
