package dto

import (
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CreateOrderRequest turns the buyer's cart into an order.
type CreateOrderRequest struct {
	ShippingAddressID int64  `json:"shipping_address_id"`
	BillingAddressID  int64  `json:"billing_address_id"`
	CouponCode        string `json:"coupon_code,omitempty"`
}

// StatusRequest asks for an order or refund status change.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CancelRequest carries the cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ShipRequest carries the carrier tracking reference.
type ShipRequest struct {
	TrackingRef string `json:"tracking_ref"`
}

// StatusEntryResponse is an entry of the order status log.
type StatusEntryResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// OrderItemResponse describes an order line. Money is rendered with two
// decimal places.
type OrderItemResponse struct {
	ID              int64                    `json:"id"`
	VariantID       int64                    `json:"variant_id"`
	ProductID       int64                    `json:"product_id"`
	Quantity        int                      `json:"quantity"`
	Price           string                   `json:"price"`
	DiscountedPrice *string                  `json:"discounted_price,omitempty"`
	FinalPrice      string                   `json:"final_price"`
	Name            string                   `json:"name"`
	SKU             string                   `json:"sku,omitempty"`
	ImageURL        string                   `json:"image_url,omitempty"`
	Attributes      []model.VariantAttribute `json:"attributes,omitempty"`
	Status          string                   `json:"status"`
	TrackingRef     string                   `json:"tracking_ref,omitempty"`
	ShippedAt       *time.Time               `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time               `json:"delivered_at,omitempty"`
	ReturnDeadline  time.Time                `json:"return_deadline"`
}

// OrderResponse describes an order.
type OrderResponse struct {
	ID                 int64                 `json:"id"`
	Number             string                `json:"number"`
	Status             string                `json:"status"`
	PaymentStatus      string                `json:"payment_status"`
	Currency           string                `json:"currency"`
	Subtotal           string                `json:"subtotal"`
	CouponDiscount     string                `json:"coupon_discount"`
	Tax                string                `json:"tax"`
	Total              string                `json:"total"`
	CancellationReason string                `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time            `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	History            []StatusEntryResponse `json:"status_history"`
	Items              []OrderItemResponse   `json:"items,omitempty"`
}

// CancelResponse reports a cancellation and the refund it requested.
type CancelResponse struct {
	Order       OrderResponse   `json:"order"`
	Refund      *RefundResponse `json:"refund,omitempty"`
	RefundError string          `json:"refund_error,omitempty"`
}
