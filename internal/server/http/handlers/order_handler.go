package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), model.CheckoutRequest{
		BuyerID:           CurrentActor(c).ID,
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		CouponCode:        strings.TrimSpace(req.CouponCode),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), orderID, CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Archive handles DELETE /api/orders/:id.
func (h *OrderHandler) Archive(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.facade.ArchiveOrder(c.Request.Context(), orderID, CurrentActor(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Transition handles POST /api/orders/:id/status.
func (h *OrderHandler) Transition(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	next := model.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	order, err := h.facade.TransitionOrder(c.Request.Context(), orderID, next, CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	result, err := h.facade.CancelOrder(c.Request.Context(), orderID, req.Reason, CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	response := dto.CancelResponse{Order: toOrderResponse(result.Order)}
	if result.Refund != nil {
		refund := toRefundResponse(result.Refund)
		response.Refund = &refund
	}
	if result.RefundErr != nil {
		response.RefundError = result.RefundErr.Error()
	}
	c.JSON(http.StatusOK, response)
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	response := dto.OrderResponse{
		ID:                 order.ID,
		Number:             order.Number,
		Status:             string(order.Status),
		PaymentStatus:      string(order.PaymentStatus),
		Currency:           order.Currency,
		Subtotal:           model.FormatMoney(order.Subtotal),
		CouponDiscount:     model.FormatMoney(order.CouponDiscount),
		Tax:                model.FormatMoney(order.Tax),
		Total:              model.FormatMoney(order.Total),
		CancellationReason: order.CancellationReason,
		CancelledAt:        order.CancelledAt,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}

	entries := order.History.Entries()
	response.History = make([]dto.StatusEntryResponse, 0, len(entries))
	for _, e := range entries {
		response.History = append(response.History, dto.StatusEntryResponse{
			Status:    string(e.Status),
			Timestamp: e.Timestamp,
			Note:      e.Note,
		})
	}

	for i := range order.Items {
		response.Items = append(response.Items, toItemResponse(&order.Items[i]))
	}
	return response
}

func toItemResponse(item *model.OrderItem) dto.OrderItemResponse {
	response := dto.OrderItemResponse{
		ID:             item.ID,
		VariantID:      item.VariantID,
		ProductID:      item.ProductID,
		Quantity:       item.Quantity,
		Price:          model.FormatMoney(item.Price),
		FinalPrice:     model.FormatMoney(item.FinalPrice),
		Name:           item.Snapshot.Name,
		SKU:            item.Snapshot.SKU,
		ImageURL:       item.Snapshot.ImageURL,
		Attributes:     item.Snapshot.Attributes,
		Status:         string(item.Status),
		TrackingRef:    item.TrackingRef,
		ShippedAt:      item.ShippedAt,
		DeliveredAt:    item.DeliveredAt,
		ReturnDeadline: item.ReturnDeadline,
	}
	if item.DiscountedPrice.Valid {
		discounted := model.FormatMoney(item.DiscountedPrice.Decimal)
		response.DiscountedPrice = &discounted
	}
	return response
}
