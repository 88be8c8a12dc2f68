package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// FulfillmentHandler drives item-level fulfillment endpoints.
type FulfillmentHandler struct {
	facade FulfillmentFacade
}

// NewFulfillmentHandler constructs FulfillmentHandler.
func NewFulfillmentHandler(facade FulfillmentFacade) *FulfillmentHandler {
	return &FulfillmentHandler{facade: facade}
}

type itemAction func(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error)

// Confirm handles POST /api/orders/:id/items/:itemID/confirm.
func (h *FulfillmentHandler) Confirm(c *gin.Context) {
	h.run(c, h.facade.ConfirmItem)
}

// Pack handles POST /api/orders/:id/items/:itemID/pack.
func (h *FulfillmentHandler) Pack(c *gin.Context) {
	h.run(c, h.facade.PackItem)
}

// Ship handles POST /api/orders/:id/items/:itemID/ship.
func (h *FulfillmentHandler) Ship(c *gin.Context) {
	var req dto.ShipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	h.run(c, func(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
		return h.facade.ShipItem(ctx, orderID, itemID, req.TrackingRef)
	})
}

// Deliver handles POST /api/orders/:id/items/:itemID/deliver.
func (h *FulfillmentHandler) Deliver(c *gin.Context) {
	h.run(c, h.facade.DeliverItem)
}

// Cancel handles POST /api/orders/:id/items/:itemID/cancel.
func (h *FulfillmentHandler) Cancel(c *gin.Context) {
	h.run(c, h.facade.CancelItem)
}

func (h *FulfillmentHandler) run(c *gin.Context, action itemAction) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemID")
	if !ok {
		return
	}

	item, err := action(c.Request.Context(), orderID, itemID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(item))
}
