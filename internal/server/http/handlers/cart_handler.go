package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// CartHandler serves the buyer's cart.
type CartHandler struct {
	facade CartFacade
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(facade CartFacade) *CartHandler {
	return &CartHandler{facade: facade}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.facade.Cart(c.Request.Context(), CurrentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}

	response := dto.CartResponse{Lines: make([]dto.CartLineResponse, 0, len(cart.Lines))}
	for _, line := range cart.Lines {
		response.Lines = append(response.Lines, dto.CartLineResponse{VariantID: line.VariantID, Quantity: line.Quantity})
	}
	c.JSON(http.StatusOK, response)
}

// AddLine handles POST /api/cart/items.
func (h *CartHandler) AddLine(c *gin.Context) {
	var req dto.CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	line := model.CartLine{VariantID: req.VariantID, Quantity: req.Quantity}
	if err := h.facade.AddCartLine(c.Request.Context(), CurrentActor(c).ID, line); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
