package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// PaymentHandler records payment results and refunds.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Record handles POST /api/orders/:id/payments.
func (h *PaymentHandler) Record(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	payment, err := h.facade.RecordPayment(c.Request.Context(), orderID, model.PaymentResult{
		Reference: req.Reference,
		Amount:    req.Amount,
		Status:    model.PaymentStatus(strings.ToLower(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PaymentResponse{
		ID:        payment.ID,
		Reference: payment.Reference,
		Amount:    model.FormatMoney(payment.Amount),
		Currency:  payment.Currency,
		Status:    string(payment.Status),
		CreatedAt: payment.CreatedAt,
	})
}

// Refund handles POST /api/orders/:id/refunds.
func (h *PaymentHandler) Refund(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	refund, err := h.facade.Refund(c.Request.Context(), orderID, req.Amount, strings.TrimSpace(req.Reason), CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRefundResponse(refund))
}

// RefundStatus handles POST /api/refunds/:id/status.
func (h *PaymentHandler) RefundStatus(c *gin.Context) {
	refundID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	next := model.RefundStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	refund, err := h.facade.UpdateRefundStatus(c.Request.Context(), refundID, next)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundResponse(refund))
}

func toRefundResponse(refund *model.PaymentRefund) dto.RefundResponse {
	return dto.RefundResponse{
		ID:          refund.ID,
		Reference:   refund.Reference.String(),
		PaymentID:   refund.PaymentID,
		OrderID:     refund.OrderID,
		Amount:      model.FormatMoney(refund.Amount),
		Currency:    refund.Currency,
		Reason:      refund.Reason,
		Status:      string(refund.Status),
		RequestedBy: refund.RequestedBy,
		CreatedAt:   refund.CreatedAt,
	}
}
