package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// CurrentActor extracts the authenticated actor from context.
func CurrentActor(c *gin.Context) model.Actor {
	val, ok := c.Get(middleware.ActorContextKey)
	if !ok {
		return model.Actor{}
	}
	actor, _ := val.(model.Actor)
	return actor
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request"})
}

// writeError maps domain errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var stock *domainErrors.InsufficientStockError
	if errors.As(err, &stock) {
		c.AbortWithStatusJSON(http.StatusConflict, dto.InsufficientStockResponse{
			Error:     err.Error(),
			Line:      stock.Line,
			VariantID: stock.VariantID,
			Requested: stock.Requested,
			Available: stock.Available,
		})
		return
	}

	if errors.Is(err, domainErrors.ErrUnavailable) {
		var retryable domainErrors.Retryable
		if errors.As(err, &retryable) && retryable.RetryDelay() > 0 {
			seconds := int64(math.Ceil(retryable.RetryDelay().Seconds()))
			c.Header("Retry-After", strconv.FormatInt(seconds, 10))
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "service temporarily unavailable"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrAlreadyInState),
		errors.Is(err, domainErrors.ErrNotCancellable),
		errors.Is(err, domainErrors.ErrOrderCancelled),
		errors.Is(err, domainErrors.ErrNotArchivable),
		errors.Is(err, domainErrors.ErrAlreadyExists),
		errors.Is(err, domainErrors.ErrNoPaymentFound):
		status = http.StatusConflict
	case errors.Is(err, domainErrors.ErrEmptyCart),
		errors.Is(err, domainErrors.ErrAddressRequired),
		errors.Is(err, domainErrors.ErrReasonTooShort),
		errors.Is(err, domainErrors.ErrTrackingRequired),
		errors.Is(err, domainErrors.ErrInvalidQuantity),
		errors.Is(err, domainErrors.ErrInvalidAmount),
		errors.Is(err, domainErrors.ErrCouponMinimumNotMet):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: err.Error()})
}
