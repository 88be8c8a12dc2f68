package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StorefrontFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	cartHandler := handlers.NewCartHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	fulfillmentHandler := handlers.NewFulfillmentHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)

	api := engine.Group("/api")
	api.Use(middleware.AuthRequired(facade))

	api.GET("/cart", cartHandler.Get)
	api.POST("/cart/items", cartHandler.AddLine)

	api.POST("/orders", orderHandler.Create)
	api.GET("/orders", orderHandler.List)
	api.GET("/orders/:id", orderHandler.Get)
	api.DELETE("/orders/:id", orderHandler.Archive)
	api.POST("/orders/:id/cancel", orderHandler.Cancel)

	staff := api.Group("")
	staff.Use(middleware.RequireRole(model.ActorStaff, model.ActorSystem))
	staff.POST("/orders/:id/status", orderHandler.Transition)
	staff.POST("/orders/:id/payments", paymentHandler.Record)
	staff.POST("/orders/:id/refunds", paymentHandler.Refund)
	staff.POST("/refunds/:id/status", paymentHandler.RefundStatus)

	items := staff.Group("/orders/:id/items/:itemID")
	items.POST("/confirm", fulfillmentHandler.Confirm)
	items.POST("/pack", fulfillmentHandler.Pack)
	items.POST("/ship", fulfillmentHandler.Ship)
	items.POST("/deliver", fulfillmentHandler.Deliver)
	items.POST("/cancel", fulfillmentHandler.Cancel)

	return engine
}
