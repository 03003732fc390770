package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"travel/internal/handler"
	"travel/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler    *handler.UserHandler
	ListingHandler *handler.ListingHandler
	BookingHandler *handler.BookingHandler
	ReviewHandler  *handler.ReviewHandler
	PaymentHandler *handler.PaymentHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
	Logger         *zap.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public routes.
	{
		api.POST("/users/", deps.UserHandler.Register)
		api.GET("/listings/", deps.ListingHandler.GetAll)
		api.GET("/listings/:id/", deps.ListingHandler.Get)
		api.GET("/reviews/", deps.ReviewHandler.GetAll)

		// Called by the gateway; authenticated by signature.
		api.POST("/payments/webhook/", deps.PaymentHandler.Webhook)
	}

	authed := api.Group("", middleware.RequireActor())
	{
		authed.GET("/users/", deps.UserHandler.GetAll)

		listings := authed.Group("/listings")
		{
			listings.POST("/", deps.ListingHandler.Create)
			listings.PATCH("/:id/", deps.ListingHandler.Update)
			listings.DELETE("/:id/", deps.ListingHandler.Delete)
		}

		bookings := authed.Group("/bookings")
		{
			bookings.POST("/", deps.BookingHandler.Create)
			bookings.GET("/", deps.BookingHandler.GetAll)
			bookings.GET("/:id/", deps.BookingHandler.Get)
			bookings.POST("/:id/confirm/", deps.BookingHandler.Confirm)
			bookings.POST("/:id/cancel/", deps.BookingHandler.Cancel)
			bookings.POST("/:id/complete/", deps.BookingHandler.Complete)
		}

		authed.POST("/reviews/", deps.ReviewHandler.Create)

		payments := authed.Group("/payments")
		{
			payments.POST("/initiate/", deps.PaymentHandler.Initiate)
			payments.GET("/verify/", deps.PaymentHandler.Verify)
			payments.GET("/history/", deps.PaymentHandler.History)
		}
	}

	return router
}
