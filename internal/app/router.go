package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"travel/internal/handler"
	"travel/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	ListingHandler *handler.ListingHandler
	UserHandler    *handler.UserHandler
	BookingHandler *handler.BookingHandler
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
	router.Use(middleware.Metrics())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	{
		api.GET("/sample/", handler.Sample)

		listings := api.Group("/listings")
		{
			listings.GET("/", deps.ListingHandler.GetAll)
			listings.POST("/", deps.ListingHandler.Create)
			listings.GET("/:id/", deps.ListingHandler.Get)
			listings.PUT("/:id/", deps.ListingHandler.Update)
			listings.DELETE("/:id/", deps.ListingHandler.Delete)
		}

		users := api.Group("/users")
		{
			users.GET("/", deps.UserHandler.GetAll)
			users.POST("/", deps.UserHandler.Register)
			users.GET("/:id/", deps.UserHandler.GetUser)
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("/", deps.BookingHandler.GetAll)
			bookings.POST("/", deps.BookingHandler.Create)
			bookings.GET("/:id/", deps.BookingHandler.Get)
			bookings.PUT("/:id/", deps.BookingHandler.Update)
			bookings.DELETE("/:id/", deps.BookingHandler.Delete)
			bookings.POST("/:id/cancel/", deps.BookingHandler.Cancel)
			bookings.POST("/:id/initiate_payment/", deps.BookingHandler.InitiatePayment)
		}

		payments := api.Group("/payments")
		{
			payments.GET("/", deps.PaymentHandler.GetAll)
			payments.POST("/", deps.PaymentHandler.Create)
			payments.GET("/:id/", deps.PaymentHandler.Get)
			payments.PUT("/:id/", deps.PaymentHandler.Update)
			payments.DELETE("/:id/", deps.PaymentHandler.Delete)
			payments.POST("/:id/initiate_payment/", deps.PaymentHandler.InitiatePayment)
			payments.POST("/:id/verify_payment/", deps.PaymentHandler.VerifyPayment)
		}
	}

	return router
}
