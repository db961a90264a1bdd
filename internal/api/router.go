package api

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/api/handlers"
	"github.com/fitkart/storefront-api/internal/api/middleware"
	"github.com/fitkart/storefront-api/internal/config"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/internal/service"
	"github.com/fitkart/storefront-api/internal/shiprocket"
	"github.com/fitkart/storefront-api/internal/stream"
)

// Deps bundles everything the router hands to handlers
type Deps struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Orders   *service.OrderService
	Checkout *service.CheckoutService
	Offers   *service.OfferService
	Gateway  *shiprocket.Gateway
	Hub      *stream.Hub
	Logger   *zap.Logger
}

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
			return pincodePattern.MatchString(fl.Field().String())
		})
	}
}

// NewRouter creates and configures the Gin router
func NewRouter(deps Deps) *gin.Engine {
	if deps.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidators()

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(deps.Logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	logger := deps.Logger

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Public catalog
		v1.GET("/products", middleware.RateLimit(100), handlers.HandleListProducts(deps.Repos, logger))
		v1.GET("/products/:idOrSlug", middleware.RateLimit(100), handlers.HandleGetProduct(deps.Repos, logger))

		// Authenticated customer routes
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(deps.Repos, logger))
		{
			authed.POST("/checkout/session", middleware.RateLimit(10), handlers.HandleCheckout(deps.Checkout, logger))
			authed.GET("/orders", middleware.RateLimit(60), handlers.HandleListOrders(deps.Orders, logger))
			authed.GET("/orders/:idOrNumber", middleware.RateLimit(60), handlers.HandleGetOrder(deps.Orders, logger))
			authed.PUT("/orders/:idOrNumber/cancel", middleware.RateLimit(10), handlers.HandleCancelOrder(deps.Orders, logger))
			authed.PATCH("/offers", middleware.RateLimit(20), handlers.HandleValidateCode(deps.Offers, deps.Repos, logger))
			authed.GET("/tracking/live", middleware.RateLimit(5), handlers.HandleLiveTracking(deps.Orders, deps.Gateway, deps.Hub, logger))
		}

		// Admin routes
		admin := v1.Group("")
		admin.Use(middleware.AuthMiddleware(deps.Repos, logger))
		admin.Use(middleware.RequireAdmin())
		{
			admin.PATCH("/orders/:idOrNumber", middleware.RateLimit(30), handlers.HandlePatchOrder(deps.Orders, logger))
			admin.DELETE("/orders/:idOrNumber", middleware.RateLimit(10), handlers.HandleDeleteOrder(deps.Orders, logger))
			admin.GET("/offers", middleware.RateLimit(30), handlers.HandleListOffers(deps.Repos, logger))
			admin.POST("/offers", middleware.RateLimit(30), handlers.HandleCreateOffer(deps.Offers, logger))
			admin.PUT("/offers", middleware.RateLimit(30), handlers.HandleUpdateOffer(deps.Offers, logger))
			admin.DELETE("/offers", middleware.RateLimit(30), handlers.HandleDeleteOffer(deps.Repos, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
