package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/api/middleware"
	"github.com/fitkart/storefront-api/internal/service"
)

// HandleCheckout handles POST /v1/checkout/session
func HandleCheckout(checkout *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, Envelope{Success: false, Message: "unauthorized"})
			return
		}

		var req service.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, Envelope{
				Success: false,
				Message: "validation failed: " + err.Error(),
			})
			return
		}

		result, err := checkout.CreateSession(c.Request.Context(), user, req)
		if err != nil {
			respondError(c, logger, "checkout_session", err)
			return
		}
		respondCreated(c, "order created", result)
	}
}
