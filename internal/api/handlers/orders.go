package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/api/middleware"
	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/internal/service"
)

// HandleGetOrder handles GET /v1/orders/:idOrNumber
func HandleGetOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, Envelope{Success: false, Message: "unauthorized"})
			return
		}

		order, err := orders.Get(c.Request.Context(), c.Param("idOrNumber"), user)
		if err != nil {
			respondError(c, logger, "get_order", err)
			return
		}
		respondOK(c, "", service.FormatOrder(order))
	}
}

// HandleListOrders handles GET /v1/orders. Admins see every order and may
// filter by status; customers see their own.
func HandleListOrders(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, Envelope{Success: false, Message: "unauthorized"})
			return
		}

		page, pageSize := pageParams(c)
		filter := repository.OrderFilter{
			Limit:  pageSize,
			Offset: (page - 1) * pageSize,
		}
		if raw := c.Query("status"); raw != "" {
			status := domain.OrderStatus(raw)
			if !status.IsValid() {
				respondBadRequest(c, "unknown order status filter")
				return
			}
			filter.Status = &status
		}

		list, total, err := orders.List(c.Request.Context(), user, filter)
		if err != nil {
			respondError(c, logger, "list_orders", err)
			return
		}

		views := make([]service.OrderView, len(list))
		for i, order := range list {
			views[i] = service.FormatOrder(order)
		}
		respondPage(c, views, page, pageSize, total)
	}
}

// HandlePatchOrder handles PATCH /v1/orders/:idOrNumber (admin only). The
// payload shape selects one of two mutually exclusive branches: a pre-shipment
// edit when any of items/shippingAddress/shipping/discount is present,
// otherwise a status/payment/tracking update.
func HandlePatchOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, Envelope{Success: false, Message: "unauthorized"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondBadRequest(c, "unreadable request body")
			return
		}

		var editReq service.EditOrderRequest
		if err := json.Unmarshal(body, &editReq); err != nil {
			respondBadRequest(c, "malformed JSON payload")
			return
		}

		idOrNumber := c.Param("idOrNumber")

		var order *domain.Order
		if editReq.IsEdit() {
			order, err = orders.Edit(c.Request.Context(), idOrNumber, user, editReq)
		} else {
			var statusReq service.StatusUpdateRequest
			if err := json.Unmarshal(body, &statusReq); err != nil {
				respondBadRequest(c, "malformed JSON payload")
				return
			}
			order, err = orders.UpdateStatus(c.Request.Context(), idOrNumber, user, statusReq)
		}
		if err != nil {
			respondError(c, logger, "patch_order", err)
			return
		}
		respondOK(c, "order updated", service.FormatOrder(order))
	}
}

// CancelOrderRequest carries an optional free-text cancellation reason
type CancelOrderRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// HandleCancelOrder handles PUT /v1/orders/:id/cancel (owner or admin)
func HandleCancelOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, Envelope{Success: false, Message: "unauthorized"})
			return
		}

		var req CancelOrderRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondBadRequest(c, "malformed JSON payload")
				return
			}
		}

		order, err := orders.Cancel(c.Request.Context(), c.Param("idOrNumber"), user, req.Reason)
		if err != nil {
			respondError(c, logger, "cancel_order", err)
			return
		}
		respondOK(c, "order cancelled", service.FormatOrder(order))
	}
}

// HandleDeleteOrder handles DELETE /v1/orders/:idOrNumber (admin only)
func HandleDeleteOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := orders.Delete(c.Request.Context(), c.Param("idOrNumber")); err != nil {
			respondError(c, logger, "delete_order", err)
			return
		}
		respondOK(c, "order deleted", nil)
	}
}

func pageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
