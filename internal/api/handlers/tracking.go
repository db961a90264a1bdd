package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/api/middleware"
	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/service"
	"github.com/fitkart/storefront-api/internal/shiprocket"
	"github.com/fitkart/storefront-api/internal/stream"
)

// HandleLiveTracking handles GET /v1/tracking/live?orderId=|trackingNumber=.
// It upgrades the response to a server-sent event stream and pushes
// connected/tracking_update/status_change/heartbeat/error events until the
// client disconnects or the subscription's lifetime ceiling passes.
func HandleLiveTracking(
	orders *service.OrderService,
	gateway *shiprocket.Gateway,
	hub *stream.Hub,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, Envelope{Success: false, Message: "unauthorized"})
			return
		}

		orderID := c.Query("orderId")
		trackingNumber := c.Query("trackingNumber")
		if orderID == "" && trackingNumber == "" {
			respondBadRequest(c, "orderId or trackingNumber is required")
			return
		}

		var subject string
		var poll stream.PollFunc
		if orderID != "" {
			// Ownership check up front, before the stream opens.
			if _, err := orders.Get(c.Request.Context(), orderID, user); err != nil {
				respondError(c, logger, "live_tracking", err)
				return
			}
			subject = orderID
			poll = orderPoll(orders, gateway, orderID, user)
		} else {
			subject = trackingNumber
			poll = trackingPoll(gateway, trackingNumber)
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		sub := hub.Subscribe(c.Request.Context(), subject, poll)
		defer sub.Close()

		c.Stream(func(w io.Writer) bool {
			event, open := <-sub.Events
			if !open {
				return false
			}
			if err := sse.Encode(w, sse.Event{Event: event.Type, Data: event}); err != nil {
				return false
			}
			return true
		})
	}
}

// orderPoll refreshes an order plus its live carrier tracking. The carrier
// status drives status_change diffing; with no shipment yet, the order status
// stands in.
func orderPoll(orders *service.OrderService, gateway *shiprocket.Gateway, orderID string, user *domain.User) stream.PollFunc {
	return func(ctx context.Context) (*stream.PollResult, error) {
		order, err := orders.Get(ctx, orderID, user)
		if err != nil {
			return nil, err
		}

		var live *shiprocket.TrackingInfo
		status := string(order.Status)
		if order.TrackingNumber != nil && *order.TrackingNumber != "" {
			live = gateway.Track(ctx, *order.TrackingNumber)
			if live.CurrentStatus != "" {
				status = live.CurrentStatus
			}
		}

		return &stream.PollResult{
			Status: status,
			Payload: gin.H{
				"orderId":     order.ID.String(),
				"orderNumber": order.OrderNumber,
				"status":      order.Status,
				"carrier":     order.Carrier,
				"timeline":    service.BuildTimeline(order, live),
			},
		}, nil
	}
}

// trackingPoll refreshes raw carrier tracking for a bare tracking number
func trackingPoll(gateway *shiprocket.Gateway, trackingNumber string) stream.PollFunc {
	return func(ctx context.Context) (*stream.PollResult, error) {
		info := gateway.Track(ctx, trackingNumber)
		return &stream.PollResult{
			Status: info.CurrentStatus,
			Payload: gin.H{
				"trackingNumber": info.AWB,
				"courier":        info.CourierName,
				"currentStatus":  info.CurrentStatus,
				"eta":            info.ETA,
				"history":        info.History,
			},
		}, nil
	}
}
