package service

import (
	"time"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/shiprocket"
)

// BuildTimeline maps an order and optional live carrier tracking onto the
// fixed domain timeline. "Order Placed" is always present; confirmed, shipped
// and delivered stages appear once the order reached them. Live carrier scans
// are appended as granular events. Exactly one event carries the current flag.
func BuildTimeline(order *domain.Order, live *shiprocket.TrackingInfo) []TrackingEvent {
	events := []TrackingEvent{
		{
			Status:      "Order Placed",
			Description: "Your order has been placed",
			Timestamp:   order.CreatedAt,
			Completed:   true,
		},
	}

	if order.Status.Reached(domain.OrderStatusConfirmed) {
		events = append(events, TrackingEvent{
			Status:      "Confirmed",
			Description: "Your order has been confirmed",
			Timestamp:   timestampOr(order.ConfirmedAt, order.UpdatedAt),
			Completed:   true,
		})
	}
	if order.Status.Reached(domain.OrderStatusShipped) {
		events = append(events, TrackingEvent{
			Status:      "Shipped",
			Description: shippedDescription(order),
			Timestamp:   timestampOr(order.ShippedAt, order.UpdatedAt),
			Completed:   true,
		})
	}
	if order.Status.Reached(domain.OrderStatusDelivered) {
		events = append(events, TrackingEvent{
			Status:      "Delivered",
			Description: "Your order has been delivered",
			Timestamp:   timestampOr(order.DeliveredAt, order.UpdatedAt),
			Completed:   true,
		})
	}

	liveCount := 0
	if live != nil {
		for _, scan := range live.History {
			event := TrackingEvent{
				Status:      scan.Status,
				Description: scan.Activity,
				Timestamp:   scan.Time,
				IsLive:      true,
				Location:    scan.Location,
				Remark:      scan.Remark,
			}
			if event.Status == "" {
				event.Status = "In Transit"
			}
			events = append(events, event)
			liveCount++
		}
	}

	markCurrent(events, order, liveCount)
	return events
}

// markCurrent flags the most advanced stage: the delivered skeleton event for
// delivered orders, otherwise the latest live scan if any, otherwise the last
// completed skeleton event.
func markCurrent(events []TrackingEvent, order *domain.Order, liveCount int) {
	if len(events) == 0 {
		return
	}
	if order.Status == domain.OrderStatusDelivered {
		for i := range events {
			if events[i].Status == "Delivered" && !events[i].IsLive {
				events[i].Current = true
				return
			}
		}
	}
	if liveCount > 0 {
		events[len(events)-1].Current = true
		return
	}
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Completed {
			events[i].Current = true
			return
		}
	}
}

func shippedDescription(order *domain.Order) string {
	if order.Carrier != nil && *order.Carrier != "" {
		return "Your order has been shipped via " + *order.Carrier
	}
	return "Your order has been shipped"
}

func timestampOr(t *time.Time, fallback time.Time) time.Time {
	if t != nil {
		return *t
	}
	return fallback
}
