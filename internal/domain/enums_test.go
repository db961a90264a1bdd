package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fitkart/storefront-api/internal/domain"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	all := []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusConfirmed,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
	}

	allowed := map[domain.OrderStatus][]domain.OrderStatus{
		domain.OrderStatusPending:   {domain.OrderStatusConfirmed, domain.OrderStatusShipped, domain.OrderStatusCancelled},
		domain.OrderStatusConfirmed: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
		domain.OrderStatusShipped:   {domain.OrderStatusDelivered},
		domain.OrderStatusDelivered: {},
		domain.OrderStatusCancelled: {},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			got := from.CanTransitionTo(to)
			assert.Equal(t, want, got, "%s -> %s", from, to)
		}
	}
}

func TestOrderStatus_SameStatusIsNotATransition(t *testing.T) {
	assert.False(t, domain.OrderStatusPending.CanTransitionTo(domain.OrderStatusPending))
	assert.False(t, domain.OrderStatusShipped.CanTransitionTo(domain.OrderStatusShipped))
}

func TestOrderStatus_IsValid(t *testing.T) {
	assert.True(t, domain.OrderStatusConfirmed.IsValid())
	assert.False(t, domain.OrderStatus("returned").IsValid())
	assert.False(t, domain.OrderStatus("").IsValid())
}

func TestOrderStatus_Reached(t *testing.T) {
	tests := []struct {
		name   string
		status domain.OrderStatus
		stage  domain.OrderStatus
		want   bool
	}{
		{"pending_reached_pending", domain.OrderStatusPending, domain.OrderStatusPending, true},
		{"pending_not_reached_confirmed", domain.OrderStatusPending, domain.OrderStatusConfirmed, false},
		{"shipped_reached_confirmed", domain.OrderStatusShipped, domain.OrderStatusConfirmed, true},
		{"shipped_not_reached_delivered", domain.OrderStatusShipped, domain.OrderStatusDelivered, false},
		{"delivered_reached_everything", domain.OrderStatusDelivered, domain.OrderStatusShipped, true},
		{"cancelled_only_reaches_pending", domain.OrderStatusCancelled, domain.OrderStatusConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Reached(tt.stage))
		})
	}
}

func TestPaymentStatus_IsValid(t *testing.T) {
	assert.True(t, domain.PaymentStatusCompleted.IsValid())
	assert.False(t, domain.PaymentStatus("refunded").IsValid())
}

func TestOfferType_IsValid(t *testing.T) {
	assert.True(t, domain.OfferTypePercentage.IsValid())
	assert.True(t, domain.OfferTypeShipping.IsValid())
	assert.False(t, domain.OfferType("bogo").IsValid())
}
