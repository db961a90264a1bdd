package domain

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the order status is one of the five known statuses
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	if s == newStatus {
		return false
	}
	switch s {
	case OrderStatusPending:
		return newStatus == OrderStatusConfirmed ||
			newStatus == OrderStatusShipped ||
			newStatus == OrderStatusCancelled
	case OrderStatusConfirmed:
		return newStatus == OrderStatusShipped ||
			newStatus == OrderStatusCancelled
	case OrderStatusShipped:
		return newStatus == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}

// Reached reports whether the status is at or past the given stage along the
// pending → confirmed → shipped → delivered path. Cancelled orders only reach
// pending.
func (s OrderStatus) Reached(stage OrderStatus) bool {
	return stage.rank() >= 0 && s.rank() >= stage.rank()
}

func (s OrderStatus) rank() int {
	switch s {
	case OrderStatusPending, OrderStatusCancelled:
		return 0
	case OrderStatusConfirmed:
		return 1
	case OrderStatusShipped:
		return 2
	case OrderStatusDelivered:
		return 3
	default:
		return -1
	}
}

// PaymentStatus represents payment collection state, independent of fulfillment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	default:
		return false
	}
}

// OfferType represents how a coupon's value is interpreted
type OfferType string

const (
	OfferTypePercentage OfferType = "percentage"
	OfferTypeFixed      OfferType = "fixed"
	OfferTypeShipping   OfferType = "shipping"
)

// IsValid checks if the offer type is valid
func (t OfferType) IsValid() bool {
	switch t {
	case OfferTypePercentage, OfferTypeFixed, OfferTypeShipping:
		return true
	default:
		return false
	}
}

// Role represents an authenticated caller's role
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)
