package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated API caller
type User struct {
	ID         uuid.UUID
	Name       string
	Email      string
	Role       Role
	APIKeyHash string
	OrderCount int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Product represents a catalog product. Stock is the single source of truth
// for availability; order item changes decrement or restore it.
type Product struct {
	ID        uuid.UUID
	Slug      string
	Name      string
	Brand     string
	Category  string
	Price     float64
	Image     *string
	Stock     int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem represents one line of an order. Immutable once a shipment exists.
type OrderItem struct {
	ProductID uuid.UUID
	Name      string
	Price     float64
	Quantity  int
	Image     *string
	Variant   *string
}

// Address represents a shipping destination
type Address struct {
	Name    string
	Phone   string
	Street  string
	City    string
	State   string
	Pincode string
	Country string
}

// Order is the central aggregate. Total is always recomputed from the other
// money fields, never trusted from a caller.
type Order struct {
	ID            uuid.UUID
	OrderNumber   string
	UserID        uuid.UUID
	Items         []OrderItem
	Address       Address
	Subtotal      float64
	Shipping      float64
	Discount      float64
	Total         float64
	CouponCode    *string
	Status        OrderStatus
	PaymentStatus PaymentStatus

	TrackingNumber *string
	Carrier        *string
	ShipmentID     *string
	ExpectedAt     *time.Time
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	ConfirmedAt    *time.Time

	// ConfirmationSent guards the one-time confirmation notification so
	// repeated status PATCHes never resend it.
	ConfirmationSent   bool
	ConfirmationSentAt *time.Time

	CancelReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecomputeTotal re-derives Total from subtotal, shipping and discount.
// Must be called after any mutation of a money field.
func (o *Order) RecomputeTotal() {
	total := o.Subtotal + o.Shipping - o.Discount
	if total < 0 {
		total = 0
	}
	o.Total = total
}

// HasShipment reports whether a carrier shipment exists for the order.
// Item and price edits are forbidden once it does.
func (o *Order) HasShipment() bool {
	return (o.TrackingNumber != nil && *o.TrackingNumber != "") ||
		(o.ShipmentID != nil && *o.ShipmentID != "")
}

// Editable reports whether a pre-shipment admin edit is still permitted
func (o *Order) Editable() bool {
	if o.Status == OrderStatusShipped || o.Status == OrderStatusDelivered {
		return false
	}
	return !o.HasShipment()
}

// Cancellable reports whether the order can still be voided
func (o *Order) Cancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// AuditEntry records one admin-initiated order edit. Entries are append-only
// and never rewritten.
type AuditEntry struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ActorID    uuid.UUID
	ActorName  string
	ActorEmail string
	Reason     string
	Fields     []string
	CreatedAt  time.Time
}

// Offer represents a coupon. Code is stored uppercase and matched
// case-insensitively.
type Offer struct {
	ID           uuid.UUID
	Code         string
	Type         OfferType
	Value        float64
	MinAmount    float64
	MaxDiscount  *float64
	Categories   []string
	Brands       []string
	ProductIDs   []string
	UsageCount   int
	UsageLimit   *int
	PerUserLimit *int
	StartsAt     *time.Time
	EndsAt       *time.Time
	IsActive     bool
	NewUsersOnly bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Remaining reports whether the offer still has redemptions left
func (of *Offer) Remaining() bool {
	return of.UsageLimit == nil || of.UsageCount < *of.UsageLimit
}
