package service

import (
	"time"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/shiprocket"
)

// CheckoutRequest represents the checkout session payload
type CheckoutRequest struct {
	Items           []CheckoutItem  `json:"items" binding:"required,min=1,dive"`
	ShippingAddress AddressPayload  `json:"shippingAddress" binding:"required"`
	CouponCode      *string         `json:"couponCode,omitempty"`
	SelectedRate    *int            `json:"selectedShippingRate,omitempty"`
	CashOnDelivery  bool            `json:"cashOnDelivery"`
}

type CheckoutItem struct {
	ProductID string  `json:"productId" binding:"required,uuid"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Variant   *string `json:"variant,omitempty"`
}

type AddressPayload struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required,pincode"`
	Country string `json:"country"`
}

// CheckoutResult is what a successful checkout hands back to the client
type CheckoutResult struct {
	OrderNumber string             `json:"orderNumber"`
	OrderID     string             `json:"orderId"`
	Subtotal    float64            `json:"subtotal"`
	Shipping    float64            `json:"shipping"`
	Discount    float64            `json:"discount"`
	Total       float64            `json:"total"`
	Payment     interface{}        `json:"payment"`
	Quotes      []shiprocket.Quote `json:"shippingQuotes,omitempty"`
}

// StatusUpdateRequest is branch (a) of the order PATCH: status, payment and
// tracking field updates
type StatusUpdateRequest struct {
	Status         *domain.OrderStatus   `json:"status,omitempty"`
	PaymentStatus  *domain.PaymentStatus `json:"paymentStatus,omitempty"`
	TrackingNumber *string               `json:"trackingNumber,omitempty"`
	Carrier        *string               `json:"carrier,omitempty"`
	CreateShipment bool                  `json:"createShipment,omitempty"`
}

// EditOrderRequest is branch (b) of the order PATCH: a pre-shipment edit of
// items, address or price fields
type EditOrderRequest struct {
	Items           []CheckoutItem  `json:"items,omitempty" binding:"omitempty,min=1,dive"`
	ShippingAddress *AddressPayload `json:"shippingAddress,omitempty"`
	Shipping        *float64        `json:"shipping,omitempty"`
	Discount        *float64        `json:"discount,omitempty"`
	Reason          string          `json:"reason,omitempty"`
}

// IsEdit reports whether a raw PATCH payload selects the edit branch
func (r *EditOrderRequest) IsEdit() bool {
	return len(r.Items) > 0 || r.ShippingAddress != nil || r.Shipping != nil || r.Discount != nil
}

// OfferPayload is the create/update body for offers
type OfferPayload struct {
	Code         string     `json:"code" binding:"required"`
	Type         string     `json:"type" binding:"required,oneof=percentage fixed shipping"`
	Value        float64    `json:"value" binding:"min=0"`
	MinAmount    float64    `json:"minAmount" binding:"min=0"`
	MaxDiscount  *float64   `json:"maxDiscount,omitempty"`
	Categories   []string   `json:"categories,omitempty"`
	Brands       []string   `json:"brands,omitempty"`
	ProductIDs   []string   `json:"productIds,omitempty"`
	UsageLimit   *int       `json:"usageLimit,omitempty"`
	PerUserLimit *int       `json:"perUserLimit,omitempty"`
	StartsAt     *time.Time `json:"startsAt,omitempty"`
	EndsAt       *time.Time `json:"endsAt,omitempty"`
	IsActive     *bool      `json:"isActive,omitempty"`
	NewUsersOnly bool       `json:"newUsersOnly"`
}

// ValidateCodeRequest asks whether a coupon applies to a cart without
// redeeming it
type ValidateCodeRequest struct {
	Code     string         `json:"code" binding:"required"`
	Items    []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	Shipping float64        `json:"shipping" binding:"min=0"`
}

// ValidateCodeResult reports the outcome of a coupon validation
type ValidateCodeResult struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
	Reason   string  `json:"reason,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// TrackingEvent is one entry in an order's synthesized tracking timeline.
// Rebuilt on every fetch, never persisted.
type TrackingEvent struct {
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Completed   bool      `json:"completed"`
	Current     bool      `json:"current"`
	Location    string    `json:"location,omitempty"`
	Remark      string    `json:"remark,omitempty"`
	IsLive      bool      `json:"isLive,omitempty"`
}

// OrderView is the wire shape of an order
type OrderView struct {
	ID             string               `json:"id"`
	OrderNumber    string               `json:"orderNumber"`
	UserID         string               `json:"userId"`
	Items          []OrderItemView      `json:"items"`
	Address        AddressPayload       `json:"shippingAddress"`
	Subtotal       float64              `json:"subtotal"`
	Shipping       float64              `json:"shipping"`
	Discount       float64              `json:"discount"`
	Total          float64              `json:"total"`
	CouponCode     *string              `json:"couponCode,omitempty"`
	Status         domain.OrderStatus   `json:"status"`
	PaymentStatus  domain.PaymentStatus `json:"paymentStatus"`
	TrackingNumber *string              `json:"trackingNumber,omitempty"`
	Carrier        *string              `json:"carrier,omitempty"`
	ShipmentID     *string              `json:"shipmentId,omitempty"`
	ExpectedAt     *time.Time           `json:"expectedAt,omitempty"`
	ShippedAt      *time.Time           `json:"shippedAt,omitempty"`
	DeliveredAt    *time.Time           `json:"deliveredAt,omitempty"`
	CancelReason   *string              `json:"cancelReason,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

type OrderItemView struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     *string `json:"image,omitempty"`
	Variant   *string `json:"variant,omitempty"`
}

// FormatOrder maps the order aggregate to its wire shape
func FormatOrder(order *domain.Order) OrderView {
	items := make([]OrderItemView, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemView{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
			Variant:   item.Variant,
		}
	}
	return OrderView{
		ID:          order.ID.String(),
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID.String(),
		Items:       items,
		Address: AddressPayload{
			Name:    order.Address.Name,
			Phone:   order.Address.Phone,
			Street:  order.Address.Street,
			City:    order.Address.City,
			State:   order.Address.State,
			Pincode: order.Address.Pincode,
			Country: order.Address.Country,
		},
		Subtotal:       order.Subtotal,
		Shipping:       order.Shipping,
		Discount:       order.Discount,
		Total:          order.Total,
		CouponCode:     order.CouponCode,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		TrackingNumber: order.TrackingNumber,
		Carrier:        order.Carrier,
		ShipmentID:     order.ShipmentID,
		ExpectedAt:     order.ExpectedAt,
		ShippedAt:      order.ShippedAt,
		DeliveredAt:    order.DeliveredAt,
		CancelReason:   order.CancelReason,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

// OfferView is the wire shape of an offer
type OfferView struct {
	ID           string           `json:"id"`
	Code         string           `json:"code"`
	Type         domain.OfferType `json:"type"`
	Value        float64          `json:"value"`
	MinAmount    float64          `json:"minAmount"`
	MaxDiscount  *float64         `json:"maxDiscount,omitempty"`
	Categories   []string         `json:"categories,omitempty"`
	Brands       []string         `json:"brands,omitempty"`
	ProductIDs   []string         `json:"productIds,omitempty"`
	UsageCount   int              `json:"usageCount"`
	UsageLimit   *int             `json:"usageLimit,omitempty"`
	PerUserLimit *int             `json:"perUserLimit,omitempty"`
	StartsAt     *time.Time       `json:"startsAt,omitempty"`
	EndsAt       *time.Time       `json:"endsAt,omitempty"`
	IsActive     bool             `json:"isActive"`
	NewUsersOnly bool             `json:"newUsersOnly"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// FormatOffer maps an offer to its wire shape
func FormatOffer(offer *domain.Offer) OfferView {
	return OfferView{
		ID:           offer.ID.String(),
		Code:         offer.Code,
		Type:         offer.Type,
		Value:        offer.Value,
		MinAmount:    offer.MinAmount,
		MaxDiscount:  offer.MaxDiscount,
		Categories:   offer.Categories,
		Brands:       offer.Brands,
		ProductIDs:   offer.ProductIDs,
		UsageCount:   offer.UsageCount,
		UsageLimit:   offer.UsageLimit,
		PerUserLimit: offer.PerUserLimit,
		StartsAt:     offer.StartsAt,
		EndsAt:       offer.EndsAt,
		IsActive:     offer.IsActive,
		NewUsersOnly: offer.NewUsersOnly,
		CreatedAt:    offer.CreatedAt,
	}
}

// ProductView is the wire shape of a catalog product
type ProductView struct {
	ID       string  `json:"id"`
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Image    *string `json:"image,omitempty"`
	Stock    int     `json:"stock"`
	IsActive bool    `json:"isActive"`
}

// FormatProduct maps a product to its wire shape
func FormatProduct(product *domain.Product) ProductView {
	return ProductView{
		ID:       product.ID.String(),
		Slug:     product.Slug,
		Name:     product.Name,
		Brand:    product.Brand,
		Category: product.Category,
		Price:    product.Price,
		Image:    product.Image,
		Stock:    product.Stock,
		IsActive: product.IsActive,
	}
}
