package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/payments"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/internal/shiprocket"
	"github.com/fitkart/storefront-api/pkg/errors"
)

// CheckoutService converts a validated cart into a priced, stock-reserved,
// carrier-quoted order and hands it off to the payment collaborator.
type CheckoutService struct {
	repos     *repository.Repositories
	offers    *OfferService
	shipping  *ShippingCalculator
	inventory *InventoryService
	gateway   *shiprocket.Gateway
	payments  payments.Provider
	notifier  ChangeNotifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewCheckoutService creates a new checkout orchestrator
func NewCheckoutService(
	repos *repository.Repositories,
	offers *OfferService,
	shipping *ShippingCalculator,
	inventory *InventoryService,
	gateway *shiprocket.Gateway,
	paymentProvider payments.Provider,
	notifier ChangeNotifier,
	logger *zap.Logger,
) *CheckoutService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &CheckoutService{
		repos:     repos,
		offers:    offers,
		shipping:  shipping,
		inventory: inventory,
		gateway:   gateway,
		payments:  paymentProvider,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateSession runs the checkout pipeline: catalog validation, subtotal,
// hybrid shipping, discount, order creation and payment session. Cart
// validation reports every invalid item at once so the client can fix the
// whole cart in a single round trip.
func (s *CheckoutService) CreateSession(ctx context.Context, user *domain.User, req CheckoutRequest) (*CheckoutResult, error) {
	items, products, err := s.validateCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	subtotal := subtotalOf(items)
	address := addressFromPayload(req.ShippingAddress)

	quotes := s.gateway.Quote(ctx, address.Pincode, parcelWeight(items), req.CashOnDelivery, subtotal)
	selected := s.shipping.Select(quotes, req.SelectedRate)
	shippingCharge := s.shipping.Compute(subtotal, quotes, selected)

	var discount float64
	var offer *domain.Offer
	if req.CouponCode != nil && *req.CouponCode != "" {
		discount, offer, err = s.offers.Evaluate(ctx, *req.CouponCode, subtotal, items, products, user.ID, shippingCharge)
		if err != nil {
			return nil, err
		}
	}

	order := &domain.Order{
		OrderNumber:   generateOrderNumber(s.now()),
		UserID:        user.ID,
		Items:         items,
		Address:       address,
		Subtotal:      subtotal,
		Shipping:      shippingCharge,
		Discount:      discount,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
	}
	if offer != nil {
		order.CouponCode = &offer.Code
	}
	order.RecomputeTotal()

	// Reserve stock before the order exists; validate-all then apply-all.
	if err := s.inventory.Reconcile(ctx, nil, items); err != nil {
		return nil, err
	}

	if err := s.repos.Order.Create(ctx, order); err != nil {
		// Best effort: return the reserved stock.
		if restockErr := s.inventory.RestockAll(ctx, items); restockErr != nil {
			s.logger.Error("Failed to restock after order create failure", zap.Error(restockErr))
		}
		return nil, err
	}

	if offer != nil {
		// Counter moves exactly once per created order; a failure here is
		// reconciled by audit, not by unwinding the order.
		if err := s.offers.Redeem(ctx, offer.ID); err != nil {
			s.logger.Warn("Failed to increment offer usage",
				zap.String("code", offer.Code),
				zap.String("orderNumber", order.OrderNumber),
				zap.Error(err),
			)
		}
	}

	session, err := s.payments.CreateSession(ctx, order.OrderNumber, order.Total)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Checkout session created",
		zap.String("orderNumber", order.OrderNumber),
		zap.Float64("total", order.Total),
		zap.String("quoteOrigin", string(quotes.Origin)),
	)
	s.notifier.OrderChanged(order.ID.String(), order.OrderNumber, string(order.Status), order.CreatedAt)

	return &CheckoutResult{
		OrderNumber: order.OrderNumber,
		OrderID:     order.ID.String(),
		Subtotal:    order.Subtotal,
		Shipping:    order.Shipping,
		Discount:    order.Discount,
		Total:       order.Total,
		Payment:     session,
		Quotes:      quotes.Quotes,
	}, nil
}

// validateCart checks every requested item against the current catalog and
// returns the priced order lines. All failures are collected; one bad item
// rejects the whole cart with the complete issue list.
func (s *CheckoutService) validateCart(ctx context.Context, requested []CheckoutItem) ([]domain.OrderItem, map[uuid.UUID]*domain.Product, error) {
	var issues []errors.ItemIssue
	ids := make([]uuid.UUID, len(requested))
	for i, item := range requested {
		id, err := uuid.Parse(item.ProductID)
		if err != nil || id == uuid.Nil {
			// The zero UUID parses fine but can never match a product; the
			// line must surface as an issue, not vanish from the order.
			issues = append(issues, errors.ItemIssue{ProductID: item.ProductID, Reason: "invalid product id"})
			continue
		}
		ids[i] = id
	}

	products, err := s.repos.Product.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	items := make([]domain.OrderItem, 0, len(requested))
	for i, req := range requested {
		if ids[i] == uuid.Nil {
			continue
		}
		product, ok := products[ids[i]]
		if !ok {
			issues = append(issues, errors.ItemIssue{ProductID: req.ProductID, Reason: "product not found"})
			continue
		}
		if !product.IsActive {
			issues = append(issues, errors.ItemIssue{ProductID: req.ProductID, Name: product.Name, Reason: "product is unavailable"})
			continue
		}
		if product.Stock < req.Quantity {
			issues = append(issues, errors.ItemIssue{
				ProductID: req.ProductID,
				Name:      product.Name,
				Reason:    fmt.Sprintf("only %d in stock, %d requested", product.Stock, req.Quantity),
			})
			continue
		}
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  req.Quantity,
			Image:     product.Image,
			Variant:   req.Variant,
		})
	}

	if len(issues) > 0 {
		return nil, nil, &errors.ErrValidation{Message: "cart contains invalid items", Items: issues}
	}
	return items, products, nil
}

const orderNumberCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateOrderNumber produces a human-readable, globally unique order number
// like FK-20260830-7KQ2MX
func generateOrderNumber(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is not a recoverable condition for checkout
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	for i, b := range buf {
		buf[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
	}
	return fmt.Sprintf("FK-%s-%s", now.Format("20060102"), string(buf))
}
