package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/pkg/errors"
)

// OfferService evaluates coupon codes against carts and manages offer CRUD.
// Evaluate is side-effect free; usage counters move only through Redeem, which
// checkout calls exactly once per created order.
type OfferService struct {
	repos  *repository.Repositories
	logger *zap.Logger
	now    func() time.Time
}

// NewOfferService creates a new offer service
func NewOfferService(repos *repository.Repositories, logger *zap.Logger) *OfferService {
	return &OfferService{
		repos:  repos,
		logger: logger,
		now:    time.Now,
	}
}

// Evaluate checks a coupon code against the cart and returns the discount
// amount. Every check is a hard stop; failures carry a reason code for user
// messaging. shippingCharge feeds shipping-type offers, whose discount equals
// the already-computed shipping cost.
func (s *OfferService) Evaluate(
	ctx context.Context,
	code string,
	subtotal float64,
	items []domain.OrderItem,
	products map[uuid.UUID]*domain.Product,
	userID uuid.UUID,
	shippingCharge float64,
) (float64, *domain.Offer, error) {
	offer, err := s.repos.Offer.GetByCode(ctx, code)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return 0, nil, &errors.ErrOfferRejected{
				Code:    strings.ToUpper(code),
				Reason:  errors.OfferReasonNotFound,
				Message: "this coupon code does not exist",
			}
		}
		return 0, nil, err
	}

	if rejection := s.checkUsable(offer); rejection != nil {
		return 0, nil, rejection
	}

	if err := s.checkUserLimits(ctx, offer, userID); err != nil {
		return 0, nil, err
	}

	if subtotal < offer.MinAmount {
		return 0, nil, &errors.ErrOfferRejected{
			Code:    offer.Code,
			Reason:  errors.OfferReasonMinimumNotMet,
			Message: fmt.Sprintf("add items worth %.0f more to use this coupon", offer.MinAmount-subtotal),
		}
	}

	if !s.applies(offer, items, products) {
		return 0, nil, &errors.ErrOfferRejected{
			Code:    offer.Code,
			Reason:  errors.OfferReasonNotApplicable,
			Message: "this coupon does not apply to the items in your cart",
		}
	}

	return s.discountFor(offer, subtotal, shippingCharge), offer, nil
}

func (s *OfferService) checkUsable(offer *domain.Offer) *errors.ErrOfferRejected {
	if !offer.IsActive {
		return &errors.ErrOfferRejected{
			Code:    offer.Code,
			Reason:  errors.OfferReasonInactive,
			Message: "this coupon is no longer active",
		}
	}
	now := s.now()
	if offer.StartsAt != nil && now.Before(*offer.StartsAt) {
		return &errors.ErrOfferRejected{
			Code:    offer.Code,
			Reason:  errors.OfferReasonScheduled,
			Message: "this coupon is not active yet",
		}
	}
	if offer.EndsAt != nil && now.After(*offer.EndsAt) {
		return &errors.ErrOfferRejected{
			Code:    offer.Code,
			Reason:  errors.OfferReasonExpired,
			Message: "this coupon has expired",
		}
	}
	if !offer.Remaining() {
		return &errors.ErrOfferRejected{
			Code:    offer.Code,
			Reason:  errors.OfferReasonExhausted,
			Message: "this coupon has reached its usage limit",
		}
	}
	return nil
}

func (s *OfferService) checkUserLimits(ctx context.Context, offer *domain.Offer, userID uuid.UUID) error {
	if offer.NewUsersOnly {
		count, err := s.repos.Order.CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if count > 0 {
			return &errors.ErrOfferRejected{
				Code:    offer.Code,
				Reason:  errors.OfferReasonNewCustomersOnly,
				Message: "this coupon is for new customers only",
			}
		}
	}
	if offer.PerUserLimit != nil {
		used, err := s.repos.Order.CountByUserAndCoupon(ctx, userID, offer.Code)
		if err != nil {
			return err
		}
		if used >= *offer.PerUserLimit {
			return &errors.ErrOfferRejected{
				Code:    offer.Code,
				Reason:  errors.OfferReasonExhausted,
				Message: "you have already used this coupon the maximum number of times",
			}
		}
	}
	return nil
}

// applies checks category/brand/product restrictions. One cart item matching
// any one restriction is enough. Category restrictions accept either the slug
// or the display name.
func (s *OfferService) applies(offer *domain.Offer, items []domain.OrderItem, products map[uuid.UUID]*domain.Product) bool {
	if len(offer.Categories) == 0 && len(offer.Brands) == 0 && len(offer.ProductIDs) == 0 {
		return true
	}

	for _, item := range items {
		for _, id := range offer.ProductIDs {
			if strings.EqualFold(id, item.ProductID.String()) {
				return true
			}
		}
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		for _, category := range offer.Categories {
			if strings.EqualFold(category, product.Category) ||
				strings.EqualFold(slugify(category), slugify(product.Category)) {
				return true
			}
		}
		for _, brand := range offer.Brands {
			if strings.EqualFold(brand, product.Brand) {
				return true
			}
		}
	}
	return false
}

func (s *OfferService) discountFor(offer *domain.Offer, subtotal, shippingCharge float64) float64 {
	switch offer.Type {
	case domain.OfferTypePercentage:
		discount := subtotal * offer.Value / 100
		if offer.MaxDiscount != nil && discount > *offer.MaxDiscount {
			discount = *offer.MaxDiscount
		}
		return discount
	case domain.OfferTypeFixed:
		return offer.Value
	case domain.OfferTypeShipping:
		return shippingCharge
	default:
		return 0
	}
}

// Redeem increments the offer's usage counter. Called once per order that
// used the coupon, never on validation-only evaluations.
func (s *OfferService) Redeem(ctx context.Context, offerID uuid.UUID) error {
	return s.repos.Offer.IncrementUsage(ctx, offerID)
}

// Create persists a new offer
func (s *OfferService) Create(ctx context.Context, payload OfferPayload) (*domain.Offer, error) {
	offer := offerFromPayload(payload)
	if !offer.Type.IsValid() {
		return nil, &errors.ErrValidation{Message: "invalid offer type"}
	}
	if err := s.repos.Offer.Create(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// Update rewrites an existing offer, keeping its usage counter
func (s *OfferService) Update(ctx context.Context, id uuid.UUID, payload OfferPayload) (*domain.Offer, error) {
	existing, err := s.repos.Offer.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	offer := offerFromPayload(payload)
	offer.ID = existing.ID
	offer.UsageCount = existing.UsageCount
	offer.CreatedAt = existing.CreatedAt
	if payload.IsActive == nil {
		offer.IsActive = existing.IsActive
	}
	if err := s.repos.Offer.Update(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func offerFromPayload(payload OfferPayload) *domain.Offer {
	offer := &domain.Offer{
		Code:         strings.ToUpper(strings.TrimSpace(payload.Code)),
		Type:         domain.OfferType(payload.Type),
		Value:        payload.Value,
		MinAmount:    payload.MinAmount,
		MaxDiscount:  payload.MaxDiscount,
		Categories:   payload.Categories,
		Brands:       payload.Brands,
		ProductIDs:   payload.ProductIDs,
		UsageLimit:   payload.UsageLimit,
		PerUserLimit: payload.PerUserLimit,
		StartsAt:     payload.StartsAt,
		EndsAt:       payload.EndsAt,
		IsActive:     true,
		NewUsersOnly: payload.NewUsersOnly,
	}
	if payload.IsActive != nil {
		offer.IsActive = *payload.IsActive
	}
	return offer
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}
