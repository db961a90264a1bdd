package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/internal/service"
	"github.com/fitkart/storefront-api/pkg/errors"
)

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }
func timePtr(t time.Time) *time.Time {
	return &t
}

func offerServiceWith(offers *mockOfferRepo, orders *mockOrderRepo) *service.OfferService {
	if orders == nil {
		orders = &mockOrderRepo{}
	}
	repos := &repository.Repositories{Offer: offers, Order: orders}
	return service.NewOfferService(repos, zap.NewNop())
}

func fixedOffer(offer *domain.Offer) *mockOfferRepo {
	return &mockOfferRepo{
		getByCodeFunc: func(ctx context.Context, code string) (*domain.Offer, error) {
			if offer != nil && offer.Code == code {
				return offer, nil
			}
			return nil, &errors.ErrNotFound{Resource: "offer", ID: code}
		},
	}
}

func TestOfferService_Evaluate_PercentageCappedAtMaxDiscount(t *testing.T) {
	offer := &domain.Offer{
		ID:          uuid.New(),
		Code:        "SAVE50",
		Type:        domain.OfferTypePercentage,
		Value:       50,
		MinAmount:   500,
		MaxDiscount: floatPtr(200),
		IsActive:    true,
	}
	offers := fixedOffer(offer)
	svc := offerServiceWith(offers, nil)

	// 50% of 1000 is 500, capped at 200.
	discount, got, err := svc.Evaluate(context.Background(), "SAVE50", 1000, nil, nil, uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, float64(200), discount)
	assert.Equal(t, offer.Code, got.Code)

	// Evaluation never moves the usage counter.
	assert.Zero(t, offers.incrementCalls)
}

func TestOfferService_Evaluate_PercentageBelowCap(t *testing.T) {
	offer := &domain.Offer{
		ID:          uuid.New(),
		Code:        "SAVE10",
		Type:        domain.OfferTypePercentage,
		Value:       10,
		MaxDiscount: floatPtr(200),
		IsActive:    true,
	}
	svc := offerServiceWith(fixedOffer(offer), nil)

	discount, _, err := svc.Evaluate(context.Background(), "SAVE10", 800, nil, nil, uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, float64(80), discount)
}

func TestOfferService_Evaluate_FixedAndShippingTypes(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		offer := &domain.Offer{ID: uuid.New(), Code: "FLAT100", Type: domain.OfferTypeFixed, Value: 100, IsActive: true}
		svc := offerServiceWith(fixedOffer(offer), nil)
		discount, _, err := svc.Evaluate(context.Background(), "FLAT100", 900, nil, nil, uuid.New(), 0)
		require.NoError(t, err)
		assert.Equal(t, float64(100), discount)
	})

	t.Run("shipping_discount_equals_shipping_charge", func(t *testing.T) {
		offer := &domain.Offer{ID: uuid.New(), Code: "FREESHIP", Type: domain.OfferTypeShipping, IsActive: true}
		svc := offerServiceWith(fixedOffer(offer), nil)
		discount, _, err := svc.Evaluate(context.Background(), "FREESHIP", 900, nil, nil, uuid.New(), 75)
		require.NoError(t, err)
		assert.Equal(t, float64(75), discount)
	})
}

func TestOfferService_Evaluate_RejectionReasons(t *testing.T) {
	now := time.Now()
	userID := uuid.New()

	tests := []struct {
		name       string
		offer      *domain.Offer
		code       string
		subtotal   float64
		orders     *mockOrderRepo
		wantReason string
	}{
		{
			name:       "unknown_code",
			offer:      nil,
			code:       "NOPE",
			subtotal:   1000,
			wantReason: errors.OfferReasonNotFound,
		},
		{
			name:       "inactive",
			offer:      &domain.Offer{Code: "OLD", Type: domain.OfferTypeFixed, Value: 50, IsActive: false},
			code:       "OLD",
			subtotal:   1000,
			wantReason: errors.OfferReasonInactive,
		},
		{
			name: "not_yet_active",
			offer: &domain.Offer{
				Code: "SOON", Type: domain.OfferTypeFixed, Value: 50, IsActive: true,
				StartsAt: timePtr(now.Add(24 * time.Hour)),
			},
			code:       "SOON",
			subtotal:   1000,
			wantReason: errors.OfferReasonScheduled,
		},
		{
			name: "expired",
			offer: &domain.Offer{
				Code: "GONE", Type: domain.OfferTypeFixed, Value: 50, IsActive: true,
				EndsAt: timePtr(now.Add(-time.Hour)),
			},
			code:       "GONE",
			subtotal:   1000,
			wantReason: errors.OfferReasonExpired,
		},
		{
			name: "globally_exhausted",
			offer: &domain.Offer{
				Code: "MAXED", Type: domain.OfferTypeFixed, Value: 50, IsActive: true,
				UsageCount: 100, UsageLimit: intPtr(100),
			},
			code:       "MAXED",
			subtotal:   1000,
			wantReason: errors.OfferReasonExhausted,
		},
		{
			name: "minimum_not_met",
			offer: &domain.Offer{
				Code: "BIGCART", Type: domain.OfferTypeFixed, Value: 50, IsActive: true, MinAmount: 2000,
			},
			code:       "BIGCART",
			subtotal:   1000,
			wantReason: errors.OfferReasonMinimumNotMet,
		},
		{
			name: "new_customers_only",
			offer: &domain.Offer{
				Code: "WELCOME", Type: domain.OfferTypeFixed, Value: 50, IsActive: true, NewUsersOnly: true,
			},
			code:     "WELCOME",
			subtotal: 1000,
			orders: &mockOrderRepo{
				countByUserFunc: func(ctx context.Context, id uuid.UUID) (int, error) { return 3, nil },
			},
			wantReason: errors.OfferReasonNewCustomersOnly,
		},
		{
			name: "per_user_limit_reached",
			offer: &domain.Offer{
				Code: "ONCE", Type: domain.OfferTypeFixed, Value: 50, IsActive: true, PerUserLimit: intPtr(1),
			},
			code:     "ONCE",
			subtotal: 1000,
			orders: &mockOrderRepo{
				countByUserAndCouponFunc: func(ctx context.Context, id uuid.UUID, code string) (int, error) { return 1, nil },
			},
			wantReason: errors.OfferReasonExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := offerServiceWith(fixedOffer(tt.offer), tt.orders)

			_, _, err := svc.Evaluate(context.Background(), tt.code, tt.subtotal, nil, nil, userID, 0)
			require.Error(t, err)
			var rejected *errors.ErrOfferRejected
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, tt.wantReason, rejected.Reason)
		})
	}
}

func TestOfferService_Evaluate_Restrictions(t *testing.T) {
	proteinID := uuid.New()
	preWorkoutID := uuid.New()
	products := map[uuid.UUID]*domain.Product{
		proteinID:    {ID: proteinID, Category: "Proteins", Brand: "MuscleBlaze"},
		preWorkoutID: {ID: preWorkoutID, Category: "Pre-Workout", Brand: "GNC"},
	}
	items := []domain.OrderItem{
		{ProductID: proteinID, Quantity: 1},
		{ProductID: preWorkoutID, Quantity: 1},
	}

	tests := []struct {
		name    string
		offer   *domain.Offer
		wantErr bool
	}{
		{
			name:  "category_match_by_name",
			offer: &domain.Offer{Code: "C1", Type: domain.OfferTypeFixed, Value: 50, IsActive: true, Categories: []string{"Proteins"}},
		},
		{
			name:  "category_match_by_slug",
			offer: &domain.Offer{Code: "C2", Type: domain.OfferTypeFixed, Value: 50, IsActive: true, Categories: []string{"pre-workout"}},
		},
		{
			name:  "brand_match_case_insensitive",
			offer: &domain.Offer{Code: "B1", Type: domain.OfferTypeFixed, Value: 50, IsActive: true, Brands: []string{"muscleblaze"}},
		},
		{
			name:  "product_id_match",
			offer: &domain.Offer{Code: "P1", Type: domain.OfferTypeFixed, Value: 50, IsActive: true, ProductIDs: []string{proteinID.String()}},
		},
		{
			name:    "no_restriction_matches",
			offer:   &domain.Offer{Code: "X1", Type: domain.OfferTypeFixed, Value: 50, IsActive: true, Categories: []string{"Vitamins"}, Brands: []string{"Labrada"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := offerServiceWith(fixedOffer(tt.offer), nil)
			_, _, err := svc.Evaluate(context.Background(), tt.offer.Code, 1000, items, products, uuid.New(), 0)
			if tt.wantErr {
				var rejected *errors.ErrOfferRejected
				require.ErrorAs(t, err, &rejected)
				assert.Equal(t, errors.OfferReasonNotApplicable, rejected.Reason)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOfferService_Redeem(t *testing.T) {
	offers := &mockOfferRepo{}
	svc := offerServiceWith(offers, nil)

	require.NoError(t, svc.Redeem(context.Background(), uuid.New()))
	assert.Equal(t, 1, offers.incrementCalls)
}

func TestOfferService_Create_RejectsUnknownType(t *testing.T) {
	svc := offerServiceWith(&mockOfferRepo{}, nil)

	_, err := svc.Create(context.Background(), service.OfferPayload{Code: "x", Type: "bogo"})
	var validation *errors.ErrValidation
	require.ErrorAs(t, err, &validation)
}

func TestOfferService_Update_KeepsUsageCounter(t *testing.T) {
	id := uuid.New()
	existing := &domain.Offer{ID: id, Code: "KEEP", Type: domain.OfferTypeFixed, Value: 50, UsageCount: 42, IsActive: true}

	var saved *domain.Offer
	offers := &mockOfferRepo{
		getByIDFunc: func(ctx context.Context, got uuid.UUID) (*domain.Offer, error) { return existing, nil },
		updateFunc: func(ctx context.Context, offer *domain.Offer) error {
			saved = offer
			return nil
		},
	}
	svc := offerServiceWith(offers, nil)

	updated, err := svc.Update(context.Background(), id, service.OfferPayload{Code: "keep", Type: "fixed", Value: 75})
	require.NoError(t, err)
	assert.Equal(t, 42, updated.UsageCount)
	assert.Equal(t, "KEEP", saved.Code)
	assert.Equal(t, float64(75), saved.Value)
}
