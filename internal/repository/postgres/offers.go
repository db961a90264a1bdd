package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/pkg/errors"
)

type offerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *sql.DB, logger *zap.Logger) repository.OfferRepository {
	return &offerRepository{
		db:     db,
		logger: logger,
	}
}

const offerColumns = `
	id, code, type, value, min_amount, max_discount, categories, brands, product_ids,
	usage_count, usage_limit, per_user_limit, starts_at, ends_at, is_active,
	new_users_only, created_at, updated_at
`

func (r *offerRepository) Create(ctx context.Context, offer *domain.Offer) error {
	if offer.ID == uuid.Nil {
		offer.ID = uuid.New()
	}
	offer.Code = strings.ToUpper(offer.Code)

	query := `
		INSERT INTO offers (
			id, code, type, value, min_amount, max_discount, categories, brands,
			product_ids, usage_limit, per_user_limit, starts_at, ends_at, is_active, new_users_only
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		offer.ID, offer.Code, offer.Type, offer.Value, offer.MinAmount, offer.MaxDiscount,
		pq.Array(offer.Categories), pq.Array(offer.Brands), pq.Array(offer.ProductIDs),
		offer.UsageLimit, offer.PerUserLimit, offer.StartsAt, offer.EndsAt,
		offer.IsActive, offer.NewUsersOnly,
	).Scan(&offer.CreatedAt, &offer.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert offer", zap.Error(err))
		return err
	}
	return nil
}

func (r *offerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	return r.getOne(ctx, query, id.String(), id)
}

func (r *offerRepository) GetByCode(ctx context.Context, code string) (*domain.Offer, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	query := `SELECT ` + offerColumns + ` FROM offers WHERE code = $1`
	return r.getOne(ctx, query, code, code)
}

func (r *offerRepository) getOne(ctx context.Context, query, label string, arg interface{}) (*domain.Offer, error) {
	offer, err := scanOffer(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &errors.ErrNotFound{Resource: "offer", ID: label}
		}
		r.logger.Error("Failed to query offer", zap.Error(err))
		return nil, err
	}
	return offer, nil
}

func scanOffer(row rowScanner) (*domain.Offer, error) {
	var offer domain.Offer
	var maxDiscount sql.NullFloat64
	var usageLimit, perUserLimit sql.NullInt64
	var startsAt, endsAt sql.NullTime

	err := row.Scan(
		&offer.ID, &offer.Code, &offer.Type, &offer.Value, &offer.MinAmount,
		&maxDiscount, pq.Array(&offer.Categories), pq.Array(&offer.Brands),
		pq.Array(&offer.ProductIDs), &offer.UsageCount, &usageLimit, &perUserLimit,
		&startsAt, &endsAt, &offer.IsActive, &offer.NewUsersOnly,
		&offer.CreatedAt, &offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if maxDiscount.Valid {
		offer.MaxDiscount = &maxDiscount.Float64
	}
	if usageLimit.Valid {
		limit := int(usageLimit.Int64)
		offer.UsageLimit = &limit
	}
	if perUserLimit.Valid {
		limit := int(perUserLimit.Int64)
		offer.PerUserLimit = &limit
	}
	if startsAt.Valid {
		offer.StartsAt = &startsAt.Time
	}
	if endsAt.Valid {
		offer.EndsAt = &endsAt.Time
	}
	return &offer, nil
}

func (r *offerRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query offers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var offers []*domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}
	return offers, rows.Err()
}

func (r *offerRepository) Update(ctx context.Context, offer *domain.Offer) error {
	offer.Code = strings.ToUpper(offer.Code)
	query := `
		UPDATE offers SET
			code = $2, type = $3, value = $4, min_amount = $5, max_discount = $6,
			categories = $7, brands = $8, product_ids = $9, usage_limit = $10,
			per_user_limit = $11, starts_at = $12, ends_at = $13, is_active = $14,
			new_users_only = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		offer.ID, offer.Code, offer.Type, offer.Value, offer.MinAmount, offer.MaxDiscount,
		pq.Array(offer.Categories), pq.Array(offer.Brands), pq.Array(offer.ProductIDs),
		offer.UsageLimit, offer.PerUserLimit, offer.StartsAt, offer.EndsAt,
		offer.IsActive, offer.NewUsersOnly,
	).Scan(&offer.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return &errors.ErrNotFound{Resource: "offer", ID: offer.ID.String()}
		}
		r.logger.Error("Failed to update offer", zap.Error(err))
		return err
	}
	return nil
}

func (r *offerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete offer", zap.Error(err))
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &errors.ErrNotFound{Resource: "offer", ID: id.String()}
	}
	return nil
}

// IncrementUsage bumps the usage counter, refusing to pass the usage limit.
// The conditional write keeps usage_count <= usage_limit even under
// concurrent redemptions.
func (r *offerRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE offers
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = $1 AND (usage_limit IS NULL OR usage_count < usage_limit)
	`, id)
	if err != nil {
		r.logger.Error("Failed to increment offer usage", zap.Error(err))
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &errors.ErrOfferRejected{
			Reason:  errors.OfferReasonExhausted,
			Message: "this coupon has reached its usage limit",
		}
	}
	return nil
}
