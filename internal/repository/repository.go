package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/fitkart/storefront-api/internal/domain"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	UserID *uuid.UUID
	Status *domain.OrderStatus
	Limit  int
	Offset int
}

// ProductFilter narrows catalog listings
type ProductFilter struct {
	Category   string
	Brand      string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// OrderRepository persists the order aggregate and its audit trail
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error)
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	AppendAudit(ctx context.Context, entry *domain.AuditEntry) error
	ListAudit(ctx context.Context, orderID uuid.UUID) ([]*domain.AuditEntry, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	CountByUserAndCoupon(ctx context.Context, userID uuid.UUID, code string) (int, error)
}

// ProductRepository reads the catalog and owns stock movements.
// DecrementStock is conditional: it only applies when enough stock remains,
// and reports insufficiency otherwise.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

// OfferRepository persists coupons keyed by uppercase code
type OfferRepository interface {
	Create(ctx context.Context, offer *domain.Offer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error)
	GetByCode(ctx context.Context, code string) (*domain.Offer, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Offer, error)
	Update(ctx context.Context, offer *domain.Offer) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

// UserRepository resolves API credentials to users
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error)
}

// Repositories bundles all repository implementations
type Repositories struct {
	Order   OrderRepository
	Product ProductRepository
	Offer   OfferRepository
	User    UserRepository
}
