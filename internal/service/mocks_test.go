package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/pkg/errors"
)

type mockOrderRepo struct {
	createFunc               func(ctx context.Context, order *domain.Order) error
	getByIDFunc              func(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	getByNumberFunc          func(ctx context.Context, orderNumber string) (*domain.Order, error)
	listFunc                 func(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error)
	updateFunc               func(ctx context.Context, order *domain.Order) error
	deleteFunc               func(ctx context.Context, id uuid.UUID) error
	appendAuditFunc          func(ctx context.Context, entry *domain.AuditEntry) error
	listAuditFunc            func(ctx context.Context, orderID uuid.UUID) ([]*domain.AuditEntry, error)
	countByUserFunc          func(ctx context.Context, userID uuid.UUID) (int, error)
	countByUserAndCouponFunc func(ctx context.Context, userID uuid.UUID, code string) (int, error)
}

func (m *mockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	return m.createFunc(ctx, order)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderRepo) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return m.getByNumberFunc(ctx, orderNumber)
}

func (m *mockOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockOrderRepo) Update(ctx context.Context, order *domain.Order) error {
	return m.updateFunc(ctx, order)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockOrderRepo) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	if m.appendAuditFunc == nil {
		return nil
	}
	return m.appendAuditFunc(ctx, entry)
}

func (m *mockOrderRepo) ListAudit(ctx context.Context, orderID uuid.UUID) ([]*domain.AuditEntry, error) {
	return m.listAuditFunc(ctx, orderID)
}

func (m *mockOrderRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.countByUserFunc == nil {
		return 0, nil
	}
	return m.countByUserFunc(ctx, userID)
}

func (m *mockOrderRepo) CountByUserAndCoupon(ctx context.Context, userID uuid.UUID, code string) (int, error) {
	if m.countByUserAndCouponFunc == nil {
		return 0, nil
	}
	return m.countByUserAndCouponFunc(ctx, userID, code)
}

// mockProductRepo keeps an in-memory catalog: stock decrements behave like
// the conditional SQL update.
type mockProductRepo struct {
	products map[uuid.UUID]*domain.Product

	decrementCalls []stockCall
	incrementCalls []stockCall
}

type stockCall struct {
	id  uuid.UUID
	qty int
}

func newMockProductRepo(products ...*domain.Product) *mockProductRepo {
	m := &mockProductRepo{products: make(map[uuid.UUID]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	return product, nil
}

func (m *mockProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "product", ID: slug}
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	result := make(map[uuid.UUID]*domain.Product)
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	var result []*domain.Product
	for _, p := range m.products {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockProductRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	product, ok := m.products[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	if product.Stock < qty {
		return &errors.ErrInsufficientStock{
			ProductID: id.String(),
			Name:      product.Name,
			Required:  qty,
			Available: product.Stock,
		}
	}
	product.Stock -= qty
	m.decrementCalls = append(m.decrementCalls, stockCall{id: id, qty: qty})
	return nil
}

func (m *mockProductRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	product, ok := m.products[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	product.Stock += qty
	m.incrementCalls = append(m.incrementCalls, stockCall{id: id, qty: qty})
	return nil
}

type mockOfferRepo struct {
	getByCodeFunc      func(ctx context.Context, code string) (*domain.Offer, error)
	getByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.Offer, error)
	createFunc         func(ctx context.Context, offer *domain.Offer) error
	updateFunc         func(ctx context.Context, offer *domain.Offer) error
	deleteFunc         func(ctx context.Context, id uuid.UUID) error
	listFunc           func(ctx context.Context, activeOnly bool) ([]*domain.Offer, error)
	incrementUsageFunc func(ctx context.Context, id uuid.UUID) error

	incrementCalls int
}

func (m *mockOfferRepo) Create(ctx context.Context, offer *domain.Offer) error {
	return m.createFunc(ctx, offer)
}

func (m *mockOfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOfferRepo) GetByCode(ctx context.Context, code string) (*domain.Offer, error) {
	return m.getByCodeFunc(ctx, code)
}

func (m *mockOfferRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Offer, error) {
	return m.listFunc(ctx, activeOnly)
}

func (m *mockOfferRepo) Update(ctx context.Context, offer *domain.Offer) error {
	return m.updateFunc(ctx, offer)
}

func (m *mockOfferRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockOfferRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	m.incrementCalls++
	if m.incrementUsageFunc == nil {
		return nil
	}
	return m.incrementUsageFunc(ctx, id)
}

type mockUserRepo struct {
	createFunc      func(ctx context.Context, user *domain.User) error
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByAPIKeyFunc func(ctx context.Context, apiKey string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.createFunc(ctx, user)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error) {
	return m.getByAPIKeyFunc(ctx, apiKey)
}
