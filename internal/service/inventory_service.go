package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/pkg/errors"
)

// InventoryService reconciles product stock against order item changes using
// a two-phase protocol: validate every delta, then apply every delta. A failed
// validation aborts the whole reconciliation before any stock moves.
type InventoryService struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(products repository.ProductRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		products: products,
		logger:   logger,
	}
}

// stockDeltas computes per-product quantity changes between two item sets.
// Positive means more units are needed; negative restocks.
func stockDeltas(oldItems, newItems []domain.OrderItem) map[uuid.UUID]int {
	deltas := make(map[uuid.UUID]int)
	for _, item := range oldItems {
		deltas[item.ProductID] -= item.Quantity
	}
	for _, item := range newItems {
		deltas[item.ProductID] += item.Quantity
	}
	for id, delta := range deltas {
		if delta == 0 {
			delete(deltas, id)
		}
	}
	return deltas
}

// Reconcile applies the stock effect of replacing oldItems with newItems.
// Phase one validates every net increase against current stock and fails with
// ErrInsufficientStock naming the product, leaving all stock untouched. Phase
// two applies each delta with a conditional decrement, so a write that lost a
// race to another buyer also surfaces as insufficiency rather than negative
// stock.
func (s *InventoryService) Reconcile(ctx context.Context, oldItems, newItems []domain.OrderItem) error {
	deltas := stockDeltas(oldItems, newItems)
	if len(deltas) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	// Phase one: validate all.
	for id, delta := range deltas {
		if delta <= 0 {
			continue
		}
		product, ok := products[id]
		if !ok {
			return &errors.ErrNotFound{Resource: "product", ID: id.String()}
		}
		if product.Stock < delta {
			return &errors.ErrInsufficientStock{
				ProductID: id.String(),
				Name:      product.Name,
				Required:  delta,
				Available: product.Stock,
			}
		}
	}

	// Phase two: apply all.
	for id, delta := range deltas {
		if delta > 0 {
			if err := s.products.DecrementStock(ctx, id, delta); err != nil {
				s.logger.Error("Stock decrement failed after validation",
					zap.String("productId", id.String()),
					zap.Int("delta", delta),
					zap.Error(err),
				)
				return err
			}
		} else {
			if err := s.products.IncrementStock(ctx, id, -delta); err != nil {
				return err
			}
		}
	}
	return nil
}

// RestockAll returns every line item's full quantity to stock. Used on
// cancellation, where the whole order is voided rather than edited.
func (s *InventoryService) RestockAll(ctx context.Context, items []domain.OrderItem) error {
	for _, item := range items {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("Failed to restore stock on cancellation",
				zap.String("productId", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}
