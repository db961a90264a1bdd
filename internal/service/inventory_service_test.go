package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/service"
	"github.com/fitkart/storefront-api/pkg/errors"
)

func TestInventoryService_Reconcile(t *testing.T) {
	proteinID := uuid.New()
	creatineID := uuid.New()

	tests := []struct {
		name          string
		proteinStock  int
		creatineStock int
		oldItems      []domain.OrderItem
		newItems      []domain.OrderItem
		wantErr       bool
		wantProtein   int
		wantCreatine  int
	}{
		{
			name:         "fresh_order_decrements",
			proteinStock: 10, creatineStock: 5,
			newItems: []domain.OrderItem{
				{ProductID: proteinID, Quantity: 2},
				{ProductID: creatineID, Quantity: 1},
			},
			wantProtein: 8, wantCreatine: 4,
		},
		{
			name:         "quantity_increase_decrements_delta_only",
			proteinStock: 10,
			oldItems:     []domain.OrderItem{{ProductID: proteinID, Quantity: 2}},
			newItems:     []domain.OrderItem{{ProductID: proteinID, Quantity: 5}},
			wantProtein:  7, wantCreatine: 0,
		},
		{
			name:         "quantity_decrease_restocks_delta",
			proteinStock: 10,
			oldItems:     []domain.OrderItem{{ProductID: proteinID, Quantity: 5}},
			newItems:     []domain.OrderItem{{ProductID: proteinID, Quantity: 2}},
			wantProtein:  13, wantCreatine: 0,
		},
		{
			name:         "removed_item_fully_restocked",
			proteinStock: 10, creatineStock: 5,
			oldItems: []domain.OrderItem{
				{ProductID: proteinID, Quantity: 2},
				{ProductID: creatineID, Quantity: 3},
			},
			newItems:    []domain.OrderItem{{ProductID: proteinID, Quantity: 2}},
			wantProtein: 10, wantCreatine: 8,
		},
		{
			name:         "unchanged_items_touch_nothing",
			proteinStock: 10,
			oldItems:     []domain.OrderItem{{ProductID: proteinID, Quantity: 2}},
			newItems:     []domain.OrderItem{{ProductID: proteinID, Quantity: 2}},
			wantProtein:  10, wantCreatine: 0,
		},
		{
			name:         "insufficient_stock_fails",
			proteinStock: 3,
			newItems:     []domain.OrderItem{{ProductID: proteinID, Quantity: 5}},
			wantErr:      true,
			wantProtein:  3, wantCreatine: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := newMockProductRepo(
				&domain.Product{ID: proteinID, Name: "Whey Protein 1kg", Stock: tt.proteinStock, IsActive: true},
				&domain.Product{ID: creatineID, Name: "Creatine 250g", Stock: tt.creatineStock, IsActive: true},
			)
			svc := service.NewInventoryService(products, zap.NewNop())

			err := svc.Reconcile(context.Background(), tt.oldItems, tt.newItems)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantProtein, products.products[proteinID].Stock)
			assert.Equal(t, tt.wantCreatine, products.products[creatineID].Stock)
		})
	}
}

func TestInventoryService_Reconcile_NoPartialApplicationOnValidationFailure(t *testing.T) {
	okID := uuid.New()
	shortID := uuid.New()

	products := newMockProductRepo(
		&domain.Product{ID: okID, Name: "Mass Gainer 3kg", Stock: 50, IsActive: true},
		&domain.Product{ID: shortID, Name: "BCAA 200g", Stock: 1, IsActive: true},
	)
	svc := service.NewInventoryService(products, zap.NewNop())

	err := svc.Reconcile(context.Background(), nil, []domain.OrderItem{
		{ProductID: okID, Quantity: 10},
		{ProductID: shortID, Quantity: 5},
	})

	require.Error(t, err)
	var insufficient *errors.ErrInsufficientStock
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, shortID.String(), insufficient.ProductID)
	assert.Equal(t, "BCAA 200g", insufficient.Name)
	assert.Equal(t, 5, insufficient.Required)
	assert.Equal(t, 1, insufficient.Available)

	// Validation failed before any stock moved.
	assert.Equal(t, 50, products.products[okID].Stock)
	assert.Equal(t, 1, products.products[shortID].Stock)
	assert.Empty(t, products.decrementCalls)
	assert.Empty(t, products.incrementCalls)
}

func TestInventoryService_Reconcile_UnknownProduct(t *testing.T) {
	products := newMockProductRepo()
	svc := service.NewInventoryService(products, zap.NewNop())

	err := svc.Reconcile(context.Background(), nil, []domain.OrderItem{
		{ProductID: uuid.New(), Quantity: 1},
	})

	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "product", notFound.Resource)
}

func TestInventoryService_RestockAll(t *testing.T) {
	proteinID := uuid.New()
	creatineID := uuid.New()
	products := newMockProductRepo(
		&domain.Product{ID: proteinID, Stock: 3, IsActive: true},
		&domain.Product{ID: creatineID, Stock: 0, IsActive: true},
	)
	svc := service.NewInventoryService(products, zap.NewNop())

	err := svc.RestockAll(context.Background(), []domain.OrderItem{
		{ProductID: proteinID, Quantity: 2},
		{ProductID: creatineID, Quantity: 4},
	})

	require.NoError(t, err)
	assert.Equal(t, 5, products.products[proteinID].Stock)
	assert.Equal(t, 4, products.products[creatineID].Stock)
}
