package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/internal/service"
)

// HandleListProducts handles GET /v1/products
func HandleListProducts(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pageParams(c)
		filter := repository.ProductFilter{
			Category:   c.Query("category"),
			Brand:      c.Query("brand"),
			ActiveOnly: true,
			Limit:      pageSize,
			Offset:     (page - 1) * pageSize,
		}

		products, total, err := repos.Product.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, logger, "list_products", err)
			return
		}

		views := make([]service.ProductView, len(products))
		for i, product := range products {
			views[i] = service.FormatProduct(product)
		}
		respondPage(c, views, page, pageSize, total)
	}
}

// HandleGetProduct handles GET /v1/products/:idOrSlug
func HandleGetProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		idOrSlug := c.Param("idOrSlug")

		var product *domain.Product
		var err error
		if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
			product, err = repos.Product.GetByID(c.Request.Context(), id)
		} else {
			product, err = repos.Product.GetBySlug(c.Request.Context(), idOrSlug)
		}
		if err != nil {
			respondError(c, logger, "get_product", err)
			return
		}
		respondOK(c, "", service.FormatProduct(product))
	}
}
