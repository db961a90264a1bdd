package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/api/middleware"
	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/internal/service"
	"github.com/fitkart/storefront-api/pkg/errors"
)

// HandleListOffers handles GET /v1/offers (admin)
func HandleListOffers(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly, _ := strconv.ParseBool(c.DefaultQuery("activeOnly", "false"))

		offers, err := repos.Offer.List(c.Request.Context(), activeOnly)
		if err != nil {
			respondError(c, logger, "list_offers", err)
			return
		}

		views := make([]service.OfferView, len(offers))
		for i, offer := range offers {
			views[i] = service.FormatOffer(offer)
		}
		respondOK(c, "", views)
	}
}

// HandleCreateOffer handles POST /v1/offers (admin)
func HandleCreateOffer(offers *service.OfferService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload service.OfferPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusUnprocessableEntity, Envelope{
				Success: false,
				Message: "validation failed: " + err.Error(),
			})
			return
		}

		offer, err := offers.Create(c.Request.Context(), payload)
		if err != nil {
			respondError(c, logger, "create_offer", err)
			return
		}
		respondCreated(c, "offer created", service.FormatOffer(offer))
	}
}

// UpdateOfferRequest wraps an offer update with its target id
type UpdateOfferRequest struct {
	ID string `json:"id" binding:"required,uuid"`
	service.OfferPayload
}

// HandleUpdateOffer handles PUT /v1/offers (admin)
func HandleUpdateOffer(offers *service.OfferService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOfferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, Envelope{
				Success: false,
				Message: "validation failed: " + err.Error(),
			})
			return
		}

		id, err := uuid.Parse(req.ID)
		if err != nil {
			respondBadRequest(c, "invalid offer id")
			return
		}

		offer, err := offers.Update(c.Request.Context(), id, req.OfferPayload)
		if err != nil {
			respondError(c, logger, "update_offer", err)
			return
		}
		respondOK(c, "offer updated", service.FormatOffer(offer))
	}
}

// HandleDeleteOffer handles DELETE /v1/offers?id= (admin)
func HandleDeleteOffer(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Query("id"))
		if err != nil {
			respondBadRequest(c, "invalid offer id")
			return
		}

		if err := repos.Offer.Delete(c.Request.Context(), id); err != nil {
			respondError(c, logger, "delete_offer", err)
			return
		}
		respondOK(c, "offer deleted", nil)
	}
}

// HandleValidateCode handles PATCH /v1/offers: a side-effect-free coupon
// check against a cart. Usage counters never move here.
func HandleValidateCode(
	offers *service.OfferService,
	repos *repository.Repositories,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, Envelope{Success: false, Message: "unauthorized"})
			return
		}

		var req service.ValidateCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, Envelope{
				Success: false,
				Message: "validation failed: " + err.Error(),
			})
			return
		}

		items, products, err := cartForValidation(c, repos, req.Items)
		if err != nil {
			respondError(c, logger, "validate_code", err)
			return
		}

		subtotal := 0.0
		for _, item := range items {
			subtotal += item.Price * float64(item.Quantity)
		}

		discount, _, err := offers.Evaluate(c.Request.Context(), req.Code, subtotal, items, products, user.ID, req.Shipping)
		if err != nil {
			// A rejected coupon is a definite answer, not a request failure.
			if rejected, ok := err.(*errors.ErrOfferRejected); ok {
				respondOK(c, "", service.ValidateCodeResult{
					Valid:   false,
					Reason:  rejected.Reason,
					Message: rejected.Message,
				})
				return
			}
			respondError(c, logger, "validate_code", err)
			return
		}

		respondOK(c, "", service.ValidateCodeResult{Valid: true, Discount: discount})
	}
}

func cartForValidation(c *gin.Context, repos *repository.Repositories, requested []service.CheckoutItem) ([]domain.OrderItem, map[uuid.UUID]*domain.Product, error) {
	ids := make([]uuid.UUID, 0, len(requested))
	for _, item := range requested {
		if id, err := uuid.Parse(item.ProductID); err == nil {
			ids = append(ids, id)
		}
	}
	products, err := repos.Product.GetByIDs(c.Request.Context(), ids)
	if err != nil {
		return nil, nil, err
	}

	items := make([]domain.OrderItem, 0, len(requested))
	for _, req := range requested {
		id, err := uuid.Parse(req.ProductID)
		if err != nil {
			continue
		}
		product, ok := products[id]
		if !ok {
			continue
		}
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  req.Quantity,
		})
	}
	return items, products, nil
}
