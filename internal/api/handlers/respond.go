package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/pkg/errors"
)

// Envelope is the uniform response wrapper
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes a paginated listing
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func respondPage(c *gin.Context, data interface{}, page, pageSize, totalItems int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: totalItems,
			TotalPages: totalPages,
		},
	})
}

// respondError maps the typed error taxonomy onto HTTP statuses, keeping the
// uniform envelope. Unclassified errors become a generic 500 without leaking
// internals.
func respondError(c *gin.Context, logger *zap.Logger, operation string, err error) {
	switch e := err.(type) {
	case *errors.ErrValidation:
		c.JSON(http.StatusBadRequest, Envelope{
			Success: false,
			Message: e.Message,
			Data:    validationData(e),
		})
	case *errors.ErrOfferRejected:
		c.JSON(http.StatusBadRequest, Envelope{
			Success: false,
			Message: e.Message,
			Data:    gin.H{"code": e.Code, "reason": e.Reason},
		})
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, Envelope{Success: false, Message: e.Error()})
	case *errors.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, Envelope{Success: false, Message: e.Error()})
	case *errors.ErrForbidden:
		c.JSON(http.StatusForbidden, Envelope{Success: false, Message: e.Error()})
	case *errors.ErrInvalidStateTransition:
		c.JSON(http.StatusConflict, Envelope{Success: false, Message: e.Error()})
	case *errors.ErrInsufficientStock:
		c.JSON(http.StatusConflict, Envelope{
			Success: false,
			Message: e.Error(),
			Data: gin.H{
				"productId": e.ProductID,
				"required":  e.Required,
				"available": e.Available,
			},
		})
	case *errors.ErrPaymentProvider:
		logger.Error("Payment provider failure", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusBadGateway, Envelope{Success: false, Message: "payment provider is unavailable"})
	default:
		logger.Error("Unhandled error", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Envelope{Success: false, Message: "internal error"})
	}
}

func validationData(e *errors.ErrValidation) interface{} {
	if len(e.Items) == 0 {
		return nil
	}
	return gin.H{"invalidItems": e.Items}
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: message})
}
