package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/pkg/errors"
)

const userContextKey = "authenticatedUser"

// AuthMiddleware authenticates requests via a bearer API key and stores the
// resolved user on the context
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := extractAPIKey(c.GetHeader("Authorization"))
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "missing API key",
			})
			return
		}

		user, err := repos.User.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			if _, ok := err.(*errors.ErrUnauthorized); !ok {
				logger.Error("Failed to resolve API key", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid API key",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok || user.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "admin access required",
			})
			return
		}
		c.Next()
	}
}

// GetUserFromContext returns the authenticated user set by AuthMiddleware
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok
}

func extractAPIKey(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("bearer "):])
	}
	return header
}
