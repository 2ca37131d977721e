package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/onegreenvn/ads-proposal-backend/internal/services/auth"
)

// Context keys set by the auth middlewares
const (
	ContextActor     = "actor"
	ContextAuthType  = "auth_type"
	ContextTokenInfo = "token_info"

	AuthTypeAPIKey = "api_key"
	AuthTypeBearer = "bearer"
)

type BearerTokenMiddleware struct {
	authService *auth.AuthService
}

func NewBearerTokenMiddleware(authService *auth.AuthService) *BearerTokenMiddleware {
	return &BearerTokenMiddleware{authService: authService}
}

// BearerTokenAuthMiddleware validates a reviewer JWT and sets the actor
func (m *BearerTokenMiddleware) BearerTokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// already authenticated by API key
		if _, exists := c.Get(ContextActor); exists {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		tokenInfo, err := m.authService.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ContextActor, tokenInfo.ReviewerID)
		c.Set(ContextAuthType, AuthTypeBearer)
		c.Set(ContextTokenInfo, tokenInfo)
		c.Next()
	}
}

// Actor returns the authenticated actor of the request
func Actor(c *gin.Context) string {
	return c.GetString(ContextActor)
}
