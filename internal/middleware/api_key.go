package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/onegreenvn/ads-proposal-backend/internal/services/api_key"
)

// OrchestratorActor is the actor name recorded for API key requests
const OrchestratorActor = "orchestrator"

// APIKeyMiddleware handles orchestrator API key authentication
type APIKeyMiddleware struct {
	apiKeyService *api_key.Service
}

// NewAPIKeyMiddleware creates a new API key middleware
func NewAPIKeyMiddleware(apiKeyService *api_key.Service) *APIKeyMiddleware {
	return &APIKeyMiddleware{
		apiKeyService: apiKeyService,
	}
}

// APIKeyAuthMiddleware validates an "ApiKey <key>" header. Other schemes
// are left to the next middleware.
func (m *APIKeyMiddleware) APIKeyAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "ApiKey ") {
			c.Next()
			return
		}

		apiKey := strings.TrimSpace(strings.TrimPrefix(authHeader, "ApiKey "))
		if err := m.apiKeyService.ValidateAPIKey(apiKey); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ContextActor, OrchestratorActor)
		c.Set(ContextAuthType, AuthTypeAPIKey)
		c.Next()
	}
}

// RequireAPIKey only lets requests authenticated with the orchestrator key through
func RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextAuthType) != AuthTypeAPIKey {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Orchestrator API key required"})
			return
		}
		c.Next()
	}
}
