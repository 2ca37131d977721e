package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onegreenvn/ads-proposal-backend/internal/middleware"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/auth"
)

type AuthHandler struct {
	authService *auth.AuthService
}

func NewAuthHandler(authService *auth.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// IssueToken godoc
// @Summary Issue reviewer token
// @Description Issue a JWT for a reviewer (orchestrator only)
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.IssueTokenRequest true "Reviewer"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/v1/auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req models.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	token, expiresAt, err := h.authService.IssueToken(req.ReviewerID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	})
}

// GetProfile godoc
// @Summary Get caller profile
// @Description Return who the current credentials belong to
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ProfileResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	resp := models.ProfileResponse{
		Actor:    middleware.Actor(c),
		AuthType: c.GetString(middleware.ContextAuthType),
	}
	if info, exists := c.Get(middleware.ContextTokenInfo); exists {
		resp.Token, _ = info.(*models.TokenInfo)
	}
	c.JSON(http.StatusOK, resp)
}
