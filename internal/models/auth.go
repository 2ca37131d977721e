package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ReviewerClaims represents the JWT claims of a proposal reviewer
type ReviewerClaims struct {
	ReviewerID string `json:"reviewer_id"`
	Name       string `json:"name"`
	jwt.RegisteredClaims
}

// TokenInfo represents token information
type TokenInfo struct {
	ReviewerID string    `json:"reviewer_id"`
	Name       string    `json:"name"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ErrorResponse is the error envelope returned by the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// IssueTokenRequest asks for a reviewer token
type IssueTokenRequest struct {
	ReviewerID string `json:"reviewer_id" binding:"required"`
	Name       string `json:"name"`
}

// AuthResponse carries an issued reviewer token
type AuthResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProfileResponse describes the authenticated caller
type ProfileResponse struct {
	Actor    string     `json:"actor"`
	AuthType string     `json:"auth_type"`
	Token    *TokenInfo `json:"token,omitempty"`
}
