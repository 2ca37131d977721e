package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

const tokenIssuer = "ads-proposal-backend"

// AuthService issues and validates reviewer tokens
type AuthService struct {
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates an auth service from the auth configuration
func NewAuthService(cfg config.AuthConfig) *AuthService {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = []byte("default-secret-key-change-in-production")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{jwtSecret: secret, tokenTTL: ttl}
}

// IssueToken signs a reviewer token
func (s *AuthService) IssueToken(reviewerID, name string) (string, time.Time, error) {
	if reviewerID == "" {
		return "", time.Time{}, errors.New("reviewer id is required")
	}
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	claims := &models.ReviewerClaims{
		ReviewerID: reviewerID,
		Name:       name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   reviewerID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken validates and parses a reviewer token
func (s *AuthService) ValidateToken(tokenString string) (*models.TokenInfo, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.ReviewerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*models.ReviewerClaims)
	if !ok || !token.Valid || claims.ReviewerID == "" {
		return nil, errors.New("invalid token claims")
	}
	return &models.TokenInfo{
		ReviewerID: claims.ReviewerID,
		Name:       claims.Name,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
