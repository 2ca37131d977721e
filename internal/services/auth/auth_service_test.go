package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegreenvn/ads-proposal-backend/internal/config"
)

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewAuthService(config.AuthConfig{JWTSecret: "s3cret", TokenTTL: time.Hour})

	token, expiresAt, err := svc.IssueToken("rev-1", "Mai")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	info, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "rev-1", info.ReviewerID)
	assert.Equal(t, "Mai", info.Name)
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	issuer := NewAuthService(config.AuthConfig{JWTSecret: "one"})
	verifier := NewAuthService(config.AuthConfig{JWTSecret: "two"})

	token, _, err := issuer.IssueToken("rev-1", "")
	require.NoError(t, err)
	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)

	_, _, err = issuer.IssueToken("", "")
	assert.Error(t, err)
}
