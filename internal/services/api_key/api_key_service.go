package api_key

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidAPIKey is returned for a missing or wrong key
var ErrInvalidAPIKey = errors.New("invalid API key")

// Service validates the orchestrator API key against its bcrypt hash
type Service struct {
	keyHash []byte
}

// NewService creates a service for the given bcrypt hash. An empty hash
// rejects every key.
func NewService(keyHash string) *Service {
	return &Service{keyHash: []byte(keyHash)}
}

// Enabled reports whether a key hash is configured
func (s *Service) Enabled() bool {
	return len(s.keyHash) > 0
}

// ValidateAPIKey checks key against the configured hash
func (s *Service) ValidateAPIKey(key string) error {
	if !s.Enabled() || key == "" {
		return ErrInvalidAPIKey
	}
	if err := bcrypt.CompareHashAndPassword(s.keyHash, []byte(key)); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}

// HashAPIKey returns the bcrypt hash to configure for key
func HashAPIKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("key must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}
	return string(hash), nil
}

// GenerateAPIKey generates a random 32-byte hex string
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
