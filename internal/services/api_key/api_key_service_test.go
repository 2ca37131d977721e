package api_key

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.Len(t, key, 64)

	hash, err := HashAPIKey(key)
	require.NoError(t, err)

	svc := NewService(hash)
	assert.True(t, svc.Enabled())
	assert.NoError(t, svc.ValidateAPIKey(key))
	assert.ErrorIs(t, svc.ValidateAPIKey("wrong"), ErrInvalidAPIKey)
	assert.ErrorIs(t, svc.ValidateAPIKey(""), ErrInvalidAPIKey)

	assert.ErrorIs(t, NewService("").ValidateAPIKey(key), ErrInvalidAPIKey)
}
