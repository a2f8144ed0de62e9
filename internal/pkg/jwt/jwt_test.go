package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	s := New("secret", time.Hour)

	token, err := s.GenerateToken(42, "provider")
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "provider", claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := New("secret-a", time.Hour).GenerateToken(1, "customer")
	require.NoError(t, err)

	_, err = New("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := New("secret", -time.Minute).GenerateToken(1, "customer")
	require.NoError(t, err)

	_, err = New("secret", -time.Minute).ValidateToken(token)
	assert.Error(t, err)
}
