package jwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	j := NewJWT("test-secret", 3600)

	token, err := j.GenerateToken("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewJWT("secret-a", 3600).GenerateToken("user-123")
	require.NoError(t, err)

	_, err = NewJWT("secret-b", 3600).ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := NewJWT("test-secret", -60).GenerateToken("user-123")
	require.NoError(t, err)

	_, err = NewJWT("test-secret", -60).ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := NewJWT("test-secret", 3600).ValidateToken("not-a-token")
	require.Error(t, err)
}
