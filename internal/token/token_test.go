package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	const secret = "test-secret"

	tokenString, err := BuildJWTString(secret, 5, "admin")
	require.NoError(t, err)

	claims, err := GetClaims(secret, tokenString)
	require.NoError(t, err)
	require.Equal(t, int64(5), claims.UserID)
	require.Equal(t, "admin", claims.Username)

	_, err = GetClaims("other-secret", tokenString)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = GetClaims(secret, "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}
