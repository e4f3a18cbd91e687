package jwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	token, expireAt, err := GenerateToken("secret", 42, "scrum_master", 1)
	require.NoError(t, err)
	require.False(t, expireAt.IsZero())

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "scrum_master", claims.Role)
	require.Equal(t, "taskflow", claims.Issuer)
}

func TestParseWrongSecret(t *testing.T) {
	token, _, err := GenerateToken("secret", 1, "employee", 1)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	require.Error(t, err)
}

func TestParseExpiredToken(t *testing.T) {
	token, _, err := GenerateToken("secret", 1, "employee", -1)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	require.Error(t, err)
}

func TestParseGarbage(t *testing.T) {
	_, err := ParseToken("secret", "not-a-token")
	require.Error(t, err)
}
