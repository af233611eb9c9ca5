package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("secret", 42, "clerk", "ROLE_STAFF", 24)
	require.NoError(t, err)

	claims, err := ParseAuth("Bearer "+tok, "secret")
	require.NoError(t, err)
	require.Equal(t, float64(42), claims["sub"])
	require.Equal(t, "clerk", claims["username"])
	require.Equal(t, "ROLE_STAFF", claims["role"])
}

func TestParseAuth_BadInputs(t *testing.T) {
	tok, err := Issue("secret", 1, "u", "ROLE_STAFF", 1)
	require.NoError(t, err)

	_, err = ParseAuth("", "secret")
	require.Error(t, err)

	_, err = ParseAuth("Bearer ", "secret")
	require.Error(t, err)

	_, err = ParseAuth("Bearer "+tok, "wrong-secret")
	require.Error(t, err)
}

func TestParseAuth_AcceptsBareToken(t *testing.T) {
	tok, err := Issue("secret", 1, "u", "ROLE_STAFF", 1)
	require.NoError(t, err)

	claims, err := ParseAuth(tok, "secret")
	require.NoError(t, err)
	require.Equal(t, float64(1), claims["sub"])
}

func TestRemainingTTL(t *testing.T) {
	future := float64(time.Now().Add(2 * time.Hour).Unix())
	d := RemainingTTL(map[string]any{"exp": future})
	require.Greater(t, d, time.Hour)
	require.LessOrEqual(t, d, 2*time.Hour)

	require.Equal(t, time.Duration(0), RemainingTTL(map[string]any{}))
	require.Equal(t, time.Duration(0), RemainingTTL(map[string]any{
		"exp": float64(time.Now().Add(-time.Hour).Unix()),
	}))
}
