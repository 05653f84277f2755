package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsignedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return raw
}

func TestDecodeIDTokenClaims(t *testing.T) {
	raw := unsignedToken(t, jwt.MapClaims{
		"sub":                "subject-1",
		"preferred_username": "Jane.Doe",
		"name":               "Jane Doe",
		"email":              "jane.doe@example.com",
	})

	claims, err := DecodeIDTokenClaims(raw)
	require.NoError(t, err)
	assert.Equal(t, "Jane.Doe", claims.Username())
	assert.Equal(t, "Jane Doe", claims.DisplayName())
	assert.Equal(t, "jane.doe@example.com", claims.Email)
}

func TestDecodeIDTokenClaims_Malformed(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":       "",
		"not a jwt":   "garbage",
		"bad payload": "a.b.c",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeIDTokenClaims(raw)
			require.ErrorIs(t, err, ErrMalformedIDToken)
		})
	}
}

func TestIDTokenClaims_Fallbacks(t *testing.T) {
	claims, err := DecodeIDTokenClaims(unsignedToken(t, jwt.MapClaims{
		"sub":         "subject-1",
		"given_name":  "Jane",
		"family_name": "Doe",
	}))
	require.NoError(t, err)
	assert.Equal(t, "subject-1", claims.Username())
	assert.Equal(t, "Jane Doe", claims.DisplayName())
}
