package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims is the typed view of the ID token payload. The signature is
// verified by the OIDC adapter at exchange time; later reads decode without
// re-verifying.
type IDTokenClaims struct {
	jwt.RegisteredClaims
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	Email             string `json:"email"`
}

// ErrMalformedIDToken is returned when the raw ID token cannot be decoded
// into claims. Callers map this to TokenErrorMalformed.
var ErrMalformedIDToken = errors.New("malformed id token")

// DecodeIDTokenClaims parses the raw ID token without signature verification
// and returns its typed claims. A decode failure is a named error, never an
// undefined field lookup.
func DecodeIDTokenClaims(raw string) (IDTokenClaims, error) {
	if raw == "" {
		return IDTokenClaims{}, fmt.Errorf("%w: empty token", ErrMalformedIDToken)
	}
	var claims IDTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return IDTokenClaims{}, fmt.Errorf("%w: %v", ErrMalformedIDToken, err)
	}
	return claims, nil
}

// Username returns the claim used as the canonical identity, preferring
// preferred_username over the subject.
func (c IDTokenClaims) Username() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Subject
}

// DisplayName returns the best human-readable name available in the claims.
func (c IDTokenClaims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.GivenName != "" && c.FamilyName != "" {
		return c.GivenName + " " + c.FamilyName
	}
	if c.GivenName != "" {
		return c.GivenName
	}
	return c.Username()
}
