package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// TokenErrorCode marks a terminal failure on a token set. Once set, the
// session must not authorize any further request.
type TokenErrorCode string

const (
	// TokenErrorNone means the token set is usable.
	TokenErrorNone TokenErrorCode = ""
	// TokenErrorRefreshTransport marks a network/timeout failure during refresh.
	TokenErrorRefreshTransport TokenErrorCode = "refresh_transport"
	// TokenErrorRefreshRejected marks an error response from the token endpoint.
	TokenErrorRefreshRejected TokenErrorCode = "refresh_rejected"
	// TokenErrorMalformed marks an ID token that could not be decoded.
	TokenErrorMalformed TokenErrorCode = "malformed_token"
)

// TokenSet is the credential triple issued by the IdP plus its lifecycle
// instants. Exactly one active token set exists per session; it is mutated
// only by the auth service's authorize path.
type TokenSet struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	RawIDToken   string         `json:"raw_id_token"`
	ExpiresAt    time.Time      `json:"expires_at"`
	IssuedAt     time.Time      `json:"issued_at"`
	Error        TokenErrorCode `json:"error,omitempty"`
}

// Expired reports whether the access token expiry is at or before now.
func (t TokenSet) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// IssuedSameDay reports whether the token was issued on the same local
// calendar date as now. A token issued on a previous date forces re-login
// even if it has not technically expired.
func (t TokenSet) IssuedSameDay(now time.Time) bool {
	iy, im, id := t.IssuedAt.Local().Date()
	ny, nm, nd := now.Local().Date()
	return iy == ny && im == nm && id == nd
}

// Terminal reports whether the token set carries a failure marker.
func (t TokenSet) Terminal() bool { return t.Error != TokenErrorNone }

// Session is the server-side record persisted for an authenticated user.
// ID is an opaque session identifier (random URL-safe string).
type Session struct {
	ID          string    `json:"id"`
	IdentityKey string    `json:"identity_key"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Tokens      TokenSet  `json:"tokens"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Active reports whether the session may authorize requests at all:
// not terminal and not past its own hard expiry.
func (s Session) Active(now time.Time) bool {
	return !s.Tokens.Terminal() && s.ExpiresAt.After(now)
}

// Identity is the authenticated principal returned by an IdP exchange,
// together with the token set issued for it. Adapters map provider-specific
// claims into this shape.
type Identity struct {
	Username    string // as issued by the IdP, original case
	DisplayName string
	Email       string
	Tokens      TokenSet
}

// IdentityKeyOf canonicalizes a username into the lowercase lookup key used
// for role and building assignments. The original-case username is kept for
// display only.
func IdentityKeyOf(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
