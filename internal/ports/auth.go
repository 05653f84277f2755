package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
)

// Refresh failure taxonomy. All three collapse to an invalidated session from
// the caller's perspective but stay distinguishable in logs.
var (
	// ErrRefreshTransport marks a network or timeout failure reaching the
	// token endpoint.
	ErrRefreshTransport = errors.New("token refresh transport failure")
	// ErrRefreshRejected marks an error response from the token endpoint
	// (non-2xx or an OAuth error body).
	ErrRefreshRejected = errors.New("token refresh rejected by issuer")
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an IdP
// and exchanges refresh tokens for new access tokens.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns
	// the authenticated identity with its token set.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)

	// Refresh performs a refresh_token grant and returns the replacement token
	// set. Failures wrap ErrRefreshTransport or ErrRefreshRejected.
	Refresh(ctx context.Context, refreshToken string) (domainauth.TokenSet, error)

	// LogoutURL builds the RP-initiated logout URL for the issuer, or returns
	// an empty string when the provider has no logout endpoint.
	LogoutURL(postLogoutRedirectURI, rawIDToken string) string
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleGrant is one role assignment reachable from an identity key, carrying
// the role's full permission key list and optional company scope.
type RoleGrant struct {
	RoleName       string
	CompanyCode    *string
	PermissionKeys []string
}

// DirectoryReader loads the role and building assignments backing permission
// resolution. Implementations query by the case-folded identity key only.
type DirectoryReader interface {
	RoleGrants(ctx context.Context, identityKey string) ([]RoleGrant, error)
	BuildingGrants(ctx context.Context, identityKey string) ([]domainauth.BuildingRef, error)
}
