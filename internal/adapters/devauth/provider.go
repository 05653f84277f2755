package devauth

// Package devauth provides a simple, config-driven AuthProvider for local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	"github.com/gpjen/bookingroom/internal/ports"
)

// Config controls the dev auth provider behavior.
type Config struct {
	Username    string
	DisplayName string
	Email       string
	TokenTTL    time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider for local development.
// It short-circuits the OAuth flow by redirecting back to our own callback
// with locally generated state and nonce.
// Exchange ignores the code and returns the configured identity.
type Provider struct {
	username    string
	displayName string
	email       string
	tokenTTL    time.Duration
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Username == "" {
		return nil, errors.New("dev auth: Username is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	name := cfg.DisplayName
	if name == "" {
		name = cfg.Username
	}
	return &Provider{
		username:    cfg.Username,
		displayName: name,
		email:       cfg.Email,
		tokenTTL:    ttl,
	}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// Our standard handler expects GET /auth/callback?code=...&state=...
	authURL := "/auth/callback?code=dev&state=" + state
	return authURL, state, nonce, nil
}

// Exchange ignores the provided code/state/nonce (validation handled by handler)
// and returns the dev identity with a freshly minted token set.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	return domainauth.Identity{
		Username:    p.username,
		DisplayName: p.displayName,
		Email:       p.email,
		Tokens:      p.mintTokens(),
	}, nil
}

// Refresh always succeeds with a renewed token set.
func (p *Provider) Refresh(_ context.Context, refreshToken string) (domainauth.TokenSet, error) {
	if refreshToken == "" {
		return domainauth.TokenSet{}, fmt.Errorf("%w: empty refresh token", ports.ErrRefreshRejected)
	}
	return p.mintTokens(), nil
}

// LogoutURL has no remote issuer to visit in dev mode; the caller falls back
// to its own post-logout redirect.
func (p *Provider) LogoutURL(_, _ string) string {
	return ""
}

func (p *Provider) mintTokens() domainauth.TokenSet {
	now := time.Now()
	access, _ := randomString(24)
	refresh, _ := randomString(24)
	return domainauth.TokenSet{
		AccessToken:  "dev-access-" + access,
		RefreshToken: "dev-refresh-" + refresh,
		ExpiresAt:    now.Add(p.tokenTTL),
		IssuedAt:     now,
	}
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		// pad
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
