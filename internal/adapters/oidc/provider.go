package oidc

// Package oidc provides the OIDC/OAuth2 authentication adapter for the
// bookingroom system.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	"github.com/gpjen/bookingroom/internal/ports"
	"golang.org/x/oauth2"
)

// Provider implements the AuthProvider interface using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	issuer     string
	logoutURL  string
	httpClient *http.Client

	// go-oidc provider and verifier
	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	LogoutURL    string       // Optional, derived from the issuer when empty
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC provider. It performs a single discovery
// fetch against the issuer.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if config.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(config.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, "/")

	p := &Provider{
		issuer:     issuer,
		logoutURL:  config.LogoutURL,
		httpClient: httpClient,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})

	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

// Begin starts the login flow with cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// Don't override redirect_uri here; it must match the configured
	// RedirectURL exactly.
	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
	)

	return authURL, state, nonce, nil
}

// Exchange completes the login flow: code-for-token exchange, ID token
// verification against the issuer's keys, nonce check, and typed claim
// extraction.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Identity{}, errors.New("state is required")
	}
	if in.Nonce == "" {
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	rawID, err := idTokenFrom(token)
	if err != nil {
		return domainauth.Identity{}, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims domainauth.IDTokenClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if nonce := idTok.Nonce; nonce != "" && nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("invalid nonce")
	}

	return domainauth.Identity{
		Username:    claims.Username(),
		DisplayName: claims.DisplayName(),
		Email:       claims.Email,
		Tokens:      tokenSetFrom(token, rawID, idTok.IssuedAt),
	}, nil
}

// Refresh performs a refresh_token grant against the issuer's token
// endpoint. Failures are classified into the ports refresh taxonomy.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenSet, error) {
	if refreshToken == "" {
		return domainauth.TokenSet{}, fmt.Errorf("%w: empty refresh token", ports.ErrRefreshRejected)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	src := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return domainauth.TokenSet{}, classifyRefreshError(err)
	}

	rawID := ""
	if s, ok := token.Extra("id_token").(string); ok {
		rawID = s
	}
	// Refresh responses may omit a rotated refresh token; the caller keeps
	// the previous one in that case (oauth2 carries it forward).
	return tokenSetFrom(token, rawID, time.Now()), nil
}

// LogoutURL builds the RP-initiated logout URL with post_logout_redirect_uri,
// client_id, and an optional id_token_hint.
func (p *Provider) LogoutURL(postLogoutRedirectURI, rawIDToken string) string {
	endpoint := p.logoutURL
	if endpoint == "" {
		endpoint = p.issuer + "/protocol/openid-connect/logout"
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	q := u.Query()
	if postLogoutRedirectURI != "" {
		q.Set("post_logout_redirect_uri", postLogoutRedirectURI)
	}
	q.Set("client_id", p.config.ClientID)
	if rawIDToken != "" {
		q.Set("id_token_hint", rawIDToken)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// classifyRefreshError maps oauth2 failures onto the ports taxonomy: an
// issuer response is a rejection, anything else is transport.
func classifyRefreshError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %v", ports.ErrRefreshRejected, err)
	}
	return fmt.Errorf("%w: %v", ports.ErrRefreshTransport, err)
}

// tokenSetFrom maps an oauth2 token into the domain token set.
func tokenSetFrom(token *oauth2.Token, rawIDToken string, issuedAt time.Time) domainauth.TokenSet {
	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(time.Hour)
	}
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	return domainauth.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		RawIDToken:   rawIDToken,
		ExpiresAt:    expiresAt,
		IssuedAt:     issuedAt,
	}
}

// idTokenFrom extracts the id_token from an oauth2 token response.
func idTokenFrom(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return "", errors.New("missing id_token in token response")
	}
	return raw, nil
}

// generateRandomString generates a cryptographically secure URL-safe random
// string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	for len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
