package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	"github.com/gpjen/bookingroom/internal/ports"
)

// UnsignedIDToken builds a decodable unsigned ID token carrying the given
// claims, for use as a RawIDToken value in tests.
func UnsignedIDToken(username, name, email string) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":                username,
		"preferred_username": username,
		"name":               name,
		"email":              email,
	})
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		return ""
	}
	return signed
}

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider    = (*MockAuthProvider)(nil)
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
	_ ports.DirectoryReader = (*StaticDirectory)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce
// handling and programmable refresh behavior.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)
	RefreshFunc  func(ctx context.Context, refreshToken string) (domainauth.TokenSet, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity
	LogoutBase  string

	// Internal state tracking for deterministic behavior
	callCount    int
	RefreshCalls int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	now := time.Now()
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			Username:    "Mock.User",
			DisplayName: "Mock User",
			Email:       "mock.user@example.com",
			Tokens: domainauth.TokenSet{
				AccessToken:  "mock-access",
				RefreshToken: "mock-refresh",
				RawIDToken:   UnsignedIDToken("Mock.User", "Mock User", "mock.user@example.com"),
				ExpiresAt:    now.Add(time.Hour),
				IssuedAt:     now,
			},
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	state := fmt.Sprintf("%s-%d", m.StatePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", m.NoncePrefix, m.callCount)
	return m.AuthURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	user := m.DefaultUser
	if user.Tokens.ExpiresAt.IsZero() {
		user.Tokens.ExpiresAt = time.Now().Add(time.Hour)
	}
	if user.Tokens.IssuedAt.IsZero() {
		user.Tokens.IssuedAt = time.Now()
	}
	return user, nil
}

func (m *MockAuthProvider) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenSet, error) {
	m.RefreshCalls++
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	if refreshToken == "" {
		return domainauth.TokenSet{}, fmt.Errorf("%w: missing refresh token", ports.ErrRefreshRejected)
	}

	now := time.Now()
	return domainauth.TokenSet{
		AccessToken:  fmt.Sprintf("mock-access-%d", m.RefreshCalls),
		RefreshToken: refreshToken,
		RawIDToken:   UnsignedIDToken("Mock.User", "Mock User", "mock.user@example.com"),
		ExpiresAt:    now.Add(time.Hour),
		IssuedAt:     now,
	}, nil
}

func (m *MockAuthProvider) LogoutURL(postLogoutRedirectURI, rawIDToken string) string {
	if m.LogoutBase == "" {
		return ""
	}
	return m.LogoutBase + "?post_logout_redirect_uri=" + postLogoutRedirectURI
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	// FailSave, when set, is returned from Save.
	FailSave error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if m.FailSave != nil {
		return m.FailSave
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

// NotFound marks the error as a missing-entity condition.
func (notFoundError) NotFound() bool { return true }

var ErrNotFound error = notFoundError{}

// StaticDirectory serves fixed role and building grants keyed by identity.
type StaticDirectory struct {
	Roles     map[string][]ports.RoleGrant
	Buildings map[string][]domainauth.BuildingRef

	// RoleErr and BuildingErr, when set, are returned from the lookups.
	RoleErr     error
	BuildingErr error
}

func (d *StaticDirectory) RoleGrants(_ context.Context, identityKey string) ([]ports.RoleGrant, error) {
	if d.RoleErr != nil {
		return nil, d.RoleErr
	}
	return d.Roles[identityKey], nil
}

func (d *StaticDirectory) BuildingGrants(_ context.Context, identityKey string) ([]domainauth.BuildingRef, error) {
	if d.BuildingErr != nil {
		return nil, d.BuildingErr
	}
	return d.Buildings[identityKey], nil
}
