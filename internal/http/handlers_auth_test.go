package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	"github.com/gpjen/bookingroom/internal/ports"
	"github.com/gpjen/bookingroom/internal/service"
)

// stubAuthSvc is a test double for the auth service slice the handlers use.
type stubAuthSvc struct {
	beginFunc     func(ctx context.Context, redirectURL string) (string, string, string, error)
	completeFunc  func(ctx context.Context, in ports.ExchangeInput) (domainauth.Session, error)
	authorizeFunc func(ctx context.Context, sessionID string) (service.AuthorizeResult, error)
	logoutFunc    func(ctx context.Context, sessionID, postLogoutRedirectURI string) (string, error)
}

func (s *stubAuthSvc) BeginLogin(ctx context.Context, redirectURL string) (string, string, string, error) {
	if s.beginFunc != nil {
		return s.beginFunc(ctx, redirectURL)
	}
	return "https://idp.example.com/authorize?state=test-state", "test-state", "test-nonce", nil
}

func (s *stubAuthSvc) CompleteLogin(ctx context.Context, in ports.ExchangeInput) (domainauth.Session, error) {
	if s.completeFunc != nil {
		return s.completeFunc(ctx, in)
	}
	return domainauth.Session{
		ID:          "sess-abc",
		IdentityKey: "test.user",
		Username:    "Test.User",
		Email:       "test.user@example.com",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}

func (s *stubAuthSvc) Authorize(ctx context.Context, sessionID string) (service.AuthorizeResult, error) {
	if s.authorizeFunc != nil {
		return s.authorizeFunc(ctx, sessionID)
	}
	return service.AuthorizeResult{
		Outcome: service.AuthorizeValid,
		Session: domainauth.Session{
			ID:        sessionID,
			Username:  "Test.User",
			Email:     "test.user@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}, nil
}

func (s *stubAuthSvc) Logout(ctx context.Context, sessionID, postLogoutRedirectURI string) (string, error) {
	if s.logoutFunc != nil {
		return s.logoutFunc(ctx, sessionID, postLogoutRedirectURI)
	}
	return "", nil
}

// stubResolver returns a fixed resolved access.
type stubResolver struct {
	access domainauth.ResolvedAccess
	err    error
}

func (s *stubResolver) Resolve(_ context.Context, _ string) (domainauth.ResolvedAccess, error) {
	return s.access, s.err
}

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandlers_Login_SetsFlowCookiesAndRedirects(t *testing.T) {
	handlers := &AuthHandlers{Svc: &stubAuthSvc{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=/bookings", nil)
	w := httptest.NewRecorder()
	handlers.Login(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "https://idp.example.com/authorize")

	resp := w.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()
	require.Len(t, cookies, 3)
	assert.Equal(t, "test-state", cookieByName(t, cookies, StateCookieName).Value)
	assert.Equal(t, "test-nonce", cookieByName(t, cookies, NonceCookieName).Value)
	assert.Equal(t, "/bookings", cookieByName(t, cookies, RedirectCookieName).Value)
}

func TestAuthHandlers_Login_RejectsAbsoluteRedirect(t *testing.T) {
	var gotRedirect string
	svc := &stubAuthSvc{
		beginFunc: func(_ context.Context, redirectURL string) (string, string, string, error) {
			gotRedirect = redirectURL
			return "https://idp.example.com/authorize", "s", "n", nil
		},
	}
	handlers := &AuthHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=https://evil.example.com/", nil)
	w := httptest.NewRecorder()
	handlers.Login(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", gotRedirect)
}

func TestAuthHandlers_Callback_StateMismatch(t *testing.T) {
	handlers := &AuthHandlers{Svc: &stubAuthSvc{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: StateCookieName, Value: "test-state"})
	req.AddCookie(&http.Cookie{Name: NonceCookieName, Value: "test-nonce"})
	w := httptest.NewRecorder()
	handlers.Callback(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_state")
}

func TestAuthHandlers_Callback_Success(t *testing.T) {
	handlers := &AuthHandlers{Svc: &stubAuthSvc{}, SessionTTL: time.Hour}

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=test-state", nil)
	req.AddCookie(&http.Cookie{Name: StateCookieName, Value: "test-state"})
	req.AddCookie(&http.Cookie{Name: NonceCookieName, Value: "test-nonce"})
	req.AddCookie(&http.Cookie{Name: RedirectCookieName, Value: "/bookings"})
	w := httptest.NewRecorder()
	handlers.Callback(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/bookings", w.Header().Get("Location"))

	resp := w.Result()
	defer resp.Body.Close()
	cookies := resp.Cookies()

	sess := cookieByName(t, cookies, SessionCookieName)
	require.NotNil(t, sess)
	assert.Equal(t, "sess-abc", sess.Value)
	assert.True(t, sess.HttpOnly)

	// Flow cookies are cleared.
	assert.Equal(t, -1, cookieByName(t, cookies, StateCookieName).MaxAge)
	assert.Equal(t, -1, cookieByName(t, cookies, NonceCookieName).MaxAge)
}

func TestAuthHandlers_Callback_ExchangeFailure(t *testing.T) {
	svc := &stubAuthSvc{
		completeFunc: func(_ context.Context, _ ports.ExchangeInput) (domainauth.Session, error) {
			return domainauth.Session{}, errors.New("exchange rejected")
		},
	}
	handlers := &AuthHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc&state=test-state", nil)
	req.AddCookie(&http.Cookie{Name: StateCookieName, Value: "test-state"})
	req.AddCookie(&http.Cookie{Name: NonceCookieName, Value: "test-nonce"})
	w := httptest.NewRecorder()
	handlers.Callback(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// Internal detail must not leak to the client.
	assert.NotContains(t, w.Body.String(), "exchange rejected")
}

func TestAuthHandlers_Logout_ClearsSessionAndRedirects(t *testing.T) {
	var loggedOut string
	svc := &stubAuthSvc{
		logoutFunc: func(_ context.Context, sessionID, _ string) (string, error) {
			loggedOut = sessionID
			return "", nil
		},
	}
	handlers := &AuthHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-abc"})
	w := httptest.NewRecorder()
	handlers.Logout(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, "sess-abc", loggedOut)

	resp := w.Result()
	defer resp.Body.Close()
	sess := cookieByName(t, resp.Cookies(), SessionCookieName)
	require.NotNil(t, sess)
	assert.Equal(t, -1, sess.MaxAge)
}

func TestAuthHandlers_Logout_ProviderLogoutURLWins(t *testing.T) {
	svc := &stubAuthSvc{
		logoutFunc: func(_ context.Context, _, _ string) (string, error) {
			return "https://idp.example.com/logout", nil
		},
	}
	handlers := &AuthHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-abc"})
	w := httptest.NewRecorder()
	handlers.Logout(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://idp.example.com/logout", w.Header().Get("Location"))
}

func TestAuthHandlers_Status_NoCookie(t *testing.T) {
	handlers := &AuthHandlers{Svc: &stubAuthSvc{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	w := httptest.NewRecorder()
	handlers.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])
}

func TestAuthHandlers_Status_InvalidatedClearsCookie(t *testing.T) {
	svc := &stubAuthSvc{
		authorizeFunc: func(_ context.Context, _ string) (service.AuthorizeResult, error) {
			return service.AuthorizeResult{
				Outcome: service.AuthorizeInvalidated,
				Reason:  service.ReasonStaleDay,
			}, nil
		},
	}
	handlers := &AuthHandlers{Svc: svc}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-abc"})
	w := httptest.NewRecorder()
	handlers.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])
	assert.Equal(t, service.ReasonStaleDay, body["reason"])

	resp := w.Result()
	defer resp.Body.Close()
	sess := cookieByName(t, resp.Cookies(), SessionCookieName)
	require.NotNil(t, sess)
	assert.Equal(t, -1, sess.MaxAge)
}

func TestAuthHandlers_Status_Authenticated(t *testing.T) {
	handlers := &AuthHandlers{Svc: &stubAuthSvc{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-abc"})
	w := httptest.NewRecorder()
	handlers.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Test.User", user["username"])
}

func TestAuthHandlers_Permissions(t *testing.T) {
	resolver := &stubResolver{
		access: domainauth.ResolvedAccess{
			IdentityKey: "test.user",
			Roles:       []string{"viewer"},
			Permissions: domainauth.NewPermissionSet("booking:read"),
			Companies:   []string{"acme"},
		},
	}
	handlers := &AuthHandlers{Svc: &stubAuthSvc{}, Resolver: resolver}

	req := httptest.NewRequest(http.MethodGet, "/api/me/permissions", nil)
	sess := &domainauth.Session{ID: "sess-abc", Username: "Test.User"}
	req = req.WithContext(SetSessionInContext(req.Context(), sess))
	w := httptest.NewRecorder()
	handlers.Permissions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "test.user", body["identity_key"])
	assert.Equal(t, true, body["provisioned"])
	assert.Equal(t, []any{"booking:read"}, body["permissions"])
}

func TestAuthHandlers_Permissions_NoSession(t *testing.T) {
	handlers := &AuthHandlers{Svc: &stubAuthSvc{}, Resolver: &stubResolver{}}

	req := httptest.NewRequest(http.MethodGet, "/api/me/permissions", nil)
	w := httptest.NewRecorder()
	handlers.Permissions(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
