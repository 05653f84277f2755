package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	"github.com/gpjen/bookingroom/internal/ports"
	"github.com/gpjen/bookingroom/internal/service"
)

// RedirectCookieName stores the post-login destination across the IdP round
// trip.
const RedirectCookieName = "post_login_redirect"

// AuthSessionService is the slice of the auth service the handlers need.
type AuthSessionService interface {
	BeginLogin(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error)
	CompleteLogin(ctx context.Context, in ports.ExchangeInput) (domainauth.Session, error)
	Authorize(ctx context.Context, sessionID string) (service.AuthorizeResult, error)
	Logout(ctx context.Context, sessionID, postLogoutRedirectURI string) (string, error)
}

// AccessResolver resolves the effective access for a username.
type AccessResolver interface {
	Resolve(ctx context.Context, username string) (domainauth.ResolvedAccess, error)
}

// AuthHandlers serves the login, callback, logout, and status endpoints.
type AuthHandlers struct {
	Svc        AuthSessionService
	Resolver   AccessResolver
	SessionTTL time.Duration
	Logger     *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login initiates the authorization flow.
// GET /auth/login?redirect_uri=<optional relative path>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	authURL, state, nonce, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     err,
		})
		return
	}

	setFlowCookie(w, r, StateCookieName, state)
	setFlowCookie(w, r, NonceCookieName, nonce)
	setFlowCookie(w, r, RedirectCookieName, redirectURI)

	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback completes the authorization flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_parameters",
			Err:     errors.New("code and state are required"),
		})
		return
	}

	stateCookie, err := r.Cookie(StateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(NonceCookieName)
	if err != nil || nonceCookie.Value == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	sess, err := h.Svc.CompleteLogin(r.Context(), ports.ExchangeInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "login completion failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "login_completion_failed",
			Err:     errors.New("authentication could not be completed"),
		})
		return
	}

	setSessionCookie(w, r, sess.ID, h.SessionTTL)
	clearFlowCookie(w, r, StateCookieName)
	clearFlowCookie(w, r, NonceCookieName)

	redirectURI := "/"
	if c, cerr := r.Cookie(RedirectCookieName); cerr == nil {
		redirectURI = safeRedirectPath(c.Value)
	}
	clearFlowCookie(w, r, RedirectCookieName)

	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Logout terminates the server-side session and clears the cookie.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	postLogout := safeRedirectPath(r.FormValue("redirect_uri"))

	var providerLogoutURL string
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		var logoutErr error
		providerLogoutURL, logoutErr = h.Svc.Logout(r.Context(), cookie.Value, postLogout)
		if logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}
	clearSessionCookie(w, r)

	target := postLogout
	if providerLogoutURL != "" {
		target = providerLogoutURL
	}

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": target,
		})
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Status reports whether the caller holds a live session, refreshing it when
// possible. Always 200; the body distinguishes the cases.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	result, err := h.Svc.Authorize(r.Context(), cookie.Value)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "authorize_failed",
			Err:     errors.New("internal server error"),
		})
		return
	}
	if !result.Authorized() {
		clearSessionCookie(w, r)
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
			"reason":        result.Reason,
		})
		return
	}

	sess := result.Session
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"username":     sess.Username,
			"display_name": sess.DisplayName,
			"email":        sess.Email,
		},
		"expires_at": sess.ExpiresAt,
	})
}

// Permissions returns the caller's resolved access. The middleware chain has
// already authorized the session; resolution happens fresh on every call so
// directory changes take effect without re-login.
// GET /api/me/permissions.
func (h *AuthHandlers) Permissions(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		unauthorized(w, "authentication required")
		return
	}

	access, err := h.Resolver.Resolve(r.Context(), sess.Username)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "permission_resolution_failed",
			Err:     errors.New("internal server error"),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"identity_key": access.IdentityKey,
		"provisioned":  access.Provisioned(),
		"roles":        access.Roles,
		"permissions":  access.Permissions.Keys(),
		"companies":    access.Companies,
		"buildings":    access.Buildings,
	})
}

// safeRedirectPath constrains a redirect target to a relative path on this
// host. Anything absolute, schemeful, or protocol-relative falls back to "/".
func safeRedirectPath(raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	return raw
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}
