package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
)

func testGuard() *RouteGuard {
	return NewRouteGuard([]GuardRule{
		{Prefix: "/admin", Permissions: []string{"admin:read"}},
		{Prefix: "/admin/roles", Permissions: []string{"admin-roles:read"}},
		{Prefix: "/reports", Permissions: []string{"reports:read", "reports:export"}},
	})
}

func TestRouteGuard_Match_LongestPrefixWins(t *testing.T) {
	guard := testGuard()

	rule, ok := guard.Match("/admin/roles/42")
	assert.True(t, ok)
	assert.Equal(t, "/admin/roles", rule.Prefix)

	rule, ok = guard.Match("/admin/users")
	assert.True(t, ok)
	assert.Equal(t, "/admin", rule.Prefix)

	rule, ok = guard.Match("/admin")
	assert.True(t, ok)
	assert.Equal(t, "/admin", rule.Prefix)
}

func TestRouteGuard_Match_RequiresSlashBoundary(t *testing.T) {
	guard := testGuard()

	// "/administrivia" shares a string prefix with "/admin" but is a
	// different path segment.
	_, ok := guard.Match("/administrivia")
	assert.False(t, ok)
}

func TestRouteGuard_Evaluate_NotProvisioned(t *testing.T) {
	guard := testGuard()

	decision := guard.Evaluate("/anywhere", domainauth.ResolvedAccess{})
	assert.Equal(t, GuardNoAccess, decision)

	// Even unguarded paths deny when no permissions are resolved.
	decision = guard.Evaluate("/open", domainauth.ResolvedAccess{})
	assert.Equal(t, GuardNoAccess, decision)
}

func TestRouteGuard_Evaluate_UnmatchedPathIsOpen(t *testing.T) {
	guard := testGuard()
	access := domainauth.ResolvedAccess{
		Permissions: domainauth.NewPermissionSet("booking:read"),
	}

	assert.Equal(t, GuardAllow, guard.Evaluate("/dashboard", access))
}

func TestRouteGuard_Evaluate_AnyRequiredPermissionSatisfies(t *testing.T) {
	guard := testGuard()
	access := domainauth.ResolvedAccess{
		Permissions: domainauth.NewPermissionSet("reports:export"),
	}

	assert.Equal(t, GuardAllow, guard.Evaluate("/reports/monthly", access))
}

func TestRouteGuard_Evaluate_MissingPermissionForbidden(t *testing.T) {
	guard := testGuard()
	access := domainauth.ResolvedAccess{
		Permissions: domainauth.NewPermissionSet("booking:read"),
	}

	assert.Equal(t, GuardForbidden, guard.Evaluate("/admin/roles/42", access))
}

func TestRouteGuard_Evaluate_WildcardSatisfiesEverything(t *testing.T) {
	guard := testGuard()
	access := domainauth.ResolvedAccess{
		Permissions: domainauth.NewPermissionSet(domainauth.WildcardPermission),
	}

	assert.Equal(t, GuardAllow, guard.Evaluate("/admin/roles/42", access))
	assert.Equal(t, GuardAllow, guard.Evaluate("/reports", access))
}

func TestRouteGuard_Evaluate_Idempotent(t *testing.T) {
	guard := testGuard()
	access := domainauth.ResolvedAccess{
		Permissions: domainauth.NewPermissionSet("admin:read"),
	}

	first := guard.Evaluate("/admin/roles", access)
	second := guard.Evaluate("/admin/roles", access)
	assert.Equal(t, first, second)
	assert.Equal(t, GuardForbidden, first)
}

func TestRouteGuard_Middleware_Forbidden(t *testing.T) {
	guard := testGuard()
	resolver := &stubResolver{
		access: domainauth.ResolvedAccess{
			Permissions: domainauth.NewPermissionSet("booking:read"),
		},
	}
	handler := guard.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/roles", nil)
	sess := &domainauth.Session{ID: "sess-1", Username: "Test.User"}
	req = req.WithContext(SetSessionInContext(req.Context(), sess))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}

func TestRouteGuard_Middleware_NotProvisioned(t *testing.T) {
	guard := testGuard()
	handler := guard.Middleware(&stubResolver{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	sess := &domainauth.Session{ID: "sess-1", Username: "New.Hire"}
	req = req.WithContext(SetSessionInContext(req.Context(), sess))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "no_access")
}

func TestRouteGuard_Middleware_AllowStoresAccess(t *testing.T) {
	guard := testGuard()
	resolver := &stubResolver{
		access: domainauth.ResolvedAccess{
			IdentityKey: "test.user",
			Permissions: domainauth.NewPermissionSet("admin-roles:read"),
		},
	}

	var seen *domainauth.ResolvedAccess
	handler := guard.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AccessFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/roles/42", nil)
	sess := &domainauth.Session{ID: "sess-1", Username: "Test.User"}
	req = req.WithContext(SetSessionInContext(req.Context(), sess))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, seen)
	assert.Equal(t, "test.user", seen.IdentityKey)
}

func TestRouteGuard_Middleware_NoSession(t *testing.T) {
	guard := testGuard()
	handler := guard.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
