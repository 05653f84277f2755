package httpx

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
)

// GuardDecision is the outcome of a route guard evaluation.
type GuardDecision string

const (
	GuardAllow     GuardDecision = "allow"
	GuardNoAccess  GuardDecision = "no_access"
	GuardForbidden GuardDecision = "forbidden"
)

// GuardRule binds a path prefix to the permissions that may satisfy it.
// A request matches a rule when the path equals the prefix or descends under
// it with a slash boundary, so "/admin" never captures "/administrivia".
type GuardRule struct {
	Prefix      string
	Permissions []string
}

// RouteGuard maps request paths to required permissions by longest-prefix
// match and decides allow or deny against a resolved permission set.
// Evaluation is a pure function of (path, access): the same inputs always
// yield the same decision.
type RouteGuard struct {
	rules []GuardRule
}

// NewRouteGuard builds a guard over the given rules. Rules are sorted by
// descending prefix length so the first match is always the longest one.
func NewRouteGuard(rules []GuardRule) *RouteGuard {
	sorted := make([]GuardRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &RouteGuard{rules: sorted}
}

// Match returns the rule governing the path, if any. An exact match and a
// slash-boundary prefix match are both hits; the longest registered prefix
// wins.
func (g *RouteGuard) Match(path string) (GuardRule, bool) {
	for _, rule := range g.rules {
		if path == rule.Prefix || strings.HasPrefix(path, rule.Prefix+"/") {
			return rule, true
		}
	}
	return GuardRule{}, false
}

// Evaluate decides access for a path given a resolved permission set.
// An unprovisioned identity is denied everywhere. A path with no matching
// rule is open to any provisioned identity. Otherwise any one of the rule's
// permissions, or the wildcard, satisfies the check.
func (g *RouteGuard) Evaluate(path string, access domainauth.ResolvedAccess) GuardDecision {
	if !access.Provisioned() {
		return GuardNoAccess
	}
	rule, ok := g.Match(path)
	if !ok || len(rule.Permissions) == 0 {
		return GuardAllow
	}
	if access.Permissions.HasAny(rule.Permissions...) {
		return GuardAllow
	}
	return GuardForbidden
}

// RequirePermission gates a single endpoint on one permission key, beyond
// the prefix rule that admitted the request. It runs inside the guard
// middleware, so resolved access is already in the context; the wildcard
// satisfies the check like anywhere else.
func RequirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := AccessFromContext(r.Context())
			if !ok {
				unauthorized(w, "authentication required")
				return
			}
			if !access.Permissions.Has(perm) {
				forbidden(w, "missing permission for this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Middleware resolves the session identity's access, stores it in the
// request context, and enforces the guard's decision. Missing session means
// 401; a session without the required permission means 403. The resolved
// access is recomputed per request, never cached across requests.
func (g *RouteGuard) Middleware(resolver AccessResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				unauthorized(w, "authentication required")
				return
			}

			access, err := resolver.Resolve(r.Context(), sess.Username)
			if err != nil {
				WriteError(w, ErrorParams{
					Code:    http.StatusInternalServerError,
					ErrCode: "permission_resolution_failed",
					Err:     errors.New("internal server error"),
				})
				return
			}

			switch g.Evaluate(r.URL.Path, access) {
			case GuardNoAccess:
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "no_access",
					Err:     errors.New("account has no access provisioned, contact an administrator"),
				})
				return
			case GuardForbidden:
				forbidden(w, "missing permission for this resource")
				return
			}

			ctx := SetAccessInContext(r.Context(), &access)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
