package httpx

import (
	"context"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// accessKey carries the resolved access of the session's identity.
type accessKey struct{}

// SetSessionInContext returns a child context that carries the given session.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session from context and whether one is present.
func SessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// SetAccessInContext returns a child context carrying the resolved access.
func SetAccessInContext(ctx context.Context, access *domainauth.ResolvedAccess) context.Context {
	if access == nil {
		return ctx
	}
	return context.WithValue(ctx, accessKey{}, access)
}

// AccessFromContext returns the resolved access from context and whether one
// is present. Handlers behind the route guard can rely on it being set.
func AccessFromContext(ctx context.Context) (*domainauth.ResolvedAccess, bool) {
	if access, ok := ctx.Value(accessKey{}).(*domainauth.ResolvedAccess); ok && access != nil {
		return access, true
	}
	return nil, false
}

// requestIDKey carries the per-request identifier assigned by RequestID.
type requestIDKey struct{}

// SetRequestIDInContext returns a child context carrying the request identifier.
func SetRequestIDInContext(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request identifier, if one was assigned.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id, true
	}
	return "", false
}
