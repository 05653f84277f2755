package service

// Package service contains the application services that orchestrate the
// domain, data, and adapter layers. Services hold no transport concerns.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	"github.com/gpjen/bookingroom/internal/ports"
)

// AuthorizeOutcome classifies the result of authorizing a session-bearing
// request.
type AuthorizeOutcome string

const (
	// AuthorizeValid means the stored token set authorized the request as-is.
	AuthorizeValid AuthorizeOutcome = "valid"
	// AuthorizeRefreshed means the access token was expired and a refresh
	// grant replaced the token set before authorizing.
	AuthorizeRefreshed AuthorizeOutcome = "refreshed"
	// AuthorizeInvalidated means the session can no longer authorize requests
	// and the user must log in again.
	AuthorizeInvalidated AuthorizeOutcome = "invalidated"
)

// Invalidation reasons reported alongside AuthorizeInvalidated.
const (
	ReasonSessionMissing  = "session_missing"
	ReasonTerminal        = "terminal"
	ReasonStaleDay        = "stale_day"
	ReasonRefreshFailed   = "refresh_failed"
	ReasonSessionsExpired = "session_expired"
)

// AuthorizeResult carries the outcome of an authorization check together with
// the session that should be considered current after it.
type AuthorizeResult struct {
	Outcome AuthorizeOutcome
	Session domainauth.Session
	Reason  string
}

// Authorized reports whether the request may proceed.
func (r AuthorizeResult) Authorized() bool {
	return r.Outcome == AuthorizeValid || r.Outcome == AuthorizeRefreshed
}

// AuthServiceOptions configures NewAuthService.
type AuthServiceOptions struct {
	Provider   ports.AuthProvider
	Sessions   ports.SessionStore
	SessionTTL time.Duration
	Logger     *slog.Logger
	TimeFunc   func() time.Time
}

// AuthService owns the login, authorization, and logout flows. It is the only
// writer of session token sets.
type AuthService struct {
	provider   ports.AuthProvider
	sessions   ports.SessionStore
	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthService creates an AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Provider == nil {
		return nil, errors.New("auth provider is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TimeFunc == nil {
		opts.TimeFunc = time.Now
	}
	return &AuthService{
		provider:   opts.Provider,
		sessions:   opts.Sessions,
		sessionTTL: opts.SessionTTL,
		logger:     opts.Logger.With("component", "auth_service"),
		now:        opts.TimeFunc,
	}, nil
}

// BeginLogin starts the provider login flow.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error) {
	return s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
}

// CompleteLogin exchanges the authorization code for tokens and persists a
// fresh session for the identity.
func (s *AuthService) CompleteLogin(ctx context.Context, in ports.ExchangeInput) (domainauth.Session, error) {
	identity, err := s.provider.Exchange(ctx, in)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("login exchange: %w", err)
	}

	id, err := newSessionID()
	if err != nil {
		return domainauth.Session{}, err
	}

	now := s.now()
	sess := domainauth.Session{
		ID:          id,
		IdentityKey: domainauth.IdentityKeyOf(identity.Username),
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		Tokens:      identity.Tokens,
		ExpiresAt:   now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("persist session: %w", err)
	}

	s.logger.InfoContext(ctx, "login completed", "identity_key", sess.IdentityKey)
	return sess, nil
}

// Authorize decides whether the session may serve a request, refreshing the
// token set when the access token has expired. Checks run in a fixed order:
// session liveness, terminal marker, access expiry, issue-date. An expired
// token always gets its one refresh attempt; a still-valid token issued on a
// previous calendar date never authorizes, so the user logs in again each day.
func (s *AuthService) Authorize(ctx context.Context, sessionID string) (AuthorizeResult, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return AuthorizeResult{Outcome: AuthorizeInvalidated, Reason: ReasonSessionMissing}, nil
		}
		return AuthorizeResult{}, fmt.Errorf("load session: %w", err)
	}

	now := s.now()
	if !sess.Active(now) {
		reason := ReasonSessionsExpired
		if sess.Tokens.Terminal() {
			reason = ReasonTerminal
		}
		return s.invalidate(ctx, sess, reason)
	}

	if sess.Tokens.Expired(now) {
		return s.refresh(ctx, sess)
	}

	if !sess.Tokens.IssuedSameDay(now) {
		return s.invalidate(ctx, sess, ReasonStaleDay)
	}

	return AuthorizeResult{Outcome: AuthorizeValid, Session: sess}, nil
}

// refresh replaces the token set via the refresh grant. On failure the stored
// session is re-read first: a concurrent request may have already refreshed,
// in which case its newer token set wins and this request proceeds.
func (s *AuthService) refresh(ctx context.Context, sess domainauth.Session) (AuthorizeResult, error) {
	startedAt := sess.Tokens.IssuedAt

	tokens, err := s.provider.Refresh(ctx, sess.Tokens.RefreshToken)
	if err != nil {
		if fresh, ok := s.newerSession(ctx, sess.ID, startedAt); ok {
			return AuthorizeResult{Outcome: AuthorizeValid, Session: fresh}, nil
		}

		sess.Tokens.Error = classifyRefreshFailure(err)
		if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
			s.logger.WarnContext(ctx, "failed to mark session terminal", "error", saveErr)
		}
		s.logger.WarnContext(ctx, "token refresh failed",
			"identity_key", sess.IdentityKey,
			"code", string(sess.Tokens.Error),
			"error", err)
		return AuthorizeResult{Outcome: AuthorizeInvalidated, Session: sess, Reason: ReasonRefreshFailed}, nil
	}

	// The issuer may rotate the ID token on refresh. A rotated token that
	// does not decode is terminal; an omitted one keeps the previous raw
	// token for the eventual logout hint.
	if tokens.RawIDToken == "" {
		tokens.RawIDToken = sess.Tokens.RawIDToken
	} else if tokens.RawIDToken != sess.Tokens.RawIDToken {
		claims, decodeErr := domainauth.DecodeIDTokenClaims(tokens.RawIDToken)
		if decodeErr != nil {
			sess.Tokens.Error = domainauth.TokenErrorMalformed
			if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
				s.logger.WarnContext(ctx, "failed to mark session terminal", "error", saveErr)
			}
			s.logger.WarnContext(ctx, "rotated id token rejected",
				"identity_key", sess.IdentityKey,
				"code", string(domainauth.TokenErrorMalformed),
				"error", decodeErr)
			return AuthorizeResult{Outcome: AuthorizeInvalidated, Session: sess, Reason: ReasonRefreshFailed}, nil
		}
		if name := claims.DisplayName(); name != "" {
			sess.DisplayName = name
		}
		if claims.Email != "" {
			sess.Email = claims.Email
		}
	}

	sess.Tokens = tokens
	if err := s.sessions.Save(ctx, sess); err != nil {
		return AuthorizeResult{}, fmt.Errorf("persist refreshed session: %w", err)
	}
	return AuthorizeResult{Outcome: AuthorizeRefreshed, Session: sess}, nil
}

// newerSession reports whether the stored session now carries a token set
// issued after the given instant, meaning another request refreshed first.
func (s *AuthService) newerSession(ctx context.Context, sessionID string, after time.Time) (domainauth.Session, bool) {
	fresh, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domainauth.Session{}, false
	}
	if fresh.Tokens.Terminal() || !fresh.Tokens.IssuedAt.After(after) {
		return domainauth.Session{}, false
	}
	return fresh, true
}

func (s *AuthService) invalidate(ctx context.Context, sess domainauth.Session, reason string) (AuthorizeResult, error) {
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete session", "error", err)
	}
	s.logger.InfoContext(ctx, "session invalidated", "identity_key", sess.IdentityKey, "reason", reason)
	return AuthorizeResult{Outcome: AuthorizeInvalidated, Session: sess, Reason: reason}, nil
}

// Logout deletes the session and returns the provider logout URL, empty when
// the provider has none.
func (s *AuthService) Logout(ctx context.Context, sessionID, postLogoutRedirectURI string) (string, error) {
	rawIDToken := ""
	if sess, err := s.sessions.Get(ctx, sessionID); err == nil {
		rawIDToken = sess.Tokens.RawIDToken
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil && !isNotFound(err) {
		return "", fmt.Errorf("delete session: %w", err)
	}
	return s.provider.LogoutURL(postLogoutRedirectURI, rawIDToken), nil
}

func classifyRefreshFailure(err error) domainauth.TokenErrorCode {
	if errors.Is(err, ports.ErrRefreshRejected) {
		return domainauth.TokenErrorRefreshRejected
	}
	return domainauth.TokenErrorRefreshTransport
}

func isNotFound(err error) bool {
	var nf interface{ NotFound() bool }
	return errors.As(err, &nf) && nf.NotFound()
}

func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
