package bootstrap

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/gpjen/bookingroom/config"
	"github.com/gpjen/bookingroom/internal/adapters/devauth"
	"github.com/gpjen/bookingroom/internal/adapters/oidc"
	redisadapter "github.com/gpjen/bookingroom/internal/adapters/redis"
	"github.com/gpjen/bookingroom/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service for the configured auth mode.
// Returns nil when auth cannot be configured; callers must treat that as a
// startup failure for anything but local tooling.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	if cfg.RedisClient == nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		}
		return nil
	}

	sessionStore := redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, "session:")

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuthService(cfg, sessionStore)
	case config.AuthModeOAuth:
		return buildOAuthService(cfg, sessionStore)
	default:
		return nil
	}
}

func buildDevAuthService(cfg AuthConfig, sessionStore *redisadapter.SessionStore) *service.AuthService {
	prov, err := devauth.NewProvider(devauth.Config{
		Username:    cfg.Auth.DevAuth.Username,
		DisplayName: cfg.Auth.DevAuth.DisplayName,
		Email:       cfg.Auth.DevAuth.Email,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
		}
		return nil
	}

	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Provider:   prov,
		Sessions:   sessionStore,
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     cfg.Logger,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create auth service, auth disabled", "error", err)
		}
		return nil
	}
	return svc
}

func buildOAuthService(cfg AuthConfig, sessionStore *redisadapter.SessionStore) *service.AuthService {
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		if cfg.Logger != nil {
			cfg.Logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
				"discovery_url_empty", oauth.DiscoveryURL == "",
				"client_id_empty", oauth.ClientID == "",
				"client_secret_empty", oauth.ClientSecret == "",
			)
		}
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
		LogoutURL:    oauth.LogoutURL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
		}
		return nil
	}

	svc, err := service.NewAuthService(service.AuthServiceOptions{
		Provider:   prov,
		Sessions:   sessionStore,
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     cfg.Logger,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create auth service, auth disabled", "error", err)
		}
		return nil
	}
	return svc
}
