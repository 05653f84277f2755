package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gpjen/bookingroom/config"
	httpx "github.com/gpjen/bookingroom/internal/http"
	"github.com/gpjen/bookingroom/internal/observability/metrics"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server. Returns the server
// instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	var httpMetrics *metrics.HTTPMetrics
	if appCfg.Observability.MetricsEnabled {
		httpMetrics = metrics.NewHTTPMetrics()
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Auth:       cfg.Services.Auth,
		Resolver:   cfg.Services.Resolver,
		Directory:  cfg.Services.Directory,
		Facility:   cfg.Services.Facility,
		Bookings:   cfg.Services.Bookings,
		Webhooks:   cfg.Services.Webhooks,
		SessionTTL: appCfg.Auth.SessionTTL,
		Metrics:    httpMetrics,
		LoginRate:  appCfg.Auth.LoginRatePerMinute,
		LoginBurst: appCfg.Auth.LoginRateBurst,
		Logger:     logger,
	})

	return startServer(logger, handler, appCfg.HTTP.Addr)
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}
