package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gpjen/bookingroom/internal/adapters/webhook"
	"github.com/gpjen/bookingroom/internal/data"
	"github.com/gpjen/bookingroom/internal/service"
)

// ServiceContainer holds the application services built over one database
// handle.
type ServiceContainer struct {
	Auth      *service.AuthService
	Resolver  *service.PermissionService
	Directory *service.DirectoryService
	Facility  *service.FacilityService
	Bookings  *service.BookingService
	Webhooks  *service.WebhookService
}

// ServicesConfig contains dependencies for building the service container.
type ServicesConfig struct {
	DB     *sql.DB
	Auth   *service.AuthService
	Logger *slog.Logger
}

// BuildServices constructs the repository and service graph. The auth service
// is built separately because it depends on Redis rather than Postgres.
func BuildServices(cfg ServicesConfig) (ServiceContainer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	roles := data.NewRoleRepo(cfg.DB)
	permissions := data.NewPermissionRepo(cfg.DB)
	assignments := data.NewAssignmentRepo(cfg.DB)
	grants := data.NewGrantRepo(cfg.DB)
	buildings := data.NewBuildingRepo(cfg.DB)
	bookings := data.NewBookingRepo(cfg.DB)
	sinks := data.NewWebhookSinkRepo(cfg.DB)

	resolver, err := service.NewPermissionService(service.PermissionServiceOptions{
		Directory: assignments,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build permission service: %w", err)
	}

	directory, err := service.NewDirectoryService(service.DirectoryServiceOptions{
		Roles:       roles,
		Permissions: permissions,
		Assignments: assignments,
		Grants:      grants,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build directory service: %w", err)
	}

	facility, err := service.NewFacilityService(service.FacilityServiceOptions{
		Buildings: buildings,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build facility service: %w", err)
	}

	notifier := webhook.NewNotifier(webhook.NotifierOptions{Logger: logger})
	bookingSvc, err := service.NewBookingService(service.BookingServiceOptions{
		Bookings:  bookings,
		Buildings: buildings,
		Sinks:     sinks,
		Notifier:  notifier,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build booking service: %w", err)
	}

	webhookSvc, err := service.NewWebhookService(service.WebhookServiceOptions{
		Sinks:  sinks,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build webhook service: %w", err)
	}

	return ServiceContainer{
		Auth:      cfg.Auth,
		Resolver:  resolver,
		Directory: directory,
		Facility:  facility,
		Bookings:  bookingSvc,
		Webhooks:  webhookSvc,
	}, nil
}
