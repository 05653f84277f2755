// Package mocks provides mock implementations for testing the booking room services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository
// interfaces. The mocks are generated using go:generate directives and provide a fluent API
// for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockRoleRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(role, nil)
package mocks

// Generate mock for RoleRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=role_repository_mock.go github.com/gpjen/bookingroom/internal/core RoleRepository

// Generate mock for PermissionRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=permission_repository_mock.go github.com/gpjen/bookingroom/internal/core PermissionRepository

// Generate mock for AssignmentRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=assignment_repository_mock.go github.com/gpjen/bookingroom/internal/core AssignmentRepository

// Generate mock for GrantRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=grant_repository_mock.go github.com/gpjen/bookingroom/internal/core GrantRepository

// Generate mock for BuildingRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=building_repository_mock.go github.com/gpjen/bookingroom/internal/core BuildingRepository

// Generate mock for BookingRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=booking_repository_mock.go github.com/gpjen/bookingroom/internal/core BookingRepository

// Generate mock for WebhookSinkRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=webhook_sink_repository_mock.go github.com/gpjen/bookingroom/internal/core WebhookSinkRepository
