package core

import (
	"context"
	"time"

	"github.com/gpjen/bookingroom/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// RoleRepository defines the interface for role data operations.
type RoleRepository interface {
	Create(ctx context.Context, req *model.CreateRoleRequest) (*model.Role, error)
	GetByID(ctx context.Context, id string) (*model.Role, error)
	GetByName(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context, limit, offset int) ([]*model.Role, error)
	Update(ctx context.Context, id string, req model.UpdateRoleRequest) (*model.Role, error)
	Delete(ctx context.Context, id string) (bool, error)
	// AssignmentCount returns the number of user role assignments referencing the role.
	AssignmentCount(ctx context.Context, roleID string) (int, error)
}

// PermissionRepository defines the interface for permission key data operations.
type PermissionRepository interface {
	Create(ctx context.Context, req *model.CreatePermissionRequest) (*model.Permission, error)
	GetByKey(ctx context.Context, key string) (*model.Permission, error)
	List(ctx context.Context) ([]*model.Permission, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// AssignmentRepository defines the interface for user role assignment data operations.
type AssignmentRepository interface {
	Create(ctx context.Context, req *model.CreateAssignmentRequest) (*model.UserRoleAssignment, error)
	List(ctx context.Context, limit, offset int) ([]*model.UserRoleAssignment, error)
	ListByIdentity(ctx context.Context, identityKey string) ([]*model.UserRoleAssignment, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// GrantRepository defines the interface for building access grant data operations.
type GrantRepository interface {
	Create(ctx context.Context, identityKey string, req *model.CreateGrantRequest) (*model.BuildingAccessGrant, error)
	ListByIdentity(ctx context.Context, identityKey string) ([]*model.BuildingAccessGrant, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// BuildingRepository defines the interface for buildings, rooms, and beds.
type BuildingRepository interface {
	CreateBuilding(ctx context.Context, req *model.CreateBuildingRequest) (*model.Building, error)
	GetBuilding(ctx context.Context, id string) (*model.Building, error)
	GetBuildingByCode(ctx context.Context, code string) (*model.Building, error)
	ListBuildings(ctx context.Context, limit, offset int) ([]*model.Building, error)

	CreateRoom(ctx context.Context, req *model.CreateRoomRequest) (*model.Room, error)
	GetRoom(ctx context.Context, id string) (*model.Room, error)
	ListRooms(ctx context.Context, buildingID string) ([]*model.Room, error)

	CreateBed(ctx context.Context, req *model.CreateBedRequest) (*model.Bed, error)
	GetBed(ctx context.Context, id string) (*model.Bed, error)
	ListBeds(ctx context.Context, roomID string) ([]*model.Bed, error)
	// UpdateBedStatus applies a bed state transition, failing when the
	// current status does not allow it.
	UpdateBedStatus(ctx context.Context, id string, next model.BedStatus) (*model.Bed, error)

	// OccupancySummaries aggregates bed counts and pending booking requests
	// per building.
	OccupancySummaries(ctx context.Context) ([]model.OccupancySummary, error)
}

// CreateBookingParams groups parameters for BookingRepository.Create.
type CreateBookingParams struct {
	Reference   string
	IdentityKey string
	Username    string
	BedID       string
	BuildingID  string
	StartDate   time.Time
	EndDate     time.Time
	Note        *string
}

// TransitionBookingParams groups parameters for BookingRepository.Transition.
// BedStatus, when non-nil, is applied to the booking's bed in the same
// transaction as the booking status change.
type TransitionBookingParams struct {
	BookingID string
	Next      model.BookingStatus
	DecidedBy *string
	BedStatus *model.BedStatus
}

// BookingRepository defines the interface for booking request data operations.
type BookingRepository interface {
	Create(ctx context.Context, params CreateBookingParams) (*model.BookingRequest, error)
	GetByID(ctx context.Context, id string) (*model.BookingRequest, error)
	GetByReference(ctx context.Context, reference string) (*model.BookingRequest, error)
	List(ctx context.Context, opts model.BookingsListOptions) ([]*model.BookingRequest, error)
	Transition(ctx context.Context, params TransitionBookingParams) (*model.BookingRequest, error)
}

// WebhookSinkRepository defines the interface for webhook sink data operations.
type WebhookSinkRepository interface {
	Create(ctx context.Context, req *model.CreateWebhookSinkRequest) (*model.WebhookSink, error)
	GetByID(ctx context.Context, id string) (*model.WebhookSink, error)
	List(ctx context.Context, limit, offset int) ([]*model.WebhookSink, error)
	ListEnabled(ctx context.Context) ([]model.WebhookSink, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (*model.WebhookSink, error)
	Delete(ctx context.Context, id string) (bool, error)
}
