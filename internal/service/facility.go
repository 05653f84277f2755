package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gpjen/bookingroom/internal/core"
	"github.com/gpjen/bookingroom/internal/domain/model"
)

// ErrManualBedTransition is returned when a bed status change outside the
// maintenance cycle is attempted directly. Reservation and occupancy states
// are driven by the booking workflow only.
var ErrManualBedTransition = errors.New("bed status is managed by the booking workflow")

// FacilityServiceOptions configures NewFacilityService.
type FacilityServiceOptions struct {
	Buildings core.BuildingRepository
	Logger    *slog.Logger
}

// FacilityService manages the building, room, and bed inventory and the
// occupancy dashboard aggregation.
type FacilityService struct {
	buildings core.BuildingRepository
	logger    *slog.Logger
}

// NewFacilityService creates a FacilityService.
func NewFacilityService(opts FacilityServiceOptions) (*FacilityService, error) {
	if opts.Buildings == nil {
		return nil, errors.New("building repository is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &FacilityService{
		buildings: opts.Buildings,
		logger:    opts.Logger.With("component", "facility_service"),
	}, nil
}

// CreateBuilding registers a building.
func (s *FacilityService) CreateBuilding(ctx context.Context, req *model.CreateBuildingRequest) (*model.Building, error) {
	return s.buildings.CreateBuilding(ctx, req)
}

// GetBuilding retrieves a building by ID.
func (s *FacilityService) GetBuilding(ctx context.Context, id string) (*model.Building, error) {
	return s.buildings.GetBuilding(ctx, id)
}

// ListBuildings lists buildings with pagination.
func (s *FacilityService) ListBuildings(ctx context.Context, limit, offset int) ([]*model.Building, error) {
	return s.buildings.ListBuildings(ctx, limit, offset)
}

// CreateRoom registers a room within a building.
func (s *FacilityService) CreateRoom(ctx context.Context, req *model.CreateRoomRequest) (*model.Room, error) {
	return s.buildings.CreateRoom(ctx, req)
}

// ListRooms lists the rooms of a building.
func (s *FacilityService) ListRooms(ctx context.Context, buildingID string) ([]*model.Room, error) {
	return s.buildings.ListRooms(ctx, buildingID)
}

// CreateBed registers a bed within a room. New beds start available.
func (s *FacilityService) CreateBed(ctx context.Context, req *model.CreateBedRequest) (*model.Bed, error) {
	return s.buildings.CreateBed(ctx, req)
}

// ListBeds lists the beds of a room.
func (s *FacilityService) ListBeds(ctx context.Context, roomID string) ([]*model.Bed, error) {
	return s.buildings.ListBeds(ctx, roomID)
}

// SetBedStatus applies an administrative bed status change. Only the
// maintenance cycle is allowed here; reserved and occupied are reachable
// solely through booking approval and check-in.
func (s *FacilityService) SetBedStatus(ctx context.Context, bedID string, next model.BedStatus) (*model.Bed, error) {
	if next != model.BedStatusMaintenance && next != model.BedStatusAvailable {
		return nil, ErrManualBedTransition
	}
	bed, err := s.buildings.UpdateBedStatus(ctx, bedID, next)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "bed status changed", "bed_id", bedID, "status", string(next))
	return bed, nil
}

// Occupancy aggregates per-building bed counts and pending requests. When
// buildingIDs is non-empty the result is restricted to those buildings.
func (s *FacilityService) Occupancy(ctx context.Context, buildingIDs []string) ([]model.OccupancySummary, error) {
	summaries, err := s.buildings.OccupancySummaries(ctx)
	if err != nil {
		return nil, err
	}
	if len(buildingIDs) == 0 {
		return summaries, nil
	}

	allowed := make(map[string]struct{}, len(buildingIDs))
	for _, id := range buildingIDs {
		allowed[id] = struct{}{}
	}
	filtered := summaries[:0]
	for _, sum := range summaries {
		if _, ok := allowed[sum.BuildingID]; ok {
			filtered = append(filtered, sum)
		}
	}
	return filtered, nil
}
