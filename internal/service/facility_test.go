package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/mocks"
)

func newTestFacilityService(t *testing.T) (*FacilityService, *mocks.MockBuildingRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBuildingRepository(ctrl)
	svc, err := NewFacilityService(FacilityServiceOptions{Buildings: repo})
	require.NoError(t, err)
	return svc, repo
}

func TestFacilityService_SetBedStatus_MaintenanceCycle(t *testing.T) {
	svc, repo := newTestFacilityService(t)
	ctx := context.Background()

	repo.EXPECT().UpdateBedStatus(ctx, "bed-1", model.BedStatusMaintenance).
		Return(&model.Bed{ID: "bed-1", Status: model.BedStatusMaintenance}, nil)

	bed, err := svc.SetBedStatus(ctx, "bed-1", model.BedStatusMaintenance)
	require.NoError(t, err)
	assert.Equal(t, model.BedStatusMaintenance, bed.Status)
}

func TestFacilityService_SetBedStatus_WorkflowStatesRefused(t *testing.T) {
	svc, _ := newTestFacilityService(t)
	ctx := context.Background()

	for _, status := range []model.BedStatus{model.BedStatusReserved, model.BedStatusOccupied} {
		_, err := svc.SetBedStatus(ctx, "bed-1", status)
		assert.ErrorIs(t, err, ErrManualBedTransition, "status %s", status)
	}
}

func TestFacilityService_Occupancy_Unfiltered(t *testing.T) {
	svc, repo := newTestFacilityService(t)
	ctx := context.Background()

	all := []model.OccupancySummary{
		{BuildingID: "b-1", BuildingCode: "B1", Available: 2},
		{BuildingID: "b-2", BuildingCode: "B2", Occupied: 1},
	}
	repo.EXPECT().OccupancySummaries(ctx).Return(all, nil)

	summaries, err := svc.Occupancy(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, all, summaries)
}

func TestFacilityService_Occupancy_FilteredByGrants(t *testing.T) {
	svc, repo := newTestFacilityService(t)
	ctx := context.Background()

	repo.EXPECT().OccupancySummaries(ctx).Return([]model.OccupancySummary{
		{BuildingID: "b-1", BuildingCode: "B1"},
		{BuildingID: "b-2", BuildingCode: "B2"},
		{BuildingID: "b-3", BuildingCode: "B3"},
	}, nil)

	summaries, err := svc.Occupancy(ctx, []string{"b-2"})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "B2", summaries[0].BuildingCode)
}
