package data

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpjen/bookingroom/internal/core"
	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/testutil"
)

type facilityFixture struct {
	Building *model.Building
	Room     *model.Room
	Bed      *model.Bed
}

func seedFacility(t *testing.T, repo *BuildingRepo) facilityFixture {
	t.Helper()
	ctx := context.Background()

	building, err := repo.CreateBuilding(ctx, &model.CreateBuildingRequest{Code: "B1", Name: "North Dorm", Area: "north"})
	require.NoError(t, err)
	room, err := repo.CreateRoom(ctx, &model.CreateRoomRequest{BuildingID: building.ID, Code: "101", Floor: 1})
	require.NoError(t, err)
	bed, err := repo.CreateBed(ctx, &model.CreateBedRequest{RoomID: room.ID, Code: "101-A"})
	require.NoError(t, err)
	require.Equal(t, model.BedStatusAvailable, bed.Status)

	return facilityFixture{Building: building, Room: room, Bed: bed}
}

func newBookingParams(fix facilityFixture) core.CreateBookingParams {
	return core.CreateBookingParams{
		Reference:   ulid.Make().String(),
		IdentityKey: "a.resident",
		Username:    "A.Resident",
		BedID:       fix.Bed.ID,
		BuildingID:  fix.Building.ID,
		StartDate:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC),
	}
}

func TestBookingRepo_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	buildings := NewBuildingRepo(db)
	fix := seedFacility(t, buildings)

	repo := NewBookingRepo(db)
	ctx := context.Background()

	params := newBookingParams(fix)
	booking, err := repo.Create(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, params.Reference, booking.Reference)
	assert.Equal(t, "a.resident", booking.IdentityKey)

	got, err := repo.GetByReference(ctx, params.Reference)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestBookingRepo_CreateDuplicateReference(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	buildings := NewBuildingRepo(db)
	fix := seedFacility(t, buildings)

	repo := NewBookingRepo(db)
	ctx := context.Background()

	params := newBookingParams(fix)
	_, err := repo.Create(ctx, params)
	require.NoError(t, err)

	_, err = repo.Create(ctx, params)
	assert.ErrorIs(t, err, ErrBookingReferenceExists)
}

func TestBookingRepo_ApproveReservesBed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	buildings := NewBuildingRepo(db)
	fix := seedFacility(t, buildings)

	repo := NewBookingRepo(db)
	ctx := context.Background()

	booking, err := repo.Create(ctx, newBookingParams(fix))
	require.NoError(t, err)

	decidedBy := "an.admin"
	reserved := model.BedStatusReserved
	approved, err := repo.Transition(ctx, core.TransitionBookingParams{
		BookingID: booking.ID,
		Next:      model.BookingStatusApproved,
		DecidedBy: &decidedBy,
		BedStatus: &reserved,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, "an.admin", *approved.DecidedBy)
	assert.NotNil(t, approved.DecidedAt)

	bed, err := buildings.GetBed(ctx, fix.Bed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BedStatusReserved, bed.Status)
}

func TestBookingRepo_InvalidTransitionRollsBackBed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	buildings := NewBuildingRepo(db)
	fix := seedFacility(t, buildings)

	repo := NewBookingRepo(db)
	ctx := context.Background()

	booking, err := repo.Create(ctx, newBookingParams(fix))
	require.NoError(t, err)

	// pending -> completed is not a legal booking transition; the bed must
	// stay untouched even though its own transition would be requested.
	occupied := model.BedStatusOccupied
	_, err = repo.Transition(ctx, core.TransitionBookingParams{
		BookingID: booking.ID,
		Next:      model.BookingStatusCompleted,
		BedStatus: &occupied,
	})
	var invalid *ErrInvalidBookingTransition
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.BookingStatusPending, invalid.From)

	bed, err := buildings.GetBed(ctx, fix.Bed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BedStatusAvailable, bed.Status)
}

func TestBookingRepo_BedConflictRollsBackBooking(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	buildings := NewBuildingRepo(db)
	fix := seedFacility(t, buildings)

	repo := NewBookingRepo(db)
	ctx := context.Background()

	booking, err := repo.Create(ctx, newBookingParams(fix))
	require.NoError(t, err)

	// Put the bed into maintenance out of band; approval then cannot
	// reserve it and the whole transition must roll back.
	_, err = buildings.UpdateBedStatus(ctx, fix.Bed.ID, model.BedStatusMaintenance)
	require.NoError(t, err)

	reserved := model.BedStatusReserved
	_, err = repo.Transition(ctx, core.TransitionBookingParams{
		BookingID: booking.ID,
		Next:      model.BookingStatusApproved,
		BedStatus: &reserved,
	})
	var invalidBed *model.ErrInvalidBedTransition
	require.ErrorAs(t, err, &invalidBed)

	got, err := repo.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, got.Status)
}

func TestBookingRepo_FullLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	buildings := NewBuildingRepo(db)
	fix := seedFacility(t, buildings)

	repo := NewBookingRepo(db)
	ctx := context.Background()

	booking, err := repo.Create(ctx, newBookingParams(fix))
	require.NoError(t, err)

	steps := []struct {
		next model.BookingStatus
		bed  model.BedStatus
	}{
		{model.BookingStatusApproved, model.BedStatusReserved},
		{model.BookingStatusCheckedIn, model.BedStatusOccupied},
		{model.BookingStatusCompleted, model.BedStatusAvailable},
	}
	for _, step := range steps {
		bed := step.bed
		_, err = repo.Transition(ctx, core.TransitionBookingParams{
			BookingID: booking.ID,
			Next:      step.next,
			BedStatus: &bed,
		})
		require.NoError(t, err)
	}

	final, err := repo.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, final.Status)

	bed, err := buildings.GetBed(ctx, fix.Bed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BedStatusAvailable, bed.Status)
}

func TestBookingRepo_ListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	buildings := NewBuildingRepo(db)
	fix := seedFacility(t, buildings)
	otherBed, err := buildings.CreateBed(context.Background(), &model.CreateBedRequest{RoomID: fix.Room.ID, Code: "101-B"})
	require.NoError(t, err)

	repo := NewBookingRepo(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, newBookingParams(fix))
	require.NoError(t, err)

	second := newBookingParams(fix)
	second.IdentityKey = "b.visitor"
	second.Username = "B.Visitor"
	second.BedID = otherBed.ID
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	identity := "a.resident"
	byIdentity, err := repo.List(ctx, model.BookingsListOptions{IdentityKey: &identity})
	require.NoError(t, err)
	require.Len(t, byIdentity, 1)
	assert.Equal(t, first.ID, byIdentity[0].ID)

	pending := model.BookingStatusPending
	byStatus, err := repo.List(ctx, model.BookingsListOptions{Status: &pending, BuildingIDs: []string{fix.Building.ID}})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byOtherBuilding, err := repo.List(ctx, model.BookingsListOptions{BuildingIDs: []string{"00000000-0000-0000-0000-000000000000"}})
	require.NoError(t, err)
	assert.Empty(t, byOtherBuilding)
}
