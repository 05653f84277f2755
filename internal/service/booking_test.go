package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gpjen/bookingroom/internal/core"
	"github.com/gpjen/bookingroom/internal/domain/model"
	"github.com/gpjen/bookingroom/internal/mocks"
)

// recordingNotifier captures emitted events and signals each delivery.
type recordingNotifier struct {
	mu     sync.Mutex
	events []model.BookingEvent
	done   chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 8)}
}

func (n *recordingNotifier) Notify(_ context.Context, _ []model.WebhookSink, event model.BookingEvent) {
	n.mu.Lock()
	n.events = append(n.events, event)
	n.mu.Unlock()
	n.done <- struct{}{}
}

func (n *recordingNotifier) wait(t *testing.T) model.BookingEvent {
	t.Helper()
	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for webhook delivery")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

type bookingMocks struct {
	bookings  *mocks.MockBookingRepository
	buildings *mocks.MockBuildingRepository
	sinks     *mocks.MockWebhookSinkRepository
}

func newTestBookingService(t *testing.T, notifier EventNotifier) (*BookingService, bookingMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := bookingMocks{
		bookings:  mocks.NewMockBookingRepository(ctrl),
		buildings: mocks.NewMockBuildingRepository(ctrl),
		sinks:     mocks.NewMockWebhookSinkRepository(ctrl),
	}
	opts := BookingServiceOptions{
		Bookings:  m.bookings,
		Buildings: m.buildings,
		TimeFunc:  func() time.Time { return testNow },
	}
	if notifier != nil {
		opts.Notifier = notifier
		opts.Sinks = m.sinks
	}
	svc, err := NewBookingService(opts)
	require.NoError(t, err)
	return svc, m
}

func TestBookingService_Submit(t *testing.T) {
	svc, m := newTestBookingService(t, nil)
	ctx := context.Background()

	bed := &model.Bed{ID: "bed-1", RoomID: "room-1", Status: model.BedStatusAvailable}
	room := &model.Room{ID: "room-1", BuildingID: "b-1"}
	m.buildings.EXPECT().GetBed(ctx, "bed-1").Return(bed, nil)
	m.buildings.EXPECT().GetRoom(ctx, "room-1").Return(room, nil)

	var captured core.CreateBookingParams
	m.bookings.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.CreateBookingParams) (*model.BookingRequest, error) {
			captured = params
			return &model.BookingRequest{
				ID:         "bk-1",
				Reference:  params.Reference,
				BedID:      params.BedID,
				BuildingID: params.BuildingID,
				Status:     model.BookingStatusPending,
			}, nil
		})

	booking, err := svc.Submit(ctx, &model.CreateBookingRequest{
		Username:  "Jane.Doe",
		BedID:     "bed-1",
		StartDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, "jane.doe", captured.IdentityKey)
	assert.Equal(t, "Jane.Doe", captured.Username)
	assert.Equal(t, "b-1", captured.BuildingID)
	// ULID references are 26 chars of Crockford base32.
	assert.Len(t, captured.Reference, 26)
}

func TestBookingService_Submit_BedNotAvailable(t *testing.T) {
	svc, m := newTestBookingService(t, nil)
	ctx := context.Background()

	m.buildings.EXPECT().GetBed(ctx, "bed-1").
		Return(&model.Bed{ID: "bed-1", Status: model.BedStatusMaintenance}, nil)

	_, err := svc.Submit(ctx, &model.CreateBookingRequest{
		Username:  "jane",
		BedID:     "bed-1",
		StartDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, ErrBedUnavailable)
}

func TestBookingService_Approve_ReservesBed(t *testing.T) {
	svc, m := newTestBookingService(t, nil)
	ctx := context.Background()

	m.bookings.EXPECT().Transition(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.TransitionBookingParams) (*model.BookingRequest, error) {
			assert.Equal(t, model.BookingStatusApproved, params.Next)
			require.NotNil(t, params.DecidedBy)
			assert.Equal(t, "warden", *params.DecidedBy)
			require.NotNil(t, params.BedStatus)
			assert.Equal(t, model.BedStatusReserved, *params.BedStatus)
			return &model.BookingRequest{ID: params.BookingID, Status: params.Next}, nil
		})

	booking, err := svc.Approve(ctx, "bk-1", "warden")
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusApproved, booking.Status)
}

func TestBookingService_Reject_LeavesBed(t *testing.T) {
	svc, m := newTestBookingService(t, nil)
	ctx := context.Background()

	m.bookings.EXPECT().Transition(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.TransitionBookingParams) (*model.BookingRequest, error) {
			assert.Equal(t, model.BookingStatusRejected, params.Next)
			assert.Nil(t, params.BedStatus)
			return &model.BookingRequest{ID: params.BookingID, Status: params.Next}, nil
		})

	_, err := svc.Reject(ctx, "bk-1", "warden")
	require.NoError(t, err)
}

func TestBookingService_CheckInAndOut(t *testing.T) {
	svc, m := newTestBookingService(t, nil)
	ctx := context.Background()

	m.bookings.EXPECT().Transition(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.TransitionBookingParams) (*model.BookingRequest, error) {
			assert.Equal(t, model.BookingStatusCheckedIn, params.Next)
			require.NotNil(t, params.BedStatus)
			assert.Equal(t, model.BedStatusOccupied, *params.BedStatus)
			return &model.BookingRequest{ID: params.BookingID, Status: params.Next}, nil
		})
	_, err := svc.CheckIn(ctx, "bk-1")
	require.NoError(t, err)

	m.bookings.EXPECT().Transition(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.TransitionBookingParams) (*model.BookingRequest, error) {
			assert.Equal(t, model.BookingStatusCompleted, params.Next)
			require.NotNil(t, params.BedStatus)
			assert.Equal(t, model.BedStatusAvailable, *params.BedStatus)
			return &model.BookingRequest{ID: params.BookingID, Status: params.Next}, nil
		})
	_, err = svc.CheckOut(ctx, "bk-1")
	require.NoError(t, err)
}

func TestBookingService_Cancel_ApprovedFreesBed(t *testing.T) {
	svc, m := newTestBookingService(t, nil)
	ctx := context.Background()

	m.bookings.EXPECT().GetByID(ctx, "bk-1").
		Return(&model.BookingRequest{ID: "bk-1", Status: model.BookingStatusApproved}, nil)
	m.bookings.EXPECT().Transition(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.TransitionBookingParams) (*model.BookingRequest, error) {
			assert.Equal(t, model.BookingStatusCancelled, params.Next)
			require.NotNil(t, params.BedStatus)
			assert.Equal(t, model.BedStatusAvailable, *params.BedStatus)
			return &model.BookingRequest{ID: params.BookingID, Status: params.Next}, nil
		})

	_, err := svc.Cancel(ctx, "bk-1")
	require.NoError(t, err)
}

func TestBookingService_Cancel_PendingLeavesBed(t *testing.T) {
	svc, m := newTestBookingService(t, nil)
	ctx := context.Background()

	m.bookings.EXPECT().GetByID(ctx, "bk-1").
		Return(&model.BookingRequest{ID: "bk-1", Status: model.BookingStatusPending}, nil)
	m.bookings.EXPECT().Transition(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.TransitionBookingParams) (*model.BookingRequest, error) {
			assert.Nil(t, params.BedStatus)
			return &model.BookingRequest{ID: params.BookingID, Status: params.Next}, nil
		})

	_, err := svc.Cancel(ctx, "bk-1")
	require.NoError(t, err)
}

func TestBookingService_Approve_EmitsEvent(t *testing.T) {
	notifier := newRecordingNotifier()
	svc, m := newTestBookingService(t, notifier)
	ctx := context.Background()

	m.bookings.EXPECT().Transition(ctx, gomock.Any()).Return(&model.BookingRequest{
		ID:         "bk-1",
		Reference:  "01HXAMPLEULID0000000000000",
		BedID:      "bed-1",
		BuildingID: "b-1",
		Username:   "Jane.Doe",
		Status:     model.BookingStatusApproved,
	}, nil)
	m.sinks.EXPECT().ListEnabled(gomock.Any()).
		Return([]model.WebhookSink{{ID: "sink-1", Name: "ops", URI: "https://hooks/ops", Enabled: true}}, nil)

	_, err := svc.Approve(ctx, "bk-1", "warden")
	require.NoError(t, err)

	event := notifier.wait(t)
	assert.Equal(t, EventBookingApproved, event.Type)
	assert.Equal(t, "01HXAMPLEULID0000000000000", event.Reference)
	assert.Equal(t, model.BookingStatusApproved, event.Status)
	assert.Equal(t, testNow.UTC(), event.OccurredAt)
}
