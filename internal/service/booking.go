package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gpjen/bookingroom/internal/core"
	domainauth "github.com/gpjen/bookingroom/internal/domain/auth"
	"github.com/gpjen/bookingroom/internal/domain/model"
)

// Booking event types delivered to webhook sinks.
const (
	EventBookingSubmitted = "booking.submitted"
	EventBookingApproved  = "booking.approved"
	EventBookingRejected  = "booking.rejected"
	EventBookingCheckedIn = "booking.checked_in"
	EventBookingCompleted = "booking.completed"
	EventBookingCancelled = "booking.cancelled"
)

// ErrBedUnavailable is returned when a booking is submitted against a bed
// that cannot currently be requested.
var ErrBedUnavailable = errors.New("bed is not available for booking")

// EventNotifier delivers a booking event to the given sinks.
type EventNotifier interface {
	Notify(ctx context.Context, sinks []model.WebhookSink, event model.BookingEvent)
}

// BookingServiceOptions configures NewBookingService.
type BookingServiceOptions struct {
	Bookings  core.BookingRepository
	Buildings core.BuildingRepository
	Sinks     core.WebhookSinkRepository
	Notifier  EventNotifier
	Logger    *slog.Logger
	TimeFunc  func() time.Time
}

// BookingService owns the booking request workflow. Status changes that touch
// a bed run the booking and bed updates in one transaction, so a refused bed
// transition rolls the booking change back.
type BookingService struct {
	bookings  core.BookingRepository
	buildings core.BuildingRepository
	sinks     core.WebhookSinkRepository
	notifier  EventNotifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewBookingService creates a BookingService. Notifier and Sinks may be nil
// together, disabling webhook delivery.
func NewBookingService(opts BookingServiceOptions) (*BookingService, error) {
	if opts.Bookings == nil {
		return nil, errors.New("booking repository is required")
	}
	if opts.Buildings == nil {
		return nil, errors.New("building repository is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TimeFunc == nil {
		opts.TimeFunc = time.Now
	}
	return &BookingService{
		bookings:  opts.Bookings,
		buildings: opts.Buildings,
		sinks:     opts.Sinks,
		notifier:  opts.Notifier,
		logger:    opts.Logger.With("component", "booking_service"),
		now:       opts.TimeFunc,
	}, nil
}

// Submit creates a pending booking request for a bed. The bed must be
// available at submission time; it is not held until approval, so two pending
// requests may race for one bed and the first approval wins.
func (s *BookingService) Submit(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingRequest, error) {
	if req == nil {
		return nil, errors.New("create booking request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bed, err := s.buildings.GetBed(ctx, req.BedID)
	if err != nil {
		return nil, err
	}
	if bed.Status != model.BedStatusAvailable {
		return nil, fmt.Errorf("%w: bed is %s", ErrBedUnavailable, bed.Status)
	}
	room, err := s.buildings.GetRoom(ctx, bed.RoomID)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.Create(ctx, core.CreateBookingParams{
		Reference:   ulid.Make().String(),
		IdentityKey: domainauth.IdentityKeyOf(req.Username),
		Username:    req.Username,
		BedID:       bed.ID,
		BuildingID:  room.BuildingID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Note:        req.Note,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking submitted",
		"reference", booking.Reference,
		"identity_key", booking.IdentityKey,
		"bed_id", booking.BedID)
	s.emit(ctx, EventBookingSubmitted, booking)
	return booking, nil
}

// Approve moves a pending booking to approved and reserves its bed. Fails if
// the bed is no longer available.
func (s *BookingService) Approve(ctx context.Context, bookingID, decidedBy string) (*model.BookingRequest, error) {
	reserved := model.BedStatusReserved
	booking, err := s.bookings.Transition(ctx, core.TransitionBookingParams{
		BookingID: bookingID,
		Next:      model.BookingStatusApproved,
		DecidedBy: &decidedBy,
		BedStatus: &reserved,
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, EventBookingApproved, booking)
	return booking, nil
}

// Reject moves a pending booking to rejected. The bed is untouched.
func (s *BookingService) Reject(ctx context.Context, bookingID, decidedBy string) (*model.BookingRequest, error) {
	booking, err := s.bookings.Transition(ctx, core.TransitionBookingParams{
		BookingID: bookingID,
		Next:      model.BookingStatusRejected,
		DecidedBy: &decidedBy,
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, EventBookingRejected, booking)
	return booking, nil
}

// CheckIn moves an approved booking to checked_in and occupies its bed.
func (s *BookingService) CheckIn(ctx context.Context, bookingID string) (*model.BookingRequest, error) {
	occupied := model.BedStatusOccupied
	booking, err := s.bookings.Transition(ctx, core.TransitionBookingParams{
		BookingID: bookingID,
		Next:      model.BookingStatusCheckedIn,
		BedStatus: &occupied,
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, EventBookingCheckedIn, booking)
	return booking, nil
}

// CheckOut moves a checked_in booking to completed and frees its bed.
func (s *BookingService) CheckOut(ctx context.Context, bookingID string) (*model.BookingRequest, error) {
	available := model.BedStatusAvailable
	booking, err := s.bookings.Transition(ctx, core.TransitionBookingParams{
		BookingID: bookingID,
		Next:      model.BookingStatusCompleted,
		BedStatus: &available,
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, EventBookingCompleted, booking)
	return booking, nil
}

// Cancel cancels a pending or approved booking. An approved booking releases
// its reserved bed in the same transaction.
func (s *BookingService) Cancel(ctx context.Context, bookingID string) (*model.BookingRequest, error) {
	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	params := core.TransitionBookingParams{
		BookingID: bookingID,
		Next:      model.BookingStatusCancelled,
	}
	if current.Status == model.BookingStatusApproved {
		available := model.BedStatusAvailable
		params.BedStatus = &available
	}

	booking, err := s.bookings.Transition(ctx, params)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, EventBookingCancelled, booking)
	return booking, nil
}

// Get retrieves a booking by ID.
func (s *BookingService) Get(ctx context.Context, id string) (*model.BookingRequest, error) {
	return s.bookings.GetByID(ctx, id)
}

// GetByReference retrieves a booking by its public reference.
func (s *BookingService) GetByReference(ctx context.Context, reference string) (*model.BookingRequest, error) {
	return s.bookings.GetByReference(ctx, reference)
}

// List retrieves bookings matching the options. Callers enforce building
// scoping by populating BuildingIDs from the requester's access grants.
func (s *BookingService) List(ctx context.Context, opts model.BookingsListOptions) ([]*model.BookingRequest, error) {
	return s.bookings.List(ctx, opts)
}

// emit fans the event out to enabled webhook sinks in the background. The
// originating operation has already committed; delivery failures are logged
// by the notifier and never surface here.
func (s *BookingService) emit(ctx context.Context, eventType string, booking *model.BookingRequest) {
	if s.notifier == nil || s.sinks == nil {
		return
	}

	event := model.BookingEvent{
		Type:       eventType,
		Reference:  booking.Reference,
		BookingID:  booking.ID,
		BedID:      booking.BedID,
		BuildingID: booking.BuildingID,
		Username:   booking.Username,
		Status:     booking.Status,
		OccurredAt: s.now().UTC(),
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		sinks, err := s.sinks.ListEnabled(bg)
		if err != nil {
			s.logger.WarnContext(bg, "failed to load webhook sinks", "error", err)
			return
		}
		if len(sinks) == 0 {
			return
		}
		s.notifier.Notify(bg, sinks, event)
	}()
}
