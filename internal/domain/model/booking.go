package model

import (
	"errors"
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a booking request.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCheckedIn BookingStatus = "checked_in"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether the booking status is supported.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusApproved, BookingStatusRejected,
		BookingStatusCheckedIn, BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the status may change into next.
// pending -> approved|rejected|cancelled; approved -> checked_in|cancelled;
// checked_in -> completed. Terminal states never transition.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusApproved || next == BookingStatusRejected || next == BookingStatusCancelled
	case BookingStatusApproved:
		return next == BookingStatusCheckedIn || next == BookingStatusCancelled
	case BookingStatusCheckedIn:
		return next == BookingStatusCompleted
	default:
		return false
	}
}

// Terminal reports whether no further transitions are possible.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCompleted, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// BookingRequest is a request to occupy a bed for a date range. Reference is
// a ULID assigned at creation and used in user-facing communication.
type BookingRequest struct {
	ID          string        `json:"id"           db:"id"`
	Reference   string        `json:"reference"    db:"reference"`
	IdentityKey string        `json:"identity_key" db:"identity_key"`
	Username    string        `json:"username"     db:"username"`
	BedID       string        `json:"bed_id"       db:"bed_id"`
	BuildingID  string        `json:"building_id"  db:"building_id"`
	Status      BookingStatus `json:"status"       db:"status"`
	StartDate   time.Time     `json:"start_date"   db:"start_date"`
	EndDate     time.Time     `json:"end_date"     db:"end_date"`
	Note        *string       `json:"note,omitempty"        db:"note"`
	DecidedBy   *string       `json:"decided_by,omitempty"  db:"decided_by"`
	DecidedAt   *time.Time    `json:"decided_at,omitempty"  db:"decided_at"`
	CreatedAt   time.Time     `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"   db:"updated_at"`
}

// CreateBookingRequest carries fields for submitting a booking request.
type CreateBookingRequest struct {
	Username  string    `json:"username"`
	BedID     string    `json:"bed_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Note      *string   `json:"note,omitempty"`
}

// Validate checks the booking request fields.
func (r *CreateBookingRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("username is required")
	}
	if strings.TrimSpace(r.BedID) == "" {
		return errors.New("bed ID is required")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return errors.New("start and end dates are required")
	}
	if !r.EndDate.After(r.StartDate) {
		return errors.New("end date must be after start date")
	}
	return nil
}

// BookingsListOptions controls paging and filtering for listing bookings.
type BookingsListOptions struct {
	Limit       int
	Offset      int
	Status      *BookingStatus // exact match
	BuildingID  *string        // exact match
	IdentityKey *string        // exact match (case-folded by the caller)
	BuildingIDs []string       // restrict to granted buildings; empty means no restriction
}
