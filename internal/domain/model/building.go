package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const maxBuildingNameLen = 255

// Building is a bookable facility within an area (campus/site).
type Building struct {
	ID        string    `json:"id"         db:"id"`
	Code      string    `json:"code"       db:"code"`
	Name      string    `json:"name"       db:"name"`
	Area      string    `json:"area"       db:"area"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateBuildingRequest carries fields for registering a building.
type CreateBuildingRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Area string `json:"area"`
}

// Validate checks the building fields.
func (r *CreateBuildingRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("building code is required")
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("building name is required")
	}
	if utf8.RuneCountInString(name) > maxBuildingNameLen {
		return errors.New("building name is too long")
	}
	return nil
}

// Room is a physical room inside a building.
type Room struct {
	ID         string    `json:"id"          db:"id"`
	BuildingID string    `json:"building_id" db:"building_id"`
	Code       string    `json:"code"        db:"code"`
	Floor      int       `json:"floor"       db:"floor"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// CreateRoomRequest carries fields for registering a room.
type CreateRoomRequest struct {
	BuildingID string `json:"building_id"`
	Code       string `json:"code"`
	Floor      int    `json:"floor"`
}

// Validate checks the room fields.
func (r *CreateRoomRequest) Validate() error {
	if strings.TrimSpace(r.BuildingID) == "" {
		return errors.New("building ID is required")
	}
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("room code is required")
	}
	return nil
}

// BedStatus is the occupancy state of a bed.
type BedStatus string

const (
	BedStatusAvailable   BedStatus = "available"
	BedStatusReserved    BedStatus = "reserved"
	BedStatusOccupied    BedStatus = "occupied"
	BedStatusMaintenance BedStatus = "maintenance"
)

// Valid reports whether the bed status is supported.
func (s BedStatus) Valid() bool {
	switch s {
	case BedStatusAvailable, BedStatusReserved, BedStatusOccupied, BedStatusMaintenance:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the status may change into next.
// available -> reserved -> occupied -> available; any state may enter
// maintenance, and maintenance only returns to available.
func (s BedStatus) CanTransitionTo(next BedStatus) bool {
	if next == BedStatusMaintenance {
		return s != BedStatusMaintenance
	}
	switch s {
	case BedStatusAvailable:
		return next == BedStatusReserved
	case BedStatusReserved:
		return next == BedStatusOccupied || next == BedStatusAvailable
	case BedStatusOccupied:
		return next == BedStatusAvailable
	case BedStatusMaintenance:
		return next == BedStatusAvailable
	default:
		return false
	}
}

// Bed is an individually bookable bed within a room.
type Bed struct {
	ID        string    `json:"id"         db:"id"`
	RoomID    string    `json:"room_id"    db:"room_id"`
	Code      string    `json:"code"       db:"code"`
	Status    BedStatus `json:"status"     db:"status"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateBedRequest carries fields for registering a bed.
type CreateBedRequest struct {
	RoomID string `json:"room_id"`
	Code   string `json:"code"`
}

// Validate checks the bed fields.
func (r *CreateBedRequest) Validate() error {
	if strings.TrimSpace(r.RoomID) == "" {
		return errors.New("room ID is required")
	}
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("bed code is required")
	}
	return nil
}

// ErrInvalidBedTransition is returned when a bed status change is not
// allowed by the state machine.
type ErrInvalidBedTransition struct {
	From BedStatus
	To   BedStatus
}

func (e *ErrInvalidBedTransition) Error() string {
	return fmt.Sprintf("invalid bed transition %s -> %s", e.From, e.To)
}

// OccupancySummary aggregates bed counts by status for one building, plus
// the number of booking requests awaiting a decision.
type OccupancySummary struct {
	BuildingID      string `json:"building_id"      db:"building_id"`
	BuildingCode    string `json:"building_code"    db:"building_code"`
	BuildingName    string `json:"building_name"    db:"building_name"`
	Available       int    `json:"available"        db:"available"`
	Reserved        int    `json:"reserved"         db:"reserved"`
	Occupied        int    `json:"occupied"         db:"occupied"`
	Maintenance     int    `json:"maintenance"      db:"maintenance"`
	PendingRequests int    `json:"pending_requests" db:"pending_requests"`
}
