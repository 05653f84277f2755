package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	allowed := map[BookingStatus][]BookingStatus{
		BookingStatusPending:   {BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled},
		BookingStatusApproved:  {BookingStatusCheckedIn, BookingStatusCancelled},
		BookingStatusCheckedIn: {BookingStatusCompleted},
		BookingStatusRejected:  nil,
		BookingStatusCompleted: nil,
		BookingStatusCancelled: nil,
	}

	all := []BookingStatus{
		BookingStatusPending, BookingStatusApproved, BookingStatusRejected,
		BookingStatusCheckedIn, BookingStatusCompleted, BookingStatusCancelled,
	}

	for from, nexts := range allowed {
		want := map[BookingStatus]bool{}
		for _, n := range nexts {
			want[n] = true
		}
		for _, to := range all {
			assert.Equalf(t, want[to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.Terminal())
	assert.False(t, BookingStatusApproved.Terminal())
	assert.False(t, BookingStatusCheckedIn.Terminal())
	assert.True(t, BookingStatusRejected.Terminal())
	assert.True(t, BookingStatusCompleted.Terminal())
	assert.True(t, BookingStatusCancelled.Terminal())
}

func TestBedStatusTransitions(t *testing.T) {
	allowed := map[BedStatus][]BedStatus{
		BedStatusAvailable:   {BedStatusReserved, BedStatusMaintenance},
		BedStatusReserved:    {BedStatusOccupied, BedStatusAvailable, BedStatusMaintenance},
		BedStatusOccupied:    {BedStatusAvailable, BedStatusMaintenance},
		BedStatusMaintenance: {BedStatusAvailable},
	}

	all := []BedStatus{BedStatusAvailable, BedStatusReserved, BedStatusOccupied, BedStatusMaintenance}

	for from, nexts := range allowed {
		want := map[BedStatus]bool{}
		for _, n := range nexts {
			want[n] = true
		}
		for _, to := range all {
			assert.Equalf(t, want[to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, BookingStatusCheckedIn.Valid())
	assert.False(t, BookingStatus("archived").Valid())
	assert.True(t, BedStatusMaintenance.Valid())
	assert.False(t, BedStatus("broken").Valid())
}
