package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusOccupies(t *testing.T) {
	assert.True(t, BookingStatusPending.Occupies())
	assert.True(t, BookingStatusConfirmed.Occupies())
	assert.True(t, BookingStatusCompleted.Occupies())
	assert.True(t, BookingStatusNoShow.Occupies())

	assert.False(t, BookingStatusCancelled.Occupies())
	assert.False(t, BookingStatusRescheduled.Occupies())
}

func TestBookingStatusTransitions(t *testing.T) {
	assert.True(t, BookingStatusPending.CanTransitionTo(BookingStatusConfirmed))
	assert.True(t, BookingStatusPending.CanTransitionTo(BookingStatusCancelled))
	assert.True(t, BookingStatusPending.CanTransitionTo(BookingStatusRescheduled))
	assert.False(t, BookingStatusPending.CanTransitionTo(BookingStatusCompleted))
	assert.False(t, BookingStatusPending.CanTransitionTo(BookingStatusNoShow))

	assert.True(t, BookingStatusConfirmed.CanTransitionTo(BookingStatusCompleted))
	assert.True(t, BookingStatusConfirmed.CanTransitionTo(BookingStatusCancelled))
	assert.True(t, BookingStatusConfirmed.CanTransitionTo(BookingStatusNoShow))

	// Terminal states accept nothing.
	for _, terminal := range []BookingStatus{
		BookingStatusCompleted, BookingStatusCancelled,
		BookingStatusRescheduled, BookingStatusNoShow,
	} {
		for _, next := range []BookingStatus{
			BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted,
			BookingStatusCancelled, BookingStatusRescheduled, BookingStatusNoShow,
		} {
			assert.False(t, terminal.CanTransitionTo(next), "%s -> %s", terminal, next)
		}
	}
}

func TestNewWeekday(t *testing.T) {
	w, err := NewWeekday(0)
	assert.NoError(t, err)
	assert.Equal(t, Sunday, w)

	w, err = NewWeekday(6)
	assert.NoError(t, err)
	assert.Equal(t, Saturday, w)

	_, err = NewWeekday(7)
	assert.Error(t, err)
	_, err = NewWeekday(-1)
	assert.Error(t, err)
}

func TestNewLeaveType(t *testing.T) {
	lt, err := NewLeaveType("full_day")
	assert.NoError(t, err)
	assert.Equal(t, LeaveFullDay, lt)

	_, err = NewLeaveType("half_day")
	assert.Error(t, err)
}
