package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LeaveType is a closed enumeration of leave variants.
type LeaveType string

const (
	LeaveFullDay    LeaveType = "full_day"
	LeavePartialDay LeaveType = "partial_day"
)

// NewLeaveType validates a raw leave-type value.
func NewLeaveType(v string) (LeaveType, error) {
	switch LeaveType(v) {
	case LeaveFullDay, LeavePartialDay:
		return LeaveType(v), nil
	}
	return "", fmt.Errorf("invalid leave type: %q", v)
}

// Leave is a provider's declared unavailability. FullDay blocks every slot
// on every date in [StartDate, EndDate]; PartialDay blocks slots starting in
// [StartMinute, EndMinute) on the single date StartDate. Created by
// provider/admin action; read-only to the engine.
type Leave struct {
	Base
	ProviderID uuid.UUID `db:"provider_id" json:"provider_id"`
	Type       LeaveType `db:"leave_type" json:"leave_type"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	// Minutes since midnight; meaningful only for partial-day leave.
	StartMinute *int   `db:"start_minute" json:"start_minute,omitempty"`
	EndMinute   *int   `db:"end_minute" json:"end_minute,omitempty"`
	Reason      string `db:"reason" json:"reason,omitempty"`
}

// Validate enforces the variant field constraints: full-day leave carries a
// date range and no times, partial-day leave carries a single date and both
// times.
func (l *Leave) Validate() error {
	switch l.Type {
	case LeaveFullDay:
		if l.StartMinute != nil || l.EndMinute != nil {
			return fmt.Errorf("full-day leave must not carry time bounds")
		}
		if l.EndDate.Before(l.StartDate) {
			return fmt.Errorf("full-day leave end date precedes start date")
		}
	case LeavePartialDay:
		if l.StartMinute == nil || l.EndMinute == nil {
			return fmt.Errorf("partial-day leave requires both start and end times")
		}
		if *l.EndMinute <= *l.StartMinute {
			return fmt.Errorf("partial-day leave end time must follow start time")
		}
		if !sameDate(l.EndDate, l.StartDate) {
			return fmt.Errorf("partial-day leave spans a single date")
		}
	default:
		return fmt.Errorf("invalid leave type: %q", l.Type)
	}
	return nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CoversDate reports whether a full-day leave covers the given date,
// inclusive of both range endpoints.
func (l *Leave) CoversDate(date time.Time) bool {
	if l.Type != LeaveFullDay {
		return false
	}
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	sy, sm, sd := l.StartDate.Date()
	start := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	ey, em, ed := l.EndDate.Date()
	end := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}

// BlocksSlot reports whether the leave blocks a slot starting at slotMinute
// on the given date. The partial-day window is half-open: a slot starting
// exactly at the leave's end time is not blocked.
func (l *Leave) BlocksSlot(date time.Time, slotMinute int) bool {
	switch l.Type {
	case LeaveFullDay:
		return l.CoversDate(date)
	case LeavePartialDay:
		if !sameDate(l.StartDate, date) || l.StartMinute == nil || l.EndMinute == nil {
			return false
		}
		return slotMinute >= *l.StartMinute && slotMinute < *l.EndMinute
	}
	return false
}
