package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Weekday is a closed 0-6 enumeration, Sunday = 0. Invalid values are
// rejected at construction instead of falling through a default branch.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// NewWeekday validates a raw weekday value.
func NewWeekday(v int) (Weekday, error) {
	if v < 0 || v > 6 {
		return 0, fmt.Errorf("invalid weekday: %d", v)
	}
	return Weekday(v), nil
}

// WeekdayOf returns the Weekday of a civil date.
func WeekdayOf(date time.Time) Weekday {
	return Weekday(int(date.Weekday()))
}

func (w Weekday) String() string {
	names := [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if w < 0 || int(w) >= len(names) {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return names[w]
}

// ScheduleTemplate is one weekday's entry of a provider's recurring weekly
// work pattern: the ordered slot-start labels the provider is nominally
// bookable at. Managed by salon admin tooling; read-only to the engine.
// A missing row, or an empty slot list, means the provider does not work
// that weekday.
type ScheduleTemplate struct {
	Base
	ProviderID uuid.UUID      `db:"provider_id" json:"provider_id"`
	Weekday    Weekday        `db:"weekday" json:"weekday"`
	SlotLabels pq.StringArray `db:"slot_labels" json:"slot_labels"`
}
