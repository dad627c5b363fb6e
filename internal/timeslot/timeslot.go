// Package timeslot is the engine's time model: clock-time labels are
// normalized to minutes since midnight and all range comparisons use
// half-open intervals.
package timeslot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/glowdesk/salon-api/pkg/errors"
)

const (
	// DayMinutes is the number of minutes in a day.
	DayMinutes = 24 * 60

	// DateLayout is the civil-date format used throughout the engine.
	// Dates are provider-local wall clock; the engine never converts zones.
	DateLayout = "2006-01-02"
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(AM|PM)?$`)

// ParseClock normalizes a clock-time label into minutes since midnight.
// Both 12-hour ("9:30 AM", "9:30AM", "09:30 am") and 24-hour ("09:30")
// labels are accepted, case and whitespace insensitive. Unparseable input
// returns an InvalidTimeFormat error, never a wrong time.
func ParseClock(label string) (int, error) {
	normalized := strings.ToUpper(strings.TrimSpace(label))

	m := clockPattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0, errors.InvalidTimeFormat(label)
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, errors.InvalidTimeFormat(label)
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, errors.InvalidTimeFormat(label)
	}
	if minute > 59 {
		return 0, errors.InvalidTimeFormat(label)
	}

	switch m[3] {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, errors.InvalidTimeFormat(label)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, errors.InvalidTimeFormat(label)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, errors.InvalidTimeFormat(label)
		}
	}

	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as a 12-hour label, e.g. "9:30 AM".
func FormatClock(minutes int) string {
	minutes = ((minutes % DayMinutes) + DayMinutes) % DayMinutes
	hour := minutes / 60
	minute := minutes % 60

	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	displayHour := hour % 12
	if displayHour == 0 {
		displayHour = 12
	}
	return fmt.Sprintf("%d:%02d %s", displayHour, minute, meridiem)
}

// Overlaps reports whether the half-open intervals [startA, startA+durA) and
// [startB, startB+durB) intersect. Every place two time ranges are compared
// goes through this.
func Overlaps(startA, durA, startB, durB int) bool {
	return startA < startB+durB && startB < startA+durA
}

// Generate returns slot start minutes at the given step within
// [windowStart, windowEnd), keeping only slots whose full duration fits
// inside the window.
func Generate(windowStart, windowEnd, step, duration int) []int {
	if step <= 0 || duration <= 0 {
		return nil
	}
	var slots []int
	for t := windowStart; t+duration <= windowEnd; t += step {
		slots = append(slots, t)
	}
	return slots
}

// MinuteOfDay returns t's wall-clock position in minutes since midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// SameDate reports whether a and b fall on the same civil date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TruncateDate strips the time-of-day component, keeping the location.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate parses a civil date in DateLayout.
func ParseDate(value string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, errors.NewBadRequest(fmt.Sprintf("invalid date: %q", value), err)
	}
	return d, nil
}
