package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"9:30 AM", 570},
		{"9:30AM", 570},
		{"09:30 am", 570},
		{"09:30", 570},
		{"9:30 PM", 1290},
		{"21:30", 1290},
		{"12:00 AM", 0},
		{"12:00 PM", 720},
		{"12:30 AM", 30},
		{"00:00", 0},
		{"00:15", 15},
		{"23:45", 1425},
		{"  2:00 PM  ", 840},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.label)
		require.NoError(t, err, "label %q", tt.label)
		assert.Equal(t, tt.want, got, "label %q", tt.label)
	}
}

func TestParseClockRejectsBadLabels(t *testing.T) {
	bad := []string{
		"",
		"abc",
		"9.30",
		"25:00",
		"24:00",
		"9:60",
		"13:00 PM",
		"0:30 AM",
		"14:00 XM",
		"9:3 AM",
	}
	for _, label := range bad {
		_, err := ParseClock(label)
		assert.Error(t, err, "label %q should not parse", label)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "12:00 AM", FormatClock(0))
	assert.Equal(t, "12:00 PM", FormatClock(720))
	assert.Equal(t, "9:30 AM", FormatClock(570))
	assert.Equal(t, "11:45 PM", FormatClock(1425))
	assert.Equal(t, "12:05 AM", FormatClock(5))
}

func TestFormatParseRoundTrip(t *testing.T) {
	for m := 0; m < DayMinutes; m += 25 {
		got, err := ParseClock(FormatClock(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestOverlaps(t *testing.T) {
	// Adjacent half-open intervals never touch.
	assert.False(t, Overlaps(600, 30, 630, 30))
	assert.False(t, Overlaps(630, 30, 600, 30))

	assert.True(t, Overlaps(600, 30, 600, 30))
	assert.True(t, Overlaps(600, 60, 630, 30))
	assert.True(t, Overlaps(630, 30, 600, 60))
	assert.True(t, Overlaps(600, 120, 630, 30))

	assert.False(t, Overlaps(600, 0, 600, 30))
}

func TestGenerate(t *testing.T) {
	assert.Equal(t, []int{480, 510, 540, 570}, Generate(480, 600, 30, 30))

	// A slot only counts when its full duration fits inside the window.
	assert.Equal(t, []int{480, 510, 540}, Generate(480, 600, 30, 45))

	assert.Nil(t, Generate(480, 480, 30, 30))
	assert.Nil(t, Generate(480, 600, 0, 30))
	assert.Nil(t, Generate(480, 600, 30, 0))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.September, d.Month())
	assert.Equal(t, 7, d.Day())

	_, err = ParseDate("07-09-2026")
	assert.Error(t, err)
	_, err = ParseDate("2026-13-01")
	assert.Error(t, err)
}

func TestSameDateAndMinuteOfDay(t *testing.T) {
	a := time.Date(2026, 9, 7, 0, 5, 0, 0, time.Local)
	b := time.Date(2026, 9, 7, 23, 59, 0, 0, time.Local)
	c := time.Date(2026, 9, 8, 0, 0, 0, 0, time.Local)

	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(b, c))

	assert.Equal(t, 5, MinuteOfDay(a))
	assert.Equal(t, 1439, MinuteOfDay(b))
}
