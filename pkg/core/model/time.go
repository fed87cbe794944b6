package model

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for shift dates
	DateLayout = "2006-01-02"

	// TimeLayout is the wire format for shift start/end times
	TimeLayout = "15:04"
)

// ParseMinuteOfDay parses a "15:04" clock time into minutes since midnight
func ParseMinuteOfDay(clock string) (int, error) {
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinuteOfDay renders minutes since midnight as a "15:04" clock time
func FormatMinuteOfDay(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Window returns the shift's [start, end) window as minutes since midnight
func (s *Shift) Window() (start, end int, err error) {
	start, err = ParseMinuteOfDay(s.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err = ParseMinuteOfDay(s.EndTime)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Overlaps reports whether two half-open [start, end) windows intersect.
// Back-to-back windows (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// DateIn parses a shift date at midnight in the given canonical location.
// All date-boundary math must go through a single location to avoid drift.
func DateIn(date string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// WeekOf returns the Monday-to-Monday week bounds containing the given day
func WeekOf(day time.Time) (start, end time.Time) {
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	start = day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}
