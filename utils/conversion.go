package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the day-precision format used for all persisted dates.
const DateLayout = "2006-01-02"

// ClockToMinutes parses an "HH:MM" wall-clock string into minutes from midnight.
func ClockToMinutes(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", clock, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", clock, err)
	}
	if hours < 0 || hours > 24 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock value %q out of range", clock)
	}
	return hours*60 + minutes, nil
}

// MinutesToClock formats minutes from midnight as "HH:MM".
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// MinuteOfDay returns minutes elapsed since midnight for the given time.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// DateOf formats t at day precision.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a day-precision date string. The returned time is midnight
// local time on that date.
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, time.Local)
}
