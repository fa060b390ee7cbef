package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the upper bound of a ClockTime.
const MinutesPerDay = 24 * 60

// ClockTime is a time of day in minutes since midnight. 24:00 is allowed
// as an exclusive end bound.
type ClockTime int

// Clock builds a ClockTime from hour and minute.
func Clock(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClock parses "HH:MM" (or "H:MM").
func ParseClock(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if hour == 24 && minute != 0 {
		return 0, fmt.Errorf("time %q is past midnight", s)
	}
	return Clock(hour, minute), nil
}

// MustParseClock is ParseClock for constants and tests.
func MustParseClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Add returns c shifted by the given number of minutes.
func (c ClockTime) Add(minutes int) ClockTime {
	return c + ClockTime(minutes)
}

// HoursToMinutes converts decimal hours to whole minutes, rounding
// sub-minute remainders.
func HoursToMinutes(h float64) int {
	if h <= 0 {
		return 0
	}
	return int(h*60 + 0.5)
}

// MinutesToHours converts minutes to decimal hours.
func MinutesToHours(m int) float64 {
	return float64(m) / 60
}
