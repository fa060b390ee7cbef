package domain

import (
	"fmt"
	"time"
)

// DayCapacity holds the two independent capacity profiles of one weekday.
type DayCapacity struct {
	WorkHours  float64
	WorkStart  ClockTime
	HobbyHours float64
	HobbyStart ClockTime
}

// UserCalendar is a user's weekly capacity, indexed by time.Weekday
// (Sunday = 0). Lunch applies to the work profile only.
type UserCalendar struct {
	UserID       string
	Days         [7]DayCapacity
	LunchStart   ClockTime
	LunchMinutes int
}

// Day returns the capacity profile for a weekday.
func (c *UserCalendar) Day(wd time.Weekday) DayCapacity {
	return c.Days[int(wd)%7]
}

// Profile returns the configured start and hours for a kind.
func (d DayCapacity) Profile(kind Kind) (ClockTime, float64) {
	if kind == KindHobby {
		return d.HobbyStart, d.HobbyHours
	}
	return d.WorkStart, d.WorkHours
}

// LunchEnd is the first minute after the lunch break.
func (c *UserCalendar) LunchEnd() ClockTime {
	return c.LunchStart.Add(c.LunchMinutes)
}

// HasLunch reports whether a lunch break is configured.
func (c *UserCalendar) HasLunch() bool {
	return c.LunchMinutes > 0
}

// WeeklyMinutes sums the configured capacity of a kind across the week.
func (c *UserCalendar) WeeklyMinutes(kind Kind) int {
	total := 0
	for _, d := range c.Days {
		_, h := d.Profile(kind)
		total += HoursToMinutes(h)
	}
	return total
}

// Validate checks that every configured window fits inside one day.
func (c *UserCalendar) Validate() error {
	if c.LunchMinutes < 0 {
		return fmt.Errorf("lunch duration must be >= 0, got %d", c.LunchMinutes)
	}
	if c.LunchStart < 0 || int(c.LunchEnd()) > MinutesPerDay {
		return fmt.Errorf("lunch %s+%dm does not fit in a day", c.LunchStart, c.LunchMinutes)
	}
	for i, d := range c.Days {
		wd := time.Weekday(i)
		for _, kind := range []Kind{KindWork, KindHobby} {
			start, hours := d.Profile(kind)
			if hours < 0 || hours > 24 {
				return fmt.Errorf("%s %s hours must be within [0, 24], got %v", wd, kind, hours)
			}
			if start < 0 || int(start) >= MinutesPerDay {
				return fmt.Errorf("%s %s start %s is out of range", wd, kind, start)
			}
			span := HoursToMinutes(hours)
			if kind == KindWork && c.HasLunch() && start < c.LunchEnd() && int(start)+span > int(c.LunchStart) {
				span += c.LunchMinutes
			}
			if hours > 0 && int(start)+span > MinutesPerDay {
				return fmt.Errorf("%s %s window starting %s with %vh runs past midnight", wd, kind, start, hours)
			}
		}
	}
	return nil
}
