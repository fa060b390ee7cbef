package scheduler

import (
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// Capacity is the resolved working window of one user, weekday and kind.
// The window has a fixed clock start and a fixed clock end; for the work
// kind the end is pushed past the lunch break when lunch falls inside.
type Capacity struct {
	Start      domain.ClockTime
	MaxMinutes int
	End        domain.ClockTime

	lunch      bool
	lunchStart domain.ClockTime
	lunchEnd   domain.ClockTime
}

// ResolveCapacity returns the start time and maximum minutes for a kind on
// a weekday. A work start inside lunch is moved to the end of lunch. Hobby
// ignores lunch entirely. MaxMinutes == 0 means not a working day.
func ResolveCapacity(cal *domain.UserCalendar, wd time.Weekday, kind domain.Kind) Capacity {
	start, hours := cal.Day(wd).Profile(kind)
	c := Capacity{Start: start, MaxMinutes: domain.HoursToMinutes(hours)}
	if kind == domain.KindWork && cal.HasLunch() {
		c.lunch = true
		c.lunchStart = cal.LunchStart
		c.lunchEnd = cal.LunchEnd()
		c.Start = c.normalize(c.Start)
	}
	c.End = c.advance(c.Start, c.MaxMinutes)
	return c
}

// Working reports whether the day has any capacity for the kind.
func (c Capacity) Working() bool {
	return c.MaxMinutes > 0
}

// normalize moves a time inside the lunch break to the end of lunch.
func (c Capacity) normalize(t domain.ClockTime) domain.ClockTime {
	if c.lunch && t >= c.lunchStart && t < c.lunchEnd {
		return c.lunchEnd
	}
	return t
}

// advance returns the clock time reached after working the given minutes
// from start, skipping lunch.
func (c Capacity) advance(start domain.ClockTime, minutes int) domain.ClockTime {
	start = c.normalize(start)
	end := start.Add(minutes)
	if c.lunch && start < c.lunchStart && end > c.lunchStart {
		end = end.Add(int(c.lunchEnd - c.lunchStart))
	}
	return end
}

// workingBetween counts working minutes in [from, to), excluding lunch.
func (c Capacity) workingBetween(from, to domain.ClockTime) int {
	if to <= from {
		return 0
	}
	total := int(to - from)
	if c.lunch {
		lo, hi := max(from, c.lunchStart), min(to, c.lunchEnd)
		if hi > lo {
			total -= int(hi - lo)
		}
	}
	return total
}

// RemainingFrom counts the working minutes left in the window after t.
func (c Capacity) RemainingFrom(t domain.ClockTime) int {
	if t < c.Start {
		t = c.Start
	}
	return c.workingBetween(c.normalize(t), c.End)
}

// segment is one contiguous clock interval of a slice.
type segment struct {
	start   domain.ClockTime
	end     domain.ClockTime
	minutes int
}

// split lays minutes out from start, breaking around lunch when the slice
// straddles it: one part ends exactly at lunch start, the other begins
// exactly at lunch end.
func (c Capacity) split(start domain.ClockTime, minutes int) []segment {
	start = c.normalize(start)
	if c.lunch && start < c.lunchStart && int(start)+minutes > int(c.lunchStart) {
		before := int(c.lunchStart - start)
		after := minutes - before
		return []segment{
			{start: start, end: c.lunchStart, minutes: before},
			{start: c.lunchEnd, end: c.lunchEnd.Add(after), minutes: after},
		}
	}
	return []segment{{start: start, end: start.Add(minutes), minutes: minutes}}
}
