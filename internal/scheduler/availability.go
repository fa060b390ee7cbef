package scheduler

import (
	"math"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// ComputeAvailability derives the residual capacity timeline for every
// date in [from, to]. existing must already be filtered to the user and
// kind, with the planned task's own rows excluded. The cursor of a day is
// the later of its window start and the latest existing end time; the
// available minutes are the working minutes between that cursor and the
// window's fixed end.
func ComputeAvailability(cal *domain.UserCalendar, kind domain.Kind, from, to time.Time, existing []domain.ExistingAllocation) []domain.AvailabilityDay {
	from, to = domain.DateOf(from), domain.DateOf(to)
	if to.Before(from) {
		return nil
	}

	latest := make(map[time.Time]domain.ClockTime)
	for _, e := range existing {
		d := domain.DateOf(e.Date)
		if cur, ok := latest[d]; !ok || e.End > cur {
			latest[d] = e.End
		}
	}

	var days []domain.AvailabilityDay
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		c := ResolveCapacity(cal, d.Weekday(), kind)
		day := domain.AvailabilityDay{
			Date:       d,
			MaxMinutes: c.MaxMinutes,
			Start:      c.Start,
			WindowEnd:  c.End,
		}
		if end, ok := latest[d]; ok {
			e := end
			day.LatestEnd = &e
		}
		if c.Working() {
			cursor := c.Start
			if day.LatestEnd != nil && *day.LatestEnd > cursor {
				cursor = *day.LatestEnd
			}
			if cursor < c.End {
				day.AvailableMinutes = min(c.RemainingFrom(cursor), c.MaxMinutes)
			}
		}
		days = append(days, day)
	}
	return days
}

// TotalAvailableMinutes sums available minutes across days.
func TotalAvailableMinutes(days []domain.AvailabilityDay) int {
	total := 0
	for _, d := range days {
		total += d.AvailableMinutes
	}
	return total
}

// WindowPolicy sizes the availability query window.
type WindowPolicy struct {
	Multiplier float64
	FloorDays  int
}

// DefaultWindowPolicy fetches three times the naive estimate, never less
// than 180 days.
func DefaultWindowPolicy() WindowPolicy {
	return WindowPolicy{Multiplier: 3, FloorDays: 180}
}

// WindowDays returns how many days of availability to fetch for placing
// totalMinutes. The naive estimate divides by the average daily capacity
// of the kind across the week.
func WindowDays(totalMinutes int, cal *domain.UserCalendar, kind domain.Kind, p WindowPolicy) int {
	return WindowDaysCapped(totalMinutes, cal, kind, 0, p)
}

// WindowDaysCapped is WindowDays for a negotiated per-day cap: each day
// contributes at most capMinutes to the average. Zero means no cap.
func WindowDaysCapped(totalMinutes int, cal *domain.UserCalendar, kind domain.Kind, capMinutes int, p WindowPolicy) int {
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	weekly := 0
	for _, d := range cal.Days {
		_, h := d.Profile(kind)
		m := domain.HoursToMinutes(h)
		if capMinutes > 0 && m > capMinutes {
			m = capMinutes
		}
		weekly += m
	}
	if weekly == 0 || totalMinutes <= 0 {
		return p.FloorDays
	}
	// ceil(total / (weekly / 7)) in integers.
	naive := (totalMinutes*7 + weekly - 1) / weekly
	days := int(math.Ceil(float64(naive) * p.Multiplier))
	if days < p.FloorDays {
		return p.FloorDays
	}
	return days
}
