package scheduler

import (
	"time"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/domain"
)

// DefaultMaxDays bounds the day walk; enough for five-year schedules.
const DefaultMaxDays = 1825

// AllocationInput is everything the single-task allocator needs. Availability
// must be sorted by date; days before StartDate are ignored.
type AllocationInput struct {
	TaskID           string
	RemainingMinutes int
	Kind             domain.Kind
	Calendar         *domain.UserCalendar
	StartDate        time.Time
	// PerDayCapMinutes caps each day's slice. Zero or negative means no cap;
	// values above a day's maximum are clamped to that maximum.
	PerDayCapMinutes int
	Availability     []domain.AvailabilityDay
	MaxDays          int
}

// Slice is one allocation record of the computed schedule.
type Slice struct {
	Date    time.Time
	Minutes int
	Start   domain.ClockTime
	End     domain.ClockTime
}

// Allocate greedily slices the remaining minutes across successive days.
// The whole schedule is computed in memory; on any failure no slices are
// returned, so callers never persist a half-placed task.
func Allocate(in AllocationInput) ([]Slice, error) {
	if in.RemainingMinutes <= 0 {
		pe := app.NewPlanError(app.ErrNoRemainingHours, "task %s has no hours left to allocate", in.TaskID)
		pe.TaskID = in.TaskID
		return nil, pe
	}
	maxDays := in.MaxDays
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}
	start := domain.DateOf(in.StartDate)

	var slices []Slice
	remaining := in.RemainingMinutes
	availableFound := 0
	processed := 0

	for _, day := range in.Availability {
		if day.Date.Before(start) {
			continue
		}
		if remaining == 0 {
			break
		}
		processed++
		if processed > maxDays {
			pe := app.NewPlanError(app.ErrAllocation,
				"exceeded %d days while placing task %s", maxDays, in.TaskID)
			pe.TaskID = in.TaskID
			pe.RemainingHours = domain.MinutesToHours(remaining)
			pe.AvailableHours = domain.MinutesToHours(availableFound)
			return nil, pe
		}
		availableFound += day.AvailableMinutes
		if day.AvailableMinutes <= 0 {
			continue
		}

		c := ResolveCapacity(in.Calendar, day.Date.Weekday(), in.Kind)
		if !c.Working() {
			continue
		}

		cursor := day.Start
		if day.LatestEnd != nil && *day.LatestEnd > cursor {
			cursor = *day.LatestEnd
		}
		cursor = c.normalize(cursor)

		take := min(remaining, day.AvailableMinutes, c.MaxMinutes, c.RemainingFrom(cursor))
		if in.PerDayCapMinutes > 0 {
			take = min(take, ClampPerDayCap(in.PerDayCapMinutes, c.MaxMinutes))
		}
		if take <= 0 {
			continue
		}

		for _, seg := range c.split(cursor, take) {
			slices = append(slices, Slice{
				Date:    day.Date,
				Minutes: seg.minutes,
				Start:   seg.start,
				End:     seg.end,
			})
		}
		remaining -= take
	}

	if remaining > 0 {
		pe := app.NewPlanError(app.ErrPartialAllocation,
			"not enough availability to place task %s", in.TaskID)
		pe.TaskID = in.TaskID
		pe.RemainingHours = domain.MinutesToHours(remaining)
		pe.AvailableHours = domain.MinutesToHours(availableFound)
		return nil, pe
	}
	return slices, nil
}
