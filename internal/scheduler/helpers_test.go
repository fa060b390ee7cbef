package scheduler

import (
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// Monday 2024-03-11.
var monday = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

func officeCalendar() *domain.UserCalendar {
	cal := &domain.UserCalendar{UserID: "u1", LunchStart: domain.Clock(12, 0), LunchMinutes: 60}
	for wd := time.Monday; wd <= time.Friday; wd++ {
		cal.Days[wd] = domain.DayCapacity{
			WorkHours:  8,
			WorkStart:  domain.Clock(9, 0),
			HobbyHours: 2,
			HobbyStart: domain.Clock(19, 0),
		}
	}
	cal.Days[time.Saturday] = domain.DayCapacity{HobbyHours: 4, HobbyStart: domain.Clock(10, 0)}
	return cal
}

func hours(h float64) int { return domain.HoursToMinutes(h) }

func ptr[T any](v T) *T { return &v }

func sumSlices(slices []Slice) int {
	total := 0
	for _, s := range slices {
		total += s.Minutes
	}
	return total
}
