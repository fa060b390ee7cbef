package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allocate(t *testing.T, cal *domain.UserCalendar, kind domain.Kind, start time.Time, remaining, capMin int, existing []domain.ExistingAllocation) ([]Slice, error) {
	t.Helper()
	days := ComputeAvailability(cal, kind, start, start.AddDate(0, 0, 179), existing)
	return Allocate(AllocationInput{
		TaskID:           "task",
		RemainingMinutes: remaining,
		Kind:             kind,
		Calendar:         cal,
		StartDate:        start,
		PerDayCapMinutes: capMin,
		Availability:     days,
	})
}

func TestAllocate_EndToEndTenHoursFromMonday(t *testing.T) {
	slices, err := allocate(t, officeCalendar(), domain.KindWork, monday, hours(10), hours(8), nil)
	require.NoError(t, err)
	require.Len(t, slices, 3)

	assert.Equal(t, monday, slices[0].Date)
	assert.Equal(t, "09:00", slices[0].Start.String())
	assert.Equal(t, "12:00", slices[0].End.String())
	assert.Equal(t, hours(3), slices[0].Minutes)

	assert.Equal(t, monday, slices[1].Date)
	assert.Equal(t, "13:00", slices[1].Start.String())
	assert.Equal(t, "18:00", slices[1].End.String())
	assert.Equal(t, hours(5), slices[1].Minutes)

	tuesday := monday.AddDate(0, 0, 1)
	assert.Equal(t, tuesday, slices[2].Date)
	assert.Equal(t, "09:00", slices[2].Start.String())
	assert.Equal(t, "11:00", slices[2].End.String())
	assert.Equal(t, hours(2), slices[2].Minutes)

	assert.Equal(t, hours(10), sumSlices(slices))
}

func TestAllocate_LunchSplitFiveHours(t *testing.T) {
	slices, err := allocate(t, officeCalendar(), domain.KindWork, monday, hours(5), 0, nil)
	require.NoError(t, err)
	require.Len(t, slices, 2)
	assert.Equal(t, "09:00-12:00", slices[0].Start.String()+"-"+slices[0].End.String())
	assert.Equal(t, "13:00-15:00", slices[1].Start.String()+"-"+slices[1].End.String())
	assert.Equal(t, hours(3), slices[0].Minutes)
	assert.Equal(t, hours(2), slices[1].Minutes)
}

func TestAllocate_StartsAfterLatestExistingEnd(t *testing.T) {
	existing := []domain.ExistingAllocation{
		{TaskID: "other", TaskName: "Other", Date: monday, Minutes: hours(2), Start: domain.Clock(9, 0), End: domain.Clock(11, 0)},
	}
	slices, err := allocate(t, officeCalendar(), domain.KindWork, monday, hours(7), 0, existing)
	require.NoError(t, err)

	require.Len(t, slices, 3)
	assert.Equal(t, "11:00", slices[0].Start.String())
	assert.Equal(t, "12:00", slices[0].End.String())
	assert.Equal(t, "13:00", slices[1].Start.String())
	assert.Equal(t, "18:00", slices[1].End.String())
	assert.Equal(t, monday.AddDate(0, 0, 1), slices[2].Date)
	assert.Equal(t, hours(1), slices[2].Minutes)
}

func TestAllocate_PerDayCapIsClampedToDayMaximum(t *testing.T) {
	slices, err := allocate(t, officeCalendar(), domain.KindWork, monday, hours(10), hours(20), nil)
	require.NoError(t, err)
	perDay := map[time.Time]int{}
	for _, s := range slices {
		perDay[s.Date] += s.Minutes
	}
	assert.Equal(t, hours(8), perDay[monday])
	assert.Equal(t, hours(2), perDay[monday.AddDate(0, 0, 1)])
}

func TestAllocate_SmallPerDayCapSpreadsWork(t *testing.T) {
	slices, err := allocate(t, officeCalendar(), domain.KindWork, monday, hours(10), hours(3), nil)
	require.NoError(t, err)
	perDay := map[time.Time]int{}
	for _, s := range slices {
		perDay[s.Date] += s.Minutes
	}
	assert.Equal(t, hours(3), perDay[monday])
	assert.Equal(t, hours(3), perDay[monday.AddDate(0, 0, 1)])
	assert.Equal(t, hours(3), perDay[monday.AddDate(0, 0, 2)])
	assert.Equal(t, hours(1), perDay[monday.AddDate(0, 0, 3)])
}

func TestAllocate_SkipsNonWorkingDays(t *testing.T) {
	friday := monday.AddDate(0, 0, 4)
	slices, err := allocate(t, officeCalendar(), domain.KindWork, friday, hours(10), 0, nil)
	require.NoError(t, err)
	for _, s := range slices {
		assert.NotEqual(t, time.Saturday, s.Date.Weekday())
		assert.NotEqual(t, time.Sunday, s.Date.Weekday())
	}
	last := slices[len(slices)-1]
	assert.Equal(t, monday.AddDate(0, 0, 7), last.Date, "the remainder rolls to the next Monday")
}

func TestAllocate_HobbyUsesHobbyCalendar(t *testing.T) {
	saturday := monday.AddDate(0, 0, 5)
	slices, err := allocate(t, officeCalendar(), domain.KindHobby, saturday, hours(5), 0, nil)
	require.NoError(t, err)
	require.Len(t, slices, 2)
	assert.Equal(t, saturday, slices[0].Date)
	assert.Equal(t, "10:00", slices[0].Start.String())
	assert.Equal(t, "14:00", slices[0].End.String())
	assert.Equal(t, monday.AddDate(0, 0, 7), slices[1].Date)
	assert.Equal(t, "19:00", slices[1].Start.String())
	assert.Equal(t, "20:00", slices[1].End.String())
}

func TestAllocate_PartialAllocationReportsShortfall(t *testing.T) {
	cal := officeCalendar()
	days := ComputeAvailability(cal, domain.KindWork, monday, monday.AddDate(0, 0, 6), nil)
	slices, err := Allocate(AllocationInput{
		TaskID:           "big",
		RemainingMinutes: hours(100),
		Kind:             domain.KindWork,
		Calendar:         cal,
		StartDate:        monday,
		Availability:     days,
	})
	assert.Nil(t, slices, "partial slices are discarded")
	var pe *app.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, app.ErrPartialAllocation, pe.Code)
	assert.InDelta(t, 60, pe.RemainingHours, 1e-9)
	assert.InDelta(t, 40, pe.AvailableHours, 1e-9)
}

func TestAllocate_DaysExceededIsFatal(t *testing.T) {
	cal := officeCalendar()
	days := ComputeAvailability(cal, domain.KindWork, monday, monday.AddDate(0, 0, 30), nil)
	_, err := Allocate(AllocationInput{
		TaskID:           "huge",
		RemainingMinutes: hours(1000),
		Kind:             domain.KindWork,
		Calendar:         cal,
		StartDate:        monday,
		Availability:     days,
		MaxDays:          10,
	})
	assert.True(t, app.IsPlanError(err, app.ErrAllocation), "got %v", err)
}

func TestAllocate_NoRemainingHours(t *testing.T) {
	_, err := allocate(t, officeCalendar(), domain.KindWork, monday, 0, 0, nil)
	assert.True(t, app.IsPlanError(err, app.ErrNoRemainingHours))
}

func TestAllocate_IgnoresDaysBeforeStart(t *testing.T) {
	cal := officeCalendar()
	days := ComputeAvailability(cal, domain.KindWork, monday, monday.AddDate(0, 0, 13), nil)
	wednesday := monday.AddDate(0, 0, 2)
	slices, err := Allocate(AllocationInput{
		TaskID:           "t",
		RemainingMinutes: hours(4),
		Kind:             domain.KindWork,
		Calendar:         cal,
		StartDate:        wednesday,
		Availability:     days,
	})
	require.NoError(t, err)
	require.NotEmpty(t, slices)
	assert.Equal(t, wednesday, slices[0].Date)
}
