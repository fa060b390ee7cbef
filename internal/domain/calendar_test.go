package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func weekdayCalendar() *UserCalendar {
	c := &UserCalendar{UserID: "u1", LunchStart: Clock(12, 0), LunchMinutes: 60}
	for wd := time.Monday; wd <= time.Friday; wd++ {
		c.Days[wd] = DayCapacity{WorkHours: 8, WorkStart: Clock(9, 0), HobbyHours: 2, HobbyStart: Clock(19, 0)}
	}
	return c
}

func TestUserCalendar_Validate_OK(t *testing.T) {
	assert.NoError(t, weekdayCalendar().Validate())
}

func TestUserCalendar_Validate_WindowPastMidnight(t *testing.T) {
	c := weekdayCalendar()
	c.Days[time.Monday].HobbyStart = Clock(23, 0)
	err := c.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "past midnight")
}

func TestUserCalendar_Validate_LunchCountsTowardsWorkWindow(t *testing.T) {
	c := weekdayCalendar()
	// 08:00 + 15h work + 1h lunch = 24:00 exactly.
	c.Days[time.Tuesday].WorkStart = Clock(8, 0)
	c.Days[time.Tuesday].WorkHours = 15
	assert.NoError(t, c.Validate())

	c.Days[time.Tuesday].WorkHours = 15.5
	assert.Error(t, c.Validate())
}

func TestUserCalendar_WeeklyMinutes(t *testing.T) {
	c := weekdayCalendar()
	assert.Equal(t, 5*8*60, c.WeeklyMinutes(KindWork))
	assert.Equal(t, 5*2*60, c.WeeklyMinutes(KindHobby))
}

func TestDayCapacity_Profile(t *testing.T) {
	d := DayCapacity{WorkHours: 6, WorkStart: Clock(8, 0), HobbyHours: 1.5, HobbyStart: Clock(20, 0)}
	start, hours := d.Profile(KindHobby)
	assert.Equal(t, Clock(20, 0), start)
	assert.Equal(t, 1.5, hours)
	start, hours = d.Profile(KindWork)
	assert.Equal(t, Clock(8, 0), start)
	assert.Equal(t, 6.0, hours)
}
