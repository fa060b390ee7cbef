package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/repository"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarService_SetDayPersists(t *testing.T) {
	env := newPlanEnv(t)
	ctx := context.Background()
	svc := NewCalendarService(env.reads, testutil.NewTestUoW(env.db), env.observer)

	cal, err := svc.SetDay(ctx, env.user.ID, time.Saturday, domain.DayCapacity{
		WorkHours: 4, WorkStart: domain.Clock(8, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, cal.Day(time.Saturday).WorkHours)

	stored, err := svc.Get(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Clock(8, 0), stored.Day(time.Saturday).WorkStart)
	assert.Equal(t, "set-calendar-day", env.observer.last().Name)
}

func TestCalendarService_RejectsWindowPastMidnight(t *testing.T) {
	env := newPlanEnv(t)
	ctx := context.Background()
	svc := NewCalendarService(env.reads, testutil.NewTestUoW(env.db))

	_, err := svc.SetDay(ctx, env.user.ID, time.Monday, domain.DayCapacity{
		WorkHours: 6, WorkStart: domain.Clock(20, 0),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid calendar")

	stored, err := svc.Get(ctx, env.user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, domain.Clock(20, 0), stored.Day(time.Monday).WorkStart)
}

func TestCalendarService_SetLunch(t *testing.T) {
	env := newPlanEnv(t)
	ctx := context.Background()
	svc := NewCalendarService(env.reads, testutil.NewTestUoW(env.db))

	cal, err := svc.SetLunch(ctx, env.user.ID, domain.Clock(12, 30), 30)
	require.NoError(t, err)
	assert.Equal(t, domain.Clock(13, 0), cal.LunchEnd())
}

func TestCalendarService_UnknownUser(t *testing.T) {
	env := newPlanEnv(t)
	svc := NewCalendarService(env.reads, testutil.NewTestUoW(env.db))

	_, err := svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
