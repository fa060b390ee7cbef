package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
)

type calendarService struct {
	reads    Repos
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewCalendarService(reads Repos, uow db.UnitOfWork, observers ...UseCaseObserver) CalendarService {
	return &calendarService{reads: reads, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *calendarService) Get(ctx context.Context, userID string) (*domain.UserCalendar, error) {
	cal, err := s.reads.Calendars.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading calendar: %w", err)
	}
	return cal, nil
}

func (s *calendarService) SetDay(ctx context.Context, userID string, wd time.Weekday, d domain.DayCapacity) (*domain.UserCalendar, error) {
	return s.update(ctx, "set-calendar-day", userID, map[string]any{"weekday": wd.String()}, func(cal *domain.UserCalendar) {
		cal.Days[int(wd)%7] = d
	})
}

func (s *calendarService) SetLunch(ctx context.Context, userID string, start domain.ClockTime, minutes int) (*domain.UserCalendar, error) {
	return s.update(ctx, "set-lunch", userID, map[string]any{"lunch_start": start.String()}, func(cal *domain.UserCalendar) {
		cal.LunchStart = start
		cal.LunchMinutes = minutes
	})
}

func (s *calendarService) update(ctx context.Context, name, userID string, fields map[string]any, mutate func(*domain.UserCalendar)) (cal *domain.UserCalendar, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		fields["user_id"] = userID
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := NewSQLiteRepos(tx)
		current, err := r.Calendars.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading calendar: %w", err)
		}
		mutate(current)
		if err := current.Validate(); err != nil {
			return fmt.Errorf("invalid calendar: %w", err)
		}
		if err := r.Calendars.Upsert(ctx, current); err != nil {
			return err
		}
		cal = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cal, nil
}
