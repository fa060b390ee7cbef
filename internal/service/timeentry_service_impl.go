package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/google/uuid"
)

type timeEntryService struct {
	reads    Repos
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewTimeEntryService(reads Repos, uow db.UnitOfWork, observers ...UseCaseObserver) TimeEntryService {
	return &timeEntryService{reads: reads, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Log records worked hours. The task's remaining hours shrink accordingly
// the next time it is planned.
func (s *timeEntryService) Log(ctx context.Context, e *domain.TimeEntry) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "log-time",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"task_id": e.TaskID, "hours": e.Hours},
		})
	}()

	if e.Hours <= 0 {
		return fmt.Errorf("hours must be > 0, got %v", e.Hours)
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	e.Date = domain.DateOf(e.Date)
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := NewSQLiteRepos(tx)
		task, err := r.Tasks.GetByID(ctx, e.TaskID)
		if err != nil {
			return fmt.Errorf("loading task: %w", err)
		}
		ok, err := r.Memberships.HasProjectAccess(ctx, e.UserID, task.ProjectID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %s cannot log time on task %q", e.UserID, task.Name)
		}
		return r.TimeEntries.Create(ctx, e)
	})
}

func (s *timeEntryService) ListByTask(ctx context.Context, taskID string) ([]*domain.TimeEntry, error) {
	return s.reads.TimeEntries.ListByTask(ctx, taskID)
}

func (s *timeEntryService) WorkedHours(ctx context.Context, taskID string) (float64, error) {
	sums, err := s.reads.TimeEntries.SumHoursByTasks(ctx, []string{taskID})
	if err != nil {
		return 0, err
	}
	return sums[taskID], nil
}
