package service

import (
	"context"
	"time"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/importer"
)

type PlanningService interface {
	// Plan schedules a task for a user from a start date. Conflicts and the
	// hours-per-day negotiation come back as StatusDecisionRequired; the
	// caller re-submits with Strategy and HoursPerDay filled in.
	Plan(ctx context.Context, req app.PlanRequest) (*app.PlanResponse, error)
	// Unplan deletes the task's allocations and every child allocation it
	// produced, then clears the planned dates.
	Unplan(ctx context.Context, taskID string) error
	Availability(ctx context.Context, req app.AvailabilityRequest) ([]domain.AvailabilityDay, error)
	ExistingAllocations(ctx context.Context, userID string, date time.Time, kind domain.Kind, excludeTaskID string) ([]domain.ExistingAllocation, error)
	Schedule(ctx context.Context, taskID string) (*app.TaskSchedule, error)
	PushForward(ctx context.Context, req app.PushForwardRequest) (*app.PushForwardResult, error)
}

// PushForwardEngine inserts a task at a date and shifts the user's later
// allocations of the same kind, atomically.
type PushForwardEngine interface {
	PushForward(ctx context.Context, req app.PushForwardRequest) (*app.PushForwardResult, error)
}

type TimeEntryService interface {
	Log(ctx context.Context, e *domain.TimeEntry) error
	ListByTask(ctx context.Context, taskID string) ([]*domain.TimeEntry, error)
	WorkedHours(ctx context.Context, taskID string) (float64, error)
}

// ImportResult holds the outcome of a workspace import.
type ImportResult struct {
	Organizations int
	Users         int
	Projects      int
	Tasks         int
	TimeEntries   int
	// IDs maps every ref in the file to the id it was stored under.
	IDs map[string]string
}

type ImportService interface {
	ImportFile(ctx context.Context, filePath string) (*ImportResult, error)
	ImportWorkspace(ctx context.Context, ws *importer.Workspace) (*ImportResult, error)
}

type CalendarService interface {
	Get(ctx context.Context, userID string) (*domain.UserCalendar, error)
	// SetDay replaces one weekday's capacity profiles after validating the
	// resulting calendar.
	SetDay(ctx context.Context, userID string, wd time.Weekday, d domain.DayCapacity) (*domain.UserCalendar, error)
	// SetLunch replaces the lunch break after validating the resulting calendar.
	SetLunch(ctx context.Context, userID string, start domain.ClockTime, minutes int) (*domain.UserCalendar, error)
}
