package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

type OrganizationRepo interface {
	Create(ctx context.Context, o *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

type MembershipRepo interface {
	Add(ctx context.Context, m *domain.Membership) error
	// HasProjectAccess reports whether the user belongs to the organization
	// that owns the project.
	HasProjectAccess(ctx context.Context, userID, projectID string) (bool, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*domain.Project, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	// ListSubtree returns the task and every descendant, siblings in
	// order_index then creation order.
	ListSubtree(ctx context.Context, rootID string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	SetPlannedDates(ctx context.Context, id string, start, end *time.Time) error
}

type CalendarRepo interface {
	// Get assembles the weekly calendar and lunch break of a user. Missing
	// weekday rows are non-working days.
	Get(ctx context.Context, userID string) (*domain.UserCalendar, error)
	Upsert(ctx context.Context, c *domain.UserCalendar) error
}

type TimeEntryRepo interface {
	Create(ctx context.Context, e *domain.TimeEntry) error
	ListByTask(ctx context.Context, taskID string) ([]*domain.TimeEntry, error)
	// SumHoursByTasks returns the hours worked per task id; tasks without
	// entries are absent from the map.
	SumHoursByTasks(ctx context.Context, taskIDs []string) (map[string]float64, error)
}

// AllocationQuery selects a user's allocations of one kind in a date range.
// ExcludeTaskID drops the allocations of one task, typically the task being
// re-planned.
type AllocationQuery struct {
	UserID        string
	Kind          domain.Kind
	From          time.Time
	To            time.Time
	ExcludeTaskID string
}

type AllocationRepo interface {
	CreateBatch(ctx context.Context, allocs []domain.Allocation) error
	ListByTask(ctx context.Context, taskID string) ([]domain.Allocation, error)
	ListExisting(ctx context.Context, q AllocationQuery) ([]domain.ExistingAllocation, error)
	// ListFrom returns the user's allocations of a kind on or after from,
	// ordered by date and start time.
	ListFrom(ctx context.Context, userID string, kind domain.Kind, from time.Time) ([]domain.Allocation, error)
	DeleteByTask(ctx context.Context, taskID string) (int64, error)
	// DeleteFrom removes a task's allocations on or after from.
	DeleteFrom(ctx context.Context, taskID string, from time.Time) (int64, error)
}

type ChildAllocationRepo interface {
	CreateBatch(ctx context.Context, allocs []domain.ChildAllocation) error
	ListByRoot(ctx context.Context, rootTaskID string) ([]domain.ChildAllocation, error)
	ListByChild(ctx context.Context, childTaskID string) ([]domain.ChildAllocation, error)
	DeleteByRoot(ctx context.Context, rootTaskID string) (int64, error)
}
