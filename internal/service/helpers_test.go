package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Monday 2024-03-11.
var monday = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

func ptrStr(s string) *string     { return &s }
func ptrFloat(f float64) *float64 { return &f }

func day(offset int) time.Time { return monday.AddDate(0, 0, offset) }

func ymd(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(domain.DateLayout)
}

// planEnv is a seeded workspace: one organization, a member with the office
// calendar, a work project and a hobby project.
type planEnv struct {
	db       *sql.DB
	reads    Repos
	org      *domain.Organization
	user     *domain.User
	project  *domain.Project
	hobby    *domain.Project
	observer *recordingObserver
}

func newPlanEnv(t *testing.T) *planEnv {
	t.Helper()
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	reads := NewSQLiteRepos(database)

	org := testutil.NewTestOrganization("Acme")
	require.NoError(t, reads.Organizations.Create(ctx, org))
	user := testutil.NewTestUser("dana")
	require.NoError(t, reads.Users.Create(ctx, user))
	require.NoError(t, reads.Memberships.Add(ctx, &domain.Membership{OrganizationID: org.ID, UserID: user.ID}))
	require.NoError(t, reads.Calendars.Upsert(ctx, testutil.NewTestCalendar(user.ID)))

	project := testutil.NewTestProject(org.ID, "Launch")
	require.NoError(t, reads.Projects.Create(ctx, project))
	hobby := testutil.NewTestProject(org.ID, "Garden", testutil.WithHobby())
	require.NoError(t, reads.Projects.Create(ctx, hobby))

	return &planEnv{
		db:       database,
		reads:    reads,
		org:      org,
		user:     user,
		project:  project,
		hobby:    hobby,
		observer: &recordingObserver{},
	}
}

func (e *planEnv) service(uow db.UnitOfWork) PlanningService {
	return NewPlanningService(e.reads, uow, PlanningOptions{}, e.observer)
}

func (e *planEnv) planner() PlanningService {
	return e.service(testutil.NewTestUoW(e.db))
}

func (e *planEnv) task(t *testing.T, name string, opts ...testutil.TaskOption) *domain.Task {
	t.Helper()
	return e.taskIn(t, e.project, name, opts...)
}

func (e *planEnv) taskIn(t *testing.T, p *domain.Project, name string, opts ...testutil.TaskOption) *domain.Task {
	t.Helper()
	task := testutil.NewTestTask(p.ID, name, opts...)
	require.NoError(t, e.reads.Tasks.Create(context.Background(), task))
	return task
}

func (e *planEnv) reload(t *testing.T, id string) *domain.Task {
	t.Helper()
	task, err := e.reads.Tasks.GetByID(context.Background(), id)
	require.NoError(t, err)
	return task
}

func (e *planEnv) allocations(t *testing.T, taskID string) []domain.Allocation {
	t.Helper()
	allocs, err := e.reads.Allocations.ListByTask(context.Background(), taskID)
	require.NoError(t, err)
	return allocs
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

func slot(a domain.Allocation) string {
	return a.Date.Format(domain.DateLayout) + " " + a.Start.String() + "-" + a.End.String()
}

func childSlot(c domain.ChildAllocation) string {
	return c.Date.Format(domain.DateLayout) + " " + c.Start.String() + "-" + c.End.String()
}
