package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/importer"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
organizations:
  - ref: acme
    name: Acme
users:
  - ref: dana
    name: Dana
    email: dana@example.com
    calendar:
      lunch: {start: "12:00", minutes: 60}
      days:
        mon: {work_hours: 8, work_start: "09:00"}
        tue: {work_hours: 8, work_start: "09:00"}
        wed: {work_hours: 8, work_start: "09:00"}
memberships:
  - organization_ref: acme
    user_ref: dana
    role: owner
projects:
  - ref: launch
    organization_ref: acme
    name: Launch
tasks:
  - ref: release
    project_ref: launch
    name: Release
  - ref: design
    project_ref: launch
    parent_ref: release
    name: Spec
    estimated_hours: 3
    order: 0
  - ref: code
    project_ref: launch
    parent_ref: release
    name: Code
    estimated_hours: 5
    order: 1
  - ref: qa
    project_ref: launch
    name: QA
    estimated_hours: 2
    depends_on_ref: release
time_entries:
  - task_ref: design
    user_ref: dana
    date: "2024-03-08"
    hours: 1
`

func TestImportFile_ThenPlan(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	reads := NewSQLiteRepos(database)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	res, err := NewImportService(uow).ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Organizations)
	assert.Equal(t, 1, res.Users)
	assert.Equal(t, 1, res.Projects)
	assert.Equal(t, 4, res.Tasks)
	assert.Equal(t, 1, res.TimeEntries)

	qa, err := reads.Tasks.GetByID(ctx, res.IDs["qa"])
	require.NoError(t, err)
	require.NotNil(t, qa.DependsOnTaskID)
	assert.Equal(t, res.IDs["release"], *qa.DependsOnTaskID)

	cal, err := reads.Calendars.Get(ctx, res.IDs["dana"])
	require.NoError(t, err)
	assert.Equal(t, 8.0, cal.Day(time.Wednesday).WorkHours)
	assert.Zero(t, cal.Day(time.Thursday).WorkHours)

	ok, err := reads.Memberships.HasProjectAccess(ctx, res.IDs["dana"], res.IDs["launch"])
	require.NoError(t, err)
	assert.True(t, ok)

	svc := NewPlanningService(reads, uow, PlanningOptions{})
	resp, err := svc.Plan(ctx, app.PlanRequest{
		TaskID: res.IDs["release"], UserID: res.IDs["dana"], StartDate: monday, HoursPerDay: ptrFloat(8),
	})
	require.NoError(t, err)
	assert.Equal(t, 7.0, resp.RemainingHours, "design has 1h logged")
	require.Len(t, resp.ChildAllocations, 3)
	assert.Equal(t, res.IDs["design"], resp.ChildAllocations[0].ChildTaskID)
	assert.Equal(t, "2024-03-11 09:00-11:00", childSlot(resp.ChildAllocations[0]))
	assert.Equal(t, res.IDs["code"], resp.ChildAllocations[1].ChildTaskID)
	assert.Equal(t, "2024-03-11 11:00-12:00", childSlot(resp.ChildAllocations[1]))
	assert.Equal(t, "2024-03-11 13:00-17:00", childSlot(resp.ChildAllocations[2]))
}

func TestImportWorkspace_ValidationErrorsWriteNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	reads := NewSQLiteRepos(database)
	ctx := context.Background()

	ws := &importer.Workspace{
		Organizations: []importer.OrganizationImport{{Ref: "acme", Name: "Acme"}},
		Projects:      []importer.ProjectImport{{Ref: "p", OrganizationRef: "missing", Name: "P"}},
	}
	_, err := NewImportService(testutil.NewTestUoW(database)).ImportWorkspace(ctx, ws)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import validation failed (1 errors)")
	assert.Contains(t, err.Error(), `"missing" is not a known organization`)

	_, err = reads.Organizations.GetByID(ctx, "acme")
	assert.Error(t, err)
}

func TestImportWorkspace_RollbackOnMidwayFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	reads := NewSQLiteRepos(database)
	ctx := context.Background()

	ws := &importer.Workspace{
		Organizations: []importer.OrganizationImport{{Ref: "acme", Name: "Acme"}},
		Users: []importer.UserImport{
			{Ref: "dana", Name: "Dana"},
			{Ref: "eli", Name: "Eli"},
		},
	}
	// Exec #1 creates the organization, #2 the first user, #3 the second.
	failing := &testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: errors.New("injected user failure")}

	obs := &recordingObserver{}
	_, err := NewImportService(failing, obs).ImportWorkspace(ctx, ws)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected user failure")
	assert.Contains(t, err.Error(), `creating user "Eli"`)

	users, err := reads.Users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users, "no users should exist after rollback")
	assert.Equal(t, "import-workspace", obs.last().Name)
	assert.False(t, obs.last().Success)
}
