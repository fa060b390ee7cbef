package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	planboardapp "github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/service"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2024-03-11.
var monday = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

type fixture struct {
	app     *App
	reads   service.Repos
	user    *domain.User
	project *domain.Project
}

// newFixture wires a full App backed by an in-memory DB with one member on
// the office calendar and one work project.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	reads := service.NewSQLiteRepos(database)
	uow := testutil.NewTestUoW(database)

	org := testutil.NewTestOrganization("Acme")
	require.NoError(t, reads.Organizations.Create(ctx, org))
	user := testutil.NewTestUser("dana")
	require.NoError(t, reads.Users.Create(ctx, user))
	require.NoError(t, reads.Memberships.Add(ctx, &domain.Membership{OrganizationID: org.ID, UserID: user.ID}))
	require.NoError(t, reads.Calendars.Upsert(ctx, testutil.NewTestCalendar(user.ID)))
	project := testutil.NewTestProject(org.ID, "Launch")
	require.NoError(t, reads.Projects.Create(ctx, project))

	return &fixture{
		app: &App{
			Planning:    service.NewPlanningService(reads, uow, service.PlanningOptions{}),
			TimeEntries: service.NewTimeEntryService(reads, uow),
			Import:      service.NewImportService(uow),
			Calendars:   service.NewCalendarService(reads, uow),
		},
		reads:   reads,
		user:    user,
		project: project,
	}
}

func (f *fixture) task(t *testing.T, name string, opts ...testutil.TaskOption) *domain.Task {
	t.Helper()
	task := testutil.NewTestTask(f.project.ID, name, opts...)
	require.NoError(t, f.reads.Tasks.Create(context.Background(), task))
	return task
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

type stubPrompter struct {
	strategy      planboardapp.Strategy
	hours         float64
	strategyCalls int
	hoursCalls    int
}

func (p *stubPrompter) ChooseStrategy([]domain.ExistingAllocation) (planboardapp.Strategy, error) {
	p.strategyCalls++
	return p.strategy, nil
}

func (p *stubPrompter) HoursPerDay(*planboardapp.DecisionRequired) (float64, error) {
	p.hoursCalls++
	return p.hours, nil
}

func interactive() bool { return true }

// --- Root command ---

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	f := newFixture(t)

	output, err := executeCmd(t, f.app)
	require.NoError(t, err)
	assert.Contains(t, output, "planboard")
	assert.Contains(t, output, "availability")
}

// --- plan ---

func TestPlanCmd_RequiresUser(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, "Build", testutil.WithEstimate(2))

	_, err := executeCmd(t, f.app, "plan", task.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")
}

func TestPlanCmd_InvalidFlags(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, "Build", testutil.WithEstimate(2))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad date", []string{"--start", "11/03/2024"}, "invalid argument"},
		{"bad strategy", []string{"--strategy", "later"}, "invalid strategy"},
		{"zero hours", []string{"--hours-per-day", "0"}, "expected positive hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"plan", task.ID, "--user", f.user.ID}, tt.args...)
			_, err := executeCmd(t, f.app, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPlanCmd_PlansWithFlags(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, "Build", testutil.WithEstimate(10))

	output, err := executeCmd(t, f.app, "plan", task.ID,
		"--user", f.user.ID, "--start", "2024-03-11", "--hours-per-day", "8")
	require.NoError(t, err)
	assert.Contains(t, output, "PLANNED")
	assert.Contains(t, output, "09:00-12:00")
	assert.Contains(t, output, "13:00-18:00")
	assert.Contains(t, output, "Tue 2024-03-12")
	assert.NotContains(t, output, "100%", "progress is only rendered on a terminal")
}

func TestPlanCmd_DecisionWithoutTerminal(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, "Build", testutil.WithEstimate(10))

	output, err := executeCmd(t, f.app, "plan", task.ID, "--user", f.user.ID, "--start", "2024-03-11")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecisionRequired))
	assert.Contains(t, output, "DECISION REQUIRED")
	assert.Contains(t, output, "--hours-per-day")
}

func TestPlanCmd_PromptsForHoursPerDay(t *testing.T) {
	f := newFixture(t)
	prompter := &stubPrompter{hours: 4}
	f.app.Prompter = prompter
	f.app.IsInteractive = interactive
	task := f.task(t, "Build", testutil.WithEstimate(6))

	output, err := executeCmd(t, f.app, "plan", task.ID, "--user", f.user.ID, "--start", "2024-03-11")
	require.NoError(t, err)
	assert.Equal(t, 1, prompter.hoursCalls)
	assert.Equal(t, 0, prompter.strategyCalls)
	assert.Contains(t, output, "PLANNED")
	assert.Contains(t, output, "Per day:    4h")
	assert.Contains(t, output, "100%")
}

func TestPlanCmd_PromptsForStrategy(t *testing.T) {
	f := newFixture(t)
	prompter := &stubPrompter{strategy: planboardapp.StrategyPlanWhenAvailable}
	f.app.Prompter = prompter
	f.app.IsInteractive = interactive

	existing := f.task(t, "Standup", testutil.WithEstimate(2))
	_, err := executeCmd(t, f.app, "plan", existing.ID, "--user", f.user.ID, "--start", "2024-03-11", "-q")
	require.NoError(t, err)

	task := f.task(t, "Review", testutil.WithEstimate(2))
	output, err := executeCmd(t, f.app, "plan", task.ID, "--user", f.user.ID, "--start", "2024-03-11", "-q")
	require.NoError(t, err)
	assert.Equal(t, 1, prompter.strategyCalls)
	assert.Contains(t, output, "11:00-12:00")
	assert.Contains(t, output, "13:00-14:00")
	assert.NotContains(t, output, "100%")
}

// --- unplan / schedule ---

func TestScheduleAndUnplanCmds(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, "Build", testutil.WithEstimate(3))

	_, err := executeCmd(t, f.app, "plan", task.ID, "--user", f.user.ID, "--start", "2024-03-11")
	require.NoError(t, err)

	output, err := executeCmd(t, f.app, "schedule", task.ID)
	require.NoError(t, err)
	assert.Contains(t, output, "BUILD")
	assert.Contains(t, output, "2024-03-11 → 2024-03-11")
	assert.Contains(t, output, "09:00-12:00")

	output, err = executeCmd(t, f.app, "unplan", task.ID)
	require.NoError(t, err)
	assert.Contains(t, output, "Unplanned")

	output, err = executeCmd(t, f.app, "schedule", task.ID)
	require.NoError(t, err)
	assert.Contains(t, output, "Not scheduled.")
}

func TestScheduleCmd_UnknownTask(t *testing.T) {
	f := newFixture(t)

	_, err := executeCmd(t, f.app, "schedule", "missing")
	assert.Error(t, err)
}

// --- push-forward ---

func TestPushForwardCmd_ShiftsExistingWork(t *testing.T) {
	f := newFixture(t)
	existing := f.task(t, "Standup", testutil.WithEstimate(2))
	_, err := executeCmd(t, f.app, "plan", existing.ID, "--user", f.user.ID, "--start", "2024-03-11")
	require.NoError(t, err)

	urgent := f.task(t, "Hotfix", testutil.WithEstimate(2))
	output, err := executeCmd(t, f.app, "push-forward", urgent.ID,
		"--user", f.user.ID, "--from", "2024-03-11", "--hours", "2")
	require.NoError(t, err)
	assert.Contains(t, output, "Placed:  1 allocations")
	assert.Contains(t, output, "Shifted: 1 tasks")
	assert.Contains(t, output, "09:00-11:00")

	allocs, err := f.reads.Allocations.ListByTask(context.Background(), existing.ID)
	require.NoError(t, err)
	require.NotEmpty(t, allocs)
	assert.Equal(t, domain.Clock(11, 0), allocs[0].Start)
}

func TestPushForwardCmd_RejectsBadKind(t *testing.T) {
	f := newFixture(t)

	_, err := executeCmd(t, f.app, "push-forward", "x", "--user", f.user.ID, "--hours", "1", "--kind", "leisure")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid kind")
}

// --- availability / allocations ---

func TestAvailabilityCmd(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, "Build", testutil.WithEstimate(2))
	_, err := executeCmd(t, f.app, "plan", task.ID, "--user", f.user.ID, "--start", "2024-03-11")
	require.NoError(t, err)

	output, err := executeCmd(t, f.app, "availability", "--user", f.user.ID, "--start", "2024-03-11", "--days", "7")
	require.NoError(t, err)
	assert.Contains(t, output, "AVAILABILITY (WORK)")
	assert.Contains(t, output, "Mon 2024-03-11")
	assert.Contains(t, output, "6h")
	assert.Contains(t, output, "25%")
	assert.Contains(t, output, "Sun 2024-03-17")
	assert.Contains(t, output, "off")
}

func TestAvailabilityCmd_RejectsZeroDays(t *testing.T) {
	f := newFixture(t)

	_, err := executeCmd(t, f.app, "availability", "--user", f.user.ID, "--days", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--days")
}

func TestAllocationsCmd(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, "Build", testutil.WithEstimate(2))
	_, err := executeCmd(t, f.app, "plan", task.ID, "--user", f.user.ID, "--start", "2024-03-11")
	require.NoError(t, err)

	output, err := executeCmd(t, f.app, "allocations", "--user", f.user.ID, "--date", "2024-03-11")
	require.NoError(t, err)
	assert.Contains(t, output, "Build")
	assert.Contains(t, output, "09:00-11:00")

	output, err = executeCmd(t, f.app, "allocations", "--user", f.user.ID, "--date", "2024-03-11", "--exclude-task", task.ID)
	require.NoError(t, err)
	assert.Contains(t, output, "Nothing booked.")
}

// --- log ---

func TestLogCmd(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, "Build", testutil.WithEstimate(4))

	output, err := executeCmd(t, f.app, "log", task.ID, "--user", f.user.ID, "--hours", "1.5", "--date", "2024-03-08")
	require.NoError(t, err)
	assert.Contains(t, output, "Logged 1h 30m on 2024-03-08")
	assert.Contains(t, output, "1h 30m worked in total")

	_, err = executeCmd(t, f.app, "log", task.ID, "--user", f.user.ID, "--hours", "0")
	assert.Error(t, err)
}

// --- calendar ---

func TestCalendarCmds(t *testing.T) {
	f := newFixture(t)

	output, err := executeCmd(t, f.app, "calendar", "show", f.user.ID)
	require.NoError(t, err)
	assert.Contains(t, output, "12:00-13:00")
	assert.Contains(t, output, "work 40h, hobby 14h")

	output, err = executeCmd(t, f.app, "calendar", "set-day", f.user.ID, "sat", "--work-hours", "4", "--work-start", "08:00")
	require.NoError(t, err)
	assert.Contains(t, output, "work 44h")

	output, err = executeCmd(t, f.app, "calendar", "set-lunch", f.user.ID, "--start", "12:30", "--minutes", "30")
	require.NoError(t, err)
	assert.Contains(t, output, "12:30-13:00")
}

func TestCalendarSetDay_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := executeCmd(t, f.app, "calendar", "set-day", f.user.ID, "someday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown weekday")

	_, err = executeCmd(t, f.app, "calendar", "set-day", f.user.ID, "monday", "--work-hours", "25")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid calendar")
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"mon": time.Monday, "Sunday": time.Sunday, " fri ": time.Friday,
	} {
		got, err := parseWeekday(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

// --- import ---

const seedYAML = `
organizations:
  - ref: acme
    name: Acme
users:
  - ref: lee
    name: Lee
    email: lee@example.com
    calendar:
      days:
        mon: {work_hours: 6}
memberships:
  - organization_ref: acme
    user_ref: lee
projects:
  - ref: site
    organization_ref: acme
    name: Site
tasks:
  - ref: copy
    project_ref: site
    name: Copy
    estimated_hours: 3
`

func TestImportCmd(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	output, err := executeCmd(t, f.app, "import", path, "--ids")
	require.NoError(t, err)
	assert.Contains(t, output, "Organizations: 1")
	assert.Contains(t, output, "Tasks:         1")
	assert.Contains(t, output, "copy")
	assert.Contains(t, output, "site")
}

func TestImportCmd_MissingFile(t *testing.T) {
	f := newFixture(t)

	_, err := executeCmd(t, f.app, "import", filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestParseHoursPerDay(t *testing.T) {
	h, err := parseHoursPerDay("4.5", 8)
	require.NoError(t, err)
	assert.Equal(t, 4.5, h)

	_, err = parseHoursPerDay("9", 8)
	assert.Error(t, err)
	_, err = parseHoursPerDay("abc", 8)
	assert.Error(t, err)
}
