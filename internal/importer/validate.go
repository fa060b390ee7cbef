package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// refKind records what a ref names so cross-references can be type-checked.
type refKind string

const (
	refOrganization refKind = "organization"
	refUser         refKind = "user"
	refProject      refKind = "project"
	refTask         refKind = "task"
)

// ValidateWorkspace checks the seed file before conversion and returns
// every problem found.
func ValidateWorkspace(ws *Workspace) []error {
	var errs []error
	refs := make(map[string]refKind)

	claim := func(path, ref string, kind refKind) {
		if ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", path))
			return
		}
		if prev, dup := refs[ref]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate ref %q (already used by a %s)", path, ref, prev))
			return
		}
		refs[ref] = kind
	}
	expect := func(path, ref string, kind refKind) {
		if ref == "" {
			errs = append(errs, fmt.Errorf("%s is required", path))
			return
		}
		if got, ok := refs[ref]; !ok || got != kind {
			errs = append(errs, fmt.Errorf("%s: %q is not a known %s", path, ref, kind))
		}
	}

	for i, o := range ws.Organizations {
		path := fmt.Sprintf("organizations[%d]", i)
		claim(path, o.Ref, refOrganization)
		if o.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", path))
		}
	}
	for i, u := range ws.Users {
		path := fmt.Sprintf("users[%d]", i)
		claim(path, u.Ref, refUser)
		if u.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", path))
		}
		if u.Calendar != nil {
			if _, err := buildCalendar("", u.Calendar); err != nil {
				errs = append(errs, fmt.Errorf("%s.calendar: %w", path, err))
			}
		}
	}
	for i, m := range ws.Memberships {
		path := fmt.Sprintf("memberships[%d]", i)
		expect(path+".organization_ref", m.OrganizationRef, refOrganization)
		expect(path+".user_ref", m.UserRef, refUser)
	}
	for i, p := range ws.Projects {
		path := fmt.Sprintf("projects[%d]", i)
		claim(path, p.Ref, refProject)
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", path))
		}
		expect(path+".organization_ref", p.OrganizationRef, refOrganization)
	}

	// Claim every task first so parent and dependency refs may point forward.
	taskProject := make(map[string]string, len(ws.Tasks))
	for i, t := range ws.Tasks {
		claim(fmt.Sprintf("tasks[%d]", i), t.Ref, refTask)
		taskProject[t.Ref] = t.ProjectRef
	}
	for i, t := range ws.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", path))
		}
		expect(path+".project_ref", t.ProjectRef, refProject)
		if t.EstimatedHours != nil && *t.EstimatedHours < 0 {
			errs = append(errs, fmt.Errorf("%s.estimated_hours must be >= 0, got %v", path, *t.EstimatedHours))
		}
		if t.ParentRef != nil {
			expect(path+".parent_ref", *t.ParentRef, refTask)
			if *t.ParentRef == t.Ref {
				errs = append(errs, fmt.Errorf("%s: task cannot be its own parent", path))
			} else if pp, ok := taskProject[*t.ParentRef]; ok && pp != t.ProjectRef {
				errs = append(errs, fmt.Errorf("%s: parent %q belongs to another project", path, *t.ParentRef))
			}
		}
		if t.DependsOnRef != nil {
			expect(path+".depends_on_ref", *t.DependsOnRef, refTask)
			if *t.DependsOnRef == t.Ref {
				errs = append(errs, fmt.Errorf("%s: task cannot depend on itself", path))
			}
		}
		if t.AssigneeRef != nil {
			expect(path+".assignee_ref", *t.AssigneeRef, refUser)
		}
	}
	errs = append(errs, validateParentChains(ws.Tasks)...)

	for i, e := range ws.TimeEntries {
		path := fmt.Sprintf("time_entries[%d]", i)
		expect(path+".task_ref", e.TaskRef, refTask)
		expect(path+".user_ref", e.UserRef, refUser)
		if _, err := domain.ParseDate(e.Date); err != nil {
			errs = append(errs, fmt.Errorf("%s.date: %w", path, err))
		}
		if e.Hours <= 0 {
			errs = append(errs, fmt.Errorf("%s.hours must be > 0, got %v", path, e.Hours))
		}
	}
	return errs
}

// validateParentChains reports every task whose parent chain loops.
func validateParentChains(tasks []TaskImport) []error {
	parent := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if t.ParentRef != nil && *t.ParentRef != t.Ref {
			parent[t.Ref] = *t.ParentRef
		}
	}
	var errs []error
	for _, t := range tasks {
		seen := map[string]bool{t.Ref: true}
		for cur, ok := parent[t.Ref]; ok; cur, ok = parent[cur] {
			if seen[cur] {
				errs = append(errs, fmt.Errorf("task %q: parent chain contains a cycle", t.Ref))
				break
			}
			seen[cur] = true
		}
	}
	return errs
}

// buildCalendar converts and validates an imported calendar. Unlisted days
// are non-working; missing starts default to 09:00.
func buildCalendar(userID string, c *CalendarImport) (*domain.UserCalendar, error) {
	cal := &domain.UserCalendar{
		UserID:       userID,
		LunchStart:   domain.Clock(12, 0),
		LunchMinutes: 60,
	}
	if c.Lunch != nil {
		start, err := domain.ParseClock(c.Lunch.Start)
		if err != nil {
			return nil, fmt.Errorf("lunch.start: %w", err)
		}
		cal.LunchStart = start
		cal.LunchMinutes = c.Lunch.Minutes
	}
	for name, d := range c.Days {
		wd, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("days: unknown weekday %q", name)
		}
		workStart, err := clockOrDefault(d.WorkStart)
		if err != nil {
			return nil, fmt.Errorf("days.%s.work_start: %w", name, err)
		}
		hobbyStart, err := clockOrDefault(d.HobbyStart)
		if err != nil {
			return nil, fmt.Errorf("days.%s.hobby_start: %w", name, err)
		}
		cal.Days[wd] = domain.DayCapacity{
			WorkHours:  d.WorkHours,
			WorkStart:  workStart,
			HobbyHours: d.HobbyHours,
			HobbyStart: hobbyStart,
		}
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return cal, nil
}

func clockOrDefault(s string) (domain.ClockTime, error) {
	if s == "" {
		return domain.Clock(9, 0), nil
	}
	return domain.ParseClock(s)
}
