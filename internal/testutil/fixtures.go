package testutil

import (
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/google/uuid"
)

func NewTestOrganization(name string) *domain.Organization {
	return &domain.Organization{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

func NewTestUser(name string) *domain.User {
	return &domain.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     name + "@example.com",
		CreatedAt: time.Now().UTC(),
	}
}

// Project options
type ProjectOption func(*domain.Project)

func WithHobby() ProjectOption {
	return func(p *domain.Project) {
		p.IsHobby = true
	}
}

func NewTestProject(orgID, name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithEstimate(hours float64) TaskOption {
	return func(t *domain.Task) {
		t.EstimatedHours = &hours
	}
}

func WithoutEstimate() TaskOption {
	return func(t *domain.Task) {
		t.EstimatedHours = nil
	}
}

func WithParent(id string) TaskOption {
	return func(t *domain.Task) {
		t.ParentID = &id
	}
}

func WithDependsOn(id string) TaskOption {
	return func(t *domain.Task) {
		t.DependsOnTaskID = &id
	}
}

func WithAssignee(id string) TaskOption {
	return func(t *domain.Task) {
		t.AssigneeID = &id
	}
}

func WithOrder(i int) TaskOption {
	return func(t *domain.Task) {
		t.OrderIndex = i
	}
}

func WithPlanned(start, end time.Time) TaskOption {
	return func(t *domain.Task) {
		t.PlannedStart = &start
		t.PlannedEnd = &end
	}
}

func NewTestTask(projectID, name string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	est := 8.0
	t := &domain.Task{
		ID:             uuid.New().String(),
		ProjectID:      projectID,
		Name:           name,
		EstimatedHours: &est,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Calendar options
type CalendarOption func(*domain.UserCalendar)

func WithLunch(start domain.ClockTime, minutes int) CalendarOption {
	return func(c *domain.UserCalendar) {
		c.LunchStart = start
		c.LunchMinutes = minutes
	}
}

func WithDay(wd time.Weekday, d domain.DayCapacity) CalendarOption {
	return func(c *domain.UserCalendar) {
		c.Days[wd] = d
	}
}

// NewTestCalendar returns an office calendar: Monday to Friday 8h of work
// from 09:00 and 2h of hobby from 19:00, Saturday 4h of hobby from 10:00,
// Sunday off, lunch 12:00 for 60 minutes.
func NewTestCalendar(userID string, opts ...CalendarOption) *domain.UserCalendar {
	c := &domain.UserCalendar{
		UserID:       userID,
		LunchStart:   domain.Clock(12, 0),
		LunchMinutes: 60,
	}
	for wd := time.Monday; wd <= time.Friday; wd++ {
		c.Days[wd] = domain.DayCapacity{
			WorkHours:  8,
			WorkStart:  domain.Clock(9, 0),
			HobbyHours: 2,
			HobbyStart: domain.Clock(19, 0),
		}
	}
	c.Days[time.Saturday] = domain.DayCapacity{
		WorkStart:  domain.Clock(9, 0),
		HobbyHours: 4,
		HobbyStart: domain.Clock(10, 0),
	}
	c.Days[time.Sunday] = domain.DayCapacity{
		WorkStart:  domain.Clock(9, 0),
		HobbyStart: domain.Clock(19, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func NewTestTimeEntry(taskID, userID string, date time.Time, hours float64) *domain.TimeEntry {
	return &domain.TimeEntry{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    userID,
		Date:      domain.DateOf(date),
		Hours:     hours,
		CreatedAt: time.Now().UTC(),
	}
}
