package api

import (
	"time"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/domain"
)

// PlanTaskRequest is the body of POST /api/v1/tasks/:id/plan.
type PlanTaskRequest struct {
	UserID      string   `json:"user_id"`
	StartDate   string   `json:"start_date"`
	Strategy    string   `json:"strategy,omitempty"`
	HoursPerDay *float64 `json:"hours_per_day,omitempty"`
}

// PushForwardRequest is the body of POST /api/v1/push-forward.
type PushForwardRequest struct {
	UserID       string   `json:"user_id"`
	FromDate     string   `json:"from_date"`
	NewTaskID    string   `json:"new_task_id"`
	NewTaskHours float64  `json:"new_task_hours"`
	Kind         string   `json:"kind,omitempty"`
	HoursPerDay  *float64 `json:"hours_per_day,omitempty"`
}

type AllocationResponse struct {
	ID     string  `json:"id"`
	TaskID string  `json:"task_id"`
	UserID string  `json:"user_id"`
	Date   string  `json:"date"`
	Kind   string  `json:"kind"`
	Hours  float64 `json:"hours"`
	Start  string  `json:"start"`
	End    string  `json:"end"`
}

type ExistingAllocationResponse struct {
	TaskID   string  `json:"task_id"`
	TaskName string  `json:"task_name"`
	Date     string  `json:"date"`
	Hours    float64 `json:"hours"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
}

type ChildAllocationResponse struct {
	ID           string  `json:"id"`
	RootTaskID   string  `json:"root_task_id"`
	ParentTaskID string  `json:"parent_task_id"`
	ChildTaskID  string  `json:"child_task_id"`
	Date         string  `json:"date"`
	Hours        float64 `json:"hours"`
	Level        int     `json:"level"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
}

type AvailabilityDayResponse struct {
	Date           string  `json:"date"`
	AvailableHours float64 `json:"available_hours"`
	MaxHours       float64 `json:"max_hours"`
	Start          string  `json:"start"`
	WindowEnd      string  `json:"window_end"`
	LatestEnd      *string `json:"latest_end,omitempty"`
}

type DecisionResponse struct {
	NeedsStrategy    bool                         `json:"needs_strategy"`
	Conflicts        []ExistingAllocationResponse `json:"conflicts,omitempty"`
	NeedsHoursPerDay bool                         `json:"needs_hours_per_day"`
	DayMaxHours      float64                      `json:"day_max_hours"`
	RemainingHours   float64                      `json:"remaining_hours"`
	WorkedHours      float64                      `json:"worked_hours"`
}

type ShortfallResponse struct {
	TaskID        string  `json:"task_id"`
	Level         int     `json:"level"`
	DemandHours   float64 `json:"demand_hours"`
	AssignedHours float64 `json:"assigned_hours"`
}

type PlanTaskResponse struct {
	TaskID            string                    `json:"task_id"`
	UserID            string                    `json:"user_id"`
	Kind              string                    `json:"kind"`
	Status            string                    `json:"status"`
	Decision          *DecisionResponse         `json:"decision,omitempty"`
	Allocations       []AllocationResponse      `json:"allocations"`
	ChildAllocations  []ChildAllocationResponse `json:"child_allocations"`
	Shortfalls        []ShortfallResponse       `json:"shortfalls,omitempty"`
	PlannedStart      *string                   `json:"planned_start,omitempty"`
	PlannedEnd        *string                   `json:"planned_end,omitempty"`
	RemainingHours    float64                   `json:"remaining_hours"`
	HoursPerDay       float64                   `json:"hours_per_day,omitempty"`
	TotalHours        float64                   `json:"total_hours"`
	DistributionError string                    `json:"distribution_error,omitempty"`
	Warnings          []string                  `json:"warnings,omitempty"`
}

type TaskResponse struct {
	ID             string   `json:"id"`
	ProjectID      string   `json:"project_id"`
	Name           string   `json:"name"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	PlannedStart   *string  `json:"planned_start,omitempty"`
	PlannedEnd     *string  `json:"planned_end,omitempty"`
	ParentID       *string  `json:"parent_id,omitempty"`
	DependsOnID    *string  `json:"depends_on_task_id,omitempty"`
}

type ScheduleResponse struct {
	Task             TaskResponse              `json:"task"`
	Allocations      []AllocationResponse      `json:"allocations"`
	ChildAllocations []ChildAllocationResponse `json:"child_allocations"`
}

type PushForwardResponse struct {
	Placed        []AllocationResponse `json:"placed"`
	ShiftedTasks  []string             `json:"shifted_tasks"`
	ShiftedBefore int                  `json:"shifted_before"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries a machine-readable code plus the retry details of
// scheduling failures.
type ErrorResponse struct {
	Error          string   `json:"error"`
	Message        string   `json:"message"`
	TaskID         string   `json:"task_id,omitempty"`
	RemainingHours float64  `json:"remaining_hours,omitempty"`
	AvailableHours float64  `json:"available_hours,omitempty"`
	Conflicts      []string `json:"conflicts,omitempty"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(domain.DateLayout)
	return &s
}

func toAllocations(in []domain.Allocation) []AllocationResponse {
	out := make([]AllocationResponse, 0, len(in))
	for _, a := range in {
		out = append(out, AllocationResponse{
			ID:     a.ID,
			TaskID: a.TaskID,
			UserID: a.UserID,
			Date:   a.Date.Format(domain.DateLayout),
			Kind:   string(a.Kind),
			Hours:  a.Hours(),
			Start:  a.Start.String(),
			End:    a.End.String(),
		})
	}
	return out
}

func toExisting(in []domain.ExistingAllocation) []ExistingAllocationResponse {
	out := make([]ExistingAllocationResponse, 0, len(in))
	for _, e := range in {
		out = append(out, ExistingAllocationResponse{
			TaskID:   e.TaskID,
			TaskName: e.TaskName,
			Date:     e.Date.Format(domain.DateLayout),
			Hours:    domain.MinutesToHours(e.Minutes),
			Start:    e.Start.String(),
			End:      e.End.String(),
		})
	}
	return out
}

func toChildAllocations(in []domain.ChildAllocation) []ChildAllocationResponse {
	out := make([]ChildAllocationResponse, 0, len(in))
	for _, c := range in {
		out = append(out, ChildAllocationResponse{
			ID:           c.ID,
			RootTaskID:   c.RootTaskID,
			ParentTaskID: c.ParentTaskID,
			ChildTaskID:  c.ChildTaskID,
			Date:         c.Date.Format(domain.DateLayout),
			Hours:        c.Hours(),
			Level:        c.Level,
			Start:        c.Start.String(),
			End:          c.End.String(),
		})
	}
	return out
}

func toAvailability(in []domain.AvailabilityDay) []AvailabilityDayResponse {
	out := make([]AvailabilityDayResponse, 0, len(in))
	for _, d := range in {
		day := AvailabilityDayResponse{
			Date:           d.Date.Format(domain.DateLayout),
			AvailableHours: d.AvailableHours(),
			MaxHours:       d.MaxHours(),
			Start:          d.Start.String(),
			WindowEnd:      d.WindowEnd.String(),
		}
		if d.LatestEnd != nil {
			s := d.LatestEnd.String()
			day.LatestEnd = &s
		}
		out = append(out, day)
	}
	return out
}

func toPlanResponse(r *app.PlanResponse) PlanTaskResponse {
	out := PlanTaskResponse{
		TaskID:            r.TaskID,
		UserID:            r.UserID,
		Kind:              string(r.Kind),
		Status:            string(r.Status),
		Allocations:       toAllocations(r.Allocations),
		ChildAllocations:  toChildAllocations(r.ChildAllocations),
		PlannedStart:      formatDate(r.PlannedStart),
		PlannedEnd:        formatDate(r.PlannedEnd),
		RemainingHours:    r.RemainingHours,
		HoursPerDay:       r.HoursPerDay,
		TotalHours:        r.TotalHours(),
		DistributionError: r.DistributionError,
		Warnings:          r.Warnings,
	}
	if d := r.Decision; d != nil {
		out.Decision = &DecisionResponse{
			NeedsStrategy:    d.NeedsStrategy,
			Conflicts:        toExisting(d.Conflicts),
			NeedsHoursPerDay: d.NeedsHoursPerDay,
			DayMaxHours:      d.DayMaxHours,
			RemainingHours:   d.RemainingHours,
			WorkedHours:      d.WorkedHours,
		}
	}
	for _, s := range r.Shortfalls {
		out.Shortfalls = append(out.Shortfalls, ShortfallResponse(s))
	}
	return out
}

func toTask(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		Name:           t.Name,
		EstimatedHours: t.EstimatedHours,
		PlannedStart:   formatDate(t.PlannedStart),
		PlannedEnd:     formatDate(t.PlannedEnd),
		ParentID:       t.ParentID,
		DependsOnID:    t.DependsOnTaskID,
	}
}
