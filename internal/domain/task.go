package domain

import (
	"fmt"
	"time"
)

type Task struct {
	ID        string
	ProjectID string
	Name      string

	EstimatedHours *float64

	// Planned dates are written only by the allocator.
	PlannedStart *time.Time
	PlannedEnd   *time.Time

	ParentID        *string
	DependsOnTaskID *string
	AssigneeID      *string
	// OrderIndex orders siblings; distribution walks children in this order.
	OrderIndex int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EstimatedMinutes returns the estimate in whole minutes, zero when unset.
func (t *Task) EstimatedMinutes() int {
	if t.EstimatedHours == nil {
		return 0
	}
	return HoursToMinutes(*t.EstimatedHours)
}

// RemainingMinutes is the estimate minus hours already worked, floored at zero.
func (t *Task) RemainingMinutes(workedHours float64) int {
	rem := t.EstimatedMinutes() - HoursToMinutes(workedHours)
	if rem < 0 {
		return 0
	}
	return rem
}

// IsPlanned reports whether the allocator has written planned dates.
func (t *Task) IsPlanned() bool {
	return t.PlannedStart != nil && t.PlannedEnd != nil
}

// Validate checks structural fields that the store cannot enforce.
func (t *Task) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("task name is required")
	}
	if t.EstimatedHours != nil && *t.EstimatedHours < 0 {
		return fmt.Errorf("estimated hours must be >= 0, got %v", *t.EstimatedHours)
	}
	if t.ParentID != nil && *t.ParentID == t.ID {
		return fmt.Errorf("task %s cannot be its own parent", t.ID)
	}
	if t.DependsOnTaskID != nil && *t.DependsOnTaskID == t.ID {
		return fmt.Errorf("task %s cannot depend on itself", t.ID)
	}
	return nil
}
