package app

import (
	"fmt"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// Strategy resolves a conflict on the drop day.
type Strategy string

const (
	StrategyNone              Strategy = ""
	StrategyPushForward       Strategy = "push_forward"
	StrategyPlanWhenAvailable Strategy = "plan_when_available"
)

// ParseStrategy accepts the wire names, plus "" for none.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyNone, StrategyPushForward, StrategyPlanWhenAvailable:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("invalid strategy %q (expected push_forward or plan_when_available)", s)
}

type PlanRequest struct {
	TaskID    string
	UserID    string
	StartDate time.Time
	Strategy  Strategy
	// HoursPerDay is the negotiated daily cap. Nil means not negotiated yet.
	HoursPerDay *float64
	// Progress, when set, receives one event per pipeline step.
	Progress func(ProgressEvent)
}

type PlanStatus string

const (
	StatusPlanned            PlanStatus = "planned"
	StatusDecisionRequired   PlanStatus = "decision_required"
	StatusPushedForward      PlanStatus = "pushed_forward"
	StatusDistributionFailed PlanStatus = "distribution_failed"
)

// DecisionRequired tells the caller what to supply before re-submitting.
type DecisionRequired struct {
	// NeedsStrategy is set when the drop day already holds allocations.
	NeedsStrategy bool
	Conflicts     []domain.ExistingAllocation
	// NeedsHoursPerDay is set when the hours-per-day negotiation applies.
	NeedsHoursPerDay bool
	DayMaxHours      float64
	RemainingHours   float64
	WorkedHours      float64
}

// ChildShortfall reports a descendant that received less than its demand.
type ChildShortfall struct {
	TaskID        string
	Level         int
	DemandHours   float64
	AssignedHours float64
}

type PlanResponse struct {
	TaskID string
	UserID string
	Kind   domain.Kind
	Status PlanStatus

	Decision *DecisionRequired

	Allocations      []domain.Allocation
	ChildAllocations []domain.ChildAllocation
	Shortfalls       []ChildShortfall

	PlannedStart *time.Time
	PlannedEnd   *time.Time

	RemainingHours    float64
	HoursPerDay       float64
	DistributionError string
	Warnings          []string
}

// TotalHours sums the task's own allocation records.
func (r *PlanResponse) TotalHours() float64 {
	var m int
	for _, a := range r.Allocations {
		m += a.Minutes
	}
	return domain.MinutesToHours(m)
}

type ProgressStage string

const (
	StageAccessCheck  ProgressStage = "access_check"
	StageDependency   ProgressStage = "dependency_gate"
	StageAvailability ProgressStage = "availability"
	StageAllocation   ProgressStage = "allocation"
	StagePersist      ProgressStage = "persist"
	StageDistribution ProgressStage = "distribution"
	StagePushForward  ProgressStage = "push_forward"
	StageDone         ProgressStage = "done"
)

type ProgressEvent struct {
	Stage   ProgressStage
	Step    int
	Total   int
	Message string
}

type AvailabilityRequest struct {
	UserID        string
	Start         time.Time
	End           time.Time
	Kind          domain.Kind
	ExcludeTaskID string
}

// PushForwardRequest asks the allocation engine to insert a task at FromDate
// and shift the user's later allocations of the same kind.
type PushForwardRequest struct {
	UserID       string
	FromDate     time.Time
	NewTaskID    string
	NewTaskHours float64
	Kind         domain.Kind
	// HoursPerDay caps the new task's daily slices; nil uses each day's maximum.
	HoursPerDay *float64
}

type PushForwardResult struct {
	Placed        []domain.Allocation
	ShiftedTasks  []string
	ShiftedBefore int
}

// TaskSchedule is a task's persisted schedule.
type TaskSchedule struct {
	Task             *domain.Task
	Allocations      []domain.Allocation
	ChildAllocations []domain.ChildAllocation
}
