package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/repository"
	"github.com/alexanderramin/planboard/internal/scheduler"
	"github.com/google/uuid"
)

// subtree loads a task with its descendants and rejects malformed parent links.
func subtree(ctx context.Context, r Repos, taskID string) (*domain.TaskTree, error) {
	tasks, err := r.Tasks.ListSubtree(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading task tree: %w", err)
	}
	tree := domain.NewTaskTree(tasks)
	if _, err := tree.Descendants(taskID); err != nil {
		pe := app.NewPlanError(app.ErrTaskCycle, "task hierarchy below %s is malformed", taskID)
		pe.TaskID = taskID
		pe.Err = err
		return nil, pe
	}
	return tree, nil
}

// leafDemand returns the remaining minutes of every leaf below (or at)
// taskID, plus the hours already worked across the whole subtree.
func leafDemand(ctx context.Context, r Repos, tree *domain.TaskTree, taskID string) (map[string]int, float64, error) {
	desc, err := tree.Descendants(taskID)
	if err != nil {
		return nil, 0, err
	}
	ids := []string{taskID}
	for _, d := range desc {
		ids = append(ids, d.ID)
	}
	worked, err := r.TimeEntries.SumHoursByTasks(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("loading worked hours: %w", err)
	}

	leaves, err := tree.Leaves(taskID)
	if err != nil {
		return nil, 0, err
	}
	demand := make(map[string]int, len(leaves))
	for _, l := range leaves {
		demand[l.ID] = l.RemainingMinutes(worked[l.ID])
	}
	var total float64
	for _, h := range worked {
		total += h
	}
	return demand, total, nil
}

// toAllocations stamps computed slices with task, user and kind.
func toAllocations(taskID, userID string, kind domain.Kind, slices []scheduler.Slice) []domain.Allocation {
	out := make([]domain.Allocation, 0, len(slices))
	for _, s := range slices {
		out = append(out, domain.Allocation{
			ID:      uuid.New().String(),
			TaskID:  taskID,
			UserID:  userID,
			Date:    s.Date,
			Kind:    kind,
			Minutes: s.Minutes,
			Start:   s.Start,
			End:     s.End,
		})
	}
	return out
}

// dateRange returns the earliest and latest dates, or nils for no dates.
func dateRange(dates []time.Time) (*time.Time, *time.Time) {
	if len(dates) == 0 {
		return nil, nil
	}
	lo, hi := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(lo) {
			lo = d
		}
		if d.After(hi) {
			hi = d
		}
	}
	return &lo, &hi
}

func allocationDates(allocs []domain.Allocation) []time.Time {
	out := make([]time.Time, len(allocs))
	for i, a := range allocs {
		out[i] = a.Date
	}
	return out
}

// replaceSchedule swaps a task's allocations for a new set and writes the
// planned dates back as the min and max allocation date.
func replaceSchedule(ctx context.Context, r Repos, taskID string, allocs []domain.Allocation) error {
	if _, err := r.Allocations.DeleteByTask(ctx, taskID); err != nil {
		return err
	}
	if err := r.Allocations.CreateBatch(ctx, allocs); err != nil {
		return err
	}
	start, end := dateRange(allocationDates(allocs))
	return r.Tasks.SetPlannedDates(ctx, taskID, start, end)
}

// clearDerivedSchedule removes the child allocations rooted at taskID and
// clears the planned dates that distribution gave to descendants. A
// descendant with allocations of its own keeps its dates.
func clearDerivedSchedule(ctx context.Context, r Repos, tree *domain.TaskTree, taskID string) error {
	if _, err := r.ChildAllocations.DeleteByRoot(ctx, taskID); err != nil {
		return err
	}
	desc, err := tree.Descendants(taskID)
	if err != nil {
		return err
	}
	for _, d := range desc {
		own, err := r.Allocations.ListByTask(ctx, d.ID)
		if err != nil {
			return err
		}
		if len(own) > 0 {
			continue
		}
		if err := r.Tasks.SetPlannedDates(ctx, d.ID, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// writeDistribution persists child allocations and sets each child's planned
// dates from its records.
func writeDistribution(ctx context.Context, r Repos, res scheduler.DistributionResult) error {
	if err := r.ChildAllocations.CreateBatch(ctx, res.Allocations); err != nil {
		return err
	}
	byChild := map[string][]time.Time{}
	var order []string
	for _, c := range res.Allocations {
		if _, ok := byChild[c.ChildTaskID]; !ok {
			order = append(order, c.ChildTaskID)
		}
		byChild[c.ChildTaskID] = append(byChild[c.ChildTaskID], c.Date)
	}
	for _, id := range order {
		start, end := dateRange(byChild[id])
		if err := r.Tasks.SetPlannedDates(ctx, id, start, end); err != nil {
			return err
		}
	}
	return nil
}

func shortfallsToResponse(in []scheduler.Shortfall) []app.ChildShortfall {
	out := make([]app.ChildShortfall, 0, len(in))
	for _, s := range in {
		out = append(out, app.ChildShortfall{
			TaskID:        s.TaskID,
			Level:         s.Level,
			DemandHours:   domain.MinutesToHours(s.DemandMinutes),
			AssignedHours: domain.MinutesToHours(s.AssignedMinutes),
		})
	}
	return out
}

func logShortfalls(ctx context.Context, logger *slog.Logger, parentID string, in []scheduler.Shortfall) []string {
	warnings := make([]string, 0, len(in))
	for _, s := range in {
		logger.WarnContext(ctx, "child under-allocated",
			"parent_task_id", parentID,
			"task_id", s.TaskID,
			"level", s.Level,
			"demand_hours", domain.MinutesToHours(s.DemandMinutes),
			"assigned_hours", domain.MinutesToHours(s.AssignedMinutes),
		)
		warnings = append(warnings, fmt.Sprintf("task %s received %.2fh of %.2fh",
			s.TaskID, domain.MinutesToHours(s.AssignedMinutes), domain.MinutesToHours(s.DemandMinutes)))
	}
	return warnings
}

// placement describes one task to place on a user's calendar.
type placement struct {
	TaskID     string
	UserID     string
	Kind       domain.Kind
	Calendar   *domain.UserCalendar
	Start      time.Time
	Minutes    int
	CapMinutes int
}

// placeTask computes a full schedule in memory against the allocations
// visible through r. Nothing is returned unless every minute was placed.
// The first window is sized from the naive estimate. While it runs dry the
// window doubles, up to the allocator's day cap.
func placeTask(ctx context.Context, r Repos, opts PlanningOptions, p placement) ([]domain.Allocation, error) {
	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = scheduler.DefaultMaxDays
	}
	days := min(max(scheduler.WindowDaysCapped(p.Minutes, p.Calendar, p.Kind, p.CapMinutes, opts.Window), 1), maxDays)
	for {
		slices, err := allocateWithin(ctx, r, p, days, maxDays)
		if err == nil {
			return toAllocations(p.TaskID, p.UserID, p.Kind, slices), nil
		}
		if !app.IsPlanError(err, app.ErrPartialAllocation) || days >= maxDays {
			return nil, err
		}
		days = min(days*2, maxDays)
	}
}

func allocateWithin(ctx context.Context, r Repos, p placement, days, maxDays int) ([]scheduler.Slice, error) {
	start := domain.DateOf(p.Start)
	end := start.AddDate(0, 0, days-1)
	existing, err := r.Allocations.ListExisting(ctx, repository.AllocationQuery{
		UserID: p.UserID, Kind: p.Kind, From: start, To: end, ExcludeTaskID: p.TaskID,
	})
	if err != nil {
		return nil, err
	}
	return scheduler.Allocate(scheduler.AllocationInput{
		TaskID:           p.TaskID,
		RemainingMinutes: p.Minutes,
		Kind:             p.Kind,
		Calendar:         p.Calendar,
		StartDate:        start,
		PerDayCapMinutes: p.CapMinutes,
		Availability:     scheduler.ComputeAvailability(p.Calendar, p.Kind, start, end, existing),
		MaxDays:          maxDays,
	})
}
