package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/scheduler"
)

type pushForwardEngine struct {
	uow  db.UnitOfWork
	opts PlanningOptions
}

// NewPushForwardEngine returns the engine that shifts allocations inside a
// single transaction.
func NewPushForwardEngine(uow db.UnitOfWork, opts PlanningOptions) PushForwardEngine {
	return &pushForwardEngine{uow: uow, opts: opts.withDefaults()}
}

// displaced is a task whose allocations on or after the insertion date were
// lifted off the calendar.
type displaced struct {
	taskID  string
	minutes int
}

func (e *pushForwardEngine) PushForward(ctx context.Context, req app.PushForwardRequest) (*app.PushForwardResult, error) {
	if err := validatePushForward(req); err != nil {
		return nil, err
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.KindWork
	}
	from := domain.DateOf(req.FromDate)
	result := &app.PushForwardResult{}

	err := e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := NewSQLiteRepos(tx)
		cal, err := r.Calendars.Get(ctx, req.UserID)
		if err != nil {
			return fmt.Errorf("loading calendar: %w", err)
		}

		rows, err := r.Allocations.ListFrom(ctx, req.UserID, kind, from)
		if err != nil {
			return err
		}
		var shifted []displaced
		index := map[string]int{}
		for _, a := range rows {
			if a.TaskID == req.NewTaskID {
				continue
			}
			result.ShiftedBefore++
			i, ok := index[a.TaskID]
			if !ok {
				i = len(shifted)
				index[a.TaskID] = i
				shifted = append(shifted, displaced{taskID: a.TaskID})
			}
			shifted[i].minutes += a.Minutes
		}

		for _, d := range shifted {
			if _, err := r.Allocations.DeleteFrom(ctx, d.taskID, from); err != nil {
				return err
			}
		}
		if _, err := r.Allocations.DeleteByTask(ctx, req.NewTaskID); err != nil {
			return err
		}

		capMinutes := 0
		if req.HoursPerDay != nil {
			capMinutes = domain.HoursToMinutes(*req.HoursPerDay)
		}
		placed, err := placeTask(ctx, r, e.opts, placement{
			TaskID: req.NewTaskID, UserID: req.UserID, Kind: kind, Calendar: cal,
			Start: from, Minutes: domain.HoursToMinutes(req.NewTaskHours), CapMinutes: capMinutes,
		})
		if err != nil {
			return fmt.Errorf("placing task %s: %w", req.NewTaskID, err)
		}
		if err := replaceSchedule(ctx, r, req.NewTaskID, placed); err != nil {
			return err
		}
		result.Placed = placed

		for _, d := range shifted {
			allocs, err := placeTask(ctx, r, e.opts, placement{
				TaskID: d.taskID, UserID: req.UserID, Kind: kind, Calendar: cal,
				Start: from, Minutes: d.minutes,
			})
			if err != nil {
				return fmt.Errorf("re-flowing task %s: %w", d.taskID, err)
			}
			if err := r.Allocations.CreateBatch(ctx, allocs); err != nil {
				return err
			}
			all, err := r.Allocations.ListByTask(ctx, d.taskID)
			if err != nil {
				return err
			}
			start, end := dateRange(allocationDates(all))
			if err := r.Tasks.SetPlannedDates(ctx, d.taskID, start, end); err != nil {
				return err
			}
			if err := e.redistribute(ctx, r, d.taskID, all); err != nil {
				return err
			}
			result.ShiftedTasks = append(result.ShiftedTasks, d.taskID)
		}
		return nil
	})
	if err != nil {
		pe := app.NewPlanError(app.ErrPushForwardFailed, "push forward from %s failed; no allocations changed",
			from.Format(domain.DateLayout))
		pe.TaskID = req.NewTaskID
		pe.Err = err
		return nil, pe
	}

	e.opts.Logger.InfoContext(ctx, "pushed allocations forward",
		"task_id", req.NewTaskID,
		"from", from.Format(domain.DateLayout),
		"shifted_tasks", len(result.ShiftedTasks),
		"shifted_rows", result.ShiftedBefore,
	)
	return result, nil
}

// redistribute re-runs child distribution for a displaced parent that had
// child allocations, using its full shifted schedule as the pool.
func (e *pushForwardEngine) redistribute(ctx context.Context, r Repos, taskID string, parent []domain.Allocation) error {
	existing, err := r.ChildAllocations.ListByRoot(ctx, taskID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}
	tree, err := subtree(ctx, r, taskID)
	if err != nil {
		return err
	}
	demand, _, err := leafDemand(ctx, r, tree, taskID)
	if err != nil {
		return err
	}
	res, err := scheduler.Distribute(scheduler.DistributionInput{
		RootTaskID:   taskID,
		ParentTaskID: taskID,
		Pool:         scheduler.PoolFromAllocations(parent),
		Tree:         tree,
		Demand:       demand,
		Level:        1,
	})
	if err != nil {
		return fmt.Errorf("redistributing %s: %w", taskID, err)
	}
	if err := clearDerivedSchedule(ctx, r, tree, taskID); err != nil {
		return err
	}
	if err := writeDistribution(ctx, r, res); err != nil {
		return err
	}
	logShortfalls(ctx, e.opts.Logger, taskID, res.Shortfalls)
	return nil
}

func validatePushForward(req app.PushForwardRequest) error {
	var errs []error
	if req.UserID == "" {
		errs = append(errs, errors.New("user id is required"))
	}
	if req.NewTaskID == "" {
		errs = append(errs, errors.New("new task id is required"))
	}
	if req.FromDate.IsZero() {
		errs = append(errs, errors.New("from date is required"))
	}
	if req.NewTaskHours <= 0 {
		errs = append(errs, fmt.Errorf("new task hours must be > 0, got %v", req.NewTaskHours))
	}
	if req.HoursPerDay != nil && *req.HoursPerDay <= 0 {
		errs = append(errs, fmt.Errorf("hours per day must be > 0, got %v", *req.HoursPerDay))
	}
	if len(errs) > 0 {
		pe := app.NewPlanError(app.ErrInvalidRequest, "invalid push forward request")
		pe.Err = errors.Join(errs...)
		return pe
	}
	return nil
}
