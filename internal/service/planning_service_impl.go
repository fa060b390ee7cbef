package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/repository"
	"github.com/alexanderramin/planboard/internal/scheduler"
)

// PlanningOptions tunes the planning pipeline. Zero values fall back to
// the scheduler defaults.
type PlanningOptions struct {
	Window  scheduler.WindowPolicy
	MaxDays int
	Logger  *slog.Logger
	// Engine handles push-forward; nil uses the bundled transactional engine.
	Engine PushForwardEngine
}

func (o PlanningOptions) withDefaults() PlanningOptions {
	if o.Window.Multiplier <= 0 && o.Window.FloorDays <= 0 {
		o.Window = scheduler.DefaultWindowPolicy()
	}
	if o.MaxDays <= 0 {
		o.MaxDays = scheduler.DefaultMaxDays
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

type planningService struct {
	reads    Repos
	uow      db.UnitOfWork
	opts     PlanningOptions
	engine   PushForwardEngine
	observer UseCaseObserver
}

func NewPlanningService(
	reads Repos,
	uow db.UnitOfWork,
	opts PlanningOptions,
	observers ...UseCaseObserver,
) PlanningService {
	opts = opts.withDefaults()
	engine := opts.Engine
	if engine == nil {
		engine = NewPushForwardEngine(uow, opts)
	}
	return &planningService{
		reads:    reads,
		uow:      uow,
		opts:     opts,
		engine:   engine,
		observer: useCaseObserverOrNoop(observers),
	}
}

const planSteps = 7

type progressReporter struct {
	fn   func(app.ProgressEvent)
	step int
}

func (p *progressReporter) report(stage app.ProgressStage, format string, args ...any) {
	p.step++
	if p.fn == nil {
		return
	}
	p.fn(app.ProgressEvent{
		Stage:   stage,
		Step:    p.step,
		Total:   planSteps,
		Message: fmt.Sprintf(format, args...),
	})
}

func (s *planningService) Plan(ctx context.Context, req app.PlanRequest) (resp *app.PlanResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"task_id":  req.TaskID,
		"user_id":  req.UserID,
		"strategy": string(req.Strategy),
	}
	defer func() {
		if resp != nil {
			fields["status"] = string(resp.Status)
			fields["allocations"] = len(resp.Allocations)
			fields["child_allocations"] = len(resp.ChildAllocations)
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "plan-task",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if err := validatePlanRequest(req); err != nil {
		return nil, err
	}
	start := domain.DateOf(req.StartDate)
	progress := &progressReporter{fn: req.Progress}

	// Access check.
	progress.report(app.StageAccessCheck, "checking access")
	task, err := s.reads.Tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}
	project, err := s.reads.Projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	ok, err := s.reads.Memberships.HasProjectAccess(ctx, req.UserID, project.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		pe := app.NewPlanError(app.ErrNoAccess, "user %s has no access to project %s", req.UserID, project.Name)
		pe.TaskID = task.ID
		return nil, pe
	}
	kind := project.Kind()

	// Dependency gate.
	progress.report(app.StageDependency, "checking dependency")
	if task.DependsOnTaskID != nil {
		prereq, err := s.reads.Tasks.GetByID(ctx, *task.DependsOnTaskID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("loading prerequisite: %w", err)
		}
		if err := scheduler.CheckDependency(task, prereq, start); err != nil {
			return nil, err
		}
	}

	tree, err := subtree(ctx, s.reads, task.ID)
	if err != nil {
		return nil, err
	}
	hierarchical := tree.HasChildren(task.ID)
	demand, worked, err := leafDemand(ctx, s.reads, tree, task.ID)
	if err != nil {
		return nil, err
	}
	remaining, err := scheduler.AggregateDemand(tree, demand, task.ID)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		pe := app.NewPlanError(app.ErrNoRemainingHours, "task %q has no hours left to allocate", task.Name)
		pe.TaskID = task.ID
		return nil, pe
	}

	// Conflict detection and hours-per-day negotiation on the drop day.
	progress.report(app.StageAvailability, "reading availability")
	cal, err := s.reads.Calendars.Get(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading calendar: %w", err)
	}
	dropDay := scheduler.ResolveCapacity(cal, start.Weekday(), kind)
	if !dropDay.Working() {
		pe := app.NewPlanError(app.ErrNoCapacity, "%s has no %s hours on %s",
			start.Format(domain.DateLayout), kind, start.Weekday())
		pe.TaskID = task.ID
		return nil, pe
	}

	resp = &app.PlanResponse{
		TaskID:         task.ID,
		UserID:         req.UserID,
		Kind:           kind,
		RemainingHours: domain.MinutesToHours(remaining),
	}

	// A parent goes straight to the allocator, which plans into gaps; only
	// leaf tasks stop on drop-day conflicts.
	var conflicts []domain.ExistingAllocation
	if !hierarchical {
		conflicts, err = s.reads.Allocations.ListExisting(ctx, repository.AllocationQuery{
			UserID: req.UserID, Kind: kind, From: start, To: start, ExcludeTaskID: task.ID,
		})
		if err != nil {
			return nil, err
		}
	}
	decision := &app.DecisionRequired{
		DayMaxHours:    domain.MinutesToHours(dropDay.MaxMinutes),
		RemainingHours: domain.MinutesToHours(remaining),
		WorkedHours:    worked,
	}
	if len(conflicts) > 0 && req.Strategy == app.StrategyNone {
		decision.NeedsStrategy = true
		decision.Conflicts = conflicts
	}
	if req.HoursPerDay == nil && scheduler.NeedsHoursPrompt(remaining, dropDay.MaxMinutes, worked) {
		decision.NeedsHoursPerDay = true
	}
	if decision.NeedsStrategy || decision.NeedsHoursPerDay {
		resp.Status = app.StatusDecisionRequired
		resp.Decision = decision
		return resp, nil
	}

	capMinutes := dropDay.MaxMinutes
	if req.HoursPerDay != nil {
		requested := domain.HoursToMinutes(*req.HoursPerDay)
		capMinutes = scheduler.ClampPerDayCap(requested, dropDay.MaxMinutes)
		if capMinutes < requested {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf(
				"hours per day clamped from %.2f to the day maximum of %.2f",
				*req.HoursPerDay, domain.MinutesToHours(capMinutes)))
		}
	}
	resp.HoursPerDay = domain.MinutesToHours(capMinutes)

	if len(conflicts) > 0 && req.Strategy == app.StrategyPushForward {
		progress.report(app.StagePushForward, "pushing %d existing allocations forward", len(conflicts))
		if err := s.planPushForward(ctx, task, req, kind, remaining, capMinutes, resp); err != nil {
			return nil, err
		}
		resp.Status = app.StatusPushedForward
	} else {
		progress.report(app.StageAllocation, "allocating %.2fh", domain.MinutesToHours(remaining))
		allocs, err := placeTask(ctx, s.reads, s.opts, placement{
			TaskID: task.ID, UserID: req.UserID, Kind: kind, Calendar: cal,
			Start: start, Minutes: remaining, CapMinutes: capMinutes,
		})
		if err != nil {
			return nil, err
		}

		progress.report(app.StagePersist, "saving %d allocations", len(allocs))
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			r := NewSQLiteRepos(tx)
			if err := replaceSchedule(ctx, r, task.ID, allocs); err != nil {
				return err
			}
			return clearDerivedSchedule(ctx, r, tree, task.ID)
		})
		if err != nil {
			return nil, fmt.Errorf("saving schedule: %w", err)
		}
		resp.Status = app.StatusPlanned
	}

	// Re-read so distribution and the caller see the persisted schedule.
	persisted, err := s.reads.Allocations.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	resp.Allocations = persisted
	reread, err := s.reads.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	resp.PlannedStart, resp.PlannedEnd = reread.PlannedStart, reread.PlannedEnd

	if hierarchical {
		progress.report(app.StageDistribution, "distributing to subtasks")
		s.distribute(ctx, task.ID, tree, demand, persisted, resp)
	} else {
		progress.report(app.StageDistribution, "no subtasks")
	}

	progress.report(app.StageDone, "planned %.2fh", resp.TotalHours())
	return resp, nil
}

func validatePlanRequest(req app.PlanRequest) error {
	switch {
	case req.TaskID == "":
		return app.NewPlanError(app.ErrInvalidRequest, "task id is required")
	case req.UserID == "":
		return app.NewPlanError(app.ErrInvalidRequest, "user id is required")
	case req.StartDate.IsZero():
		return app.NewPlanError(app.ErrInvalidRequest, "start date is required")
	case req.HoursPerDay != nil && *req.HoursPerDay <= 0:
		return app.NewPlanError(app.ErrInvalidRequest, "hours per day must be > 0, got %v", *req.HoursPerDay)
	}
	if _, err := app.ParseStrategy(string(req.Strategy)); err != nil {
		return app.NewPlanError(app.ErrInvalidRequest, "%v", err)
	}
	return nil
}

func (s *planningService) planPushForward(
	ctx context.Context,
	task *domain.Task,
	req app.PlanRequest,
	kind domain.Kind,
	remaining, capMinutes int,
	resp *app.PlanResponse,
) error {
	capHours := domain.MinutesToHours(capMinutes)
	result, err := s.engine.PushForward(ctx, app.PushForwardRequest{
		UserID:       req.UserID,
		FromDate:     domain.DateOf(req.StartDate),
		NewTaskID:    task.ID,
		NewTaskHours: domain.MinutesToHours(remaining),
		Kind:         kind,
		HoursPerDay:  &capHours,
	})
	if err != nil {
		return err
	}
	if len(result.ShiftedTasks) > 0 {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("shifted %d tasks forward", len(result.ShiftedTasks)))
	}
	return nil
}

// distribute runs the child distribution as its own write phase. Failures
// leave the parent schedule in place and are reported on the response.
func (s *planningService) distribute(
	ctx context.Context,
	taskID string,
	tree *domain.TaskTree,
	demand map[string]int,
	parent []domain.Allocation,
	resp *app.PlanResponse,
) {
	res, err := scheduler.Distribute(scheduler.DistributionInput{
		RootTaskID:   taskID,
		ParentTaskID: taskID,
		Pool:         scheduler.PoolFromAllocations(parent),
		Tree:         tree,
		Demand:       demand,
		Level:        1,
	})
	if err == nil {
		err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			r := NewSQLiteRepos(tx)
			if err := clearDerivedSchedule(ctx, r, tree, taskID); err != nil {
				return err
			}
			return writeDistribution(ctx, r, res)
		})
	}
	if err != nil {
		s.opts.Logger.ErrorContext(ctx, "child distribution failed", "task_id", taskID, "error", err)
		resp.Status = app.StatusDistributionFailed
		resp.DistributionError = err.Error()
		return
	}
	resp.ChildAllocations = res.Allocations
	resp.Shortfalls = shortfallsToResponse(res.Shortfalls)
	resp.Warnings = append(resp.Warnings, logShortfalls(ctx, s.opts.Logger, taskID, res.Shortfalls)...)
}

func (s *planningService) Unplan(ctx context.Context, taskID string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "unplan-task",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"task_id": taskID},
		})
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := NewSQLiteRepos(tx)
		tree, err := subtree(ctx, r, taskID)
		if err != nil {
			return err
		}
		if _, err := r.Allocations.DeleteByTask(ctx, taskID); err != nil {
			return err
		}
		if err := r.Tasks.SetPlannedDates(ctx, taskID, nil, nil); err != nil {
			return err
		}
		return clearDerivedSchedule(ctx, r, tree, taskID)
	})
}

func (s *planningService) Availability(ctx context.Context, req app.AvailabilityRequest) ([]domain.AvailabilityDay, error) {
	if req.UserID == "" {
		return nil, app.NewPlanError(app.ErrInvalidRequest, "user id is required")
	}
	from, to := domain.DateOf(req.Start), domain.DateOf(req.End)
	if to.Before(from) {
		return nil, app.NewPlanError(app.ErrInvalidRequest, "end %s is before start %s",
			to.Format(domain.DateLayout), from.Format(domain.DateLayout))
	}
	kind := req.Kind
	if kind == "" {
		kind = domain.KindWork
	}
	cal, err := s.reads.Calendars.Get(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading calendar: %w", err)
	}
	existing, err := s.reads.Allocations.ListExisting(ctx, repository.AllocationQuery{
		UserID: req.UserID, Kind: kind, From: from, To: to, ExcludeTaskID: req.ExcludeTaskID,
	})
	if err != nil {
		return nil, err
	}
	return scheduler.ComputeAvailability(cal, kind, from, to, existing), nil
}

func (s *planningService) ExistingAllocations(ctx context.Context, userID string, date time.Time, kind domain.Kind, excludeTaskID string) ([]domain.ExistingAllocation, error) {
	day := domain.DateOf(date)
	return s.reads.Allocations.ListExisting(ctx, repository.AllocationQuery{
		UserID: userID, Kind: kind, From: day, To: day, ExcludeTaskID: excludeTaskID,
	})
}

func (s *planningService) Schedule(ctx context.Context, taskID string) (*app.TaskSchedule, error) {
	task, err := s.reads.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}
	allocs, err := s.reads.Allocations.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	children, err := s.reads.ChildAllocations.ListByRoot(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &app.TaskSchedule{Task: task, Allocations: allocs, ChildAllocations: children}, nil
}

func (s *planningService) PushForward(ctx context.Context, req app.PushForwardRequest) (result *app.PushForwardResult, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		fields := map[string]any{"task_id": req.NewTaskID, "user_id": req.UserID}
		if result != nil {
			fields["shifted_tasks"] = len(result.ShiftedTasks)
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "push-forward",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()
	return s.engine.PushForward(ctx, req)
}
