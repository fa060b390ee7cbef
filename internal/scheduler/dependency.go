package scheduler

import (
	"time"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/domain"
)

// CheckDependency gates a drop on the prerequisite's planned end date. The
// proposed start must be at least the day after that end.
func CheckDependency(task, prereq *domain.Task, start time.Time) error {
	if prereq == nil {
		return nil
	}
	if prereq.PlannedEnd == nil {
		pe := app.NewPlanError(app.ErrDependencyNotPlanned,
			"prerequisite %q of task %q has no planned end date", prereq.Name, task.Name)
		pe.TaskID = task.ID
		pe.Conflicts = []string{prereq.Name}
		return pe
	}
	end := domain.DateOf(*prereq.PlannedEnd)
	if !domain.DateOf(start).After(end) {
		pe := app.NewPlanError(app.ErrDependencyConstraint,
			"task %q must start after %s when prerequisite %q ends",
			task.Name, end.Format(domain.DateLayout), prereq.Name)
		pe.TaskID = task.ID
		pe.Conflicts = []string{prereq.Name}
		return pe
	}
	return nil
}
