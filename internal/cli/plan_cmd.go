package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	planboardapp "github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/spf13/cobra"
)

// ErrDecisionRequired is returned when a plan needs a choice the command
// could not ask for.
var ErrDecisionRequired = errors.New("decision required: re-run with --strategy and/or --hours-per-day")

// maxDecisionRounds bounds the prompt loop; one round per decision kind.
const maxDecisionRounds = 2

func newPlanCmd(app *App) *cobra.Command {
	var (
		userID   string
		start    time.Time
		strategy planboardapp.Strategy
		hours    *float64
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "plan TASK_ID",
		Short: "Schedule a task for a user from a start date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if start.IsZero() {
				start = today()
			}
			req := planboardapp.PlanRequest{
				TaskID:      args[0],
				UserID:      userID,
				StartDate:   start,
				Strategy:    strategy,
				HoursPerDay: hours,
			}
			if !quiet && app.interactive() {
				req.Progress = progressPrinter(cmd.ErrOrStderr())
			}

			resp, err := planWithDecisions(cmd.Context(), app, req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlanResponse(resp))
			if resp.Status == planboardapp.StatusDecisionRequired {
				return ErrDecisionRequired
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User to schedule the task for")
	cmd.Flags().Var(&dateValue{date: &start}, "start", "Drop date YYYY-MM-DD (default today)")
	cmd.Flags().Var(&strategyValue{strategy: &strategy}, "strategy", "Conflict strategy (push_forward|plan_when_available)")
	cmd.Flags().Var(&hoursValue{hours: &hours}, "hours-per-day", "Daily cap in hours")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not render progress")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// planWithDecisions submits the request and, on a terminal, answers the
// decisions the service asks for before re-submitting.
func planWithDecisions(ctx context.Context, app *App, req planboardapp.PlanRequest) (*planboardapp.PlanResponse, error) {
	resp, err := app.Planning.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	for round := 0; round < maxDecisionRounds; round++ {
		if resp.Status != planboardapp.StatusDecisionRequired || resp.Decision == nil {
			return resp, nil
		}
		if !app.interactive() || app.Prompter == nil {
			return resp, nil
		}
		d := resp.Decision
		if d.NeedsStrategy {
			st, err := app.Prompter.ChooseStrategy(d.Conflicts)
			if err != nil {
				return nil, err
			}
			req.Strategy = st
		}
		if d.NeedsHoursPerDay {
			h, err := app.Prompter.HoursPerDay(d)
			if err != nil {
				return nil, err
			}
			req.HoursPerDay = &h
		}
		if resp, err = app.Planning.Plan(ctx, req); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func progressPrinter(w io.Writer) func(planboardapp.ProgressEvent) {
	bar := formatter.NewStageBar(30)
	return func(ev planboardapp.ProgressEvent) {
		fmt.Fprintln(w, bar.Render(ev))
	}
}

func newUnplanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unplan TASK_ID",
		Short: "Remove a task's schedule and every child allocation it produced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Planning.Unplan(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unplanned %s\n", args[0])
			return nil
		},
	}
}

func newScheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule TASK_ID",
		Short: "Show a task's allocations and child allocations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Planning.Schedule(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSchedule(s, nil))
			return nil
		},
	}
}

func newPushForwardCmd(app *App) *cobra.Command {
	var req planboardapp.PushForwardRequest

	cmd := &cobra.Command{
		Use:   "push-forward TASK_ID",
		Short: "Insert a task at a date and shift later allocations forward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.NewTaskID = args[0]
			if req.FromDate.IsZero() {
				req.FromDate = today()
			}
			res, err := app.Planning.PushForward(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header("Push Forward"))
			fmt.Fprintf(out, "  Placed:  %d allocations\n", len(res.Placed))
			fmt.Fprintf(out, "  Shifted: %d tasks (%d allocations moved)\n", len(res.ShiftedTasks), res.ShiftedBefore)
			if len(res.Placed) > 0 {
				fmt.Fprintln(out)
				fmt.Fprint(out, formatter.FormatAllocations(res.Placed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.UserID, "user", "", "User whose allocations shift")
	cmd.Flags().Var(&dateValue{date: &req.FromDate}, "from", "Insert date YYYY-MM-DD (default today)")
	cmd.Flags().Float64Var(&req.NewTaskHours, "hours", 0, "Hours to place for the inserted task")
	cmd.Flags().Var(newKindValue(domain.KindWork, &req.Kind), "kind", "Calendar profile (work|hobby)")
	cmd.Flags().Var(&hoursValue{hours: &req.HoursPerDay}, "hours-per-day", "Daily cap for the inserted task")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("hours")

	return cmd
}
