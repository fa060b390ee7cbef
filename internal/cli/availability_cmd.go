package cli

import (
	"fmt"
	"time"

	planboardapp "github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/spf13/cobra"
)

func newAvailabilityCmd(app *App) *cobra.Command {
	var (
		req  planboardapp.AvailabilityRequest
		days int
	)

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show a user's free capacity per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Start.IsZero() {
				req.Start = today()
			}
			if req.End.IsZero() {
				if days < 1 {
					return fmt.Errorf("--days must be >= 1, got %d", days)
				}
				req.End = req.Start.AddDate(0, 0, days-1)
			}
			out, err := app.Planning.Availability(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Header(fmt.Sprintf("Availability (%s)", req.Kind)))
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAvailability(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.UserID, "user", "", "User to inspect")
	cmd.Flags().Var(&dateValue{date: &req.Start}, "start", "First day YYYY-MM-DD (default today)")
	cmd.Flags().Var(&dateValue{date: &req.End}, "end", "Last day YYYY-MM-DD (overrides --days)")
	cmd.Flags().IntVar(&days, "days", 7, "Number of days to show")
	cmd.Flags().Var(newKindValue(domain.KindWork, &req.Kind), "kind", "Calendar profile (work|hobby)")
	cmd.Flags().StringVar(&req.ExcludeTaskID, "exclude-task", "", "Ignore this task's allocations")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newAllocationsCmd(app *App) *cobra.Command {
	var (
		userID  string
		date    time.Time
		kind    domain.Kind
		exclude string
	)

	cmd := &cobra.Command{
		Use:   "allocations",
		Short: "List what is already booked for a user on a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date.IsZero() {
				date = today()
			}
			existing, err := app.Planning.ExistingAllocations(cmd.Context(), userID, date, kind, exclude)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Header("Booked "+formatter.DayLabel(date)))
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatExisting(existing))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User to inspect")
	cmd.Flags().Var(&dateValue{date: &date}, "date", "Day YYYY-MM-DD (default today)")
	cmd.Flags().Var(newKindValue(domain.KindWork, &kind), "kind", "Calendar profile (work|hobby)")
	cmd.Flags().StringVar(&exclude, "exclude-task", "", "Ignore this task's allocations")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
