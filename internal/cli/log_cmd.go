package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/spf13/cobra"
)

func newLogCmd(app *App) *cobra.Command {
	var (
		userID string
		date   time.Time
		hours  float64
		note   string
	)

	cmd := &cobra.Command{
		Use:   "log TASK_ID",
		Short: "Record hours worked on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := &domain.TimeEntry{
				TaskID: args[0],
				UserID: userID,
				Date:   date,
				Hours:  hours,
				Note:   note,
			}
			if err := app.TimeEntries.Log(cmd.Context(), entry); err != nil {
				return err
			}
			worked, err := app.TimeEntries.WorkedHours(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s %s\n",
				formatter.FormatHours(entry.Hours),
				entry.Date.Format(domain.DateLayout),
				formatter.Dim(fmt.Sprintf("(%s worked in total)", formatter.FormatHours(worked))))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User who did the work")
	cmd.Flags().Var(&dateValue{date: &date}, "date", "Day worked YYYY-MM-DD (default today)")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Hours worked")
	cmd.Flags().StringVar(&note, "note", "", "Optional note")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("hours")

	return cmd
}
