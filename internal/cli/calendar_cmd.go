package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planboard/internal/cli/formatter"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/spf13/cobra"
)

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Inspect and edit a user's weekly capacity",
	}
	cmd.AddCommand(
		newCalendarShowCmd(app),
		newCalendarSetDayCmd(app),
		newCalendarSetLunchCmd(app),
	)
	return cmd
}

func newCalendarShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show USER_ID",
		Short: "Show a user's weekly calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := app.Calendars.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCalendar(cal))
			return nil
		},
	}
}

func newCalendarSetDayCmd(app *App) *cobra.Command {
	var (
		workHours, hobbyHours float64
		workStart             = domain.Clock(9, 0)
		hobbyStart            = domain.Clock(19, 0)
	)

	cmd := &cobra.Command{
		Use:   "set-day USER_ID WEEKDAY",
		Short: "Replace one weekday's work and hobby capacity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := parseWeekday(args[1])
			if err != nil {
				return err
			}
			cal, err := app.Calendars.SetDay(cmd.Context(), args[0], wd, domain.DayCapacity{
				WorkHours:  workHours,
				WorkStart:  workStart,
				HobbyHours: hobbyHours,
				HobbyStart: hobbyStart,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCalendar(cal))
			return nil
		},
	}

	cmd.Flags().Float64Var(&workHours, "work-hours", 0, "Work hours on this day")
	cmd.Flags().Var(&clockValue{clock: &workStart}, "work-start", "Work start HH:MM")
	cmd.Flags().Float64Var(&hobbyHours, "hobby-hours", 0, "Hobby hours on this day")
	cmd.Flags().Var(&clockValue{clock: &hobbyStart}, "hobby-start", "Hobby start HH:MM")

	return cmd
}

func newCalendarSetLunchCmd(app *App) *cobra.Command {
	var (
		start   = domain.Clock(12, 0)
		minutes int
	)

	cmd := &cobra.Command{
		Use:   "set-lunch USER_ID",
		Short: "Replace a user's lunch break",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := app.Calendars.SetLunch(cmd.Context(), args[0], start, minutes)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCalendar(cal))
			return nil
		},
	}

	cmd.Flags().Var(&clockValue{clock: &start}, "start", "Lunch start HH:MM")
	cmd.Flags().IntVar(&minutes, "minutes", 60, "Lunch length in minutes (0 disables)")

	return cmd
}

// parseWeekday accepts full or three-letter English weekday names.
func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := strings.ToLower(wd.String())
		if s == name || s == name[:3] {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
