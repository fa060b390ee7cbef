package cli

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/planboard/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Planning    service.PlanningService
	TimeEntries service.TimeEntryService
	Import      service.ImportService
	Calendars   service.CalendarService

	// Prompter asks for conflict and hours-per-day decisions. Only consulted
	// when IsInteractive reports a terminal.
	Prompter      DecisionPrompter
	IsInteractive func() bool

	Logger *slog.Logger
	Serve  ServeConfig
}

// ServeConfig carries the REST server settings for the serve command.
type ServeConfig struct {
	Listen          string
	ShutdownTimeout time.Duration
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// NewRootCmd creates the top-level "planboard" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:          "planboard",
		Short:        "Task allocation scheduler",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newImportCmd(app),
		newPlanCmd(app),
		newUnplanCmd(app),
		newScheduleCmd(app),
		newPushForwardCmd(app),
		newAvailabilityCmd(app),
		newAllocationsCmd(app),
		newLogCmd(app),
		newCalendarCmd(app),
	)

	return root
}
