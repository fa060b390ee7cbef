package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/planboard/internal/cli"
	"github.com/alexanderramin/planboard/internal/config"
	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/scheduler"
	"github.com/alexanderramin/planboard/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.Logger(os.Stderr)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Reads go through the shared handle; every write phase runs in its own
	// transaction.
	reads := service.NewSQLiteRepos(database)
	uow := db.NewSQLiteUnitOfWork(database, db.WithTxLogger(logger))
	observer := service.NewSlogUseCaseObserver(logger)

	opts := service.PlanningOptions{
		Window: scheduler.WindowPolicy{
			Multiplier: cfg.Scheduler.WindowMultiplier,
			FloorDays:  cfg.Scheduler.WindowFloorDays,
		},
		MaxDays: cfg.Scheduler.MaxDays,
		Logger:  logger,
	}

	app := &cli.App{
		Planning:    service.NewPlanningService(reads, uow, opts, observer),
		TimeEntries: service.NewTimeEntryService(reads, uow, observer),
		Import:      service.NewImportService(uow, observer),
		Calendars:   service.NewCalendarService(reads, uow, observer),
		Prompter:    cli.NewHuhPrompter(os.Stdin, os.Stderr),
		Logger:      logger,
		Serve: cli.ServeConfig{
			Listen:          cfg.Listen,
			ShutdownTimeout: cfg.ShutdownTimeout,
		},
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
