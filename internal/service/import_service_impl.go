package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/importer"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewImportService writes seed workspaces. The whole file is imported in one
// transaction; any failure leaves the database untouched.
func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportFile(ctx context.Context, filePath string) (*ImportResult, error) {
	ws, err := importer.LoadWorkspace(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.ImportWorkspace(ctx, ws)
}

func (s *importService) ImportWorkspace(ctx context.Context, ws *importer.Workspace) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		fields := map[string]any{}
		if result != nil {
			fields["organizations"] = result.Organizations
			fields["users"] = result.Users
			fields["projects"] = result.Projects
			fields["tasks"] = result.Tasks
			fields["time_entries"] = result.TimeEntries
		}
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import-workspace",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if errs := importer.ValidateWorkspace(ws); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	conv, err := importer.Convert(ws)
	if err != nil {
		return nil, fmt.Errorf("converting workspace: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := NewSQLiteRepos(tx)
		for _, o := range conv.Organizations {
			if err := r.Organizations.Create(ctx, o); err != nil {
				return fmt.Errorf("creating organization %q: %w", o.Name, err)
			}
		}
		for _, u := range conv.Users {
			if err := r.Users.Create(ctx, u); err != nil {
				return fmt.Errorf("creating user %q: %w", u.Name, err)
			}
		}
		for _, c := range conv.Calendars {
			if err := r.Calendars.Upsert(ctx, c); err != nil {
				return fmt.Errorf("saving calendar: %w", err)
			}
		}
		for _, m := range conv.Memberships {
			if err := r.Memberships.Add(ctx, m); err != nil {
				return fmt.Errorf("adding membership: %w", err)
			}
		}
		for _, p := range conv.Projects {
			if err := r.Projects.Create(ctx, p); err != nil {
				return fmt.Errorf("creating project %q: %w", p.Name, err)
			}
		}
		for _, t := range conv.Tasks {
			if err := r.Tasks.Create(ctx, t); err != nil {
				return fmt.Errorf("creating task %q: %w", t.Name, err)
			}
		}
		for _, t := range conv.Tasks {
			prereq, ok := conv.Dependencies[t.ID]
			if !ok {
				continue
			}
			t.DependsOnTaskID = &prereq
			if err := r.Tasks.Update(ctx, t); err != nil {
				return fmt.Errorf("linking dependency of %q: %w", t.Name, err)
			}
		}
		for _, e := range conv.TimeEntries {
			if err := r.TimeEntries.Create(ctx, e); err != nil {
				return fmt.Errorf("creating time entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Organizations: len(conv.Organizations),
		Users:         len(conv.Users),
		Projects:      len(conv.Projects),
		Tasks:         len(conv.Tasks),
		TimeEntries:   len(conv.TimeEntries),
		IDs:           conv.IDs,
	}, nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
