package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
)

// SQLiteTimeEntryRepo implements TimeEntryRepo using a SQLite database.
type SQLiteTimeEntryRepo struct {
	db db.DBTX
}

func NewSQLiteTimeEntryRepo(conn db.DBTX) *SQLiteTimeEntryRepo {
	return &SQLiteTimeEntryRepo{db: conn}
}

func (r *SQLiteTimeEntryRepo) Create(ctx context.Context, e *domain.TimeEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO time_entries (id, task_id, user_id, date, hours, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TaskID, e.UserID, e.Date.Format(dateLayout), e.Hours, e.Note,
		e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting time entry: %w", err)
	}
	return nil
}

func (r *SQLiteTimeEntryRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, task_id, user_id, date, hours, note, created_at
		 FROM time_entries WHERE task_id = ? ORDER BY date, created_at`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing time entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.TimeEntry
	for rows.Next() {
		var e domain.TimeEntry
		var date, createdAt string
		if err := rows.Scan(&e.ID, &e.TaskID, &e.UserID, &date, &e.Hours, &e.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning time entry: %w", err)
		}
		if e.Date, err = parseDateColumn(date, "date"); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time entries: %w", err)
	}
	return entries, nil
}

func (r *SQLiteTimeEntryRepo) SumHoursByTasks(ctx context.Context, taskIDs []string) (map[string]float64, error) {
	sums := make(map[string]float64, len(taskIDs))
	if len(taskIDs) == 0 {
		return sums, nil
	}
	args := make([]any, len(taskIDs))
	for i, id := range taskIDs {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_id, SUM(hours) FROM time_entries
		 WHERE task_id IN (`+placeholders(len(taskIDs))+`) GROUP BY task_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("summing time entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var hours float64
		if err := rows.Scan(&id, &hours); err != nil {
			return nil, fmt.Errorf("scanning time entry sum: %w", err)
		}
		sums[id] = hours
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time entry sums: %w", err)
	}
	return sums, nil
}
