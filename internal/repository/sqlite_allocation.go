package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/google/uuid"
)

const allocationColumns = `id, task_id, user_id, date, kind, minutes, start_time, end_time`

// SQLiteAllocationRepo implements AllocationRepo using a SQLite database.
type SQLiteAllocationRepo struct {
	db db.DBTX
}

func NewSQLiteAllocationRepo(conn db.DBTX) *SQLiteAllocationRepo {
	return &SQLiteAllocationRepo{db: conn}
}

// CreateBatch inserts allocations, assigning ids to rows that lack one.
func (r *SQLiteAllocationRepo) CreateBatch(ctx context.Context, allocs []domain.Allocation) error {
	for i := range allocs {
		a := &allocs[i]
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO allocations (`+allocationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.TaskID, a.UserID, a.Date.Format(dateLayout), string(a.Kind),
			a.Minutes, a.Start.String(), a.End.String())
		if err != nil {
			return fmt.Errorf("inserting allocation for task %s on %s: %w",
				a.TaskID, a.Date.Format(dateLayout), err)
		}
	}
	return nil
}

func (r *SQLiteAllocationRepo) ListByTask(ctx context.Context, taskID string) ([]domain.Allocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+allocationColumns+` FROM allocations WHERE task_id = ? ORDER BY date, start_time`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing allocations of task %s: %w", taskID, err)
	}
	return scanAllocations(rows)
}

func (r *SQLiteAllocationRepo) ListFrom(ctx context.Context, userID string, kind domain.Kind, from time.Time) ([]domain.Allocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+allocationColumns+` FROM allocations
		 WHERE user_id = ? AND kind = ? AND date >= ?
		 ORDER BY date, start_time, rowid`,
		userID, string(kind), from.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("listing allocations from %s: %w", from.Format(dateLayout), err)
	}
	return scanAllocations(rows)
}

func (r *SQLiteAllocationRepo) ListExisting(ctx context.Context, q AllocationQuery) ([]domain.ExistingAllocation, error) {
	query := `SELECT a.task_id, t.name, a.date, a.minutes, a.start_time, a.end_time
		FROM allocations a JOIN tasks t ON t.id = a.task_id
		WHERE a.user_id = ? AND a.kind = ? AND a.date >= ? AND a.date <= ?`
	args := []any{q.UserID, string(q.Kind), q.From.Format(dateLayout), q.To.Format(dateLayout)}
	if q.ExcludeTaskID != "" {
		query += ` AND a.task_id != ?`
		args = append(args, q.ExcludeTaskID)
	}
	query += ` ORDER BY a.date, a.start_time`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing existing allocations: %w", err)
	}
	defer rows.Close()

	var out []domain.ExistingAllocation
	for rows.Next() {
		var e domain.ExistingAllocation
		var date, start, end string
		if err := rows.Scan(&e.TaskID, &e.TaskName, &date, &e.Minutes, &start, &end); err != nil {
			return nil, fmt.Errorf("scanning existing allocation: %w", err)
		}
		if e.Date, err = parseDateColumn(date, "date"); err != nil {
			return nil, err
		}
		if e.Start, err = parseClockColumn(start, "start_time"); err != nil {
			return nil, err
		}
		if e.End, err = parseClockColumn(end, "end_time"); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating existing allocations: %w", err)
	}
	return out, nil
}

func (r *SQLiteAllocationRepo) DeleteByTask(ctx context.Context, taskID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM allocations WHERE task_id = ?`, taskID)
	if err != nil {
		return 0, fmt.Errorf("deleting allocations of task %s: %w", taskID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return n, nil
}

func (r *SQLiteAllocationRepo) DeleteFrom(ctx context.Context, taskID string, from time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM allocations WHERE task_id = ? AND date >= ?`, taskID, from.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("deleting allocations of task %s from %s: %w", taskID, from.Format(dateLayout), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return n, nil
}

func scanAllocations(rows *sql.Rows) ([]domain.Allocation, error) {
	defer rows.Close()
	var out []domain.Allocation
	for rows.Next() {
		var a domain.Allocation
		var date, kind, start, end string
		if err := rows.Scan(&a.ID, &a.TaskID, &a.UserID, &date, &kind, &a.Minutes, &start, &end); err != nil {
			return nil, fmt.Errorf("scanning allocation: %w", err)
		}
		var err error
		if a.Date, err = parseDateColumn(date, "date"); err != nil {
			return nil, err
		}
		if a.Kind, err = domain.ParseKind(kind); err != nil {
			return nil, err
		}
		if a.Start, err = parseClockColumn(start, "start_time"); err != nil {
			return nil, err
		}
		if a.End, err = parseClockColumn(end, "end_time"); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating allocations: %w", err)
	}
	return out, nil
}

const childAllocationColumns = `id, root_task_id, parent_task_id, child_task_id, date, minutes, level, start_time, end_time`

// SQLiteChildAllocationRepo implements ChildAllocationRepo.
type SQLiteChildAllocationRepo struct {
	db db.DBTX
}

func NewSQLiteChildAllocationRepo(conn db.DBTX) *SQLiteChildAllocationRepo {
	return &SQLiteChildAllocationRepo{db: conn}
}

func (r *SQLiteChildAllocationRepo) CreateBatch(ctx context.Context, allocs []domain.ChildAllocation) error {
	for i := range allocs {
		c := &allocs[i]
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO child_allocations (`+childAllocationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.RootTaskID, c.ParentTaskID, c.ChildTaskID, c.Date.Format(dateLayout),
			c.Minutes, c.Level, c.Start.String(), c.End.String())
		if err != nil {
			return fmt.Errorf("inserting child allocation for %s: %w", c.ChildTaskID, err)
		}
	}
	return nil
}

func (r *SQLiteChildAllocationRepo) ListByRoot(ctx context.Context, rootTaskID string) ([]domain.ChildAllocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+childAllocationColumns+` FROM child_allocations
		 WHERE root_task_id = ? ORDER BY level, date, start_time`, rootTaskID)
	if err != nil {
		return nil, fmt.Errorf("listing child allocations of %s: %w", rootTaskID, err)
	}
	return scanChildAllocations(rows)
}

func (r *SQLiteChildAllocationRepo) ListByChild(ctx context.Context, childTaskID string) ([]domain.ChildAllocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+childAllocationColumns+` FROM child_allocations
		 WHERE child_task_id = ? ORDER BY date, start_time`, childTaskID)
	if err != nil {
		return nil, fmt.Errorf("listing child allocations for %s: %w", childTaskID, err)
	}
	return scanChildAllocations(rows)
}

func (r *SQLiteChildAllocationRepo) DeleteByRoot(ctx context.Context, rootTaskID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM child_allocations WHERE root_task_id = ?`, rootTaskID)
	if err != nil {
		return 0, fmt.Errorf("deleting child allocations of %s: %w", rootTaskID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return n, nil
}

func scanChildAllocations(rows *sql.Rows) ([]domain.ChildAllocation, error) {
	defer rows.Close()
	var out []domain.ChildAllocation
	for rows.Next() {
		var c domain.ChildAllocation
		var date, start, end string
		if err := rows.Scan(&c.ID, &c.RootTaskID, &c.ParentTaskID, &c.ChildTaskID, &date,
			&c.Minutes, &c.Level, &start, &end); err != nil {
			return nil, fmt.Errorf("scanning child allocation: %w", err)
		}
		var err error
		if c.Date, err = parseDateColumn(date, "date"); err != nil {
			return nil, err
		}
		if c.Start, err = parseClockColumn(start, "start_time"); err != nil {
			return nil, err
		}
		if c.End, err = parseClockColumn(end, "end_time"); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating child allocations: %w", err)
	}
	return out, nil
}
