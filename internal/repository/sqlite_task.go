package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
)

// taskColumns is the canonical SELECT column list for tasks.
const taskColumns = `id, project_id, parent_id, depends_on_task_id, assignee_id, name,
		estimated_hours, planned_start, planned_end, order_index, created_at, updated_at`

// taskOrder sorts siblings the way distribution consumes them.
const taskOrder = `ORDER BY order_index, created_at, rowid`

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.ProjectID,
		nullableStringValue(t.ParentID),
		nullableStringValue(t.DependsOnTaskID),
		nullableStringValue(t.AssigneeID),
		t.Name,
		nullableFloatValue(t.EstimatedHours),
		nullableTimeToString(t.PlannedStart, dateLayout),
		nullableTimeToString(t.PlannedEnd, dateLayout),
		t.OrderIndex,
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return t, nil
}

func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? `+taskOrder, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return scanTasks(rows)
}

func (r *SQLiteTaskRepo) ListSubtree(ctx context.Context, rootID string) ([]*domain.Task, error) {
	// UNION (not UNION ALL) stops the recursion on malformed parent loops;
	// the tree arena reports those as cycles.
	query := `WITH RECURSIVE subtree(id) AS (
			SELECT id FROM tasks WHERE id = ?
			UNION
			SELECT t.id FROM tasks t JOIN subtree s ON t.parent_id = s.id
		)
		SELECT ` + taskColumns + ` FROM tasks WHERE id IN (SELECT id FROM subtree) ` + taskOrder
	rows, err := r.db.QueryContext(ctx, query, rootID)
	if err != nil {
		return nil, fmt.Errorf("listing subtree of %s: %w", rootID, err)
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("task %s: %w", rootID, ErrNotFound)
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET project_id = ?, parent_id = ?, depends_on_task_id = ?, assignee_id = ?,
		name = ?, estimated_hours = ?, planned_start = ?, planned_end = ?, order_index = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.ProjectID,
		nullableStringValue(t.ParentID),
		nullableStringValue(t.DependsOnTaskID),
		nullableStringValue(t.AssigneeID),
		t.Name,
		nullableFloatValue(t.EstimatedHours),
		nullableTimeToString(t.PlannedStart, dateLayout),
		nullableTimeToString(t.PlannedEnd, dateLayout),
		t.OrderIndex,
		nowUTC(),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return requireAffected(res, "task", t.ID)
}

func (r *SQLiteTaskRepo) SetPlannedDates(ctx context.Context, id string, start, end *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET planned_start = ?, planned_end = ?, updated_at = ? WHERE id = ?`,
		nullableTimeToString(start, dateLayout),
		nullableTimeToString(end, dateLayout),
		nowUTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("setting planned dates: %w", err)
	}
	return requireAffected(res, "task", id)
}

func requireAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}

func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	defer rows.Close()
	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(s rowScanner) (*domain.Task, error) {
	var t domain.Task
	var parentID, dependsOn, assignee sql.NullString
	var estimate sql.NullFloat64
	var plannedStart, plannedEnd sql.NullString
	var createdAt, updatedAt string
	err := s.Scan(
		&t.ID, &t.ProjectID, &parentID, &dependsOn, &assignee, &t.Name,
		&estimate, &plannedStart, &plannedEnd, &t.OrderIndex, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	t.ParentID = nullableString(parentID)
	t.DependsOnTaskID = nullableString(dependsOn)
	t.AssigneeID = nullableString(assignee)
	t.EstimatedHours = nullableFloat(estimate)
	t.PlannedStart = parseNullableTime(plannedStart, dateLayout)
	t.PlannedEnd = parseNullableTime(plannedEnd, dateLayout)
	if t.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &t, nil
}
