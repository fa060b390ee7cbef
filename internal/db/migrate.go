package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillChildRoots(db); err != nil {
		return fmt.Errorf("backfilling child allocation roots: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL DEFAULT '',
		lunch_start   TEXT NOT NULL DEFAULT '12:00',
		lunch_minutes INTEGER NOT NULL DEFAULT 60 CHECK(lunch_minutes >= 0),
		created_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS memberships (
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role            TEXT NOT NULL DEFAULT 'member',
		PRIMARY KEY (organization_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id              TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
		name            TEXT NOT NULL,
		is_hobby        INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_org ON projects(organization_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id                 TEXT PRIMARY KEY,
		project_id         TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		parent_id          TEXT REFERENCES tasks(id) ON DELETE CASCADE,
		depends_on_task_id TEXT REFERENCES tasks(id) ON DELETE SET NULL,
		assignee_id        TEXT REFERENCES users(id) ON DELETE SET NULL,
		name               TEXT NOT NULL,
		estimated_hours    REAL CHECK(estimated_hours IS NULL OR estimated_hours >= 0),
		planned_start      TEXT,
		planned_end        TEXT,
		order_index        INTEGER NOT NULL DEFAULT 0,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id)`,

	`CREATE TABLE IF NOT EXISTS user_calendars (
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		weekday     INTEGER NOT NULL CHECK(weekday BETWEEN 0 AND 6),
		work_hours  REAL NOT NULL DEFAULT 0 CHECK(work_hours BETWEEN 0 AND 24),
		work_start  TEXT NOT NULL DEFAULT '09:00',
		hobby_hours REAL NOT NULL DEFAULT 0 CHECK(hobby_hours BETWEEN 0 AND 24),
		hobby_start TEXT NOT NULL DEFAULT '19:00',
		PRIMARY KEY (user_id, weekday)
	)`,

	`CREATE TABLE IF NOT EXISTS time_entries (
		id         TEXT PRIMARY KEY,
		task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date       TEXT NOT NULL,
		hours      REAL NOT NULL CHECK(hours > 0),
		note       TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_time_entries_task ON time_entries(task_id)`,

	`CREATE TABLE IF NOT EXISTS allocations (
		id         TEXT PRIMARY KEY,
		task_id    TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date       TEXT NOT NULL,
		kind       TEXT NOT NULL CHECK(kind IN ('work','hobby')),
		minutes    INTEGER NOT NULL CHECK(minutes > 0),
		start_time TEXT NOT NULL,
		end_time   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_allocations_task ON allocations(task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_allocations_user_date ON allocations(user_id, kind, date)`,

	`CREATE TABLE IF NOT EXISTS child_allocations (
		id             TEXT PRIMARY KEY,
		parent_task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		child_task_id  TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		date           TEXT NOT NULL,
		minutes        INTEGER NOT NULL CHECK(minutes > 0),
		level          INTEGER NOT NULL CHECK(level >= 1),
		start_time     TEXT NOT NULL,
		end_time       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_child_allocations_parent ON child_allocations(parent_task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_child_allocations_child ON child_allocations(child_task_id)`,

	// Child allocations remember the planned task so unplanning removes
	// every level in one statement.
	`ALTER TABLE child_allocations ADD COLUMN root_task_id TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS idx_child_allocations_root ON child_allocations(root_task_id)`,
}

// migrateBackfillChildRoots fills root_task_id on child allocations written
// before the column existed. Level-1 rows belong to their parent; deeper rows
// inherit the root of the row that allocated their parent. Idempotent.
func migrateBackfillChildRoots(db *sql.DB) error {
	ctx := context.Background()

	if _, err := db.ExecContext(ctx,
		`UPDATE child_allocations SET root_task_id = parent_task_id
		 WHERE root_task_id = '' AND level = 1`); err != nil {
		return fmt.Errorf("backfilling level-1 roots: %w", err)
	}

	var maxLevel int
	if err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(level), 0) FROM child_allocations WHERE root_task_id = ''`).Scan(&maxLevel); err != nil {
		return fmt.Errorf("checking pending roots: %w", err)
	}

	for level := 2; level <= maxLevel; level++ {
		if _, err := db.ExecContext(ctx,
			`UPDATE child_allocations SET root_task_id = (
				SELECT up.root_task_id FROM child_allocations up
				WHERE up.child_task_id = child_allocations.parent_task_id
				  AND up.level = child_allocations.level - 1
				  AND up.root_task_id != ''
				LIMIT 1
			)
			WHERE root_task_id = '' AND level = ? AND EXISTS (
				SELECT 1 FROM child_allocations up
				WHERE up.child_task_id = child_allocations.parent_task_id
				  AND up.level = child_allocations.level - 1
				  AND up.root_task_id != ''
			)`, level); err != nil {
			return fmt.Errorf("backfilling level-%d roots: %w", level, err)
		}
	}
	return nil
}
