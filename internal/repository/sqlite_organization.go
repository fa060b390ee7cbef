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

// SQLiteOrganizationRepo implements OrganizationRepo using a SQLite database.
type SQLiteOrganizationRepo struct {
	db db.DBTX
}

func NewSQLiteOrganizationRepo(conn db.DBTX) *SQLiteOrganizationRepo {
	return &SQLiteOrganizationRepo{db: conn}
}

func (r *SQLiteOrganizationRepo) Create(ctx context.Context, o *domain.Organization) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, created_at) VALUES (?, ?, ?)`,
		o.ID, o.Name, o.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting organization: %w", err)
	}
	return nil
}

func (r *SQLiteOrganizationRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	var o domain.Organization
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM organizations WHERE id = ?`, id).
		Scan(&o.ID, &o.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("organization %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning organization: %w", err)
	}
	if o.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &o, nil
}

// SQLiteUserRepo implements UserRepo. Lunch settings live on the users row
// but are read through CalendarRepo.
type SQLiteUserRepo struct {
	db db.DBTX
}

func NewSQLiteUserRepo(conn db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: conn}
}

func (r *SQLiteUserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (r *SQLiteUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, created_at FROM users ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*domain.User, error) {
	var u domain.User
	var createdAt string
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	var err error
	if u.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &u, nil
}

// SQLiteMembershipRepo implements MembershipRepo.
type SQLiteMembershipRepo struct {
	db db.DBTX
}

func NewSQLiteMembershipRepo(conn db.DBTX) *SQLiteMembershipRepo {
	return &SQLiteMembershipRepo{db: conn}
}

func (r *SQLiteMembershipRepo) Add(ctx context.Context, m *domain.Membership) error {
	role := m.Role
	if role == "" {
		role = "member"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (organization_id, user_id, role) VALUES (?, ?, ?)
		 ON CONFLICT(organization_id, user_id) DO UPDATE SET role = excluded.role`,
		m.OrganizationID, m.UserID, role)
	if err != nil {
		return fmt.Errorf("adding membership: %w", err)
	}
	return nil
}

func (r *SQLiteMembershipRepo) HasProjectAccess(ctx context.Context, userID, projectID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships m
		 JOIN projects p ON p.organization_id = m.organization_id
		 WHERE m.user_id = ? AND p.id = ?`, userID, projectID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking project access: %w", err)
	}
	return n > 0, nil
}
