package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
)

// SQLiteCalendarRepo implements CalendarRepo over users (lunch) and
// user_calendars (one row per weekday).
type SQLiteCalendarRepo struct {
	db db.DBTX
}

func NewSQLiteCalendarRepo(conn db.DBTX) *SQLiteCalendarRepo {
	return &SQLiteCalendarRepo{db: conn}
}

func (r *SQLiteCalendarRepo) Get(ctx context.Context, userID string) (*domain.UserCalendar, error) {
	cal := &domain.UserCalendar{UserID: userID}

	var lunchStart string
	err := r.db.QueryRowContext(ctx,
		`SELECT lunch_start, lunch_minutes FROM users WHERE id = ?`, userID).
		Scan(&lunchStart, &cal.LunchMinutes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("calendar of user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("loading lunch settings: %w", err)
	}
	if cal.LunchStart, err = parseClockColumn(lunchStart, "lunch_start"); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT weekday, work_hours, work_start, hobby_hours, hobby_start
		 FROM user_calendars WHERE user_id = ? ORDER BY weekday`, userID)
	if err != nil {
		return nil, fmt.Errorf("loading calendar rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var wd int
		var d domain.DayCapacity
		var workStart, hobbyStart string
		if err := rows.Scan(&wd, &d.WorkHours, &workStart, &d.HobbyHours, &hobbyStart); err != nil {
			return nil, fmt.Errorf("scanning calendar row: %w", err)
		}
		if d.WorkStart, err = parseClockColumn(workStart, "work_start"); err != nil {
			return nil, err
		}
		if d.HobbyStart, err = parseClockColumn(hobbyStart, "hobby_start"); err != nil {
			return nil, err
		}
		cal.Days[wd] = d
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating calendar rows: %w", err)
	}
	return cal, nil
}

func (r *SQLiteCalendarRepo) Upsert(ctx context.Context, c *domain.UserCalendar) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid calendar for user %s: %w", c.UserID, err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET lunch_start = ?, lunch_minutes = ? WHERE id = ?`,
		c.LunchStart.String(), c.LunchMinutes, c.UserID)
	if err != nil {
		return fmt.Errorf("updating lunch settings: %w", err)
	}
	if err := requireAffected(res, "user", c.UserID); err != nil {
		return err
	}

	for wd, d := range c.Days {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO user_calendars (user_id, weekday, work_hours, work_start, hobby_hours, hobby_start)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(user_id, weekday) DO UPDATE SET
			   work_hours = excluded.work_hours, work_start = excluded.work_start,
			   hobby_hours = excluded.hobby_hours, hobby_start = excluded.hobby_start`,
			c.UserID, wd, d.WorkHours, d.WorkStart.String(), d.HobbyHours, d.HobbyStart.String())
		if err != nil {
			return fmt.Errorf("upserting calendar weekday %d: %w", wd, err)
		}
	}
	return nil
}
