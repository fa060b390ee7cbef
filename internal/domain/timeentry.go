package domain

import "time"

// TimeEntry records hours actually worked on a task.
type TimeEntry struct {
	ID        string
	TaskID    string
	UserID    string
	Date      time.Time
	Hours     float64
	Note      string
	CreatedAt time.Time
}
