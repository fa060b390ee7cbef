package domain

import "time"

// Allocation is one scheduled hour-slice of a task for a user on a date.
type Allocation struct {
	ID      string
	TaskID  string
	UserID  string
	Date    time.Time
	Kind    Kind
	Minutes int
	Start   ClockTime
	End     ClockTime
}

// Hours returns the slice length in decimal hours.
func (a Allocation) Hours() float64 { return MinutesToHours(a.Minutes) }

// ChildAllocation attributes part of a parent's scheduled day to one
// descendant. RootTaskID is the task whose planning produced the record.
type ChildAllocation struct {
	ID           string
	RootTaskID   string
	ParentTaskID string
	ChildTaskID  string
	Date         time.Time
	Minutes      int
	Level        int
	Start        ClockTime
	End          ClockTime
}

func (c ChildAllocation) Hours() float64 { return MinutesToHours(c.Minutes) }

// ExistingAllocation is the read model used for conflict detection and to
// seed the latest end time of a day.
type ExistingAllocation struct {
	TaskID   string
	TaskName string
	Date     time.Time
	Minutes  int
	Start    ClockTime
	End      ClockTime
}

// AvailabilityDay is the computed residual capacity of one user, date and kind.
// It is never persisted.
type AvailabilityDay struct {
	Date             time.Time
	AvailableMinutes int
	MaxMinutes       int
	Start            ClockTime
	WindowEnd        ClockTime
	LatestEnd        *ClockTime
}

func (d AvailabilityDay) AvailableHours() float64 { return MinutesToHours(d.AvailableMinutes) }
func (d AvailabilityDay) MaxHours() float64       { return MinutesToHours(d.MaxMinutes) }
