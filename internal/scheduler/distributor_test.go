package scheduler

import (
	"testing"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(id, parent string) *domain.Task {
	t := &domain.Task{ID: id, Name: id}
	if parent != "" {
		t.ParentID = ptr(parent)
	}
	return t
}

func threeDayPool() []PoolSlot {
	return []PoolSlot{
		{Date: monday, Start: domain.Clock(9, 0), Minutes: hours(4)},
		{Date: monday.AddDate(0, 0, 1), Start: domain.Clock(9, 0), Minutes: hours(4)},
		{Date: monday.AddDate(0, 0, 2), Start: domain.Clock(9, 0), Minutes: hours(2)},
	}
}

func TestDistribute_SequentialChildren(t *testing.T) {
	tree := domain.NewTaskTree([]*domain.Task{
		task("p", ""), task("c1", "p"), task("c2", "p"), task("c3", "p"),
	})
	res, err := Distribute(DistributionInput{
		RootTaskID:   "p",
		ParentTaskID: "p",
		Pool:         threeDayPool(),
		Tree:         tree,
		Demand:       map[string]int{"c1": hours(3), "c2": hours(5), "c3": hours(2)},
		Level:        1,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Shortfalls)

	byChild := map[string][]domain.ChildAllocation{}
	for _, a := range res.Allocations {
		assert.Equal(t, 1, a.Level)
		assert.Equal(t, "p", a.ParentTaskID)
		byChild[a.ChildTaskID] = append(byChild[a.ChildTaskID], a)
	}

	// c1 takes 3 of day 1's 4 hours.
	require.Len(t, byChild["c1"], 1)
	assert.Equal(t, monday, byChild["c1"][0].Date)
	assert.Equal(t, hours(3), byChild["c1"][0].Minutes)
	assert.Equal(t, "09:00", byChild["c1"][0].Start.String())
	assert.Equal(t, "12:00", byChild["c1"][0].End.String())

	// c2 starts with day 1's last hour, then all of day 2.
	require.Len(t, byChild["c2"], 2)
	assert.Equal(t, monday, byChild["c2"][0].Date)
	assert.Equal(t, hours(1), byChild["c2"][0].Minutes)
	assert.Equal(t, "12:00", byChild["c2"][0].Start.String())
	assert.Equal(t, monday.AddDate(0, 0, 1), byChild["c2"][1].Date)
	assert.Equal(t, hours(4), byChild["c2"][1].Minutes)

	// c3 takes the remainder on day 3.
	require.Len(t, byChild["c3"], 1)
	assert.Equal(t, monday.AddDate(0, 0, 2), byChild["c3"][0].Date)
	assert.Equal(t, hours(2), byChild["c3"][0].Minutes)
}

func TestDistribute_ShortfallIsReportedNotOverAllocated(t *testing.T) {
	tree := domain.NewTaskTree([]*domain.Task{
		task("p", ""), task("c1", "p"), task("c2", "p"), task("c3", "p"),
	})
	res, err := Distribute(DistributionInput{
		RootTaskID:   "p",
		ParentTaskID: "p",
		Pool:         threeDayPool(),
		Tree:         tree,
		Demand:       map[string]int{"c1": hours(6), "c2": hours(5), "c3": hours(2)},
	})
	require.NoError(t, err)

	total := 0
	for _, a := range res.Allocations {
		total += a.Minutes
	}
	assert.Equal(t, hours(10), total, "never more than the pool")

	require.Len(t, res.Shortfalls, 2)
	assert.Equal(t, "c2", res.Shortfalls[0].TaskID)
	assert.Equal(t, hours(4), res.Shortfalls[0].AssignedMinutes)
	assert.Equal(t, "c3", res.Shortfalls[1].TaskID)
	assert.Equal(t, 0, res.Shortfalls[1].AssignedMinutes)
}

func TestDistribute_RecursesIntoGrandchildren(t *testing.T) {
	tree := domain.NewTaskTree([]*domain.Task{
		task("p", ""),
		task("c1", "p"),
		task("g1", "c1"),
		task("g2", "c1"),
		task("c2", "p"),
	})
	res, err := Distribute(DistributionInput{
		RootTaskID:   "p",
		ParentTaskID: "p",
		Pool:         threeDayPool(),
		Tree:         tree,
		Demand:       map[string]int{"g1": hours(2), "g2": hours(3), "c2": hours(5)},
		Level:        1,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Shortfalls)

	levels := map[string]int{}
	parents := map[string]string{}
	minutes := map[string]int{}
	for _, a := range res.Allocations {
		levels[a.ChildTaskID] = a.Level
		parents[a.ChildTaskID] = a.ParentTaskID
		minutes[a.ChildTaskID] += a.Minutes
		assert.Equal(t, "p", a.RootTaskID)
	}
	assert.Equal(t, 1, levels["c1"])
	assert.Equal(t, 2, levels["g1"])
	assert.Equal(t, "c1", parents["g2"])
	assert.Equal(t, hours(5), minutes["c1"])
	assert.Equal(t, hours(2), minutes["g1"])
	assert.Equal(t, hours(3), minutes["g2"])
	assert.Equal(t, hours(5), minutes["c2"])

	// g2 continues where g1 stopped inside c1's time.
	for _, a := range res.Allocations {
		if a.ChildTaskID == "g2" && a.Date.Equal(monday) {
			assert.Equal(t, "11:00", a.Start.String())
		}
	}
}

func TestDistribute_StarvedSubtreeReportsGrandchildShortfalls(t *testing.T) {
	tree := domain.NewTaskTree([]*domain.Task{
		task("p", ""),
		task("c1", "p"),
		task("c2", "p"),
		task("g1", "c2"),
		task("g2", "c2"),
	})
	res, err := Distribute(DistributionInput{
		RootTaskID:   "p",
		ParentTaskID: "p",
		Pool:         threeDayPool(),
		Tree:         tree,
		Demand:       map[string]int{"c1": hours(10), "g1": hours(2), "g2": hours(1)},
		Level:        1,
	})
	require.NoError(t, err)

	for _, a := range res.Allocations {
		assert.Equal(t, "c1", a.ChildTaskID)
	}
	require.Len(t, res.Shortfalls, 3)
	assert.Equal(t, Shortfall{TaskID: "c2", Level: 1, DemandMinutes: hours(3)}, res.Shortfalls[0])
	assert.Equal(t, Shortfall{TaskID: "g1", Level: 2, DemandMinutes: hours(2)}, res.Shortfalls[1])
	assert.Equal(t, Shortfall{TaskID: "g2", Level: 2, DemandMinutes: hours(1)}, res.Shortfalls[2])
}

func TestDistribute_CycleFailsFast(t *testing.T) {
	tree := domain.NewTaskTree([]*domain.Task{task("a", "b"), task("b", "a")})
	_, err := Distribute(DistributionInput{RootTaskID: "a", ParentTaskID: "a", Tree: tree, Pool: threeDayPool()})
	assert.ErrorIs(t, err, domain.ErrTaskCycle)
}

func TestPoolFromSlices_SortsByDateThenStart(t *testing.T) {
	pool := PoolFromSlices([]Slice{
		{Date: monday.AddDate(0, 0, 1), Start: domain.Clock(9, 0), Minutes: 60},
		{Date: monday, Start: domain.Clock(13, 0), Minutes: 60},
		{Date: monday, Start: domain.Clock(9, 0), Minutes: 60},
	})
	require.Len(t, pool, 3)
	assert.Equal(t, domain.Clock(9, 0), pool[0].Start)
	assert.Equal(t, domain.Clock(13, 0), pool[1].Start)
	assert.Equal(t, monday.AddDate(0, 0, 1), pool[2].Date)
}
