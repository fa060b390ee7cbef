package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// PoolSlot is one contiguous interval of a parent's schedule that children
// consume in order.
type PoolSlot struct {
	Date    time.Time
	Start   domain.ClockTime
	Minutes int
}

// PoolFromSlices turns a parent's computed schedule into a sorted pool.
func PoolFromSlices(slices []Slice) []PoolSlot {
	pool := make([]PoolSlot, 0, len(slices))
	for _, s := range slices {
		pool = append(pool, PoolSlot{Date: domain.DateOf(s.Date), Start: s.Start, Minutes: s.Minutes})
	}
	sortPool(pool)
	return pool
}

// PoolFromAllocations builds a pool from persisted allocation rows.
func PoolFromAllocations(allocs []domain.Allocation) []PoolSlot {
	pool := make([]PoolSlot, 0, len(allocs))
	for _, a := range allocs {
		pool = append(pool, PoolSlot{Date: domain.DateOf(a.Date), Start: a.Start, Minutes: a.Minutes})
	}
	sortPool(pool)
	return pool
}

func poolFromChildAllocations(allocs []domain.ChildAllocation) []PoolSlot {
	pool := make([]PoolSlot, 0, len(allocs))
	for _, a := range allocs {
		pool = append(pool, PoolSlot{Date: a.Date, Start: a.Start, Minutes: a.Minutes})
	}
	sortPool(pool)
	return pool
}

func sortPool(pool []PoolSlot) {
	sort.SliceStable(pool, func(i, j int) bool {
		if !pool[i].Date.Equal(pool[j].Date) {
			return pool[i].Date.Before(pool[j].Date)
		}
		return pool[i].Start < pool[j].Start
	})
}

// Shortfall reports a child whose demand the pool could not cover.
type Shortfall struct {
	TaskID          string
	Level           int
	DemandMinutes   int
	AssignedMinutes int
}

type DistributionInput struct {
	RootTaskID   string
	ParentTaskID string
	Pool         []PoolSlot
	Tree         *domain.TaskTree
	// Demand holds the minutes each leaf still needs. A non-leaf child
	// demands the sum of its leaves.
	Demand map[string]int
	// Level of the direct children; 1 below the planned task.
	Level int
}

type DistributionResult struct {
	Allocations []domain.ChildAllocation
	Shortfalls  []Shortfall
}

// Distribute hands the parent's pool to its direct children strictly in
// child order: child N starts only after child N-1 is satisfied or the pool
// runs dry. Children with their own children are recursed into with their
// freshly computed records as the pool, one level deeper; an empty pool
// still reports every grandchild as a shortfall.
func Distribute(in DistributionInput) (DistributionResult, error) {
	if in.Level <= 0 {
		in.Level = 1
	}
	if _, err := in.Tree.Descendants(in.ParentTaskID); err != nil {
		return DistributionResult{}, fmt.Errorf("distributing %s: %w", in.ParentTaskID, err)
	}

	pool := make([]PoolSlot, len(in.Pool))
	copy(pool, in.Pool)
	sortPool(pool)

	var res DistributionResult
	idx := 0
	for _, child := range in.Tree.Children(in.ParentTaskID) {
		demand, err := AggregateDemand(in.Tree, in.Demand, child.ID)
		if err != nil {
			return DistributionResult{}, err
		}
		need := demand
		var own []domain.ChildAllocation
		for need > 0 && idx < len(pool) {
			slot := &pool[idx]
			if slot.Minutes <= 0 {
				idx++
				continue
			}
			take := min(need, slot.Minutes)
			own = append(own, domain.ChildAllocation{
				RootTaskID:   in.RootTaskID,
				ParentTaskID: in.ParentTaskID,
				ChildTaskID:  child.ID,
				Date:         slot.Date,
				Minutes:      take,
				Level:        in.Level,
				Start:        slot.Start,
				End:          slot.Start.Add(take),
			})
			slot.Start = slot.Start.Add(take)
			slot.Minutes -= take
			need -= take
		}
		if need > 0 {
			res.Shortfalls = append(res.Shortfalls, Shortfall{
				TaskID:          child.ID,
				Level:           in.Level,
				DemandMinutes:   demand,
				AssignedMinutes: demand - need,
			})
		}
		res.Allocations = append(res.Allocations, own...)

		if in.Tree.HasChildren(child.ID) {
			sub, err := Distribute(DistributionInput{
				RootTaskID:   in.RootTaskID,
				ParentTaskID: child.ID,
				Pool:         poolFromChildAllocations(own),
				Tree:         in.Tree,
				Demand:       in.Demand,
				Level:        in.Level + 1,
			})
			if err != nil {
				return DistributionResult{}, err
			}
			res.Allocations = append(res.Allocations, sub.Allocations...)
			res.Shortfalls = append(res.Shortfalls, sub.Shortfalls...)
		}
	}
	return res, nil
}

// AggregateDemand sums the leaf demand beneath a task; a leaf demands its own
// entry.
func AggregateDemand(tree *domain.TaskTree, demand map[string]int, id string) (int, error) {
	leaves, err := tree.Leaves(id)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, l := range leaves {
		total += demand[l.ID]
	}
	return total, nil
}
