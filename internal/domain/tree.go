package domain

import (
	"errors"
	"fmt"
)

// ErrTaskCycle is returned when parent links form a loop.
var ErrTaskCycle = errors.New("task hierarchy contains a cycle")

// TaskTree is an arena of tasks indexed by id. Children keep the order in
// which tasks were supplied.
type TaskTree struct {
	tasks    map[string]*Task
	children map[string][]string
}

// NewTaskTree indexes tasks by id and parent. Tasks whose parent is not in
// the set are treated as roots.
func NewTaskTree(tasks []*Task) *TaskTree {
	tr := &TaskTree{
		tasks:    make(map[string]*Task, len(tasks)),
		children: make(map[string][]string),
	}
	for _, t := range tasks {
		tr.tasks[t.ID] = t
	}
	for _, t := range tasks {
		if t.ParentID == nil {
			continue
		}
		if _, ok := tr.tasks[*t.ParentID]; !ok {
			continue
		}
		tr.children[*t.ParentID] = append(tr.children[*t.ParentID], t.ID)
	}
	return tr
}

// Get returns the task with id, or nil.
func (tr *TaskTree) Get(id string) *Task {
	return tr.tasks[id]
}

// HasChildren reports whether id has at least one direct child.
func (tr *TaskTree) HasChildren(id string) bool {
	return len(tr.children[id]) > 0
}

// Children returns the direct children of id in arena order.
func (tr *TaskTree) Children(id string) []*Task {
	ids := tr.children[id]
	out := make([]*Task, 0, len(ids))
	for _, cid := range ids {
		out = append(out, tr.tasks[cid])
	}
	return out
}

// Descendants returns every task below id, depth-first in child order.
func (tr *TaskTree) Descendants(id string) ([]*Task, error) {
	var out []*Task
	visited := map[string]bool{id: true}
	var walk func(string) error
	walk = func(pid string) error {
		for _, cid := range tr.children[pid] {
			if visited[cid] {
				return fmt.Errorf("task %s: %w", cid, ErrTaskCycle)
			}
			visited[cid] = true
			out = append(out, tr.tasks[cid])
			if err := walk(cid); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(id); err != nil {
		return nil, err
	}
	return out, nil
}

// Leaves returns the leaf descendants of id. A task without children is
// its own single leaf.
func (tr *TaskTree) Leaves(id string) ([]*Task, error) {
	if !tr.HasChildren(id) {
		if t := tr.tasks[id]; t != nil {
			return []*Task{t}, nil
		}
		return nil, nil
	}
	desc, err := tr.Descendants(id)
	if err != nil {
		return nil, err
	}
	var leaves []*Task
	for _, t := range desc {
		if !tr.HasChildren(t.ID) {
			leaves = append(leaves, t)
		}
	}
	return leaves, nil
}

// Depth counts the ancestors of id inside the arena. Roots have depth 0.
func (tr *TaskTree) Depth(id string) (int, error) {
	depth := 0
	visited := map[string]bool{id: true}
	cur := tr.tasks[id]
	for cur != nil && cur.ParentID != nil {
		pid := *cur.ParentID
		parent, ok := tr.tasks[pid]
		if !ok {
			break
		}
		if visited[pid] {
			return 0, fmt.Errorf("task %s: %w", pid, ErrTaskCycle)
		}
		visited[pid] = true
		depth++
		cur = parent
	}
	return depth, nil
}

// Validate fails if any parent chain in the arena loops.
func (tr *TaskTree) Validate() error {
	for id := range tr.tasks {
		if _, err := tr.Depth(id); err != nil {
			return err
		}
	}
	return nil
}
