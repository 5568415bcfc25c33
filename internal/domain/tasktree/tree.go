// Package tasktree nests a flat task list into a parent/child forest and
// flattens it back into render order.
package tasktree

import (
	"sort"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// Node is a task together with its direct children.
type Node struct {
	Task     entities.Task `json:"task"`
	Subtasks []*Node       `json:"subtasks"`
}

// Build turns a flat list into a forest. A task whose parent is absent from
// the input, refers to itself, or would close a cycle is kept at the top
// level. Top-level order follows the input; children are sorted by order.
// The input is never mutated: nodes hold deep copies.
func Build(tasks []entities.Task) []*Node {
	index := make(map[int]*Node, len(tasks))
	nodes := make([]*Node, 0, len(tasks))
	for i := range tasks {
		n := &Node{Task: tasks[i].Clone(), Subtasks: []*Node{}}
		index[n.Task.ID] = n
		nodes = append(nodes, n)
	}

	roots := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if parent := resolveParent(index, n); parent != nil {
			parent.Subtasks = append(parent.Subtasks, n)
			continue
		}
		roots = append(roots, n)
	}

	for _, r := range roots {
		sortSubtasks(r)
	}
	return roots
}

// resolveParent returns the node n should hang under, or nil when n is
// top-level.
func resolveParent(index map[int]*Node, n *Node) *Node {
	if !n.Task.HasParent() {
		return nil
	}
	parent, ok := index[*n.Task.ParentID]
	if !ok || parent == n {
		return nil
	}

	// Walk up the declared ancestors; meeting n again means a cycle.
	for p, steps := parent, 0; p != nil && steps <= len(index); steps++ {
		if p == n {
			return nil
		}
		if !p.Task.HasParent() {
			break
		}
		p = index[*p.Task.ParentID]
	}
	return parent
}

func sortSubtasks(n *Node) {
	if len(n.Subtasks) == 0 {
		return
	}
	sort.SliceStable(n.Subtasks, func(i, j int) bool {
		return n.Subtasks[i].Task.OrderKey() < n.Subtasks[j].Task.OrderKey()
	})
	for _, c := range n.Subtasks {
		sortSubtasks(c)
	}
}

// Progress counts the direct children of n and how many of them are done.
// Grandchildren are not counted.
func Progress(n *Node) (completed, total int) {
	if n == nil {
		return 0, 0
	}
	for _, c := range n.Subtasks {
		if c.Task.IsDone() {
			completed++
		}
	}
	return completed, len(n.Subtasks)
}

// Find returns the node with the given id anywhere in the forest.
func Find(forest []*Node, id int) *Node {
	for _, n := range forest {
		if n.Task.ID == id {
			return n
		}
		if found := Find(n.Subtasks, id); found != nil {
			return found
		}
	}
	return nil
}
