package grouping

import (
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/domain/tasktree"
)

// Uncategorized selects tasks without any category.
const Uncategorized = "uncategorized"

// Filter decides whether a task takes part in a view.
type Filter func(t *entities.Task) bool

// Active keeps everything that is not abandoned.
func Active(t *entities.Task) bool {
	return t.Status != entities.TaskStatusAbandoned
}

// ByCategory keeps active tasks tagged with category. The Uncategorized
// name keeps active tasks with no categories, and an empty name keeps all
// active tasks.
func ByCategory(category string) Filter {
	switch category {
	case "":
		return Active
	case Uncategorized:
		return func(t *entities.Task) bool {
			return Active(t) && t.Categories.Empty()
		}
	default:
		return func(t *entities.Task) bool {
			return Active(t) && t.Categories.Has(category)
		}
	}
}

// FilterCategory returns the tasks of a category view, in input order.
func FilterCategory(tasks []entities.Task, category string) []entities.Task {
	keep := ByCategory(category)
	out := make([]entities.Task, 0, len(tasks))
	for i := range tasks {
		if keep(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// Section is one bucket of a board, already flattened for rendering.
type Section struct {
	Bucket Bucket         `json:"bucket"`
	Count  int            `json:"count"`
	Rows   []tasktree.Row `json:"rows"`
}

// Board runs the list pipeline over the full task set: build the tree,
// drop tasks rejected by keep, bucket the remaining top-level tasks against
// today, sort each bucket and flatten it with the expanded set.
//
// Whether a task is top-level is decided against the full set, so a
// subtask whose parent is filtered out is hidden rather than promoted.
// Sections come back in DisplayOrder; abandoned tasks never appear.
func Board(tasks []entities.Task, today string, expanded tasktree.IDSet, keep Filter) []Section {
	if keep == nil {
		keep = Active
	}

	roots := prune(tasktree.Build(tasks), keep)

	byBucket := make(map[Bucket][]*tasktree.Node, len(DisplayOrder))
	for _, n := range roots {
		b := Classify(&n.Task, today)
		byBucket[b] = append(byBucket[b], n)
	}

	sections := make([]Section, 0, len(DisplayOrder))
	for _, b := range DisplayOrder {
		nodes := byBucket[b]
		sortNodes(nodes)
		sections = append(sections, Section{
			Bucket: b,
			Count:  len(nodes),
			Rows:   tasktree.Flatten(nodes, expanded, 0),
		})
	}
	return sections
}

func prune(nodes []*tasktree.Node, keep Filter) []*tasktree.Node {
	out := make([]*tasktree.Node, 0, len(nodes))
	for _, n := range nodes {
		if !keep(&n.Task) {
			continue
		}
		n.Subtasks = prune(n.Subtasks, keep)
		out = append(out, n)
	}
	return out
}
