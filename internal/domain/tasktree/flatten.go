package tasktree

import "github.com/taskmaster/planner/internal/domain/entities"

// IDSet is the set of task ids whose children are shown.
type IDSet map[int]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id int) {
	s[id] = struct{}{}
}

func (s IDSet) Remove(id int) {
	delete(s, id)
}

// Toggle flips membership of id and reports whether it is now present.
func (s IDSet) Toggle(id int) bool {
	if s.Has(id) {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

// IDs returns the members in no particular order.
func (s IDSet) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// Row is one line of the rendered list.
type Row struct {
	Task           entities.Task `json:"task"`
	Level          int           `json:"level"`
	HasChildren    bool          `json:"hasChildren"`
	Expanded       bool          `json:"expanded"`
	CompletedCount int           `json:"completedCount"`
	TotalCount     int           `json:"totalCount"`
}

// Flatten walks the forest depth-first, pre-order. Children of a node are
// emitted right after it, one level deeper, only when the node is in
// expanded. No re-sorting happens here.
func Flatten(forest []*Node, expanded IDSet, level int) []Row {
	rows := make([]Row, 0, len(forest))
	for _, n := range forest {
		completed, total := Progress(n)
		isExpanded := expanded.Has(n.Task.ID)
		hasChildren := len(n.Subtasks) > 0

		rows = append(rows, Row{
			Task:           n.Task,
			Level:          level,
			HasChildren:    hasChildren,
			Expanded:       isExpanded,
			CompletedCount: completed,
			TotalCount:     total,
		})

		if isExpanded && hasChildren {
			rows = append(rows, Flatten(n.Subtasks, expanded, level+1)...)
		}
	}
	return rows
}

// ExpandAll returns a set holding every id in the forest.
func ExpandAll(forest []*Node) IDSet {
	s := IDSet{}
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			s.Add(n.Task.ID)
			walk(n.Subtasks)
		}
	}
	walk(forest)
	return s
}
