package grouping

import (
	"sort"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/domain/tasktree"
)

// Bucket is a display group of top-level tasks.
type Bucket string

const (
	BucketOverdue   Bucket = "overdue"
	BucketToday     Bucket = "today"
	BucketFuture    Bucket = "future"
	BucketDone      Bucket = "done"
	BucketAbandoned Bucket = "abandoned"
)

// DisplayOrder is the order in which board sections are rendered.
var DisplayOrder = []Bucket{BucketOverdue, BucketToday, BucketFuture, BucketDone}

// Groups holds every top-level task of a set in exactly one list.
// Abandoned tasks are kept apart so the lists still cover the whole set.
type Groups struct {
	Overdue   []entities.Task `json:"overdue"`
	Today     []entities.Task `json:"today"`
	Future    []entities.Task `json:"future"`
	Done      []entities.Task `json:"done"`
	Abandoned []entities.Task `json:"abandoned"`
}

// Get returns the list of a bucket.
func (g *Groups) Get(b Bucket) []entities.Task {
	switch b {
	case BucketOverdue:
		return g.Overdue
	case BucketToday:
		return g.Today
	case BucketFuture:
		return g.Future
	case BucketDone:
		return g.Done
	case BucketAbandoned:
		return g.Abandoned
	default:
		return nil
	}
}

// Len is the number of tasks across all lists.
func (g *Groups) Len() int {
	return len(g.Overdue) + len(g.Today) + len(g.Future) + len(g.Done) + len(g.Abandoned)
}

// Classify places a task relative to today (YYYY-MM-DD). Only a single-day
// schedule counts: a ranged or unscheduled pending task is future.
func Classify(t *entities.Task, today string) Bucket {
	switch t.Status {
	case entities.TaskStatusDone:
		return BucketDone
	case entities.TaskStatusAbandoned:
		return BucketAbandoned
	}

	day, ok := t.ScheduledDay()
	switch {
	case ok && day < today:
		return BucketOverdue
	case ok && day == today:
		return BucketToday
	default:
		return BucketFuture
	}
}

// TopLevel returns the tasks that have no resolvable parent within tasks,
// in input order. Orphans count as top-level.
func TopLevel(tasks []entities.Task) []entities.Task {
	roots := tasktree.Build(tasks)
	out := make([]entities.Task, 0, len(roots))
	for _, n := range roots {
		out = append(out, n.Task)
	}
	return out
}

// Group buckets the top-level tasks of a set and sorts each bucket.
func Group(tasks []entities.Task, today string) Groups {
	var g Groups
	for _, t := range TopLevel(tasks) {
		t := t
		switch Classify(&t, today) {
		case BucketOverdue:
			g.Overdue = append(g.Overdue, t)
		case BucketToday:
			g.Today = append(g.Today, t)
		case BucketFuture:
			g.Future = append(g.Future, t)
		case BucketDone:
			g.Done = append(g.Done, t)
		case BucketAbandoned:
			g.Abandoned = append(g.Abandoned, t)
		}
	}

	Sort(g.Overdue)
	Sort(g.Today)
	Sort(g.Future)
	Sort(g.Done)
	Sort(g.Abandoned)
	return g
}

// Overdue lists the pending top-level tasks scheduled before today.
func Overdue(tasks []entities.Task, today string) []entities.Task {
	g := Group(tasks, today)
	return g.Overdue
}

func sortNodes(nodes []*tasktree.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return Compare(&nodes[i].Task, &nodes[j].Task) < 0
	})
}
