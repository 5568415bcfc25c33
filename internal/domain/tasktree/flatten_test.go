package tasktree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/domain/tasktree"
)

func rowIDs(rows []tasktree.Row) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Task.ID)
	}
	return out
}

func sampleTasks() []entities.Task {
	return []entities.Task{
		task(10, nil, nil, entities.TaskStatusPending),
		task(11, intPtr(10), intPtr(1), entities.TaskStatusDone),
		task(12, intPtr(10), intPtr(0), entities.TaskStatusPending),
		task(20, nil, nil, entities.TaskStatusPending),
		task(21, intPtr(20), nil, entities.TaskStatusPending),
		task(30, nil, nil, entities.TaskStatusDone),
	}
}

func TestFlattenCollapsed(t *testing.T) {
	t.Parallel()

	forest := tasktree.Build(sampleTasks())
	rows := tasktree.Flatten(forest, nil, 0)

	assert.Equal(t, []int{10, 20, 30}, rowIDs(rows))

	require.Len(t, rows, 3)
	assert.True(t, rows[0].HasChildren)
	assert.False(t, rows[0].Expanded)
	assert.Equal(t, 1, rows[0].CompletedCount)
	assert.Equal(t, 2, rows[0].TotalCount)
	assert.False(t, rows[2].HasChildren)
	assert.Zero(t, rows[2].TotalCount)
}

func TestFlattenExpandedSubset(t *testing.T) {
	t.Parallel()

	forest := tasktree.Build(sampleTasks())
	rows := tasktree.Flatten(forest, tasktree.NewIDSet(10), 0)

	assert.Equal(t, []int{10, 12, 11, 20, 30}, rowIDs(rows))
	assert.Equal(t, 0, rows[0].Level)
	assert.Equal(t, 1, rows[1].Level)
	assert.Equal(t, 1, rows[2].Level)
	assert.True(t, rows[0].Expanded)
	assert.False(t, rows[3].Expanded)
}

func TestFlattenExpandedLeafHasNoChildren(t *testing.T) {
	t.Parallel()

	forest := tasktree.Build(sampleTasks())
	rows := tasktree.Flatten(forest, tasktree.NewIDSet(30), 2)

	require.Len(t, rows, 3)
	assert.True(t, rows[2].Expanded)
	assert.False(t, rows[2].HasChildren)
	assert.Equal(t, 2, rows[2].Level)
}

func TestFlattenFullyExpandedIsPermutation(t *testing.T) {
	t.Parallel()

	tasks := sampleTasks()
	tasks = append(tasks, task(40, intPtr(999), nil, entities.TaskStatusPending))

	forest := tasktree.Build(tasks)
	rows := tasktree.Flatten(forest, tasktree.ExpandAll(forest), 0)

	got := rowIDs(rows)
	want := make([]int, 0, len(tasks))
	for _, tk := range tasks {
		want = append(want, tk.ID)
	}
	assert.ElementsMatch(t, want, got)

	// every child follows its parent, siblings ascending by order
	position := map[int]int{}
	for i, id := range got {
		position[id] = i
	}
	for _, tk := range tasks {
		if tk.ParentID == nil {
			continue
		}
		if parentPos, ok := position[*tk.ParentID]; ok {
			assert.Greater(t, position[tk.ID], parentPos)
		}
	}
	assert.Less(t, position[12], position[11])
}

func TestIDSetToggle(t *testing.T) {
	t.Parallel()

	s := tasktree.NewIDSet()
	assert.True(t, s.Toggle(5))
	assert.True(t, s.Has(5))
	assert.False(t, s.Toggle(5))
	assert.False(t, s.Has(5))

	s.Add(1)
	s.Add(2)
	s.Remove(1)
	assert.Equal(t, []int{2}, s.IDs())
}
