package grouping_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/domain/grouping"
	"github.com/taskmaster/planner/internal/domain/tasktree"
)

const today = "2024-01-02"

var epoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func intPtr(v int) *int { return &v }

type opt func(*entities.Task)

func newTask(id int, opts ...opt) entities.Task {
	t := entities.Task{
		ID:        id,
		Title:     "task",
		Status:    entities.TaskStatusPending,
		Quadrant:  entities.QuadrantImportantNotUrgent,
		CreatedAt: epoch,
	}
	for _, o := range opts {
		o(&t)
	}
	return t
}

func on(day string) opt { return func(t *entities.Task) { t.Date = strPtr(day) } }
func status(s entities.TaskStatus) opt { return func(t *entities.Task) { t.Status = s } }
func quad(q entities.Quadrant) opt { return func(t *entities.Task) { t.Quadrant = q } }
func order(o int) opt { return func(t *entities.Task) { t.Order = intPtr(o) } }
func parent(id int) opt { return func(t *entities.Task) { t.ParentID = intPtr(id) } }
func created(d time.Duration) opt { return func(t *entities.Task) { t.CreatedAt = epoch.Add(d) } }
func cats(c ...string) opt { return func(t *entities.Task) { t.Categories = c } }
func between(from, to string) opt {
	return func(t *entities.Task) {
		t.RangeStart = strPtr(from)
		t.RangeEnd = strPtr(to)
	}
}

func taskIDs(tasks []entities.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestGroupOverdueAndToday(t *testing.T) {
	t.Parallel()

	tasks := []entities.Task{
		newTask(1, on("2024-01-01"), quad(entities.QuadrantImportantUrgent)),
		newTask(2, on(today), quad(entities.QuadrantNeither)),
	}

	g := grouping.Group(tasks, today)
	assert.Equal(t, []int{1}, taskIDs(g.Overdue))
	assert.Equal(t, []int{2}, taskIDs(g.Today))
	assert.Empty(t, g.Future)
	assert.Empty(t, g.Done)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		task entities.Task
		want grouping.Bucket
	}{
		{"done wins over date", newTask(1, on("2023-12-01"), status(entities.TaskStatusDone)), grouping.BucketDone},
		{"abandoned", newTask(1, on(today), status(entities.TaskStatusAbandoned)), grouping.BucketAbandoned},
		{"past day", newTask(1, on("2023-12-31")), grouping.BucketOverdue},
		{"today", newTask(1, on(today)), grouping.BucketToday},
		{"tomorrow", newTask(1, on("2024-01-03")), grouping.BucketFuture},
		{"unscheduled", newTask(1), grouping.BucketFuture},
		{"ranged over today", newTask(1, between("2024-01-01", "2024-01-05")), grouping.BucketFuture},
		{"range wins over past date", newTask(1, on("2023-01-01"), between("2024-01-01", "2024-01-05")), grouping.BucketFuture},
		{"half range falls back to date", newTask(1, on("2023-01-01"), func(t *entities.Task) { t.RangeStart = strPtr("2024-01-01") }), grouping.BucketOverdue},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, grouping.Classify(&tt.task, today))
		})
	}
}

func TestGroupPartitionsTopLevel(t *testing.T) {
	t.Parallel()

	tasks := []entities.Task{
		newTask(1, on("2023-12-01")),
		newTask(2, on(today)),
		newTask(3),
		newTask(4, status(entities.TaskStatusDone)),
		newTask(5, status(entities.TaskStatusAbandoned)),
		newTask(6, parent(1), on("2023-12-01")),
		newTask(7, parent(999)),
	}

	g := grouping.Group(tasks, today)
	assert.Equal(t, 6, g.Len())

	seen := map[int]int{}
	for _, b := range []grouping.Bucket{
		grouping.BucketOverdue, grouping.BucketToday, grouping.BucketFuture,
		grouping.BucketDone, grouping.BucketAbandoned,
	} {
		for _, tk := range g.Get(b) {
			seen[tk.ID]++
		}
	}
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 7: 1}, seen)
	assert.Equal(t, []int{3, 7}, taskIDs(g.Future))
}

func TestCompareOrdering(t *testing.T) {
	t.Parallel()

	tasks := []entities.Task{
		newTask(1, status(entities.TaskStatusDone), quad(entities.QuadrantImportantUrgent)),
		newTask(2, quad(entities.QuadrantNeither)),
		newTask(3, quad(entities.QuadrantImportantUrgent)),
		newTask(4, quad(entities.QuadrantImportantUrgent), order(2)),
		newTask(5, quad(entities.QuadrantImportantUrgent), order(1)),
		newTask(6, quad(entities.QuadrantImportantUrgent), created(time.Hour)),
		newTask(7, quad(entities.QuadrantImportantUrgent)),
		newTask(8, quad("XX")),
		newTask(9, quad(entities.QuadrantUrgentNotImportant)),
	}

	grouping.Sort(tasks)
	assert.Equal(t, []int{5, 4, 6, 3, 7, 9, 2, 8, 1}, taskIDs(tasks))
}

func TestSortIsIdempotent(t *testing.T) {
	t.Parallel()

	tasks := []entities.Task{
		newTask(3, order(1)),
		newTask(1, status(entities.TaskStatusDone)),
		newTask(2, quad(entities.QuadrantImportantUrgent), created(time.Minute)),
		newTask(4, quad(entities.QuadrantImportantUrgent)),
	}

	grouping.Sort(tasks)
	once := taskIDs(tasks)
	grouping.Sort(tasks)
	assert.Equal(t, once, taskIDs(tasks))

	for i := range tasks {
		assert.Zero(t, grouping.Compare(&tasks[i], &tasks[i]))
	}
}

func TestFilterCategory(t *testing.T) {
	t.Parallel()

	tasks := []entities.Task{
		newTask(1, cats("work")),
		newTask(2, cats("life", "work")),
		newTask(3),
		newTask(4, cats("work"), status(entities.TaskStatusAbandoned)),
		newTask(5, cats()),
	}

	assert.Equal(t, []int{1, 2}, taskIDs(grouping.FilterCategory(tasks, "work")))
	assert.Equal(t, []int{3, 5}, taskIDs(grouping.FilterCategory(tasks, grouping.Uncategorized)))
	assert.Equal(t, []int{1, 2, 3, 5}, taskIDs(grouping.FilterCategory(tasks, "")))
}

func TestBoardPipeline(t *testing.T) {
	t.Parallel()

	tasks := []entities.Task{
		newTask(10, on(today), cats("work")),
		newTask(11, parent(10), order(1), status(entities.TaskStatusDone), cats("work")),
		newTask(12, parent(10), order(0), cats("work")),
		newTask(13, parent(10), order(2), cats("life")),
		newTask(20, on("2023-12-30"), cats("life")),
		newTask(21, parent(20), cats("work")),
		newTask(30, status(entities.TaskStatusAbandoned), cats("work")),
	}

	sections := grouping.Board(tasks, today, tasktree.NewIDSet(10), grouping.ByCategory("work"))
	require.Len(t, sections, 4)

	assert.Equal(t, grouping.BucketOverdue, sections[0].Bucket)
	assert.Zero(t, sections[0].Count)

	todaySection := sections[1]
	assert.Equal(t, grouping.BucketToday, todaySection.Bucket)
	assert.Equal(t, 1, todaySection.Count)
	require.Len(t, todaySection.Rows, 3)

	ids := []int{todaySection.Rows[0].Task.ID, todaySection.Rows[1].Task.ID, todaySection.Rows[2].Task.ID}
	assert.Equal(t, []int{10, 12, 11}, ids)
	assert.Equal(t, 1, todaySection.Rows[0].CompletedCount)
	assert.Equal(t, 2, todaySection.Rows[0].TotalCount)
	assert.Equal(t, 1, todaySection.Rows[1].Level)

	// 21 matches the filter but its parent does not, so it stays hidden
	for _, s := range sections {
		for _, r := range s.Rows {
			assert.NotContains(t, []int{20, 21, 30}, r.Task.ID)
		}
	}
}

func TestBoardWithoutFilterShowsOverdue(t *testing.T) {
	t.Parallel()

	tasks := []entities.Task{
		newTask(1, on("2023-12-30"), quad(entities.QuadrantNeither)),
		newTask(2, on("2023-12-31"), quad(entities.QuadrantImportantUrgent)),
		newTask(3, status(entities.TaskStatusDone)),
	}

	sections := grouping.Board(tasks, today, nil, nil)
	require.Len(t, sections, 4)
	assert.Equal(t, 2, sections[0].Count)
	assert.Equal(t, 2, sections[0].Rows[0].Task.ID)
	assert.Equal(t, 1, sections[3].Count)
}

func TestOverdue(t *testing.T) {
	t.Parallel()

	tasks := []entities.Task{
		newTask(1, on("2023-12-30")),
		newTask(2, on("2023-12-30"), status(entities.TaskStatusDone)),
		newTask(3, on(today)),
		newTask(4, parent(3), on("2023-12-30")),
	}

	assert.Equal(t, []int{1}, taskIDs(grouping.Overdue(tasks, today)))
}

func TestCalendarDays(t *testing.T) {
	t.Parallel()

	tasks := []entities.Task{
		newTask(1, on("2024-01-02")),
		newTask(2, between("2024-01-01", "2024-01-03")),
		newTask(3, on("2024-01-02"), func(t *entities.Task) { t.StartTime = strPtr("08:00") }),
		newTask(4, on("2024-01-09")),
	}

	days, err := grouping.CalendarDays(tasks, "2024-01-01", "2024-01-03")
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, "2024-01-01", days[0].Date)
	assert.Equal(t, []int{2}, taskIDs(days[0].Tasks))
	assert.Equal(t, []int{1, 2, 3}, taskIDs(days[1].Tasks))
	assert.Equal(t, []int{2}, taskIDs(days[2].Tasks))
}

func TestCalendarDaysRejectsBadSpan(t *testing.T) {
	t.Parallel()

	_, err := grouping.CalendarDays(nil, "2024-01-03", "2024-01-01")
	assert.ErrorIs(t, err, grouping.ErrCalendarSpan)

	_, err = grouping.CalendarDays(nil, "2024-01-01", "2024-06-01")
	assert.ErrorIs(t, err, grouping.ErrCalendarSpan)

	_, err = grouping.CalendarDays(nil, "yesterday", "2024-01-01")
	assert.ErrorIs(t, err, entities.ErrInvalidRange)
}

func TestWeekAndMonthRange(t *testing.T) {
	t.Parallel()

	// 2024-01-03 is a Wednesday
	from, to, err := grouping.WeekRange("2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", from)
	assert.Equal(t, "2024-01-06", to)

	from, to, err = grouping.MonthRange("2024-02-14")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-25", from)
	assert.Equal(t, "2024-03-07", to)
}
