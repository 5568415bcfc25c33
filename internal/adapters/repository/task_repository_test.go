package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/adapters/repository"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/config"
	"github.com/taskmaster/planner/internal/infrastructure/database"
	"github.com/taskmaster/planner/internal/ports"
)

func newRepo(t *testing.T) *repository.TaskRepository {
	t.Helper()

	db, err := database.New(config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.MigrateUp()
	require.NoError(t, err)

	return repository.NewTaskRepository(db)
}

func str(s string) *string { return &s }

func intp(i int) *int { return &i }

func create(t *testing.T, repo *repository.TaskRepository, task entities.Task) entities.Task {
	t.Helper()
	task.ApplyDefaults()
	require.NoError(t, repo.Create(context.Background(), &task))
	require.NotZero(t, task.ID)
	return task
}

func ids(tasks []entities.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	due := time.Date(2024, 1, 2, 15, 59, 59, 0, time.UTC)
	created := create(t, repo, entities.Task{
		Title:       "write report",
		Description: str("quarterly"),
		Date:        str("2024-01-02"),
		StartTime:   str("09:30"),
		AllDay:      true,
		Quadrant:    entities.QuadrantImportantUrgent,
		Categories:  entities.Categories{"work", "study"},
		DueAt:       &due,
		Order:       intp(3),
	})
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "write report", got.Title)
	assert.Equal(t, "quarterly", *got.Description)
	assert.Equal(t, "2024-01-02", *got.Date)
	assert.Equal(t, "09:30", *got.StartTime)
	assert.True(t, got.AllDay)
	assert.Equal(t, entities.TaskStatusPending, got.Status)
	assert.Equal(t, entities.QuadrantImportantUrgent, got.Quadrant)
	assert.Equal(t, entities.Categories{"work", "study"}, got.Categories)
	require.NotNil(t, got.DueAt)
	assert.True(t, due.Equal(*got.DueAt))
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.ParentID)
	assert.Equal(t, 3, *got.Order)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestGetMissing(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestUpdateReplacesColumnsAndCategories(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	task := create(t, repo, entities.Task{
		Title:      "old",
		Date:       str("2024-01-02"),
		Categories: entities.Categories{"life", "health"},
	})

	task.Title = "new"
	task.Date = nil
	task.RangeStart = str("2024-01-05")
	task.RangeEnd = str("2024-01-07")
	task.Categories = entities.Categories{"work"}
	task.MarkDone(time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Update(ctx, &task))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Nil(t, got.Date)
	assert.Equal(t, "2024-01-05", *got.RangeStart)
	assert.Equal(t, entities.TaskStatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, entities.Categories{"work"}, got.Categories)

	missing := entities.Task{ID: 999, Title: "ghost"}
	missing.ApplyDefaults()
	assert.ErrorIs(t, repo.Update(ctx, &missing), entities.ErrTaskNotFound)
}

func TestDeleteRemovesSubtree(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	root := create(t, repo, entities.Task{Title: "root", Categories: entities.Categories{"work"}})
	child := create(t, repo, entities.Task{Title: "child", ParentID: intp(root.ID)})
	grandchild := create(t, repo, entities.Task{Title: "grandchild", ParentID: intp(child.ID)})
	other := create(t, repo, entities.Task{Title: "other"})

	require.NoError(t, repo.Delete(ctx, root.ID))

	for _, id := range []int{root.ID, child.ID, grandchild.ID} {
		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, entities.ErrTaskNotFound)
	}

	remaining, err := repo.List(ctx, ports.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []int{other.ID}, ids(remaining))

	assert.ErrorIs(t, repo.Delete(ctx, root.ID), entities.ErrTaskNotFound)
}

func TestDeleteSurvivesCycles(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	a := create(t, repo, entities.Task{Title: "a"})
	b := create(t, repo, entities.Task{Title: "b", ParentID: intp(a.ID)})
	a.ParentID = intp(b.ID)
	require.NoError(t, repo.Update(ctx, &a))

	require.NoError(t, repo.Delete(ctx, a.ID))

	remaining, err := repo.List(ctx, ports.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestListFiltersAndOrder(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	late := create(t, repo, entities.Task{Title: "late", Date: str("2024-01-03"), StartTime: str("18:00")})
	early := create(t, repo, entities.Task{Title: "early", Date: str("2024-01-03"), StartTime: str("08:00")})
	before := create(t, repo, entities.Task{Title: "before", Date: str("2024-01-01")})
	ranged := create(t, repo, entities.Task{Title: "ranged", RangeStart: str("2023-12-30"), RangeEnd: str("2024-01-02")})
	unscheduled := create(t, repo, entities.Task{Title: "inbox"})
	done := create(t, repo, entities.Task{Title: "done", Date: str("2024-01-02"), Status: entities.TaskStatusDone})

	all, err := repo.List(ctx, ports.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []int{before.ID, done.ID, early.ID, late.ID, ranged.ID, unscheduled.ID}, ids(all))

	window, err := repo.List(ctx, ports.TaskFilter{From: str("2024-01-02"), To: str("2024-01-03")})
	require.NoError(t, err)
	assert.Equal(t, []int{done.ID, early.ID, late.ID, ranged.ID}, ids(window))

	pending := entities.TaskStatusPending
	pendingWindow, err := repo.List(ctx, ports.TaskFilter{From: str("2024-01-02"), To: str("2024-01-03"), Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, []int{early.ID, late.ID, ranged.ID}, ids(pendingWindow))

	halfWindow, err := repo.List(ctx, ports.TaskFilter{From: str("2024-01-02")})
	require.NoError(t, err)
	assert.Len(t, halfWindow, 6)
}

func TestCountChildren(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	parent := create(t, repo, entities.Task{Title: "parent"})
	create(t, repo, entities.Task{Title: "a", ParentID: intp(parent.ID)})
	create(t, repo, entities.Task{Title: "b", ParentID: intp(parent.ID)})

	n, err := repo.CountChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountChildren(ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRescheduleMovesPendingOnly(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()

	stale := create(t, repo, entities.Task{Title: "stale", Date: str("2023-12-30")})
	finished := create(t, repo, entities.Task{Title: "finished", Date: str("2023-12-30"), Status: entities.TaskStatusDone})

	due := time.Date(2024, 1, 2, 23, 59, 59, 999e6, time.UTC)
	moved, err := repo.Reschedule(ctx, []int{stale.ID, finished.ID, 404}, "2024-01-02", due)
	require.NoError(t, err)
	assert.Equal(t, []int{stale.ID}, moved)

	got, err := repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", *got.Date)
	require.NotNil(t, got.DueAt)
	assert.True(t, due.Equal(*got.DueAt))

	untouched, err := repo.GetByID(ctx, finished.ID)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-30", *untouched.Date)

	moved, err = repo.Reschedule(ctx, nil, "2024-01-02", due)
	require.NoError(t, err)
	assert.Empty(t, moved)
}
