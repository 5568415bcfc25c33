package ports

import (
	"context"
	"errors"
	"time"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	// Create inserts the task and fills its ID and timestamps.
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id int) (*entities.Task, error)
	// Update overwrites every mutable column of an existing task.
	Update(ctx context.Context, task *entities.Task) error
	// Delete removes the task and all of its descendants.
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter TaskFilter) ([]entities.Task, error)
	CountChildren(ctx context.Context, parentID int) (int, error)
	// Reschedule moves the pending tasks among ids to a single day and
	// deadline in one transaction, clearing any range. It returns the ids
	// actually moved.
	Reschedule(ctx context.Context, ids []int, day string, dueAt time.Time) ([]int, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// TaskFilter narrows a task listing. The day window applies only when both
// From and To are set: a single-day task matches when its date lies in the
// window, a ranged task when its range overlaps it.
type TaskFilter struct {
	From   *string
	To     *string
	Status *entities.TaskStatus
}

// HasWindow reports whether the day window is active.
func (f TaskFilter) HasWindow() bool {
	return f.From != nil && f.To != nil && *f.From != "" && *f.To != ""
}
