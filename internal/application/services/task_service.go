package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/taskmaster/planner/internal/domain/analytics"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/domain/grouping"
	"github.com/taskmaster/planner/internal/domain/tasktree"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/ports"
)

const (
	allTasksCacheKey = "tasks:all"

	defaultStatsDays = 7
	maxStatsDays     = 365

	// bound on parent chain walks, far beyond any real nesting depth
	maxAncestorDepth = 64
)

// TaskService handles task-related operations
type TaskService struct {
	taskRepo ports.TaskRepository
	cache    ports.CacheRepository
	cacheTTL time.Duration
	// bumped by every write, before the cached list is dropped
	generation atomic.Uint64
	loc      *time.Location
	now      func() time.Time
	logger   *logger.Logger
}

// NewTaskService creates a new task service. cache may be nil, which
// disables read-through caching of the full task list.
func NewTaskService(taskRepo ports.TaskRepository, cache ports.CacheRepository, cacheTTL time.Duration, loc *time.Location, logger *logger.Logger) *TaskService {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskService{
		taskRepo: taskRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// Today returns the current calendar day in the configured time zone
func (s *TaskService) Today() string {
	return entities.Today(s.now(), s.loc)
}

// ListTasks retrieves tasks matching the filter
func (s *TaskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]entities.Task, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, entities.ErrInvalidStatus
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListAllTasks retrieves every task, served from the cache when possible
func (s *TaskService) ListAllTasks(ctx context.Context) ([]entities.Task, error) {
	if s.cache != nil {
		var cached []entities.Task
		err := s.cache.Get(ctx, allTasksCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.logger.Warnw("Task cache read failed", "error", err)
		}
	}

	gen := s.generation.Load()
	tasks, err := s.taskRepo.List(ctx, ports.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if s.cache != nil {
		s.fill(ctx, gen, tasks)
	}
	return tasks, nil
}

// fill caches a list read at generation gen. A write that lands while the
// list is read or stored makes it stale, so it is skipped or dropped again.
func (s *TaskService) fill(ctx context.Context, gen uint64, tasks []entities.Task) {
	if s.generation.Load() != gen {
		return
	}
	if err := s.cache.Set(ctx, allTasksCacheKey, tasks, s.cacheTTL); err != nil {
		s.logger.Warnw("Task cache write failed", "error", err)
		return
	}
	if s.generation.Load() != gen {
		s.invalidate(ctx)
	}
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id int) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CreateTask creates a new task
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	if req.Title == "" {
		return nil, entities.ErrTitleRequired
	}

	task := req.ToTask()
	if task.IsDone() && task.CompletedAt == nil {
		task.MarkDone(s.now())
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, &task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Infow("Task created successfully", "task_id", task.ID, "title", task.Title)
	return &task, nil
}

// ReplaceTask overwrites a task with a full document. Fields left out of
// the request are reset.
func (s *TaskService) ReplaceTask(ctx context.Context, id int, req ports.ReplaceTaskRequest) (*entities.Task, error) {
	if req.Title == "" {
		return nil, entities.ErrTitleRequired
	}

	existing, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task := req.ToTask()
	task.ID = id
	task.CreatedAt = existing.CreatedAt
	if task.IsDone() && task.CompletedAt == nil {
		if existing.IsDone() && existing.CompletedAt != nil {
			task.CompletedAt = existing.CompletedAt
		} else {
			task.MarkDone(s.now())
		}
	}

	if err := s.save(ctx, &task); err != nil {
		return nil, err
	}

	s.logger.Infow("Task replaced successfully", "task_id", task.ID, "title", task.Title)
	return &task, nil
}

// PatchTask applies a partial update
func (s *TaskService) PatchTask(ctx context.Context, id int, patch ports.TaskPatch) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Empty() {
		return task, nil
	}

	if err := patch.Apply(task, s.now()); err != nil {
		return nil, err
	}

	if err := s.save(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Infow("Task updated successfully", "task_id", task.ID)
	return task, nil
}

// DeleteTask deletes a task and every subtask below it
func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)

	s.logger.Infow("Task deleted successfully", "task_id", id)
	return nil
}

// CreateSubtask appends a subtask scheduled for today under parentID. It
// inherits the parent's quadrant and categories and goes after the
// existing siblings.
func (s *TaskService) CreateSubtask(ctx context.Context, parentID int, req ports.CreateSubtaskRequest) (*entities.Task, error) {
	parent, err := s.taskRepo.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}

	siblings, err := s.taskRepo.CountChildren(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count subtasks: %w", err)
	}

	today := s.Today()
	due, err := entities.EndOfDay(today, s.loc)
	if err != nil {
		return nil, err
	}

	task := entities.Task{
		Title:      req.Title,
		Date:       &today,
		Status:     entities.TaskStatusPending,
		Quadrant:   parent.Quadrant,
		Categories: append(entities.Categories{}, parent.Categories...),
		DueAt:      &due,
		ParentID:   &parent.ID,
		Order:      &siblings,
	}
	task.ApplyDefaults()

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}
	s.invalidate(ctx)

	s.logger.Infow("Subtask created successfully", "task_id", task.ID, "parent_id", parentID)
	return &task, nil
}

// PostponeOverdue moves tasks to today with a deadline at the end of the
// day. Without ids every overdue top-level task is moved.
func (s *TaskService) PostponeOverdue(ctx context.Context, req ports.PostponeRequest) (*ports.PostponeResult, error) {
	today := s.Today()
	due, err := entities.EndOfDay(today, s.loc)
	if err != nil {
		return nil, err
	}

	ids := req.IDs
	if len(ids) == 0 {
		tasks, err := s.taskRepo.List(ctx, ports.TaskFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
		for _, t := range grouping.Overdue(tasks, today) {
			ids = append(ids, t.ID)
		}
	}

	moved, err := s.taskRepo.Reschedule(ctx, ids, today, due)
	if err != nil {
		return nil, fmt.Errorf("failed to postpone tasks: %w", err)
	}
	if len(moved) > 0 {
		s.invalidate(ctx)
	}

	s.logger.Infow("Overdue tasks postponed", "day", today, "moved", len(moved))
	return &ports.PostponeResult{Day: today, Moved: moved}, nil
}

// Board groups and flattens the task list for one category view
func (s *TaskService) Board(ctx context.Context, q ports.BoardQuery) (*ports.BoardResponse, error) {
	today := q.Today
	if today == "" {
		today = s.Today()
	} else if _, err := entities.ParseDay(today, s.loc); err != nil {
		return nil, fmt.Errorf("%w: today must be YYYY-MM-DD", entities.ErrValidation)
	}

	tasks, err := s.ListAllTasks(ctx)
	if err != nil {
		return nil, err
	}

	expanded := q.Expanded
	if q.ExpandAll {
		expanded = tasktree.ExpandAll(tasktree.Build(tasks))
	}

	return &ports.BoardResponse{
		Today:    today,
		Category: q.Category,
		Sections: grouping.Board(tasks, today, expanded, grouping.ByCategory(q.Category)),
	}, nil
}

// Calendar lists the active tasks covering each day of from..to
func (s *TaskService) Calendar(ctx context.Context, from, to string) (*ports.CalendarResponse, error) {
	tasks, err := s.taskRepo.List(ctx, ports.TaskFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	days, err := grouping.CalendarDays(grouping.FilterCategory(tasks, ""), from, to)
	if err != nil {
		return nil, err
	}
	return &ports.CalendarResponse{From: from, To: to, Days: days}, nil
}

// Stats builds the analytics report over the last days days
func (s *TaskService) Stats(ctx context.Context, days int) (*analytics.Report, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	if days > maxStatsDays {
		days = maxStatsDays
	}

	tasks, err := s.ListAllTasks(ctx)
	if err != nil {
		return nil, err
	}

	report := analytics.Build(tasks, s.now(), s.loc, days)
	return &report, nil
}

func (s *TaskService) save(ctx context.Context, task *entities.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if err := s.checkParent(ctx, task); err != nil {
		return err
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return err
		}
		return fmt.Errorf("failed to update task: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// checkParent normalizes a zero parent to none and rejects parents that
// are missing, the task itself, or one of its descendants.
func (s *TaskService) checkParent(ctx context.Context, task *entities.Task) error {
	if !task.HasParent() {
		task.ParentID = nil
		return nil
	}
	if task.ID != 0 && *task.ParentID == task.ID {
		return entities.ErrInvalidParent
	}

	next := *task.ParentID
	for depth := 0; depth < maxAncestorDepth; depth++ {
		ancestor, err := s.taskRepo.GetByID(ctx, next)
		if err != nil {
			if errors.Is(err, entities.ErrTaskNotFound) {
				if depth == 0 {
					return entities.ErrParentNotFound
				}
				// dangling chain above the parent; the tree treats it as a root
				return nil
			}
			return fmt.Errorf("failed to load parent task: %w", err)
		}
		if !ancestor.HasParent() {
			return nil
		}
		next = *ancestor.ParentID
		if task.ID != 0 && next == task.ID {
			return entities.ErrInvalidParent
		}
	}
	return nil
}

func (s *TaskService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.generation.Add(1)
	if err := s.cache.Delete(ctx, allTasksCacheKey); err != nil {
		s.logger.Warnw("Task cache invalidation failed", "error", err)
	}
}
