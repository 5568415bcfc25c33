package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/database"
	"github.com/taskmaster/planner/internal/ports"
)

// chunk size for IN (...) lists, well under sqlite's bound parameter limit
const inChunk = 500

const taskColumns = `id, title, description, task_date, range_start, range_end, all_day,
	start_time, end_time, status, quadrant, due_at, completed_at, parent_id, sort_order,
	created_at, updated_at`

// TaskRepository implements ports.TaskRepository on sqlx. Queries are
// written with ? placeholders and rebound for the active driver.
type TaskRepository struct {
	db  *database.DB
	now func() time.Time
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *entities.Task) error {
	now := r.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			INSERT INTO tasks (title, description, task_date, range_start, range_end, all_day,
				start_time, end_time, status, quadrant, due_at, completed_at, parent_id, sort_order,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`)

		err := tx.QueryRowContext(ctx, query,
			task.Title,
			task.Description,
			task.Date,
			task.RangeStart,
			task.RangeEnd,
			task.AllDay,
			task.StartTime,
			task.EndTime,
			task.Status,
			task.Quadrant,
			utcPtr(task.DueAt),
			utcPtr(task.CompletedAt),
			task.ParentID,
			task.Order,
			task.CreatedAt,
			task.UpdatedAt,
		).Scan(&task.ID)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		return writeCategories(ctx, tx, task.ID, task.Categories)
	})
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id int) (*entities.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)

	var task entities.Task
	if err := r.db.DB.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, entities.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	tasks := []entities.Task{task}
	if err := r.loadCategories(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// Update overwrites every mutable column of a task
func (r *TaskRepository) Update(ctx context.Context, task *entities.Task) error {
	task.UpdatedAt = r.now()

	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			UPDATE tasks
			SET title = ?, description = ?, task_date = ?, range_start = ?, range_end = ?,
				all_day = ?, start_time = ?, end_time = ?, status = ?, quadrant = ?,
				due_at = ?, completed_at = ?, parent_id = ?, sort_order = ?, updated_at = ?
			WHERE id = ?
		`)

		result, err := tx.ExecContext(ctx, query,
			task.Title,
			task.Description,
			task.Date,
			task.RangeStart,
			task.RangeEnd,
			task.AllDay,
			task.StartTime,
			task.EndTime,
			task.Status,
			task.Quadrant,
			utcPtr(task.DueAt),
			utcPtr(task.CompletedAt),
			task.ParentID,
			task.Order,
			task.UpdatedAt,
			task.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("task %d: %w", task.ID, entities.ErrTaskNotFound)
		}

		return writeCategories(ctx, tx, task.ID, task.Categories)
	})
}

// Delete removes a task together with its whole subtree
func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var ids []int
		subtree := tx.Rebind(`
			WITH RECURSIVE subtree(id) AS (
				SELECT id FROM tasks WHERE id = ?
				UNION
				SELECT t.id FROM tasks t JOIN subtree s ON t.parent_id = s.id
			)
			SELECT id FROM subtree
		`)
		if err := tx.SelectContext(ctx, &ids, subtree, id); err != nil {
			return fmt.Errorf("failed to collect subtasks: %w", err)
		}
		if len(ids) == 0 {
			return fmt.Errorf("task %d: %w", id, entities.ErrTaskNotFound)
		}

		for _, chunk := range chunks(ids) {
			if err := execIn(ctx, tx, `DELETE FROM task_categories WHERE task_id IN (?)`, chunk); err != nil {
				return fmt.Errorf("failed to delete categories: %w", err)
			}
			if err := execIn(ctx, tx, `DELETE FROM tasks WHERE id IN (?)`, chunk); err != nil {
				return fmt.Errorf("failed to delete task: %w", err)
			}
		}
		return nil
	})
}

// List retrieves tasks ordered by day, then start time
func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]entities.Task, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}

	if filter.HasWindow() {
		conditions = append(conditions,
			"((task_date >= ? AND task_date <= ?) OR (range_start <= ? AND range_end >= ?))")
		args = append(args, *filter.From, *filter.To, *filter.To, *filter.From)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := r.db.Rebind(fmt.Sprintf(`
		SELECT %s
		FROM tasks %s
		ORDER BY task_date IS NULL, task_date, start_time IS NULL, start_time, id
	`, taskColumns, whereClause))

	tasks := []entities.Task{}
	if err := r.db.DB.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if err := r.loadCategories(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountChildren counts the direct subtasks of a task
func (r *TaskRepository) CountChildren(ctx context.Context, parentID int) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM tasks WHERE parent_id = ?`)
	if err := r.db.DB.GetContext(ctx, &count, query, parentID); err != nil {
		return 0, fmt.Errorf("failed to count subtasks: %w", err)
	}
	return count, nil
}

// Reschedule moves pending tasks among ids to day with the given deadline
func (r *TaskRepository) Reschedule(ctx context.Context, ids []int, day string, dueAt time.Time) ([]int, error) {
	moved := []int{}
	if len(ids) == 0 {
		return moved, nil
	}

	now := r.now()
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, chunk := range chunks(ids) {
			query, args, err := sqlx.In(
				`SELECT id FROM tasks WHERE id IN (?) AND status = ? ORDER BY id`,
				chunk, entities.TaskStatusPending)
			if err != nil {
				return err
			}
			var found []int
			if err := tx.SelectContext(ctx, &found, tx.Rebind(query), args...); err != nil {
				return fmt.Errorf("failed to select tasks to move: %w", err)
			}
			if len(found) == 0 {
				continue
			}

			query, args, err = sqlx.In(`
				UPDATE tasks
				SET task_date = ?, range_start = NULL, range_end = NULL, due_at = ?, updated_at = ?
				WHERE id IN (?)
			`, day, dueAt.UTC(), now, found)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
				return fmt.Errorf("failed to reschedule tasks: %w", err)
			}
			moved = append(moved, found...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

type categoryRow struct {
	TaskID   int    `db:"task_id"`
	Position int    `db:"position"`
	Name     string `db:"name"`
}

func (r *TaskRepository) loadCategories(ctx context.Context, tasks []entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	index := make(map[int]int, len(tasks))
	ids := make([]int, 0, len(tasks))
	for i := range tasks {
		index[tasks[i].ID] = i
		ids = append(ids, tasks[i].ID)
	}

	for _, chunk := range chunks(ids) {
		query, args, err := sqlx.In(
			`SELECT task_id, position, name FROM task_categories WHERE task_id IN (?) ORDER BY task_id, position`,
			chunk)
		if err != nil {
			return err
		}

		var rows []categoryRow
		if err := r.db.DB.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		for _, row := range rows {
			t := &tasks[index[row.TaskID]]
			t.Categories = append(t.Categories, row.Name)
		}
	}
	return nil
}

func writeCategories(ctx context.Context, tx *sqlx.Tx, taskID int, categories entities.Categories) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM task_categories WHERE task_id = ?`), taskID); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}

	insert := tx.Rebind(`INSERT INTO task_categories (task_id, position, name) VALUES (?, ?, ?)`)
	for pos, name := range categories {
		if _, err := tx.ExecContext(ctx, insert, taskID, pos, name); err != nil {
			return fmt.Errorf("failed to write categories: %w", err)
		}
	}
	return nil
}

func execIn(ctx context.Context, tx *sqlx.Tx, query string, ids []int) error {
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
	return err
}

func chunks(ids []int) [][]int {
	var out [][]int
	for len(ids) > inChunk {
		out = append(out, ids[:inChunk])
		ids = ids[inChunk:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
