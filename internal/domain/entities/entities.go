package entities

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Common errors
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrParentNotFound  = errors.New("parent task not found")
	ErrInvalidParent   = errors.New("task cannot be its own parent")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidQuadrant = errors.New("invalid quadrant")
	ErrInvalidRange    = errors.New("range start must not be after range end")
	ErrTitleRequired   = errors.New("title is required")
	ErrValidation      = errors.New("validation failed")
)

// Enums and types
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusDone      TaskStatus = "done"
	TaskStatusAbandoned TaskStatus = "abandoned"
)

// Quadrant is the Eisenhower-matrix priority tag of a task.
type Quadrant string

const (
	QuadrantImportantUrgent    Quadrant = "IU"
	QuadrantImportantNotUrgent Quadrant = "IN"
	QuadrantUrgentNotImportant Quadrant = "NU"
	QuadrantNeither            Quadrant = "NN"
)

// Quadrants lists every quadrant in priority order.
var Quadrants = []Quadrant{
	QuadrantImportantUrgent,
	QuadrantImportantNotUrgent,
	QuadrantUrgentNotImportant,
	QuadrantNeither,
}

const (
	DefaultStatus   = TaskStatusPending
	DefaultQuadrant = QuadrantImportantNotUrgent
)

// Task is the single entity of the planner. Dates are canonical YYYY-MM-DD
// strings and times are HH:mm, so both compare correctly as strings.
type Task struct {
	ID          int        `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	Date        *string    `json:"date" db:"task_date"`
	RangeStart  *string    `json:"rangeStart" db:"range_start"`
	RangeEnd    *string    `json:"rangeEnd" db:"range_end"`
	AllDay      bool       `json:"allDay" db:"all_day"`
	StartTime   *string    `json:"startTime" db:"start_time"`
	EndTime     *string    `json:"endTime" db:"end_time"`
	Status      TaskStatus `json:"status" db:"status"`
	Quadrant    Quadrant   `json:"quadrant" db:"quadrant"`
	Categories  Categories `json:"categories" db:"-"`
	DueAt       *time.Time `json:"dueAt" db:"due_at"`
	CompletedAt *time.Time `json:"completedAt" db:"completed_at"`
	ParentID    *int       `json:"parentId" db:"parent_id"`
	Order       *int       `json:"order" db:"sort_order"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Business logic methods for Task
func (t *Task) IsDone() bool {
	return t.Status == TaskStatusDone
}

func (t *Task) IsPending() bool {
	return t.Status == TaskStatusPending
}

// HasParent reports whether the task declares a parent. Zero is never a
// valid id and counts as no parent.
func (t *Task) HasParent() bool {
	return t.ParentID != nil && *t.ParentID != 0
}

// OrderKey is the manual sort position among siblings. A task without an
// order sorts after every task that has one.
func (t *Task) OrderKey() int {
	if t.Order == nil {
		return math.MaxInt
	}
	return *t.Order
}

// Range returns the closed day interval of a multi-day task. Both ends must
// be set; a half-open range is ignored.
func (t *Task) Range() (start, end string, ok bool) {
	if t.RangeStart == nil || t.RangeEnd == nil || *t.RangeStart == "" || *t.RangeEnd == "" {
		return "", "", false
	}
	return *t.RangeStart, *t.RangeEnd, true
}

// ScheduledDay returns the single day of a single-day task. When a task
// carries both a range and a date the range wins, so ranged tasks never
// report a single day.
func (t *Task) ScheduledDay() (string, bool) {
	if _, _, ranged := t.Range(); ranged {
		return "", false
	}
	if t.Date == nil || *t.Date == "" {
		return "", false
	}
	return *t.Date, true
}


// CoversDay reports calendar membership: every day of a range, or the single
// scheduled day.
func (t *Task) CoversDay(day string) bool {
	if start, end, ok := t.Range(); ok {
		return start <= day && day <= end
	}
	d, ok := t.ScheduledDay()
	return ok && d == day
}

// MarkDone completes the task at the given instant.
func (t *Task) MarkDone(now time.Time) {
	t.Status = TaskStatusDone
	t.CompletedAt = &now
}

// MarkPending reopens the task and clears its completion time.
func (t *Task) MarkPending() {
	t.Status = TaskStatusPending
	t.CompletedAt = nil
}

// ApplyDefaults fills the create-time defaults.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = DefaultStatus
	}
	if t.Quadrant == "" {
		t.Quadrant = DefaultQuadrant
	}
}

// Validate checks the invariants that the storage layer cannot express.
func (t *Task) Validate() error {
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !t.Quadrant.IsValid() {
		return ErrInvalidQuadrant
	}
	if t.ParentID != nil && *t.ParentID == t.ID && t.ID != 0 {
		return ErrInvalidParent
	}
	for name, day := range map[string]*string{"date": t.Date, "rangeStart": t.RangeStart, "rangeEnd": t.RangeEnd} {
		if day != nil && *day != "" {
			if _, err := time.Parse(DayLayout, *day); err != nil {
				return fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrValidation, name)
			}
		}
	}
	for name, clock := range map[string]*string{"startTime": t.StartTime, "endTime": t.EndTime} {
		if clock != nil && *clock != "" {
			if _, err := time.Parse(ClockLayout, *clock); err != nil {
				return fmt.Errorf("%w: %s must be HH:mm", ErrValidation, name)
			}
		}
	}
	if start, end, ok := t.Range(); ok && start > end {
		return ErrInvalidRange
	}
	return nil
}

// Clone returns a deep copy so callers can mutate it without touching shared
// state.
func (t *Task) Clone() Task {
	c := *t
	c.Description = cloneString(t.Description)
	c.Date = cloneString(t.Date)
	c.RangeStart = cloneString(t.RangeStart)
	c.RangeEnd = cloneString(t.RangeEnd)
	c.StartTime = cloneString(t.StartTime)
	c.EndTime = cloneString(t.EndTime)
	c.DueAt = cloneTime(t.DueAt)
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.ParentID = cloneInt(t.ParentID)
	c.Order = cloneInt(t.Order)
	if t.Categories != nil {
		c.Categories = append(Categories{}, t.Categories...)
	}
	return c
}

// Utility methods
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusPending, TaskStatusDone, TaskStatusAbandoned:
		return true
	default:
		return false
	}
}

func (q Quadrant) IsValid() bool {
	switch q {
	case QuadrantImportantUrgent, QuadrantImportantNotUrgent, QuadrantUrgentNotImportant, QuadrantNeither:
		return true
	default:
		return false
	}
}

// Weight ranks quadrants for sorting: IU 0, IN 1, NU 2, anything else 3.
func (q Quadrant) Weight() int {
	switch q {
	case QuadrantImportantUrgent:
		return 0
	case QuadrantImportantNotUrgent:
		return 1
	case QuadrantUrgentNotImportant:
		return 2
	default:
		return 3
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
