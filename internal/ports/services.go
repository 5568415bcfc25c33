package ports

import (
	"context"
	"time"

	"github.com/taskmaster/planner/internal/domain/analytics"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/domain/grouping"
	"github.com/taskmaster/planner/internal/domain/tasktree"
)

// AuthService interface for bearer token operations
type AuthService interface {
	IssueToken(subject string) (*TokenResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// TaskService interface for task management operations
type TaskService interface {
	ListTasks(ctx context.Context, filter TaskFilter) ([]entities.Task, error)
	ListAllTasks(ctx context.Context) ([]entities.Task, error)
	GetTask(ctx context.Context, id int) (*entities.Task, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	ReplaceTask(ctx context.Context, id int, req ReplaceTaskRequest) (*entities.Task, error)
	PatchTask(ctx context.Context, id int, patch TaskPatch) (*entities.Task, error)
	DeleteTask(ctx context.Context, id int) error
	CreateSubtask(ctx context.Context, parentID int, req CreateSubtaskRequest) (*entities.Task, error)
	PostponeOverdue(ctx context.Context, req PostponeRequest) (*PostponeResult, error)
	Board(ctx context.Context, q BoardQuery) (*BoardResponse, error)
	Calendar(ctx context.Context, from, to string) (*CalendarResponse, error)
	Stats(ctx context.Context, days int) (*analytics.Report, error)
}

// Request/Response Types

// Auth related types
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Claims struct {
	Subject string `json:"sub"`
	Issuer  string `json:"iss"`
}

// Task related types

// CreateTaskRequest carries every writable field of a task. Omitted
// optional fields are stored as null, omitted status and quadrant take
// their defaults.
type CreateTaskRequest struct {
	Title       string              `json:"title" validate:"required,max=500"`
	Description *string             `json:"description" validate:"omitempty,max=5000"`
	Date        *string             `json:"date" validate:"omitempty,datetime=2006-01-02"`
	RangeStart  *string             `json:"rangeStart" validate:"omitempty,datetime=2006-01-02"`
	RangeEnd    *string             `json:"rangeEnd" validate:"omitempty,datetime=2006-01-02"`
	AllDay      bool                `json:"allDay"`
	StartTime   *string             `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime     *string             `json:"endTime" validate:"omitempty,datetime=15:04"`
	Status      entities.TaskStatus `json:"status" validate:"omitempty,oneof=pending done abandoned"`
	Quadrant    entities.Quadrant   `json:"quadrant" validate:"omitempty,oneof=IU IN NU NN"`
	Categories  entities.Categories `json:"categories" validate:"omitempty,dive,min=1,max=50"`
	DueAt       *time.Time          `json:"dueAt"`
	CompletedAt *time.Time          `json:"completedAt"`
	ParentID    *int                `json:"parentId" validate:"omitempty,min=1"`
	Order       *int                `json:"order" validate:"omitempty,min=0"`
}

// ReplaceTaskRequest is the full document of a PUT. Fields left out are
// reset, exactly as on create.
type ReplaceTaskRequest = CreateTaskRequest

// ToTask maps the request onto a new task with defaults applied. Empty
// optional strings are stored as null.
func (r *CreateTaskRequest) ToTask() entities.Task {
	t := entities.Task{
		Title:       r.Title,
		Description: nonEmpty(r.Description),
		Date:        nonEmpty(r.Date),
		RangeStart:  nonEmpty(r.RangeStart),
		RangeEnd:    nonEmpty(r.RangeEnd),
		AllDay:      r.AllDay,
		StartTime:   nonEmpty(r.StartTime),
		EndTime:     nonEmpty(r.EndTime),
		Status:      r.Status,
		Quadrant:    r.Quadrant,
		Categories:  r.Categories,
		DueAt:       r.DueAt,
		CompletedAt: r.CompletedAt,
		ParentID:    r.ParentID,
		Order:       r.Order,
	}
	t.ApplyDefaults()
	return t
}

type CreateSubtaskRequest struct {
	Title string `json:"title" validate:"max=500"`
}

// PostponeRequest moves overdue tasks to today. With no ids every overdue
// top-level task is moved.
type PostponeRequest struct {
	IDs []int `json:"ids" validate:"omitempty,dive,min=1"`
}

type PostponeResult struct {
	Day   string `json:"day"`
	Moved []int  `json:"moved"`
}

// BoardQuery selects a category view and the rows to expand. An empty
// Today means the current day in the server's time zone.
type BoardQuery struct {
	Category  string
	Expanded  tasktree.IDSet
	ExpandAll bool
	Today     string
}

type BoardResponse struct {
	Today    string             `json:"today"`
	Category string             `json:"category"`
	Sections []grouping.Section `json:"sections"`
}

type CalendarResponse struct {
	From string         `json:"from"`
	To   string         `json:"to"`
	Days []grouping.Day `json:"days"`
}

type ListTasksResponse struct {
	From  *string         `json:"from"`
	To    *string         `json:"to"`
	Tasks []entities.Task `json:"tasks"`
}

type TasksResponse struct {
	Tasks []entities.Task `json:"tasks"`
}

// Response types for common structures
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
