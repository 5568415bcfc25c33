package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/domain/grouping"
	"github.com/taskmaster/planner/internal/domain/tasktree"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// Register mounts the task routes on g behind the given middleware. Fixed
// paths are matched before the :id routes by echo's router.
func (h *TaskHandler) Register(g *echo.Group, m ...echo.MiddlewareFunc) {
	tasks := g.Group("/tasks", m...)
	tasks.GET("", h.ListTasks)
	tasks.POST("", h.CreateTask)
	tasks.GET("/all", h.ListAllTasks)
	tasks.GET("/board", h.Board)
	tasks.GET("/calendar", h.Calendar)
	tasks.GET("/stats", h.Stats)
	tasks.POST("/postpone", h.PostponeOverdue)
	tasks.GET("/:id", h.GetTask)
	tasks.PUT("/:id", h.ReplaceTask)
	tasks.PATCH("/:id", h.PatchTask)
	tasks.DELETE("/:id", h.DeleteTask)
	tasks.POST("/:id/subtasks", h.CreateSubtask)
}

// ListTasks godoc
// @Summary List tasks
// @Description List tasks, optionally limited to a day window and a status. The window applies only when both from and to are given.
// @Tags tasks
// @Produce json
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param status query string false "pending, done, abandoned or all"
// @Success 200 {object} ports.ListTasksResponse
// @Failure 400 {object} ports.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	filter := ports.TaskFilter{}

	from, err := dayParam(c, "from")
	if err != nil {
		return err
	}
	to, err := dayParam(c, "to")
	if err != nil {
		return err
	}
	filter.From, filter.To = from, to

	if status := c.QueryParam("status"); status != "" && status != "all" {
		s := entities.TaskStatus(status)
		filter.Status = &s
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ports.ListTasksResponse{From: from, To: to, Tasks: tasks})
}

// ListAllTasks godoc
// @Summary List every task
// @Tags tasks
// @Produce json
// @Success 200 {object} ports.TasksResponse
// @Router /tasks/all [get]
func (h *TaskHandler) ListAllTasks(c echo.Context) error {
	tasks, err := h.taskService.ListAllTasks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.TasksResponse{Tasks: tasks})
}

// GetTask godoc
// @Summary Get task by ID
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} entities.Task
// @Failure 404 {object} ports.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// CreateTask godoc
// @Summary Create a new task
// @Description Create a task. Status defaults to pending and quadrant to IN.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body ports.CreateTaskRequest true "Task data"
// @Success 201 {object} entities.Task
// @Failure 400 {object} ports.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// ReplaceTask godoc
// @Summary Replace a task
// @Description Overwrite a task with a full document. Omitted optional fields are reset.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body ports.CreateTaskRequest true "Task data"
// @Success 200 {object} entities.Task
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) ReplaceTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req ports.ReplaceTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.ReplaceTask(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// PatchTask godoc
// @Summary Update some fields of a task
// @Description Only the fields present in the body change. null clears a nullable field; unknown fields are rejected.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body ports.TaskPatch true "Fields to change"
// @Success 200 {object} entities.Task
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /tasks/{id} [patch]
func (h *TaskHandler) PatchTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	patch, err := ports.DecodeTaskPatch(c.Request().Body)
	if err != nil {
		return err
	}

	task, err := h.taskService.PatchTask(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Description Delete a task and all of its subtasks
// @Tags tasks
// @Param id path int true "Task ID"
// @Success 204
// @Failure 404 {object} ports.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateSubtask godoc
// @Summary Add a subtask
// @Description Append a subtask for today that inherits the parent's quadrant and categories
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path int true "Parent task ID"
// @Param request body ports.CreateSubtaskRequest false "Subtask title"
// @Success 201 {object} entities.Task
// @Failure 404 {object} ports.ErrorResponse
// @Router /tasks/{id}/subtasks [post]
func (h *TaskHandler) CreateSubtask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req ports.CreateSubtaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateSubtask(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// PostponeOverdue godoc
// @Summary Move overdue tasks to today
// @Description Without ids every overdue top-level task is moved
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body ports.PostponeRequest false "Task ids"
// @Success 200 {object} ports.PostponeResult
// @Router /tasks/postpone [post]
func (h *TaskHandler) PostponeOverdue(c echo.Context) error {
	var req ports.PostponeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.taskService.PostponeOverdue(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Board godoc
// @Summary Grouped task board
// @Description Top-level tasks bucketed into overdue, today, future and done, sorted and flattened with the expanded rows
// @Tags tasks
// @Produce json
// @Param category query string false "Category, uncategorized, or empty for all"
// @Param expanded query string false "Comma-separated task ids to expand, or all"
// @Param today query string false "Override today (YYYY-MM-DD)"
// @Success 200 {object} ports.BoardResponse
// @Failure 400 {object} ports.ErrorResponse
// @Router /tasks/board [get]
func (h *TaskHandler) Board(c echo.Context) error {
	q := ports.BoardQuery{
		Category: c.QueryParam("category"),
		Today:    c.QueryParam("today"),
	}

	switch raw := c.QueryParam("expanded"); raw {
	case "":
	case "all":
		q.ExpandAll = true
	default:
		ids, err := parseIDs(raw)
		if err != nil {
			return err
		}
		q.Expanded = tasktree.NewIDSet(ids...)
	}

	board, err := h.taskService.Board(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, board)
}

// Calendar godoc
// @Summary Tasks per calendar day
// @Description Either from and to, or a view (week or month) around date
// @Tags tasks
// @Produce json
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param view query string false "week or month"
// @Param date query string false "Day inside the view (YYYY-MM-DD)"
// @Success 200 {object} ports.CalendarResponse
// @Failure 400 {object} ports.ErrorResponse
// @Router /tasks/calendar [get]
func (h *TaskHandler) Calendar(c echo.Context) error {
	from, to := c.QueryParam("from"), c.QueryParam("to")

	if view := c.QueryParam("view"); view != "" {
		date := c.QueryParam("date")
		if date == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "date is required with view")
		}

		var err error
		switch view {
		case "week":
			from, to, err = grouping.WeekRange(date)
		case "month":
			from, to, err = grouping.MonthRange(date)
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "view must be week or month")
		}
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}

	if from == "" || to == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "from and to are required")
	}

	calendar, err := h.taskService.Calendar(c.Request().Context(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, calendar)
}

// Stats godoc
// @Summary Task analytics
// @Tags tasks
// @Produce json
// @Param days query int false "Trend length in days (default 7)"
// @Success 200 {object} analytics.Report
// @Router /tasks/stats [get]
func (h *TaskHandler) Stats(c echo.Context) error {
	days := 0
	if raw := c.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid days parameter")
		}
		days = n
	}

	report, err := h.taskService.Stats(c.Request().Context(), days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Utility functions

func taskID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}
	return id, nil
}

func dayParam(c echo.Context, name string) (*string, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	if _, err := entities.ParseDay(v, nil); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, name+" must be YYYY-MM-DD")
	}
	return &v, nil
}

func parseIDs(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "expanded must be a list of task ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
