package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/taskmaster/planner/internal/domain/analytics"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/config"
	"github.com/taskmaster/planner/internal/ports"
)

// APIError is a non-2xx answer from the planner API.
type APIError struct {
	StatusCode int
	Message    string
	Details    map[string]interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("planner api: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the task endpoints of a running planner server
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// New creates a client from the client section of the configuration
func New(cfg config.ClientConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// ListTasks fetches tasks, optionally restricted to a day window and status
func (c *Client) ListTasks(ctx context.Context, from, to, status string) ([]entities.Task, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	if status != "" {
		q.Set("status", status)
	}

	var resp ports.ListTasksResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// ListAll fetches every task regardless of status or schedule
func (c *Client) ListAll(ctx context.Context) ([]entities.Task, error) {
	var resp ports.TasksResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks/all", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id int) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ReplaceTask(ctx context.Context, id int, req ports.ReplaceTaskRequest) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// PatchTask sends only the given fields. A nil value clears the field.
func (c *Client) PatchTask(ctx context.Context, id int, fields map[string]interface{}) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodPatch, taskPath(id), nil, fields, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task together with its subtasks
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
}

// CreateSubtask adds a subtask for today under parentID. An empty title
// lets the server pick its default.
func (c *Client) CreateSubtask(ctx context.Context, parentID int, title string) (*entities.Task, error) {
	var task entities.Task
	req := ports.CreateSubtaskRequest{Title: title}
	if err := c.do(ctx, http.MethodPost, taskPath(parentID)+"/subtasks", nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Postpone moves overdue tasks to today; no ids means every overdue task
func (c *Client) Postpone(ctx context.Context, ids ...int) (*ports.PostponeResult, error) {
	var result ports.PostponeResult
	if err := c.do(ctx, http.MethodPost, "/api/tasks/postpone", nil, ports.PostponeRequest{IDs: ids}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Board fetches the server-rendered board. expanded may hold ids or the
// single word "all".
func (c *Client) Board(ctx context.Context, category, today string, expanded ...string) (*ports.BoardResponse, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if today != "" {
		q.Set("today", today)
	}
	if len(expanded) > 0 {
		q.Set("expanded", strings.Join(expanded, ","))
	}

	var board ports.BoardResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks/board", q, nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) Calendar(ctx context.Context, from, to string) (*ports.CalendarResponse, error) {
	q := url.Values{"from": {from}, "to": {to}}

	var cal ports.CalendarResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks/calendar", q, nil, &cal); err != nil {
		return nil, err
	}
	return &cal, nil
}

func (c *Client) Stats(ctx context.Context, days int) (*analytics.Report, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}

	var report analytics.Report
	if err := c.do(ctx, http.MethodGet, "/api/tasks/stats", q, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload ports.ErrorResponse
		if json.Unmarshal(data, &payload) == nil && payload.Message != "" {
			apiErr.Message = payload.Message
			apiErr.Details = payload.Details
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func taskPath(id int) string {
	return "/api/tasks/" + strconv.Itoa(id)
}
