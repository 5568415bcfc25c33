package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/config"
	"github.com/taskmaster/planner/internal/ports"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   string
}

func newTestClient(t *testing.T, status int, response interface{}) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*rec = recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			body:   string(body),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	}))
	t.Cleanup(srv.Close)

	c := New(config.ClientConfig{BaseURL: srv.URL + "/", Token: "secret-token", Timeout: 5 * time.Second})
	return c, rec
}

func TestClient_ListTasks(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, ports.ListTasksResponse{
		Tasks: []entities.Task{{ID: 1, Title: "a", Status: entities.TaskStatusPending}},
	})

	tasks, err := c.ListTasks(context.Background(), "2024-01-01", "2024-01-07", "pending")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Title)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/tasks", rec.path)
	assert.Equal(t, "from=2024-01-01&status=pending&to=2024-01-07", rec.query)
	assert.Equal(t, "Bearer secret-token", rec.auth)
}

func TestClient_PatchSendsNulls(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, entities.Task{ID: 7, Title: "a"})

	task, err := c.PatchTask(context.Background(), 7, map[string]interface{}{
		"status":      entities.TaskStatusPending,
		"completedAt": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, task.ID)

	assert.Equal(t, http.MethodPatch, rec.method)
	assert.Equal(t, "/api/tasks/7", rec.path)
	assert.JSONEq(t, `{"status":"pending","completedAt":null}`, rec.body)
}

func TestClient_DeleteNoContent(t *testing.T) {
	c, rec := newTestClient(t, http.StatusNoContent, nil)

	require.NoError(t, c.DeleteTask(context.Background(), 3))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/api/tasks/3", rec.path)
}

func TestClient_Board(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, ports.BoardResponse{Today: "2024-01-02", Category: "work"})

	board, err := c.Board(context.Background(), "work", "2024-01-02", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "work", board.Category)
	assert.Equal(t, "/api/tasks/board", rec.path)
	assert.Equal(t, "category=work&expanded=1%2C2&today=2024-01-02", rec.query)
}

func TestClient_Postpone(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, ports.PostponeResult{Day: "2024-01-02", Moved: []int{4}})

	result, err := c.Postpone(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, result.Moved)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.JSONEq(t, `{"ids":[4]}`, rec.body)
}

func TestClient_ErrorResponse(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound, ports.ErrorResponse{Message: "task not found"})

	_, err := c.GetTask(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "task not found", apiErr.Message)
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadGateway, nil)

	_, err := c.ListAll(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
	assert.False(t, IsNotFound(err))
}
