package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/application/services"
	"github.com/taskmaster/planner/internal/infrastructure/config"
	"github.com/taskmaster/planner/internal/infrastructure/database"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "Planner", Version: "test", Timezone: "UTC"},
		Server:   config.ServerConfig{RequestTimeout: 5 * time.Second},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		Redis:    config.RedisConfig{TTL: time.Minute},
		JWT:      config.JWTConfig{Secret: "test-secret", ExpiresIn: time.Hour, Issuer: "planner-test"},
		Security: config.SecurityConfig{CORSAllowedOrigins: "*", RateLimitRequests: 1000, RateLimitWindow: time.Minute},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	db, err := database.New(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.MigrateUp()
	require.NoError(t, err)

	srv, err := New(cfg, db, logger.NewNop())
	require.NoError(t, err)
	return srv
}

func serve(srv *Server, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := serve(srv, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(srv, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Planner API is running"}`, rec.Body.String())

	rec = serve(srv, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(srv, http.MethodGet, "/health/detailed", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database"`)
}

func TestRequestIDAndMetrics(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := serve(srv, http.MethodGet, "/api/tasks/all", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)

	rec = serve(srv, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/tasks/all",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "planner_db_open_connections")
}

func TestAuthGuardsTasksWhenEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Enabled = true
	srv := newTestServer(t, cfg)

	rec := serve(srv, http.MethodGet, "/api/tasks/all", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(srv, http.MethodGet, "/api/tasks/all", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := services.NewAuthService(cfg.JWT, logger.NewNop()).IssueToken("cli")
	require.NoError(t, err)

	rec = serve(srv, http.MethodPost, "/api/tasks", `{"title":"guarded"}`, tok.AccessToken)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(srv, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRejectsBadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.App.Timezone = "Mars/Olympus"

	db, err := database.New(cfg.Database)
	require.NoError(t, err)
	defer db.Close()

	_, err = New(cfg, db, logger.NewNop())
	assert.Error(t, err)
}

func TestRequestRate(t *testing.T) {
	assert.InDelta(t, 2.0, float64(requestRate(config.SecurityConfig{RateLimitRequests: 120, RateLimitWindow: time.Minute})), 1e-9)
	assert.InDelta(t, 5.0, float64(requestRate(config.SecurityConfig{RateLimitRequests: 5})), 1e-9)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		if tt.header != "" {
			req.Header.Set(echo.HeaderAuthorization, tt.header)
		}
		token, ok := bearerToken(req)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestAuthMiddlewareStoresSubject(t *testing.T) {
	cfg := testConfig()
	authService := services.NewAuthService(cfg.JWT, logger.NewNop())
	tok, err := authService.IssueToken("cli")
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/all", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.AccessToken)
	c := e.NewContext(req, httptest.NewRecorder())

	srv := &Server{logger: logger.NewNop()}
	var subject string
	handler := srv.authMiddleware(authService)(func(c echo.Context) error {
		subject = subjectOf(c)
		return nil
	})

	require.NoError(t, handler(c))
	assert.Equal(t, "cli", subject)
	assert.Empty(t, subjectOf(e.NewContext(req, httptest.NewRecorder())))
}
