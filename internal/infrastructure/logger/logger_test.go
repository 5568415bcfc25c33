package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taskmaster/planner/internal/infrastructure/config"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestNewBuildsLogger(t *testing.T) {
	l, err := New(config.LoggerConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l.SugaredLogger)
}

func TestFieldsAreAttached(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.WithComponent("scheduler").WithRequestID("req-1").Infow("tick")
	l.LogJobRun("rollover", 12500*time.Microsecond, errors.New("db down"), map[string]interface{}{"moved": 0})

	entries := logs.All()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, "scheduler", fields["component"])
	assert.Equal(t, "req-1", fields["request_id"])

	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "db down", entries[1].ContextMap()["error"])
	assert.Equal(t, "rollover", entries[1].ContextMap()["job"])
	assert.Equal(t, 12.5, entries[1].ContextMap()["duration_ms"])
}

func TestLogHTTPRequestLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	for _, status := range []int{200, 404, 503} {
		l.LogHTTPRequest(HTTPRequest{Method: "GET", Path: "/api/tasks", Status: status, Latency: time.Millisecond})
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, int64(404), entries[1].ContextMap()["status"])
	assert.Equal(t, 1.0, entries[0].ContextMap()["latency_ms"])
}

func TestLogSecurityEvent(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.LogSecurityEvent("invalid_token", "10.0.0.1", map[string]interface{}{"endpoint": "/api/tasks"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "invalid_token", fields["security_event"])
	assert.Equal(t, "10.0.0.1", fields["ip"])
	assert.Equal(t, "/api/tasks", fields["endpoint"])
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Info("ignored")
	l.WithFields("k", "v").Infow("ignored too")
	assert.NoError(t, l.Sync())
}
