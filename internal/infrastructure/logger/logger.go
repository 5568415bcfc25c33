package logger

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/taskmaster/planner/internal/infrastructure/config"
)

// Logger wraps zap.SugaredLogger to provide application-specific logging
type Logger struct {
	*zap.SugaredLogger
}

// New builds the process logger. Format "json" gives production output,
// anything else a colored console for development.
func New(cfg config.LoggerConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.TimeKey = "time"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Format != "json" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	if cfg.Output == "file" && cfg.Filename != "" {
		zapConfig.OutputPaths = []string{cfg.Filename}
		zapConfig.ErrorOutputPaths = []string{cfg.Filename}
	}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// WithFields returns a child logger carrying key/value pairs
func (l *Logger) WithFields(fields ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(fields...)}
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.WithFields("request_id", requestID)
}

func (l *Logger) WithComponent(component string) *Logger {
	return l.WithFields("component", component)
}

// HTTPRequest is one served request as seen by the access log.
type HTTPRequest struct {
	Method    string
	Path      string
	Status    int
	Latency   time.Duration
	RemoteIP  string
	UserAgent string
}

// LogHTTPRequest writes an access log line. 5xx answers are logged as
// errors and 4xx as warnings.
func (l *Logger) LogHTTPRequest(r HTTPRequest) {
	fields := []interface{}{
		"method", r.Method,
		"path", r.Path,
		"status", r.Status,
		"latency_ms", millis(r.Latency),
		"ip", r.RemoteIP,
		"user_agent", r.UserAgent,
	}

	switch {
	case r.Status >= 500:
		l.Errorw("HTTP request", fields...)
	case r.Status >= 400:
		l.Warnw("HTTP request", fields...)
	default:
		l.Infow("HTTP request", fields...)
	}
}

// LogJobRun records the outcome of a scheduled job.
func (l *Logger) LogJobRun(job string, took time.Duration, err error, details map[string]interface{}) {
	fields := append([]interface{}{"job", job, "duration_ms", millis(took)}, sortedPairs(details)...)

	if err != nil {
		l.Errorw("Scheduled job failed", append(fields, "error", err.Error())...)
		return
	}
	l.Infow("Scheduled job finished", fields...)
}

// LogSecurityEvent records a rejected request, such as a bad token or a
// rate-limited client.
func (l *Logger) LogSecurityEvent(event, ip string, details map[string]interface{}) {
	fields := append([]interface{}{"security_event", event, "ip", ip}, sortedPairs(details)...)
	l.Warnw("Security event", fields...)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// sortedPairs flattens details in key order so log lines are stable
func sortedPairs(details map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, details[k])
	}
	return pairs
}
