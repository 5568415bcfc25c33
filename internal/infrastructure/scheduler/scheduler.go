package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taskmaster/planner/internal/infrastructure/config"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/ports"
)

const rolloverJob = "rollover"

// Postponer moves overdue tasks to today.
type Postponer interface {
	PostponeOverdue(ctx context.Context, req ports.PostponeRequest) (*ports.PostponeResult, error)
}

// Scheduler runs the planner's background jobs on cron.
type Scheduler struct {
	cron      *cron.Cron
	postponer Postponer
	timeout   time.Duration
	logger    *logger.Logger
}

// New creates a scheduler whose daily specs are evaluated in loc.
func New(postponer Postponer, loc *time.Location, log *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		postponer: postponer,
		timeout:   time.Minute,
		logger:    log.WithComponent("scheduler"),
	}
}

// Configure registers the jobs enabled in cfg.
func (s *Scheduler) Configure(cfg config.SchedulerConfig) error {
	if !cfg.RolloverEnabled {
		return nil
	}
	if _, err := s.ScheduleDaily(cfg.RolloverTime, func() { _, _ = s.RunRollover(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule rollover: %w", err)
	}
	s.logger.Infow("Rollover job scheduled", "at", cfg.RolloverTime)
	return nil
}

// ScheduleDaily registers a daily job at the given HH:MM time string.
func (s *Scheduler) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// RunRollover postpones every overdue task once.
func (s *Scheduler) RunRollover(ctx context.Context) (*ports.PostponeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	res, err := s.postponer.PostponeOverdue(ctx, ports.PostponeRequest{})

	details := map[string]interface{}{}
	if res != nil {
		details["day"] = res.Day
		details["moved"] = len(res.Moved)
	}
	s.logger.LogJobRun(rolloverJob, time.Since(start), err, details)

	return res, err
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
