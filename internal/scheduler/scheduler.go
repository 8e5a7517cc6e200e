// Package scheduler drives the daily-report pipeline on a cron cadence. At
// most one schedule is active at a time; start/stop on the wrong state are
// warn-level no-ops so the ops endpoints stay idempotent.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pipeline is the generate-and-deliver step each firing runs. An empty
// date means "yesterday".
type Pipeline interface {
	Run(ctx context.Context, date string) error
}

const runTimeout = 5 * time.Minute

type Scheduler struct {
	pipeline Pipeline
	loc      *time.Location

	mu         sync.Mutex
	cron       *cron.Cron
	expression string
}

func New(pipeline Pipeline, loc *time.Location) *Scheduler {
	return &Scheduler{pipeline: pipeline, loc: loc}
}

// Start schedules the pipeline. Starting while already running leaves the
// existing schedule in place.
func (s *Scheduler) Start(expression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		slog.Warn("report scheduler is already running", "expression", s.expression)
		return nil
	}

	if _, err := cron.ParseStandard(expression); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expression, err)
	}

	c := cron.New(cron.WithLocation(s.loc))

	if _, err := c.AddFunc(expression, s.fire); err != nil {
		return fmt.Errorf("scheduling daily report: %w", err)
	}

	c.Start()

	s.cron = c
	s.expression = expression

	slog.Info("report scheduler started", "expression", expression, "timezone", s.loc.String())

	return nil
}

// Stop halts the schedule. Stopping with nothing running is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		slog.Warn("no report scheduler is running")
		return
	}

	s.cron.Stop()
	s.cron = nil
	s.expression = ""

	slog.Info("report scheduler stopped")
}

// Status reports whether a schedule is active and with which expression.
func (s *Scheduler) Status() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cron != nil, s.expression
}

// TriggerManual runs the pipeline immediately, bypassing the schedule.
func (s *Scheduler) TriggerManual(ctx context.Context, date string) error {
	slog.Info("manual daily report triggered", "date", date)
	return s.pipeline.Run(ctx, date)
}

func (s *Scheduler) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	slog.Info("scheduled daily report started")

	if err := s.pipeline.Run(ctx, ""); err != nil {
		slog.Error("scheduled daily report failed", "error", err)
		return
	}

	slog.Info("scheduled daily report completed")
}

// CommonSchedules lists example cron expressions for the ops status
// endpoint.
func CommonSchedules() map[string]string {
	return map[string]string{
		"daily_9am":       "0 9 * * *",
		"weekdays_9am":    "0 9 * * 1-5",
		"daily_5pm":       "0 17 * * *",
		"weekdays_8am":    "0 8 * * 1-5",
		"mwf_10am":        "0 10 * * 1,3,5",
		"end_of_business": "0 18 * * 1-5",
	}
}
