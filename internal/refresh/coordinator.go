package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vendordocs/docscout/internal/apperr"
	"github.com/vendordocs/docscout/internal/domain"
)

// State is the coordinator's run state. Failed is sticky until the next
// trigger starts, so operators can see that the last run broke.
type State string

const (
	StateIdle    State = "IDLE"
	StateRunning State = "RUNNING"
	StateFailed  State = "FAILED"
)

// Runner executes one ingestion batch.
type Runner interface {
	Run(ctx context.Context) (*domain.BatchReport, error)
}

// Status is a point-in-time snapshot of the coordinator.
type Status struct {
	State      State               `json:"state"`
	LastReport *domain.BatchReport `json:"last_report,omitempty"`
	LastError  string              `json:"last_error,omitempty"`
	NextRunAt  *time.Time          `json:"next_run_at,omitempty"`
}

const (
	defaultRunHour   = 2
	defaultRunMinute = 0
)

// Coordinator serializes ingestion runs: at most one batch is in flight at a
// time, whether started by the daily schedule or by an operator trigger. A
// trigger that races a run in progress is rejected, never queued.
type Coordinator struct {
	runner Runner
	hour   int
	minute int
	now    func() time.Time

	mu         sync.Mutex
	state      State
	lastReport *domain.BatchReport
	lastErr    string

	loopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

type Option func(*Coordinator)

// WithSchedule sets the daily run time in UTC.
func WithSchedule(hour, minute int) Option {
	return func(c *Coordinator) {
		if hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
			c.hour = hour
			c.minute = minute
		}
	}
}

func withNow(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func NewCoordinator(runner Runner, opts ...Option) *Coordinator {
	c := &Coordinator{
		runner: runner,
		hour:   defaultRunHour,
		minute: defaultRunMinute,
		now:    func() time.Time { return time.Now().UTC() },
		state:  StateIdle,
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Trigger starts one batch and blocks until it finishes. When a run is
// already in flight it returns apperr.ErrAlreadyRunning immediately.
func (c *Coordinator) Trigger(ctx context.Context) (*domain.BatchReport, error) {
	c.mu.Lock()
	if c.state == StateRunning {
		c.mu.Unlock()
		return nil, apperr.ErrAlreadyRunning
	}
	c.state = StateRunning
	c.mu.Unlock()

	report, err := c.runner.Run(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateFailed
		c.lastErr = err.Error()
		return nil, err
	}
	c.state = StateIdle
	c.lastErr = ""
	c.lastReport = report
	return report, nil
}

// Status reports the current state, the outcome of the last completed run,
// and the next scheduled run time.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := nextRunAfter(c.now(), c.hour, c.minute)
	return Status{
		State:      c.state,
		LastReport: c.lastReport,
		LastError:  c.lastErr,
		NextRunAt:  &next,
	}
}

// Start launches the daily schedule loop in the background. Start is
// idempotent; the loop stops when ctx is cancelled or Stop is called.
func (c *Coordinator) Start(ctx context.Context) {
	c.loopOnce.Do(func() {
		c.wg.Add(1)
		go c.loop(ctx)
	})
}

// Stop shuts the schedule loop down and waits for it. A batch already in
// flight is left to finish under its own context.
func (c *Coordinator) Stop() {
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
	c.wg.Wait()
}

func (c *Coordinator) loop(ctx context.Context) {
	defer c.wg.Done()

	for {
		next := nextRunAfter(c.now(), c.hour, c.minute)
		wait := next.Sub(c.now())
		slog.Info("refresh scheduled", "next_run_at", next, "in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-c.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		report, err := c.Trigger(ctx)
		switch {
		case errors.Is(err, apperr.ErrAlreadyRunning):
			slog.Warn("scheduled refresh skipped, a run is already in flight")
		case err != nil:
			slog.Error("scheduled refresh failed", "error", err)
		default:
			slog.Info("scheduled refresh completed",
				"attempted", report.Attempted,
				"succeeded", report.Succeeded,
				"failed", len(report.Failed),
			)
		}
	}
}

// nextRunAfter returns the next occurrence of hh:mm UTC strictly after now.
func nextRunAfter(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
