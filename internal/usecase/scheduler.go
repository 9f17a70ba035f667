package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"PriceWatch/internal/domain/models"
	applogger "PriceWatch/pkg/logger"
)

// Cycle is one unit of scheduled work.
type Cycle interface {
	RunCycle(ctx context.Context) *models.CycleReport
}

// Scheduler states.
const (
	StateIdle    = "idle"
	StateRunning = "running"
)

// Scheduler runs a Cycle immediately and then every interval, measured from
// each cycle's start. Cycles never overlap: ticks that arrive while a cycle
// runs collapse into one, which starts as soon as the cycle returns.
type Scheduler struct {
	cycle    Cycle
	interval time.Duration
	l        *applogger.Logger

	running atomic.Bool
	runs    atomic.Int64
	last    atomic.Pointer[models.CycleReport]
}

func NewScheduler(cycle Cycle, interval time.Duration, l *applogger.Logger) *Scheduler {
	return &Scheduler{cycle: cycle, interval: interval, l: l}
}

// Run blocks until ctx is done. A cycle in flight when ctx is cancelled is
// allowed to finish; it does not see the cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.l.Info("scheduler started", applogger.Duration("interval_ms", s.interval))
	for {
		s.runOnce(context.WithoutCancel(ctx))

		// a cancel that raced with a pending tick must win
		if ctx.Err() != nil {
			return s.stopped()
		}
		select {
		case <-ctx.Done():
			return s.stopped()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) stopped() error {
	s.l.Info("scheduler stopped", applogger.Int("cycles", int(s.runs.Load())))
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.running.Store(true)
	defer s.running.Store(false)

	start := time.Now()
	report := s.cycle.RunCycle(ctx)
	s.runs.Add(1)
	if report != nil {
		s.last.Store(report)
	}
	if took := time.Since(start); took > s.interval {
		s.l.Warn("cycle overran interval, next cycle starts immediately",
			applogger.Duration("took_ms", took),
			applogger.Duration("interval_ms", s.interval),
		)
	}
}

// State reports whether a cycle is in flight.
func (s *Scheduler) State() string {
	if s.running.Load() {
		return StateRunning
	}
	return StateIdle
}

// Interval returns the configured period.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// LastReport returns the most recent completed cycle report, or nil.
func (s *Scheduler) LastReport() *models.CycleReport { return s.last.Load() }
