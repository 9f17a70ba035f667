package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"PriceWatch/internal/domain/models"
	applogger "PriceWatch/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCycle struct {
	took     time.Duration
	runs     atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	started  chan struct{}
}

func (c *fakeCycle) RunCycle(ctx context.Context) *models.CycleReport {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		m := c.maxSeen.Load()
		if n <= m || c.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if c.started != nil {
		select {
		case c.started <- struct{}{}:
		default:
		}
	}
	start := time.Now()
	time.Sleep(c.took)
	c.runs.Add(1)
	return &models.CycleReport{StartedAt: start, FinishedAt: time.Now()}
}

func TestSchedulerRunsImmediately(t *testing.T) {
	c := &fakeCycle{started: make(chan struct{}, 1)}
	s := NewScheduler(c, time.Hour, applogger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	select {
	case <-c.started:
	case <-time.After(time.Second):
		t.Fatal("first cycle did not start immediately")
	}
	require.Eventually(t, func() bool { return s.LastReport() != nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), c.runs.Load())
}

func TestSchedulerNeverOverlaps(t *testing.T) {
	c := &fakeCycle{took: 30 * time.Millisecond}
	s := NewScheduler(c, 5*time.Millisecond, applogger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	assert.Equal(t, int32(1), c.maxSeen.Load())
	assert.GreaterOrEqual(t, c.runs.Load(), int32(2))
	assert.Equal(t, StateIdle, s.State())
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	c := &fakeCycle{}
	s := NewScheduler(c, 10*time.Millisecond, applogger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return c.runs.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	runs := c.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, runs, c.runs.Load())
}

func TestSchedulerFinishesInFlightCycle(t *testing.T) {
	c := &fakeCycle{took: 50 * time.Millisecond, started: make(chan struct{}, 1)}
	s := NewScheduler(c, time.Hour, applogger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	<-c.started
	assert.Equal(t, StateRunning, s.State())
	cancel()
	<-done
	assert.Equal(t, int32(1), c.runs.Load())
	assert.NotNil(t, s.LastReport())
}
