package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitney/taskloop-api/internal/config"
	"github.com/mwhitney/taskloop-api/internal/domain"
)

type countingProcessor struct {
	calls atomic.Int64
	err   error
}

func (p *countingProcessor) ProcessDueTasks(context.Context) ([]*domain.Task, error) {
	p.calls.Add(1)
	return nil, p.err
}

func TestSchedulerInvokesProcessorPeriodically(t *testing.T) {
	processor := &countingProcessor{}
	s := New(config.SchedulerConfig{Interval: time.Second}, processor, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for processor.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	assert.GreaterOrEqual(t, processor.calls.Load(), int64(2),
		"processor should run once per interval")
}

func TestSchedulerHonorsSubSecondInterval(t *testing.T) {
	processor := &countingProcessor{}
	s := New(config.SchedulerConfig{Interval: 200 * time.Millisecond}, processor, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	// Rounding the interval up to a whole second would yield at most one
	// call in this window.
	deadline := time.Now().Add(1500 * time.Millisecond)
	for processor.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	assert.GreaterOrEqual(t, processor.calls.Load(), int64(3),
		"fractional intervals must not be truncated to whole seconds")
}

func TestSchedulerSurvivesProcessorFailure(t *testing.T) {
	processor := &countingProcessor{err: errors.New("db down")}
	s := New(config.SchedulerConfig{Interval: time.Second}, processor, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for processor.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	assert.GreaterOrEqual(t, processor.calls.Load(), int64(2),
		"a failing pass must not stop the schedule")
}

func TestSchedulerStopWaitsForInFlightPass(t *testing.T) {
	processor := &countingProcessor{}
	s := New(config.SchedulerConfig{Interval: time.Second}, processor, nil)

	require.NoError(t, s.Start())

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestSchedulerDefaultsInterval(t *testing.T) {
	processor := &countingProcessor{}
	s := New(config.SchedulerConfig{}, processor, nil)
	assert.Equal(t, config.DefaultSchedulerInterval, s.interval)
}
