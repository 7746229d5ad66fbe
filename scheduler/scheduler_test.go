package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunsTaskPeriodically(t *testing.T) {
	var runs atomic.Int64
	s := New(10*time.Millisecond, func() { runs.Add(1) })

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_FirstRunAfterOneInterval(t *testing.T) {
	var runs atomic.Int64
	s := New(100*time.Millisecond, func() { runs.Add(1) })

	s.Start()
	defer s.Stop()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(0), runs.Load())
}

func TestScheduler_StopHaltsTask(t *testing.T) {
	var runs atomic.Int64
	s := New(10*time.Millisecond, func() { runs.Add(1) })

	s.Start()
	time.Sleep(35 * time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestScheduler_IsRunning(t *testing.T) {
	s := New(time.Minute, func() {})

	assert.False(t, s.IsRunning())
	s.Start()
	assert.True(t, s.IsRunning())
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestScheduler_StartAndStopAreIdempotent(t *testing.T) {
	s := New(time.Minute, func() {})

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	assert.False(t, s.IsRunning())
}

func TestScheduler_Restart(t *testing.T) {
	var runs atomic.Int64
	s := New(10*time.Millisecond, func() { runs.Add(1) })

	s.Start()
	s.Stop()
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, time.Second, 5*time.Millisecond)
}
