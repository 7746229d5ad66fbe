// Package scheduler runs periodic background maintenance tasks, such as
// cache pruning and metrics collection.
package scheduler

import (
	"sync"
	"time"
)

// Scheduler invokes a task at a fixed interval until stopped. Start and
// Stop are idempotent and safe to call from any goroutine.
type Scheduler struct {
	interval time.Duration
	task     func()

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// New creates a scheduler for the given task. The task runs on its own
// goroutine; it must handle its own panics and synchronization.
func New(interval time.Duration, task func()) *Scheduler {
	return &Scheduler{
		interval: interval,
		task:     task,
	}
}

// Start launches the periodic loop. The first run happens one interval
// after Start, not immediately; callers that want an immediate run invoke
// the task themselves.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	go s.loop(s.stop, s.done)
}

// Stop halts the loop and waits for any in-flight task run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stop)
	<-s.done
	s.running = false
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.task()
		case <-stop:
			return
		}
	}
}
