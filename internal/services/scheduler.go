package services

import (
	"sync"
	"time"

	"transconnect/internal/clock"
)

// Scheduler runs delayed effects on behalf of one view. Closing it cancels
// everything still pending, so no callback mutates a view after teardown.
type Scheduler struct {
	clock clock.Clock

	mu      sync.Mutex
	nextID  uint64
	tasks   map[uint64]clock.Timer
	closed  bool
	running sync.WaitGroup
}

// NewScheduler creates a scheduler driven by c
func NewScheduler(c clock.Clock) *Scheduler {
	return &Scheduler{
		clock: c,
		tasks: make(map[uint64]clock.Timer),
	}
}

// After runs fn once d has elapsed. It reports false if the scheduler is
// already closed and fn will never run.
func (s *Scheduler) After(d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.nextID++
	id := s.nextID
	// The lock is held across AfterFunc so the callback cannot look up its
	// own id before it has been stored.
	s.tasks[id] = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.tasks, id)
		s.running.Add(1)
		s.mu.Unlock()

		defer s.running.Done()
		fn()
	})
	return true
}

// Pending returns the number of tasks that have not fired yet
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close stops every pending task and waits for callbacks already running.
// It must not be called from inside a scheduled callback.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, t := range s.tasks {
		t.Stop()
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	s.running.Wait()
}
