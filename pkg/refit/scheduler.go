// Package refit schedules layout refits in response to resize signals.
//
// A [Scheduler] is a single-slot debouncer: every [Scheduler.Trigger]
// replaces any pending run, so a burst of resize events within the delay
// window results in exactly one call to the callback, delay after the
// last event. With a zero delay the callback runs synchronously on every
// trigger.
//
//	s := refit.New(200*time.Millisecond, func() { engine.Fit() })
//	defer s.Stop()
//	for range resizeEvents {
//	    box.SetWidth(newWidth)
//	    s.Trigger()
//	}
package refit

import (
	"sync"
	"time"
)

// Scheduler debounces calls to a refit callback.
// It is safe for concurrent use.
type Scheduler struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
	runs    uint64
}

// New creates a scheduler that calls fn at most once per quiet period of
// length delay. A non-positive delay disables debouncing.
func New(delay time.Duration, fn func()) *Scheduler {
	return &Scheduler{delay: delay, fn: fn}
}

// Delay returns the debounce window.
func (s *Scheduler) Delay() time.Duration { return s.delay }

// Trigger requests a refit. Any pending request is cancelled and the
// window restarts. It returns false if the scheduler has been stopped.
func (s *Scheduler) Trigger() bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}

	if s.delay <= 0 {
		s.runs++
		s.mu.Unlock()
		s.fn()
		return true
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
	s.mu.Unlock()
	return true
}

// fire runs the callback unless a later trigger or Stop superseded gen.
// Timer.Stop cannot recall a callback that already started, hence the
// generation check.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.runs++
	s.mu.Unlock()
	s.fn()
}

// Pending reports whether a refit is waiting for its window to elapse.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Runs returns how many times the callback has been invoked.
func (s *Scheduler) Runs() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Flush cancels the pending request, if any, and runs the callback now.
// It reports whether a request was pending.
func (s *Scheduler) Flush() bool {
	s.mu.Lock()
	if s.stopped || s.timer == nil {
		s.mu.Unlock()
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.gen++
	s.runs++
	s.mu.Unlock()
	s.fn()
	return true
}

// Stop cancels any pending request and rejects later triggers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
