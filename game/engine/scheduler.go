package engine

import (
	"sync"
	"time"
)

// Timer is a cancellable pending callback
type Timer interface {
	// Stop prevents the callback from firing. It reports false if the
	// callback already fired or was already stopped.
	Stop() bool
}

// Scheduler runs single-shot delayed callbacks
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the wall clock via time.AfterFunc. Callbacks run
// on their own goroutine.
type RealScheduler struct{}

// AfterFunc implements Scheduler
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler is a virtual clock. Nothing fires until Advance is called,
// and callbacks then run synchronously on the caller's goroutine in due-time
// order (ties in scheduling order).
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

// NewManualScheduler creates a virtual clock at time zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d < 0 {
		d = 0
	}
	t := &manualTimer{s: s, at: s.now + d, seq: s.seq, fn: f}
	s.seq++
	s.pending = append(s.pending, t)
	return t
}

// Stop implements Timer
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing every callback that becomes
// due. Callbacks scheduled by a firing callback fire too if they fall inside
// the window. It returns the number of callbacks fired.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	fired := 0
	for {
		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			s.now = target
			s.compact()
			s.mu.Unlock()
			return fired
		}
		s.now = next.at
		next.fired = true
		s.mu.Unlock()

		next.fn()
		fired++
	}
}

// Now returns the virtual time elapsed since creation
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of callbacks waiting to fire
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			count++
		}
	}
	return count
}

// nextDue finds the earliest live timer due at or before target
func (s *ManualScheduler) nextDue(target time.Duration) *manualTimer {
	var next *manualTimer
	for _, t := range s.pending {
		if t.stopped || t.fired || t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// compact drops timers that can no longer fire
func (s *ManualScheduler) compact() {
	live := s.pending[:0]
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.pending = live
}
