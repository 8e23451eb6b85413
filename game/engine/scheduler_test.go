package engine

import (
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestManualSchedulerFiresInOrder(t *testing.T) {
	s := NewManualScheduler()
	var order []string

	s.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	s.AfterFunc(time.Second, func() { order = append(order, "a") })
	s.AfterFunc(2*time.Second, func() { order = append(order, "c") })

	if n := s.Advance(500 * time.Millisecond); n != 0 {
		t.Errorf("Expected nothing to fire, %d fired", n)
	}
	if s.Pending() != 3 {
		t.Errorf("Expected 3 pending, got %d", s.Pending())
	}

	if n := s.Advance(2 * time.Second); n != 3 {
		t.Errorf("Expected 3 callbacks, got %d", n)
	}
	if !reflect.DeepEqual(order, []string{"a", "b", "c"}) {
		t.Errorf("Unexpected order %v", order)
	}
	if s.Now() != 2500*time.Millisecond {
		t.Errorf("Expected clock at 2.5s, got %v", s.Now())
	}
	if s.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", s.Pending())
	}
}

func TestManualSchedulerStop(t *testing.T) {
	s := NewManualScheduler()
	fired := false
	timer := s.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("Expected first Stop to succeed")
	}
	if timer.Stop() {
		t.Error("Expected second Stop to report false")
	}

	s.Advance(time.Minute)
	if fired {
		t.Error("Stopped timer fired")
	}

	done := s.AfterFunc(0, func() {})
	s.Advance(0)
	if done.Stop() {
		t.Error("Expected Stop after firing to report false")
	}
}

func TestManualSchedulerNestedCallbacks(t *testing.T) {
	s := NewManualScheduler()
	var fired []time.Duration

	s.AfterFunc(time.Second, func() {
		fired = append(fired, s.Now())
		s.AfterFunc(time.Second, func() {
			fired = append(fired, s.Now())
		})
	})

	s.Advance(3 * time.Second)
	if !reflect.DeepEqual(fired, []time.Duration{time.Second, 2 * time.Second}) {
		t.Errorf("Unexpected fire times %v", fired)
	}
}

func TestRealScheduler(t *testing.T) {
	var hits int32
	done := make(chan struct{})

	RealScheduler{}.AfterFunc(time.Millisecond, func() {
		atomic.AddInt32(&hits, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Real scheduler callback did not fire")
	}

	stopped := RealScheduler{}.AfterFunc(time.Hour, func() { atomic.AddInt32(&hits, 1) })
	if !stopped.Stop() {
		t.Error("Expected Stop to cancel a pending timer")
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("Expected 1 hit, got %d", hits)
	}
}

func TestOnce(t *testing.T) {
	var o Once
	if o.Fired() {
		t.Error("Fresh signal should not be fired")
	}
	if !o.Arm() {
		t.Error("First Arm should succeed")
	}
	if o.Arm() {
		t.Error("Second Arm should report false")
	}
	o.Reset()
	if o.Fired() || !o.Arm() {
		t.Error("Reset should re-arm the signal")
	}

	calls := 0
	Notify(nil)
	Notify(func() { calls++ })
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}
