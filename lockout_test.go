package authflow

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testClock is a manually advanced clock shared with a guard under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestLockoutFiveFailuresLock(t *testing.T) {
	clock := newTestClock()
	g := NewLockoutGuard(5, 30*time.Second, clock.Now)

	for i := 0; i < 4; i++ {
		st := g.RecordFailure()
		if !st.LockedUntil.IsZero() {
			t.Fatalf("locked after %d failures", i+1)
		}
	}
	st := g.RecordFailure()
	if st.FailureCount != 5 || st.LockedUntil.IsZero() {
		t.Fatalf("fifth failure did not lock: %+v", st)
	}
	if !g.Locked() {
		t.Fatal("guard not locked")
	}

	// A sixth failure while locked must not advance the count.
	st = g.RecordFailure()
	if st.FailureCount != 5 {
		t.Fatalf("failure count advanced while locked: %d", st.FailureCount)
	}
}

func TestLockoutWindowElapsesToOpen(t *testing.T) {
	clock := newTestClock()
	g := NewLockoutGuard(5, 30*time.Second, clock.Now)

	for i := 0; i < 5; i++ {
		g.RecordFailure()
	}

	clock.Advance(29 * time.Second)
	if !g.Locked() {
		t.Fatal("unlocked before the window elapsed")
	}
	if rem := g.Remaining(); rem != time.Second {
		t.Fatalf("remaining = %v, want 1s", rem)
	}

	clock.Advance(time.Second)
	if g.Locked() {
		t.Fatal("still locked after the window elapsed")
	}
	if st := g.State(); st.FailureCount != 0 {
		t.Fatalf("failure count not reset: %d", st.FailureCount)
	}
}

func TestLockoutSuccessResets(t *testing.T) {
	g := NewLockoutGuard(5, 30*time.Second, nil)
	g.RecordFailure()
	g.RecordFailure()
	g.RecordSuccess()
	if got := g.RemainingAttempts(); got != 5 {
		t.Fatalf("remaining attempts = %d, want 5", got)
	}
}

func TestLockoutRemainingAttempts(t *testing.T) {
	g := NewLockoutGuard(5, 30*time.Second, nil)
	if got := g.RemainingAttempts(); got != 5 {
		t.Fatalf("fresh guard remaining = %d, want 5", got)
	}
	g.RecordFailure()
	g.RecordFailure()
	g.RecordFailure()
	if got := g.RemainingAttempts(); got != 2 {
		t.Fatalf("remaining = %d, want 2", got)
	}
}

func TestCountdownStopsWhenGuardReopens(t *testing.T) {
	clock := newTestClock()
	g := NewLockoutGuard(2, 50*time.Millisecond, clock.Now)
	g.RecordFailure()
	g.RecordFailure()

	var opened atomic.Bool
	var ticks atomic.Int64
	cd := g.StartCountdown(5*time.Millisecond,
		func(int) { ticks.Add(1) },
		func() { opened.Store(true) },
	)
	defer cd.Stop()

	time.Sleep(30 * time.Millisecond)
	clock.Advance(time.Second)

	deadline := time.Now().Add(time.Second)
	for !opened.Load() {
		if time.Now().After(deadline) {
			t.Fatal("countdown never reported the window reopening")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if ticks.Load() == 0 {
		t.Fatal("countdown never ticked while locked")
	}
}

func TestCountdownStopIsIdempotent(t *testing.T) {
	g := NewLockoutGuard(1, time.Minute, nil)
	g.RecordFailure()

	cd := g.StartCountdown(time.Millisecond, nil, nil)
	cd.Stop()
	cd.Stop()

	var nilCd *Countdown
	nilCd.Stop()
}
