package authflow

import (
	"math"
	"sync"
	"time"
)

// LockoutState is a value snapshot of the guard. LockedUntil is the zero
// time while Open; it is set only when FailureCount has reached the
// threshold.
type LockoutState struct {
	FailureCount int
	LockedUntil  time.Time
}

// LockoutGuard tracks consecutive failed login attempts and enforces a
// timed lockout window. It is advisory UX, not a security boundary: the
// service independently rate-limits, and nothing here survives a process
// restart.
//
// The guard has two states. Open (FailureCount below the threshold) and
// Locked (threshold reached, LockedUntil armed). The window is not ticked
// down; remaining time is always recomputed from LockedUntil so repeated
// reads never drift.
type LockoutGuard struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	now         func() time.Time
	state       LockoutState
}

// NewLockoutGuard returns an Open guard. A nil clock uses time.Now;
// non-positive limits fall back to 5 attempts and a 30-second window.
func NewLockoutGuard(maxAttempts int, window time.Duration, clock func() time.Time) *LockoutGuard {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 30 * time.Second
	}
	if clock == nil {
		clock = time.Now
	}
	return &LockoutGuard{maxAttempts: maxAttempts, window: window, now: clock}
}

// RecordFailure counts one failed attempt and returns the resulting state.
// Reaching the threshold transitions to Locked and arms the window. While
// Locked the call is a no-op on the count.
func (g *LockoutGuard) RecordFailure() LockoutState {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.expireLocked()
	if g.lockedAt(g.now()) {
		return g.state
	}

	g.state.FailureCount++
	if g.state.FailureCount >= g.maxAttempts {
		g.state.LockedUntil = g.now().Add(g.window)
	}
	return g.state
}

// RecordSuccess resets the guard to Open from any state.
func (g *LockoutGuard) RecordSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = LockoutState{}
}

// Locked reports whether the lockout window is active. An elapsed window
// resets the guard to Open as a side effect.
func (g *LockoutGuard) Locked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked()
	return g.lockedAt(g.now())
}

// Remaining returns the time left in the window, zero while Open.
func (g *LockoutGuard) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked()
	if !g.lockedAt(g.now()) {
		return 0
	}
	return g.state.LockedUntil.Sub(g.now())
}

// RemainingAttempts returns how many failures are left before lockout.
func (g *LockoutGuard) RemainingAttempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked()
	left := g.maxAttempts - g.state.FailureCount
	if left < 0 {
		return 0
	}
	return left
}

// State returns a snapshot after applying window expiry.
func (g *LockoutGuard) State() LockoutState {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expireLocked()
	return g.state
}

func (g *LockoutGuard) lockedAt(now time.Time) bool {
	return !g.state.LockedUntil.IsZero() && now.Before(g.state.LockedUntil)
}

// expireLocked resets an elapsed window. Callers hold g.mu.
func (g *LockoutGuard) expireLocked() {
	if g.state.LockedUntil.IsZero() {
		return
	}
	if !g.now().Before(g.state.LockedUntil) {
		g.state = LockoutState{}
	}
}

// Countdown is a recurring tick that reports the seconds left in the
// lockout window. It stops itself when the guard reopens and must be
// stopped explicitly when the owning form goes away, so the ticker never
// leaks past either lifetime.
type Countdown struct {
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// StartCountdown begins ticking at interval. onTick receives the whole
// seconds remaining (rounded up); onOpen fires once when the window
// elapses and the guard has reset. Either callback may be nil.
func (g *LockoutGuard) StartCountdown(interval time.Duration, onTick func(secondsLeft int), onOpen func()) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}

	c := &Countdown{done: make(chan struct{})}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !g.Locked() {
					if onOpen != nil {
						onOpen()
					}
					return
				}
				if onTick != nil {
					onTick(int(math.Ceil(g.Remaining().Seconds())))
				}
			case <-c.done:
				return
			}
		}
	}()
	return c
}

// Stop cancels the countdown and waits for the tick goroutine to exit.
// Safe to call more than once and after the countdown finished on its own.
func (c *Countdown) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.done) })
	c.wg.Wait()
}
