package authflow

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/plannerhub/authflow/api"
	"github.com/plannerhub/authflow/session"
)

// Controller drives the sign-in and sign-up forms: it validates input,
// talks to the planner service, enforces the lockout window, owns the
// toast and field-error state, and establishes the session on success.
//
// One Controller serves one auth view. Submits are mutually exclusive; a
// second submit while one is in flight resolves to OutcomeBusy without
// touching the network. Form state is guarded by an internal mutex, so
// snapshots and submits may race freely from the caller's side.
type Controller struct {
	config    Config
	client    *api.Client
	store     *session.Store
	lockout   *LockoutGuard
	navigator Navigator
	events    *eventDispatcher
	metrics   *Metrics

	// busy is the sole submit mutual exclusion. It is set before any
	// network call and released when the submit resolves.
	busy atomic.Bool

	// epoch stamps each form context. A response or pending timer whose
	// epoch no longer matches is discarded without mutating state.
	epoch atomic.Uint64

	closed atomic.Bool

	mu        sync.Mutex
	form      *formState
	countdown *Countdown
}

// formState is the mutable presentation state behind Snapshot. All access
// goes through Controller.mu.
type formState struct {
	tab      FormTab
	loading  bool
	success  bool
	toast    Toast
	fields   map[string]FieldError
	strength StrengthState
}

func newFormState() *formState {
	return &formState{fields: make(map[string]FieldError)}
}

// ActiveTab returns the form currently shown.
func (c *Controller) ActiveTab() FormTab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.tab
}

// SwitchTab activates the other form. Toasts, success screens and invalid
// markers are cleared; in-flight submits and pending delayed navigations
// are invalidated. The lockout window is deliberately not reset.
func (c *Controller) SwitchTab(tab FormTab) {
	c.epoch.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.tab = tab
	c.form.loading = false
	c.form.success = false
	c.form.toast = Toast{}
	c.form.fields = make(map[string]FieldError)
}

// Snapshot returns a copy of the current form presentation state.
func (c *Controller) Snapshot() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := make(map[string]FieldError, len(c.form.fields))
	for k, v := range c.form.fields {
		fields[k] = v
	}
	return FormState{
		Loading: c.form.loading,
		Success: c.form.success,
		Toast:   c.form.toast,
		Fields:  fields,
	}
}

// ObservePassword recomputes the strength meter for the signup password
// field. Call it on every keystroke; an empty value hides the meter.
func (c *Controller) ObservePassword(password string) StrengthState {
	st := ScorePassword(password)
	c.mu.Lock()
	c.form.strength = st
	c.mu.Unlock()
	return st
}

// Strength returns the last strength-meter state.
func (c *Controller) Strength() StrengthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.strength
}

// LockedOut reports whether the login form is inside a lockout window.
func (c *Controller) LockedOut() bool {
	return c.lockout.Locked()
}

// LockoutRemaining returns the time left in the lockout window.
func (c *Controller) LockoutRemaining() time.Duration {
	return c.lockout.Remaining()
}

// Store exposes the session store for the gate and fetcher layers.
func (c *Controller) Store() *session.Store {
	return c.store
}

// Metrics returns the controller's counter set.
func (c *Controller) Metrics() *Metrics {
	return c.metrics
}

// Close invalidates pending work and stops the countdown and event
// dispatcher. The Controller rejects submits afterwards.
func (c *Controller) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.epoch.Add(1)

	c.mu.Lock()
	cd := c.countdown
	c.countdown = nil
	c.mu.Unlock()
	cd.Stop()

	c.events.Close()
}

// beginSubmit claims the single submit slot. It returns the epoch the
// submit runs under and a non-nil outcome when the submit must not start.
func (c *Controller) beginSubmit() (uint64, *SubmitOutcome, error) {
	if c.closed.Load() {
		return 0, nil, ErrControllerClosed
	}
	if !c.busy.CompareAndSwap(false, true) {
		c.metrics.Inc(MetricSubmitSuppressed)
		return 0, &SubmitOutcome{Kind: OutcomeBusy}, nil
	}
	return c.epoch.Load(), nil, nil
}

func (c *Controller) endSubmit() {
	c.busy.Store(false)
}

// stale reports whether the form context moved on while a call was in
// flight. A stale result must not mutate form or session state.
func (c *Controller) stale(epoch uint64) bool {
	return c.epoch.Load() != epoch
}

func (c *Controller) setLoading(loading bool) {
	c.mu.Lock()
	c.form.loading = loading
	c.mu.Unlock()
}

func (c *Controller) setToast(severity Severity, icon, message string) Toast {
	t := Toast{Visible: true, Severity: severity, Icon: icon, Message: message}
	c.mu.Lock()
	c.form.toast = t
	c.mu.Unlock()
	return t
}

func (c *Controller) clearToast() {
	c.mu.Lock()
	c.form.toast = Toast{}
	c.mu.Unlock()
}

// applyFieldErrors marks the failed fields and clears the listed clean
// ones, so a resubmit never shows last round's markers.
func (c *Controller) applyFieldErrors(errs []FieldError, known ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range known {
		delete(c.form.fields, f)
	}
	for _, e := range errs {
		c.form.fields[e.Field] = e
	}
}

func (c *Controller) setFieldError(field, message string) {
	c.mu.Lock()
	c.form.fields[field] = FieldError{Field: field, Invalid: true, Message: message}
	c.mu.Unlock()
}

// after runs fn once delay elapses, unless the form context it was
// scheduled under has been abandoned.
func (c *Controller) after(delay time.Duration, epoch uint64, fn func()) {
	time.AfterFunc(delay, func() {
		if c.stale(epoch) {
			return
		}
		fn()
	})
}

// startLockoutCountdown begins the one-second tick for the lockout bar.
// Any previous countdown is stopped first.
func (c *Controller) startLockoutCountdown() {
	c.mu.Lock()
	prev := c.countdown
	c.mu.Unlock()
	prev.Stop()

	cd := c.lockout.StartCountdown(c.config.Lockout.TickInterval, nil, func() {
		c.emit(Event{EventType: EventLockoutCleared, Success: true})
	})

	c.mu.Lock()
	c.countdown = cd
	c.mu.Unlock()
}

func (c *Controller) emit(ev Event) {
	if c.events == nil {
		return
	}
	ev.Timestamp = time.Now()
	c.events.Emit(context.Background(), ev)
}
