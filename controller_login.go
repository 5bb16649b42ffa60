package authflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/plannerhub/authflow/api"
	"github.com/plannerhub/authflow/session"
)

// SubmitLogin runs one sign-in cycle: local validation, the credential
// exchange, lockout accounting and session establishment. remember opts
// the session into the durable tier.
//
// The returned outcome is what the form should render. The error is
// non-nil only when the controller has been closed.
func (c *Controller) SubmitLogin(ctx context.Context, creds Credentials, remember bool) (SubmitOutcome, error) {
	if c.lockout.Locked() {
		c.metrics.Inc(MetricLoginLockedOut)
		secs := int(math.Ceil(c.lockout.Remaining().Seconds()))
		return SubmitOutcome{
			Kind:  OutcomeLockedOut,
			Toast: Toast{Visible: true, Severity: SeverityWarn, Icon: "⏳", Message: fmt.Sprintf("Too many failed attempts. Try again in %ds", secs)},
		}, nil
	}

	epoch, blocked, err := c.beginSubmit()
	if err != nil {
		return SubmitOutcome{}, err
	}
	if blocked != nil {
		return *blocked, nil
	}
	defer c.endSubmit()

	started := time.Now()
	c.clearToast()

	identifier := strings.TrimSpace(creds.Identifier)

	if errs := ValidateLogin(identifier, creds.Password); len(errs) > 0 {
		c.applyFieldErrors(errs, FieldLoginIdentifier, FieldLoginPassword)
		c.metrics.Inc(MetricLoginValidationFailed)
		toast := c.setToast(SeverityError, "⚠️", "Please fill in all required fields.")
		return SubmitOutcome{Kind: OutcomeValidationFailed, Toast: toast, FieldErrors: errs}, nil
	}
	c.applyFieldErrors(nil, FieldLoginIdentifier, FieldLoginPassword)

	c.setLoading(true)
	c.emit(Event{EventType: EventLoginAttempt, Identifier: identifier, Tab: "login"})

	pair, err := c.client.Login(ctx, identifier, creds.Password)

	if c.stale(epoch) {
		c.metrics.Inc(MetricStaleDiscarded)
		return SubmitOutcome{Kind: OutcomeStale}, nil
	}
	c.setLoading(false)
	c.metrics.Observe(MetricSubmitLatency, time.Since(started))

	if err != nil {
		return c.loginFailure(identifier, err), nil
	}

	c.lockout.RecordSuccess()
	c.stopCountdown()

	sess := &session.Session{
		AccessToken:   pair.AccessToken,
		RefreshToken:  pair.RefreshToken,
		Identifier:    identifier,
		EstablishedAt: time.Now(),
	}
	if err := c.store.Save(ctx, sess, remember); err != nil {
		log.Print("authflow: session save failed: ", err)
	} else {
		c.metrics.Inc(MetricSessionSaved)
		c.emit(Event{EventType: EventSessionSaved, Identifier: identifier, Success: true})
	}

	c.mu.Lock()
	c.form.success = true
	c.mu.Unlock()

	c.metrics.Inc(MetricLoginSuccess)
	c.emit(Event{EventType: EventLoginSuccess, Identifier: identifier, Tab: "login", Success: true})

	c.after(c.config.UX.LoginRedirectDelay, epoch, func() {
		c.navigator.Replace(RouteDashboard)
	})

	return SubmitOutcome{
		Kind:  OutcomeSuccess,
		Toast: Toast{Visible: true, Severity: SeveritySuccess, Icon: "✓", Message: "Secure session created. Taking you to your dashboard…"},
	}, nil
}

// loginFailure classifies a failed credential exchange into an outcome and
// applies its lockout accounting.
func (c *Controller) loginFailure(identifier string, err error) SubmitOutcome {
	if errors.Is(err, api.ErrTransport) {
		c.metrics.Inc(MetricTransportFailure)
		c.emit(Event{EventType: EventLoginRejected, Identifier: identifier, Tab: "login", Error: err.Error()})
		toast := c.setToast(SeverityError, "📡", "Could not reach PlannerHub. Check your connection and try again.")
		return SubmitOutcome{Kind: OutcomeTransportFailure, Toast: toast}
	}

	switch {
	case api.Unverified(err):
		state := c.lockout.RecordFailure()
		c.lockoutTransition(state, identifier)
		c.metrics.Inc(MetricLoginUnverified)
		c.emit(Event{EventType: EventLoginUnverified, Identifier: identifier, Tab: "login"})
		toast := c.setToast(SeverityWarn, "📭", "Your email isn't verified yet. Check your inbox for the verification link.")
		return SubmitOutcome{Kind: OutcomeUnverified, Toast: toast, RemainingAttempts: c.lockout.RemainingAttempts()}

	case api.Unauthorized(err):
		state := c.lockout.RecordFailure()
		c.lockoutTransition(state, identifier)
		c.metrics.Inc(MetricLoginRejected)
		c.emit(Event{EventType: EventLoginRejected, Identifier: identifier, Tab: "login"})

		remaining := c.config.Lockout.MaxAttempts - state.FailureCount
		var msg string
		if remaining > 0 {
			plural := "s"
			if remaining == 1 {
				plural = ""
			}
			msg = fmt.Sprintf("Incorrect password. %d attempt%s remaining before lockout.", remaining, plural)
		} else {
			msg = "Too many failed attempts."
		}
		c.setFieldError(FieldLoginPassword, "Incorrect password")
		toast := c.setToast(SeverityError, "🔐", msg)
		return SubmitOutcome{
			Kind:        OutcomeRejected,
			Toast:       toast,
			FieldErrors: []FieldError{{Field: FieldLoginPassword, Invalid: true, Message: "Incorrect password"}},
			RemainingAttempts: func() int {
				if remaining < 0 {
					return 0
				}
				return remaining
			}(),
		}

	default:
		c.metrics.Inc(MetricLoginRejected)
		c.emit(Event{EventType: EventLoginRejected, Identifier: identifier, Tab: "login", Error: err.Error()})
		toast := c.setToast(SeverityError, "❌", serviceDetail(err, "Sign in failed. Please try again."))
		return SubmitOutcome{Kind: OutcomeRejected, Toast: toast, RemainingAttempts: c.lockout.RemainingAttempts()}
	}
}

// lockoutTransition starts the countdown when a failure crossed the
// threshold.
func (c *Controller) lockoutTransition(state LockoutState, identifier string) {
	if state.LockedUntil.IsZero() {
		return
	}
	c.emit(Event{EventType: EventLockoutStarted, Identifier: identifier, Metadata: map[string]string{
		"locked_until": state.LockedUntil.Format(time.RFC3339),
	}})
	c.startLockoutCountdown()
}

func (c *Controller) stopCountdown() {
	c.mu.Lock()
	cd := c.countdown
	c.countdown = nil
	c.mu.Unlock()
	cd.Stop()
}

// ForgotPassword requests a reset link for the email currently typed into
// the login form. The service answers success-shaped regardless of whether
// the address is registered, and the toast mirrors that.
func (c *Controller) ForgotPassword(ctx context.Context, email string) (SubmitOutcome, error) {
	if c.closed.Load() {
		return SubmitOutcome{}, ErrControllerClosed
	}

	email = strings.TrimSpace(email)
	if email == "" {
		toast := c.setToast(SeverityWarn, "💡", `Enter your email above, then click "Forgot password?"`)
		return SubmitOutcome{Kind: OutcomeValidationFailed, Toast: toast}, nil
	}

	if err := c.client.ForgotPassword(ctx, email); err != nil {
		if errors.Is(err, api.ErrTransport) {
			c.metrics.Inc(MetricTransportFailure)
			toast := c.setToast(SeverityError, "📡", "Could not reach PlannerHub. Check your connection and try again.")
			return SubmitOutcome{Kind: OutcomeTransportFailure, Toast: toast}, nil
		}
		toast := c.setToast(SeverityError, "❌", serviceDetail(err, "Something went wrong. Please try again."))
		return SubmitOutcome{Kind: OutcomeRejected, Toast: toast}, nil
	}

	c.metrics.Inc(MetricForgotRequested)
	c.emit(Event{EventType: EventPasswordForgot, Identifier: email, Success: true})
	toast := c.setToast(SeveritySuccess, "📧", fmt.Sprintf("Password reset link sent to %s", email))
	return SubmitOutcome{Kind: OutcomeSuccess, Toast: toast}, nil
}

// serviceDetail prefers the service's own error message when the response
// carried one.
func serviceDetail(err error, fallback string) string {
	var st *api.StatusError
	if errors.As(err, &st) && st.Detail != "" {
		return st.Detail
	}
	return fallback
}
