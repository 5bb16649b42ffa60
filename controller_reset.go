package authflow

import (
	"context"
	"errors"
	"time"

	"github.com/plannerhub/authflow/api"
)

// SubmitPasswordReset redeems a reset token for a new password. The token
// comes from the emailed link; an absent token is rejected before any
// validation so the page can show the bad-link screen immediately.
func (c *Controller) SubmitPasswordReset(ctx context.Context, token, password, confirm string) (SubmitOutcome, error) {
	if token == "" {
		toast := c.setToast(SeverityError, "✕", "This reset link is missing or malformed. Please request a new one.")
		return SubmitOutcome{Kind: OutcomeValidationFailed, Toast: toast}, nil
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

	if errs := ValidateNewPassword(password, confirm, c.config.Password); len(errs) > 0 {
		c.applyFieldErrors(errs, FieldResetPassword, FieldResetConfirm)
		toast := c.setToast(SeverityError, "⚠️", errs[0].Message)
		return SubmitOutcome{Kind: OutcomeValidationFailed, Toast: toast, FieldErrors: errs}, nil
	}
	c.applyFieldErrors(nil, FieldResetPassword, FieldResetConfirm)

	c.setLoading(true)

	err = c.client.ResetPassword(ctx, token, password)

	if c.stale(epoch) {
		c.metrics.Inc(MetricStaleDiscarded)
		return SubmitOutcome{Kind: OutcomeStale}, nil
	}
	c.setLoading(false)
	c.metrics.Observe(MetricSubmitLatency, time.Since(started))

	if err != nil {
		c.metrics.Inc(MetricResetFailure)
		c.emit(Event{EventType: EventPasswordReset, Error: err.Error()})
		if errors.Is(err, api.ErrTransport) {
			c.metrics.Inc(MetricTransportFailure)
			toast := c.setToast(SeverityError, "📡", "Could not reach PlannerHub. Check your connection and try again.")
			return SubmitOutcome{Kind: OutcomeTransportFailure, Toast: toast}, nil
		}
		toast := c.setToast(SeverityError, "❌", serviceDetail(err, "Something went wrong. Please request a new reset link."))
		return SubmitOutcome{Kind: OutcomeRejected, Toast: toast}, nil
	}

	c.mu.Lock()
	c.form.success = true
	c.form.strength = StrengthState{}
	c.mu.Unlock()

	c.metrics.Inc(MetricResetSuccess)
	c.emit(Event{EventType: EventPasswordReset, Success: true})

	toast := c.setToast(SeveritySuccess, "✓", "Your password has been reset successfully. You can now sign in with your new password.")
	return SubmitOutcome{Kind: OutcomeSuccess, Toast: toast}, nil
}
