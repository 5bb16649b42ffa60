package authflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/plannerhub/authflow/api"
)

// SignupInput is the sign-up form's field set for one submit cycle.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

var signupFields = []string{FieldSignupName, FieldSignupEmail, FieldSignupPassword, FieldSignupConfirm}

// SubmitSignup runs one account-creation cycle. A created account gets no
// session; the service wants the email verified first, so after the
// success screen lingers the form resets and switches back to the login
// tab.
func (c *Controller) SubmitSignup(ctx context.Context, in SignupInput) (SubmitOutcome, error) {
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

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	if errs := ValidateSignup(name, email, in.Password, in.Confirm, c.config.Password); len(errs) > 0 {
		c.applyFieldErrors(errs, signupFields...)
		c.metrics.Inc(MetricSignupValidationFailed)
		toast := c.setToast(SeverityError, "⚠️", "Please correct the errors above.")
		return SubmitOutcome{Kind: OutcomeValidationFailed, Toast: toast, FieldErrors: errs}, nil
	}
	c.applyFieldErrors(nil, signupFields...)

	c.setLoading(true)
	c.emit(Event{EventType: EventSignupAttempt, Identifier: email, Tab: "signup"})

	err = c.client.Register(ctx, name, email, in.Password)

	if c.stale(epoch) {
		c.metrics.Inc(MetricStaleDiscarded)
		return SubmitOutcome{Kind: OutcomeStale}, nil
	}
	c.setLoading(false)
	c.metrics.Observe(MetricSubmitLatency, time.Since(started))

	if err != nil {
		return c.signupFailure(email, err), nil
	}

	c.mu.Lock()
	c.form.success = true
	c.mu.Unlock()

	c.metrics.Inc(MetricSignupSuccess)
	c.emit(Event{EventType: EventSignupSuccess, Identifier: email, Tab: "signup", Success: true})

	c.after(c.config.UX.SignupResetDelay, epoch, func() {
		c.resetSignup()
	})

	return SubmitOutcome{
		Kind:  OutcomeSuccess,
		Toast: Toast{Visible: true, Severity: SeveritySuccess, Icon: "🎉", Message: "Welcome to PlannerHub! Taking you to the sign in page…"},
	}, nil
}

func (c *Controller) signupFailure(email string, err error) SubmitOutcome {
	if errors.Is(err, api.ErrTransport) {
		c.metrics.Inc(MetricTransportFailure)
		c.emit(Event{EventType: EventSignupRejected, Identifier: email, Tab: "signup", Error: err.Error()})
		toast := c.setToast(SeverityError, "📡", "Could not reach PlannerHub. Check your connection and try again.")
		return SubmitOutcome{Kind: OutcomeTransportFailure, Toast: toast}
	}

	if duplicateEmail(err) {
		c.metrics.Inc(MetricSignupDuplicate)
		c.emit(Event{EventType: EventSignupRejected, Identifier: email, Tab: "signup", Error: "duplicate email"})
		fieldErr := FieldError{Field: FieldSignupEmail, Invalid: true, Message: "An account with this email already exists"}
		c.setFieldError(fieldErr.Field, fieldErr.Message)
		toast := c.setToast(SeverityError, "❌", "This email is already registered. Try signing in.")
		return SubmitOutcome{Kind: OutcomeDuplicateEmail, Toast: toast, FieldErrors: []FieldError{fieldErr}}
	}

	c.emit(Event{EventType: EventSignupRejected, Identifier: email, Tab: "signup", Error: err.Error()})
	toast := c.setToast(SeverityError, "❌", serviceDetail(err, "Could not create your account. Please try again."))
	return SubmitOutcome{Kind: OutcomeRejected, Toast: toast}
}

// duplicateEmail matches the service's duplicate-registration rejection.
// The status is a generic 400, so the detail text is the discriminator.
func duplicateEmail(err error) bool {
	var st *api.StatusError
	if !errors.As(err, &st) {
		return false
	}
	return strings.Contains(strings.ToLower(st.Detail), "already exists") ||
		strings.Contains(strings.ToLower(st.Detail), "already registered")
}

// resetSignup clears the signup form, hides the strength meter and lands
// back on the login tab.
func (c *Controller) resetSignup() {
	c.epoch.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.tab = TabLogin
	c.form.loading = false
	c.form.success = false
	c.form.toast = Toast{}
	c.form.fields = make(map[string]FieldError)
	c.form.strength = StrengthState{}
}
