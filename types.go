package authflow

// Credentials is one submit cycle's worth of login input. It is transient:
// never persisted, never logged, dropped when the submit resolves.
type Credentials struct {
	Identifier string
	Password   string
}

// Field identifiers used in [FieldError] descriptors and form state.
const (
	FieldLoginIdentifier = "login.identifier"
	FieldLoginPassword   = "login.password"
	FieldSignupName      = "signup.name"
	FieldSignupEmail     = "signup.email"
	FieldSignupPassword  = "signup.password"
	FieldSignupConfirm   = "signup.confirm"
	FieldResetPassword   = "reset.password"
	FieldResetConfirm    = "reset.confirm"
)

// FieldError marks a single form field invalid with a user-facing message.
type FieldError struct {
	Field   string
	Invalid bool
	Message string
}

// Severity classifies a toast.
type Severity uint8

const (
	// SeveritySuccess confirms a completed action.
	SeveritySuccess Severity = iota
	// SeverityError reports a rejection or connectivity failure.
	SeverityError
	// SeverityWarn nudges the user without reporting a failure.
	SeverityWarn
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	case SeverityWarn:
		return "warn"
	default:
		return "unknown"
	}
}

// Toast is the transient per-form feedback banner. One instance exists per
// form; it may be shown alongside field errors.
type Toast struct {
	Visible  bool
	Severity Severity
	Icon     string
	Message  string
}

// StrengthTier is the discrete password-strength label.
type StrengthTier uint8

const (
	// StrengthVeryWeak covers zero and one satisfied predicates.
	StrengthVeryWeak StrengthTier = iota
	// StrengthWeak is two satisfied predicates.
	StrengthWeak
	// StrengthFair is three satisfied predicates.
	StrengthFair
	// StrengthGood is all four satisfied predicates.
	StrengthGood
	// StrengthStrong is the top entry of the lookup table, kept for the
	// five-tier display scale.
	StrengthStrong
)

func (t StrengthTier) String() string {
	switch t {
	case StrengthVeryWeak:
		return "very weak"
	case StrengthWeak:
		return "weak"
	case StrengthFair:
		return "fair"
	case StrengthGood:
		return "good"
	case StrengthStrong:
		return "strong"
	default:
		return "unknown"
	}
}

// StrengthState is the derived strength-meter state, recomputed on every
// password keystroke and never persisted.
type StrengthState struct {
	Visible bool
	Tier    StrengthTier
	Score   int // satisfied predicates, 0..4
}

// FormTab selects which auth form is active.
type FormTab uint8

const (
	// TabLogin is the sign-in form.
	TabLogin FormTab = iota
	// TabSignup is the account-creation form.
	TabSignup
)

// OutcomeKind classifies how a submit call resolved. Every kind is
// recoverable; nothing the controller does is fatal to the process.
type OutcomeKind uint8

const (
	// OutcomeSuccess means the operation completed.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeValidationFailed means local validation rejected the input;
	// no network call was made.
	OutcomeValidationFailed
	// OutcomeRejected means the service refused the credentials.
	OutcomeRejected
	// OutcomeUnverified means the account exists but its email is not
	// verified yet.
	OutcomeUnverified
	// OutcomeDuplicateEmail means the service reported the signup email as
	// already registered.
	OutcomeDuplicateEmail
	// OutcomeLockedOut means the lockout window is active; the submit was
	// suppressed before any network call.
	OutcomeLockedOut
	// OutcomeTransportFailure means the service could not be reached; the
	// attempt does not count toward lockout.
	OutcomeTransportFailure
	// OutcomeBusy means a submission was already in flight.
	OutcomeBusy
	// OutcomeStale means the response arrived after its form context was
	// abandoned and was discarded without mutating state.
	OutcomeStale
)

// SubmitOutcome is the resolution of one submit cycle. FieldErrors lists
// only fields that failed; RemainingAttempts is meaningful on
// OutcomeRejected.
type SubmitOutcome struct {
	Kind              OutcomeKind
	Toast             Toast
	FieldErrors       []FieldError
	RemainingAttempts int
}

// FormState is a read-only snapshot of one form's presentation state.
type FormState struct {
	Loading bool
	Success bool
	Toast   Toast
	Fields  map[string]FieldError
}

// Routes understood by the [Navigator].
const (
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
)

// Navigator performs history-replacing navigation on behalf of the engine.
// Replace must not allow a back navigation into the abandoned view.
type Navigator interface {
	Replace(route string)
}

type noopNavigator struct{}

func (noopNavigator) Replace(string) {}
