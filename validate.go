package authflow

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Standard local@domain.tld shape. Anything stricter belongs to the
// service, which is authoritative on what an account identifier is.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateLogin checks the sign-in fields. The identifier gets no format
// check beyond non-empty. Every field is checked independently so one pass
// reports every invalid field; the returned slice is empty when all pass.
func ValidateLogin(identifier, password string) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(identifier) == "" {
		errs = append(errs, FieldError{
			Field:   FieldLoginIdentifier,
			Invalid: true,
			Message: "Email or username is required",
		})
	}
	if password == "" {
		errs = append(errs, FieldError{
			Field:   FieldLoginPassword,
			Invalid: true,
			Message: "Password is required",
		})
	}
	return errs
}

// ValidateSignup checks the account-creation fields against the password
// policy. Checks never short-circuit: every invalid field is reported in
// one pass.
func ValidateSignup(name, email, password, confirm string, policy PasswordPolicy) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(name) == "" {
		errs = append(errs, FieldError{
			Field:   FieldSignupName,
			Invalid: true,
			Message: "Full name is required",
		})
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		errs = append(errs, FieldError{
			Field:   FieldSignupEmail,
			Invalid: true,
			Message: "Enter a valid email address",
		})
	}
	if msg := policy.check(password); msg != "" {
		errs = append(errs, FieldError{
			Field:   FieldSignupPassword,
			Invalid: true,
			Message: msg,
		})
	}
	if password != confirm {
		errs = append(errs, FieldError{
			Field:   FieldSignupConfirm,
			Invalid: true,
			Message: "Passwords do not match",
		})
	}
	return errs
}

// ValidateNewPassword checks a reset-page password pair against the policy.
func ValidateNewPassword(password, confirm string, policy PasswordPolicy) []FieldError {
	var errs []FieldError
	if msg := policy.check(password); msg != "" {
		errs = append(errs, FieldError{
			Field:   FieldResetPassword,
			Invalid: true,
			Message: msg,
		})
	}
	if password != confirm {
		errs = append(errs, FieldError{
			Field:   FieldResetConfirm,
			Invalid: true,
			Message: "Passwords do not match",
		})
	}
	return errs
}

// check returns the first violated rule's message, or "" when the password
// satisfies the policy.
func (p PasswordPolicy) check(password string) string {
	if len([]rune(password)) < p.MinLength {
		return "Password must be at least " + strconv.Itoa(p.MinLength) + " characters"
	}
	if p.RequireUppercase && !hasUppercase(password) {
		return "Password must contain at least one uppercase letter"
	}
	if p.RequireDigit && !hasDigit(password) {
		return "Password must contain at least one number"
	}
	return ""
}

func hasUppercase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// hasSymbol matches anything outside [A-Za-z0-9]; an accented letter
// counts as a symbol for scoring.
func hasSymbol(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return true
		}
	}
	return false
}
