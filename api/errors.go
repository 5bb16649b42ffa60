package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport wraps every failure where no well-formed response arrived:
// connection refused, timeout, canceled context, malformed success body.
var ErrTransport = errors.New("planner service unreachable")

// StatusError is a non-2xx response from the service. Detail carries the
// human-readable message from the error body when one was present.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("planner service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("planner service returned %d: %s", e.StatusCode, e.Detail)
}

// Unauthorized reports whether err is a 401 response.
func Unauthorized(err error) bool {
	var st *StatusError
	return errors.As(err, &st) && st.StatusCode == http.StatusUnauthorized
}

// Unverified reports whether err is a 403 response, the service's signal
// that the account exists but the email is not verified yet.
func Unverified(err error) bool {
	var st *StatusError
	return errors.As(err, &st) && st.StatusCode == http.StatusForbidden
}
