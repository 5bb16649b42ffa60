// Package authflow is the client-side authentication engine for the
// PlannerHub task-planning service. It owns the login/signup state machine:
// field validation, failed-attempt lockout, password-strength scoring,
// toast and error presentation state, token acquisition, session
// persistence across storage tiers, and the gate that authorizes the
// protected task view.
//
// The package drives UI state but renders nothing. A front end (CLI, TUI,
// web shell) feeds it submit calls and reads back [FormState] snapshots and
// [Event] notifications.
//
// # Architecture boundaries
//
// authflow is the public surface: [Controller], [Builder], [Config],
// [Gate], [Fetcher], and value types. Session persistence lives in the
// session sub-package; the wire protocol lives in the api sub-package.
// [Controller] is the only component that mutates form state, and
// session.Store is the only writer of the storage tiers.
//
// # What this package must NOT do
//
//   - Treat the client-side lockout as a security control. It is UX; the
//     service enforces its own limits.
//   - Validate token expiry locally. Expiry is discovered reactively when
//     the service rejects a protected fetch.
//   - Persist credentials. A password lives for one submit cycle and is
//     never written to a tier, an event, or a log.
package authflow
