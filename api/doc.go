// Package api is the HTTP client for the PlannerHub identity and task
// service. It speaks the service's wire contract and nothing else: no
// session persistence, no lockout accounting, no UI state. Callers decide
// what a rejection means; this package only classifies it as a
// [StatusError] (the service answered) or [ErrTransport] (it did not).
package api
