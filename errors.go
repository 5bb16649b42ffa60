package authflow

import "errors"

var (
	// ErrAuthExpired is returned by [Fetcher] when the service stops
	// honoring the access token. The session has already been cleared when
	// this is returned; the caller must route back to login.
	ErrAuthExpired = errors.New("authentication expired")
	// ErrNoSession is returned by [Fetcher] when no session exists to
	// attach to a protected request.
	ErrNoSession = errors.New("no session")
	// ErrControllerClosed is returned for submissions after Close.
	ErrControllerClosed = errors.New("controller closed")
)
