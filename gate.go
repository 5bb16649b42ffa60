package authflow

import (
	"context"

	"github.com/plannerhub/authflow/session"
)

// Gate decides whether a navigation to a protected route may proceed. Its
// only input is session presence; token validity is discovered later by
// the Fetcher.
type Gate struct {
	store     *session.Store
	navigator Navigator
}

func NewGate(store *session.Store, nav Navigator) *Gate {
	if nav == nil {
		nav = noopNavigator{}
	}
	return &Gate{store: store, navigator: nav}
}

// Gate returns a route gate wired to the controller's session store and
// navigator.
func (c *Controller) Gate() *Gate {
	return NewGate(c.store, c.navigator)
}

// Authorize admits the navigation when a session exists. Otherwise it
// redirects to the login route and returns false.
func (g *Gate) Authorize(ctx context.Context) bool {
	if g.store.HasValidSession(ctx) {
		return true
	}
	g.navigator.Replace(RouteLogin)
	return false
}

// RedirectIfAuthenticated is the login page's inverse check: a visitor who
// already holds a session is sent straight to the dashboard.
func (g *Gate) RedirectIfAuthenticated(ctx context.Context) bool {
	if !g.store.HasValidSession(ctx) {
		return false
	}
	g.navigator.Replace(RouteDashboard)
	return true
}
