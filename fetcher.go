package authflow

import (
	"context"
	"log"
	"time"

	"github.com/plannerhub/authflow/api"
	"github.com/plannerhub/authflow/session"
)

// Fetcher performs authenticated requests on behalf of the protected
// view. It attaches the current access token and reacts to the service
// declining it: the session is cleared and the caller gets ErrAuthExpired,
// which must route back to login. The Fetcher and the Gate agree on what
// a valid session is by sharing the store.
type Fetcher struct {
	client    *api.Client
	store     *session.Store
	navigator Navigator
	metrics   *Metrics
	events    *eventDispatcher
}

// Fetcher returns an authenticated fetcher wired to the controller's
// client, store and navigator.
func (c *Controller) Fetcher() *Fetcher {
	return &Fetcher{
		client:    c.client,
		store:     c.store,
		navigator: c.navigator,
		metrics:   c.metrics,
		events:    c.events,
	}
}

// FetchTasks retrieves the task list as raw JSON. ErrNoSession means
// nothing was stored; ErrAuthExpired means the service stopped honoring
// the token and the session has already been cleared.
func (f *Fetcher) FetchTasks(ctx context.Context) ([]byte, error) {
	sess, err := f.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		f.navigator.Replace(RouteLogin)
		return nil, ErrNoSession
	}

	body, err := f.client.Tasks(ctx, sess.AccessToken)
	if err != nil {
		if api.Unauthorized(err) {
			return nil, f.expire(ctx)
		}
		return nil, err
	}
	return body, nil
}

// expire clears the session after the service declined the token and
// routes back to login.
func (f *Fetcher) expire(ctx context.Context) error {
	if err := f.store.Clear(ctx); err != nil {
		log.Print("authflow: session clear failed: ", err)
	}
	f.metrics.Inc(MetricAuthExpired)
	f.metrics.Inc(MetricSessionCleared)
	f.emit(Event{EventType: EventSessionCleared, Error: "access token no longer honored"})
	f.navigator.Replace(RouteLogin)
	return ErrAuthExpired
}

// Refresh rotates the stored token pair. Persistence follows the tier the
// session already lives in, so a durable session stays durable. A refresh
// the service rejects expires the session the same way a declined fetch
// does.
func (f *Fetcher) Refresh(ctx context.Context) error {
	sess, err := f.store.Load(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNoSession
	}

	pair, err := f.client.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		if api.Unauthorized(err) {
			return f.expire(ctx)
		}
		return err
	}

	next := &session.Session{
		AccessToken:   pair.AccessToken,
		RefreshToken:  pair.RefreshToken,
		Identifier:    sess.Identifier,
		EstablishedAt: sess.EstablishedAt,
	}
	if next.RefreshToken == "" {
		next.RefreshToken = sess.RefreshToken
	}
	if err := f.store.Save(ctx, next, f.store.Durable(ctx)); err != nil {
		return err
	}
	f.metrics.Inc(MetricSessionSaved)
	return nil
}

// SignOut revokes the refresh token best-effort and unconditionally
// clears both storage tiers. Sign-out always succeeds locally; a dead
// network cannot keep a user signed in.
func (f *Fetcher) SignOut(ctx context.Context) {
	sess, err := f.store.Load(ctx)
	if err == nil && sess != nil && sess.RefreshToken != "" {
		revokeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := f.client.Logout(revokeCtx, sess.RefreshToken); err != nil {
			log.Print("authflow: revoke failed: ", err)
		}
	}

	if err := f.store.Clear(ctx); err != nil {
		log.Print("authflow: session clear failed: ", err)
	}
	f.metrics.Inc(MetricSignOut)
	f.metrics.Inc(MetricSessionCleared)
	f.emit(Event{EventType: EventSignOut, Success: true})
	f.navigator.Replace(RouteLogin)
}

func (f *Fetcher) emit(ev Event) {
	if f.events == nil {
		return
	}
	ev.Timestamp = time.Now()
	f.events.Emit(context.Background(), ev)
}
